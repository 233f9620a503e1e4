package selection

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

// Snippet is the list of external entries to paste in the parts or chapters
// of a _toc.yml, one "- external: <permalink>" line per selected entry.
func (s *Selection) Snippet() (string, error) {
	entries := []map[string]string{}
	for _, item := range s.Items() {
		entries = append(entries, map[string]string{"external": *item.Entry.ExternalURL})
	}
	if len(entries) == 0 {
		return "", nil
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DIY returns Markdown instructions to include the selection yourself.
func (s *Selection) DIY() (string, error) {
	return s.instructions("Instructions", []string{
		"Paste it into *parts:* or *chapters:* section in the *book/_toc.yml* file of your teach book repository",
		"Commit and push the changes",
		"Wait for GitHub action workflow to deploy your teach book with the selected external chapters.",
	})
}

// Mail returns Markdown instructions to send the selection to someone else.
func (s *Selection) Mail() (string, error) {
	return s.instructions("Mail instructions", []string{
		"Paste it into the email body",
		"Send the email to the person responsible for the teach book repository",
	})
}

func (s *Selection) instructions(heading string, steps []string) (string, error) {
	snippet, err := s.Snippet()
	if err != nil {
		return "", err
	}
	b := strings.Builder{}
	b.WriteString("## " + heading + "\n\n")
	b.WriteString("1. Copy the following text\n\n")
	b.WriteString("   ```yaml\n")
	for _, line := range strings.Split(strings.TrimSuffix(snippet, "\n"), "\n") {
		b.WriteString("   " + line + "\n")
	}
	b.WriteString("   ```\n\n")
	for idx, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n", idx+2, step)
	}
	return b.String(), nil
}

// HTML renders Markdown instructions.
func HTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Autolink)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}
