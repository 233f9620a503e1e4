package toc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const externalToc = `format: jb-book
root: intro.md
parts:
  - caption: Borrowed
    chapters:
      - external: https://github.com/TUDelft-CITG/workshop_tutorial/blob/v1.0.0/book/ARCO-ERA5.ipynb
        sections:
          - external: https://gitlab.tudelft.nl/interactivetextbooks-citg/risk-and-reliability/-/blob/v0.1/book/intro.md
      - file: local.md
`

func TestLocalizeSameDirectory(t *testing.T) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(externalToc), &doc); err != nil {
		t.Fatal(err)
	}
	refs, err := Localize(&doc, "book/_toc.yml", "book/_toc.local.yml", "external")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Toc
	if err := doc.Decode(&parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Root != "intro.md" {
		t.Errorf("got root %q", parsed.Root)
	}
	chapter := parsed.Parts[0].Chapters[0]
	if chapter.Kind() != KindFile || chapter.File != "external/workshop_tutorial-v1.0.0/book/ARCO-ERA5.ipynb" {
		t.Errorf("unexpected chapter %s", chapter)
	}
	section := chapter.Sections[0]
	if section.Kind() != KindFile || section.File != "external/risk-and-reliability-v0.1/book/intro.md" {
		t.Errorf("unexpected section %s", section)
	}
	if parsed.Parts[0].Chapters[1].File != "local.md" {
		t.Errorf("local entry changed: %s", parsed.Parts[0].Chapters[1])
	}

	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	want := []string{"git", "clone", "--single-branch", "-b", "v1.0.0",
		"https://github.com/TUDelft-CITG/workshop_tutorial.git", "external/workshop_tutorial-v1.0.0"}
	if got := refs[0].CloneCommand(); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("got clone command %v, want %v", got, want)
	}
	if refs[1].RepoURL != "https://gitlab.tudelft.nl/interactivetextbooks-citg/risk-and-reliability" {
		t.Errorf("got repo url %q", refs[1].RepoURL)
	}
}

func TestLocalizeOtherDirectory(t *testing.T) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(externalToc), &doc); err != nil {
		t.Fatal(err)
	}
	if _, err := Localize(&doc, "book/_toc.yml", "_toc.local.yml", "external"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed Toc
	if err := doc.Decode(&parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Root != "book/intro.md" {
		t.Errorf("got root %q", parsed.Root)
	}
	if got := parsed.Parts[0].Chapters[0].File; got != "../external/workshop_tutorial-v1.0.0/book/ARCO-ERA5.ipynb" {
		t.Errorf("got file %q", got)
	}
}

func TestLocalizeInvalid(t *testing.T) {
	tests := map[string]string{
		"no root":      "chapters:\n  - file: a.md\n",
		"not mapping":  "- a\n- b\n",
		"bad external": "root: a.md\nchapters:\n  - external: https://github.com/org/repo\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			var node yaml.Node
			if err := yaml.Unmarshal([]byte(doc), &node); err != nil {
				t.Fatal(err)
			}
			if _, err := Localize(&node, "_toc.yml", "_toc.local.yml", "external"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLocalizeFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "_toc.yml")
	output := filepath.Join(dir, "_toc.local.yml")
	if err := os.WriteFile(input, []byte(externalToc), 0o644); err != nil {
		t.Fatal(err)
	}
	refs, err := LocalizeFile(input, output, "external")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("got %d refs", len(refs))
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseToc(data)
	if err != nil {
		t.Fatalf("localized toc does not parse: %v", err)
	}
	for _, chapter := range parsed.Parts[0].Chapters {
		if chapter.Kind() != KindFile {
			t.Errorf("chapter %s was not localized", chapter)
		}
	}
}
