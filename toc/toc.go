package toc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Toc is a declarative table of contents as written in a book's _toc.yml.
// See https://jupyterbook.org/en/stable/structure/toc.html
type Toc struct {
	Format   string  `yaml:"format"`
	Root     string  `yaml:"root"`
	Parts    []Part  `yaml:"parts"`
	Chapters []Entry `yaml:"chapters"`
}

// HasParts reports whether chapters are grouped in captioned parts.
func (t *Toc) HasParts() bool {
	return t.Parts != nil
}

type Part struct {
	Caption  string  `yaml:"caption"`
	Chapters []Entry `yaml:"chapters"`
}

type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindLink
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindLink:
		return "url"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Entry is a chapter or section. Which keys were present decides its Kind.
type Entry struct {
	File     string  `yaml:"file"`
	URL      string  `yaml:"url"`
	Title    string  `yaml:"title"`
	External any     `yaml:"external"`
	Sections []Entry `yaml:"sections"`

	keys map[string]bool
}

func FileEntry(file string, sections ...Entry) Entry {
	return Entry{File: file, Sections: sections, keys: map[string]bool{"file": true}}
}

func LinkEntry(url string, title string) Entry {
	return Entry{URL: url, Title: title, keys: map[string]bool{"url": true, "title": true}}
}

func ExternalEntry(target string) Entry {
	return Entry{External: target, keys: map[string]bool{"external": true}}
}

func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	type plain Entry
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*e = Entry(p)
	e.keys = make(map[string]bool)
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			e.keys[value.Content[i].Value] = true
		}
	}
	return nil
}

func (e Entry) has(key string) bool {
	return e.keys[key]
}

func (e Entry) Kind() Kind {
	switch {
	case e.has("file"):
		return KindFile
	case e.has("url") && e.has("title"):
		return KindLink
	case e.has("external"):
		return KindExternal
	default:
		return KindUnknown
	}
}

func (e Entry) ExternalTarget() string {
	if e.External == nil {
		return ""
	}
	return fmt.Sprint(e.External)
}

func (e Entry) String() string {
	switch e.Kind() {
	case KindFile:
		return fmt.Sprintf("{file: %s}", e.File)
	case KindLink:
		return fmt.Sprintf("{url: %s, title: %s}", e.URL, e.Title)
	case KindExternal:
		return fmt.Sprintf("{external: %s}", e.ExternalTarget())
	default:
		keys := make([]string, 0, len(e.keys))
		for key := range e.keys {
			keys = append(keys, key)
		}
		return fmt.Sprintf("{keys: %v}", keys)
	}
}

// Config holds the fields of a book's _config.yml the harvester reads.
type Config struct {
	Title  string       `yaml:"title"`
	Author Author       `yaml:"author"`
	Logo   *string      `yaml:"logo"`
	Sphinx SphinxConfig `yaml:"sphinx"`
}

// Author is one author or a list of them, joined with ", ".
type Author string

func (a *Author) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*a = Author(strings.Join(names, ", "))
		return nil
	}
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	*a = Author(name)
	return nil
}

type SphinxConfig struct {
	Config struct {
		HTMLStaticPath   []string `yaml:"html_static_path"`
		HTMLThemeOptions struct {
			Logo struct {
				ImageLight string `yaml:"image_light"`
			} `yaml:"logo"`
		} `yaml:"html_theme_options"`
	} `yaml:"config"`
}

// LogoPath returns the logo location relative to the TOC directory. A direct
// logo field wins over the theme options of the sphinx section.
func (c *Config) LogoPath() (string, error) {
	if c.Logo != nil && *c.Logo != "" {
		return *c.Logo, nil
	}
	sphinx := c.Sphinx.Config
	imageLight := sphinx.HTMLThemeOptions.Logo.ImageLight
	if imageLight == "" || len(sphinx.HTMLStaticPath) == 0 {
		return "", ErrParse{Document: ConfigDocument, Err: errNoLogo}
	}
	return sphinx.HTMLStaticPath[0] + "/" + imageLight, nil
}
