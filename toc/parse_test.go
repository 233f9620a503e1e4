package toc

import (
	"errors"
	"testing"
)

const partsToc = `
format: jb-book
root: intro.md
parts:
  - caption: Contents
    chapters:
      - file: prob-design/overview.md
        sections:
          - file: prob-design/01-one-random-variable.md
          - file: prob-design/02-two-random-variables.md
      - file: risk-analysis/overview.md
        sections:
          - file: risk-analysis/definition.md
            sections:
              - file: risk-analysis/definition-extra
      - url: https://example.org/elsewhere
        title: Elsewhere
      - external: doi:10.1000/182
      - glob: exercises/*
`

const chaptersToc = `
format: jb-book
root: intro
chapters:
  - file: a.md
  - file: b.ipynb
    sections:
      - file: b/one.md
`

func TestParseTocParts(t *testing.T) {
	parsed, err := ParseToc([]byte(partsToc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.HasParts() {
		t.Fatal("expected parts")
	}
	if parsed.Root != "intro.md" || parsed.Format != "jb-book" {
		t.Errorf("got root %q format %q", parsed.Root, parsed.Format)
	}
	if len(parsed.Parts) != 1 || parsed.Parts[0].Caption != "Contents" {
		t.Fatalf("unexpected parts: %+v", parsed.Parts)
	}
	chapters := parsed.Parts[0].Chapters
	kinds := []Kind{KindFile, KindFile, KindLink, KindExternal, KindUnknown}
	if len(chapters) != len(kinds) {
		t.Fatalf("got %d chapters, want %d", len(chapters), len(kinds))
	}
	for i, kind := range kinds {
		if chapters[i].Kind() != kind {
			t.Errorf("chapter %d (%s) is %s, want %s", i, chapters[i], chapters[i].Kind(), kind)
		}
	}
	if len(chapters[0].Sections) != 2 {
		t.Errorf("got %d sections", len(chapters[0].Sections))
	}
	nested := chapters[1].Sections[0].Sections
	if len(nested) != 1 || nested[0].File != "risk-analysis/definition-extra" {
		t.Errorf("unexpected nested sections %+v", nested)
	}
	if chapters[3].ExternalTarget() != "doi:10.1000/182" {
		t.Errorf("got external target %q", chapters[3].ExternalTarget())
	}
}

func TestParseTocChapters(t *testing.T) {
	parsed, err := ParseToc([]byte(chaptersToc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.HasParts() {
		t.Fatal("did not expect parts")
	}
	if len(parsed.Chapters) != 2 || len(parsed.Chapters[1].Sections) != 1 {
		t.Errorf("unexpected chapters %+v", parsed.Chapters)
	}
}

func TestParseTocInvalid(t *testing.T) {
	tests := map[string]string{
		"empty":               "",
		"not yaml":            "root: [unclosed",
		"missing root":        "chapters:\n  - file: a.md\n",
		"no parts nor chaps":  "root: intro.md\n",
		"chapters not a list": "root: intro.md\nchapters: a.md\n",
		"entry not a mapping": "root: intro.md\nchapters:\n  - a.md\n",
		"part without list":   "root: intro.md\nparts:\n  - caption: x\n",
		"scalar document":     "intro.md",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToc([]byte(doc))
			var parseErr ErrParse
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if parseErr.Document != TocDocument {
				t.Errorf("got document %q", parseErr.Document)
			}
		})
	}
}

func TestEntryKind(t *testing.T) {
	tests := []struct {
		entry Entry
		want  Kind
	}{
		{FileEntry("a.md"), KindFile},
		{LinkEntry("https://example.org", "Example"), KindLink},
		{ExternalEntry("doi:x"), KindExternal},
		{Entry{}, KindUnknown},
		{Entry{URL: "https://example.org", keys: map[string]bool{"url": true}}, KindUnknown},
	}
	for _, tt := range tests {
		if got := tt.entry.Kind(); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.entry, got, tt.want)
		}
	}
}

func TestParseConfigLogo(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "direct logo",
			doc:  "title: Risk\nauthor: Robert\nlogo: figures/cover_small.png\n",
			want: "figures/cover_small.png",
		},
		{
			name: "sphinx theme options",
			doc: `
title: Risk
author: Robert
sphinx:
  config:
    html_static_path: [figures, other]
    html_theme_options:
      logo:
        image_light: logo-light.svg
`,
			want: "figures/logo-light.svg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.doc))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Title != "Risk" || cfg.Author != "Robert" {
				t.Errorf("got title %q author %q", cfg.Title, cfg.Author)
			}
			logo, err := cfg.LogoPath()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logo != tt.want {
				t.Errorf("got logo %q, want %q", logo, tt.want)
			}
		})
	}
}

func TestParseConfigWithoutLogo(t *testing.T) {
	cfg, err := ParseConfig([]byte("title: Risk\nsphinx:\n  config:\n    html_static_path: [figures]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = cfg.LogoPath()
	var parseErr ErrParse
	if !errors.As(err, &parseErr) || parseErr.Document != ConfigDocument {
		t.Errorf("expected config ErrParse, got %v", err)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	for _, doc := range []string{"", "author: nobody\n", "title: [a, b]\n", "title:\n", "title: Risk\nauthor: {name: Robert}\n", "title: Risk\nlogo: [a.png]\n"} {
		if _, err := ParseConfig([]byte(doc)); err == nil {
			t.Errorf("ParseConfig(%q) should fail", doc)
		}
	}
}

func TestParseConfigFieldsAsWritten(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		title  string
		author string
	}{
		{"empty author", "title: Risk\nauthor:\nlogo: logo.png\n", "Risk", ""},
		{"list of authors", "title: Risk\nauthor: [Robert, Tom]\nlogo: logo.png\n", "Risk", "Robert, Tom"},
		{"numeric title", "title: 2024\nauthor: Robert\nlogo: logo.png\n", "2024", "Robert"},
		{"non string keys elsewhere", "title: Risk\nlogo: logo.png\nlatex:\n  1: x\n", "Risk", ""},
		{"infinite values elsewhere", "title: Risk\nlogo: logo.png\nexecute:\n  timeout: .inf\n", "Risk", ""},
		{"empty sphinx section", "title: Risk\nlogo: logo.png\nsphinx:\n", "Risk", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.doc))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Title != tt.title || string(cfg.Author) != tt.author {
				t.Errorf("got title %q author %q, want %q %q", cfg.Title, cfg.Author, tt.title, tt.author)
			}
			if logo, err := cfg.LogoPath(); err != nil || logo != "logo.png" {
				t.Errorf("got logo %q, %v", logo, err)
			}
		})
	}
}

func TestParseTocIgnoresUnreadKeys(t *testing.T) {
	doc := `
format: jb-book
root: intro
defaults:
  numbered: .inf
options:
  1: x
chapters:
  - file: a.md
    numbered: .inf
`
	parsed, err := ParseToc([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Chapters) != 1 || parsed.Chapters[0].Kind() != KindFile {
		t.Errorf("unexpected chapters %+v", parsed.Chapters)
	}
}
