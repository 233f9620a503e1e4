package book

import "fmt"

// Query identifies one published book and the source it was built from.
type Query struct {
	HTMLURL string `json:"html_url" yaml:"html_url" mapstructure:"html_url"`
	CodeURL string `json:"code_url" yaml:"code_url" mapstructure:"code_url"`
	Release string `json:"release" yaml:"release" mapstructure:"release"`
	TocPath string `json:"toc_path" yaml:"toc_path" mapstructure:"toc_path"`
}

func (q Query) String() string {
	return fmt.Sprintf("%s (code %s @ %s, toc %s)", q.HTMLURL, q.CodeURL, q.Release, q.TocPath)
}

// Book is a harvested book: the query it came from, metadata taken from the
// book config and the reconciled table of contents.
type Book struct {
	Query `yaml:",inline"`

	Title  string `json:"title" yaml:"title"`
	Logo   string `json:"logo" yaml:"logo"`
	Author string `json:"author" yaml:"author"`

	Toc *TocEntry `json:"toc" yaml:"toc"`
}

// TocEntry is a node of a reconciled table of contents. HTMLURL is nil for
// caption-only groups, ExternalURL is nil for entries that are plain links.
type TocEntry struct {
	Title       string      `json:"title" yaml:"title"`
	HTMLURL     *string     `json:"html_url" yaml:"html_url"`
	ExternalURL *string     `json:"external_url" yaml:"external_url"`
	Children    []*TocEntry `json:"children" yaml:"children"`
}

func NewEntry(title string, htmlURL *string, externalURL *string) *TocEntry {
	return &TocEntry{
		Title:       title,
		HTMLURL:     htmlURL,
		ExternalURL: externalURL,
		Children:    make([]*TocEntry, 0),
	}
}

// Caption returns a grouping entry without links.
func Caption(title string) *TocEntry {
	return NewEntry(title, nil, nil)
}

func Link(url string) *string {
	return &url
}

func (e *TocEntry) Append(children ...*TocEntry) {
	e.Children = append(e.Children, children...)
}

func (e *TocEntry) String() string {
	return e.Title
}

// Selectable reports whether the entry can be included in another book.
func (e *TocEntry) Selectable() bool {
	return e.ExternalURL != nil && *e.ExternalURL != ""
}
