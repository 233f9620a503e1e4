// Package nav extracts the navigation menu of a rendered teach book page.
package nav

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const containerName = "bd-docs-nav"

// Link is one anchor of the rendered navigation. Path is the href as written
// in the page, usually a percent-encoded, .html suffixed relative path.
type Link struct {
	Path  string
	Title string
}

// Index is the ordered list of navigation links of a page. Duplicates are
// kept, lookups return the first match.
type Index []Link

// Lookup returns the first link whose path is exactly path.
func (idx Index) Lookup(path string) (Link, bool) {
	for _, link := range idx {
		if link.Path == path {
			return link, true
		}
	}
	return Link{}, false
}

type ErrNavNotFound struct {
	URL string
}

func (e ErrNavNotFound) Error() string {
	return fmt.Sprintf("no %s navigation element found in %s", containerName, e.URL)
}

// Extract parses an HTML page and returns the links of its navigation
// container, found by id first and by class otherwise. url is only used for
// error reporting.
func Extract(url string, page io.Reader) (Index, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html of %s: %w", url, err)
	}
	return ExtractDocument(url, doc)
}

func ExtractDocument(url string, doc *goquery.Document) (Index, error) {
	container := doc.Find("#" + containerName).First()
	if container.Length() == 0 {
		container = doc.Find("." + containerName).First()
	}
	if container.Length() == 0 {
		return nil, ErrNavNotFound{URL: url}
	}

	index := Index{}
	container.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		href, has := anchor.Attr("href")
		if !has || href == "" {
			return
		}
		title := cleanText(anchor.Text())
		if title == "" {
			return
		}
		index = append(index, Link{Path: href, Title: title})
	})
	return index, nil
}

// cleanText trims surrounding whitespace, non-breaking spaces included. The
// title is otherwise kept as rendered.
func cleanText(text string) string {
	return strings.TrimSpace(text)
}
