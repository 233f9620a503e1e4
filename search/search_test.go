package search

import (
	"testing"

	"github.com/bcap/teachbook-harvester/book"
)

func testBooks() []*book.Book {
	risk := book.NewEntry("Risk and Reliability", book.Link("https://example.org/risk/intro.html"), nil)
	part := book.Caption("Contents")
	design := book.NewEntry("Probabilistic Design", book.Link("https://example.org/risk/design.html"), book.Link("https://gitlab.example.org/g/risk/-/blob/v1/book/design.md"))
	design.Append(book.NewEntry("One Random Variable", book.Link("https://example.org/risk/one.html"), book.Link("https://gitlab.example.org/g/risk/-/blob/v1/book/one.md")))
	part.Append(design)
	risk.Append(part)

	manual := book.NewEntry("Manual", book.Link("https://example.org/manual/intro.html"), nil)
	manual.Append(book.NewEntry("Writing exercises", book.Link("https://example.org/manual/exercises.html"), book.Link("https://github.com/org/manual/blob/v1/book/exercises.md")))

	return []*book.Book{
		{Query: book.Query{HTMLURL: "https://example.org/risk/intro.html"}, Title: "Risk and Reliability", Toc: risk},
		{Query: book.Query{HTMLURL: "https://example.org/manual/intro.html"}, Title: "Manual", Toc: manual},
	}
}

func TestSearch(t *testing.T) {
	index, err := New(testBooks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer index.Close()

	hits, err := index.Search("random", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1: %+v", len(hits), hits)
	}
	hit := hits[0]
	if hit.Title != "One Random Variable" || hit.Book != "Risk and Reliability" {
		t.Errorf("unexpected hit %+v", hit)
	}
	if hit.Parents != "Contents / Probabilistic Design / One Random Variable" {
		t.Errorf("got parents %q", hit.Parents)
	}
	if hit.ExternalURL != "https://gitlab.example.org/g/risk/-/blob/v1/book/one.md" {
		t.Errorf("got external url %q", hit.ExternalURL)
	}
}

func TestSearchLimitAndMisses(t *testing.T) {
	index, err := New(testBooks())
	if err != nil {
		t.Fatal(err)
	}
	defer index.Close()

	hits, err := index.Search("exercises design", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("limit not applied, got %d hits", len(hits))
	}

	hits, err = index.Search("nonexistentword", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %+v", hits)
	}
}

func TestCaptionsAreNotIndexed(t *testing.T) {
	index, err := New(testBooks())
	if err != nil {
		t.Fatal(err)
	}
	defer index.Close()
	count, _ := index.index.DocCount()
	if count != 3 {
		t.Errorf("got %d documents, want 3", count)
	}
}
