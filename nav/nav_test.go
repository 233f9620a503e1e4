package nav

import (
	"errors"
	"strings"
	"testing"
)

const page = `<html><body>
<nav class="bd-links">
  <a href="elsewhere.html">Not in the menu</a>
</nav>
<nav id="bd-docs-nav" class="bd-docs-nav">
  <ul>
    <li><a href="#">Home</a></li>
    <li><a href="prob-design/overview.html">
          1. Probabilistic   design
        </a>
      <ul>
        <li><a href="prob-design/01-one-random-variable.html">One random variable</a></li>
        <li><a href="">No target</a></li>
        <li><a href="prob-design/empty.html">   </a></li>
        <li><a>No href</a></li>
      </ul>
    </li>
    <li><a href="ch%C3%A4pter.html">Chäpter&nbsp;two</a></li>
    <li><a href="padded.html">&nbsp;Padded&nbsp;</a></li>
    <li><a href="prob-design/overview.html">Duplicate</a></li>
  </ul>
</nav>
</body></html>`

func TestExtract(t *testing.T) {
	index, err := Extract("https://example.org/book/intro.html", strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Index{
		{Path: "#", Title: "Home"},
		{Path: "prob-design/overview.html", Title: "1. Probabilistic   design"},
		{Path: "prob-design/01-one-random-variable.html", Title: "One random variable"},
		{Path: "ch%C3%A4pter.html", Title: "Chäpter\u00a0two"},
		{Path: "padded.html", Title: "Padded"},
		{Path: "prob-design/overview.html", Title: "Duplicate"},
	}
	if len(index) != len(want) {
		t.Fatalf("got %d links, want %d: %+v", len(index), len(want), index)
	}
	for i := range want {
		if index[i] != want[i] {
			t.Errorf("link %d: got %+v, want %+v", i, index[i], want[i])
		}
	}

	link, found := index.Lookup("prob-design/overview.html")
	if !found || link.Title != "1. Probabilistic   design" {
		t.Errorf("lookup returned %+v, %v", link, found)
	}
	if _, found := index.Lookup("missing.html"); found {
		t.Error("lookup of a missing path should fail")
	}
}

func TestExtractClassFallback(t *testing.T) {
	html := `<div><div class="other bd-docs-nav"><a href="a.html">A</a></div>
<div class="bd-docs-nav"><a href="b.html">B</a></div></div>`
	index, err := Extract("u", strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(index) != 1 || index[0].Path != "a.html" {
		t.Errorf("expected only the first container's links, got %+v", index)
	}
}

func TestExtractNotFound(t *testing.T) {
	_, err := Extract("https://example.org/", strings.NewReader(`<html><body><a href="a.html">A</a></body></html>`))
	var notFound ErrNavNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNavNotFound, got %v", err)
	}
	if notFound.URL != "https://example.org/" {
		t.Errorf("got url %q", notFound.URL)
	}
}
