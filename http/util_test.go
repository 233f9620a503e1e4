package http

import "testing"

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base string
		link string
		want string
	}{
		{"https://example.org/book/", "prob-design/overview.html", "https://example.org/book/prob-design/overview.html"},
		{"https://example.org/book", "credits.html", "https://example.org/book/credits.html"},
		{"https://example.org/book/", "#", "https://example.org/book/#"},
		{"https://example.org/book/", "ch%C3%A4pter.html", "https://example.org/book/ch%C3%A4pter.html"},
		{"https://example.org/book/", "https://other.org/page.html", "https://other.org/page.html"},
	}
	for _, tt := range tests {
		got, err := AbsoluteURL(tt.base, tt.link)
		if err != nil {
			t.Fatalf("AbsoluteURL(%q, %q): %v", tt.base, tt.link, err)
		}
		if got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.link, got, tt.want)
		}
	}

	if _, err := AbsoluteURL("https://example.org/", "%zz"); err == nil {
		t.Error("expected an error for an invalid link")
	}
}
