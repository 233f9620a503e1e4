// Package selection keeps the chapters a user picked from harvested books and
// renders the instructions to include them in another book.
package selection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bcap/teachbook-harvester/book"
)

var ErrNotSelectable = errors.New("entry has no permalink and cannot be included in another book")

// Item is one selected entry, with the titles leading to it in its book.
type Item struct {
	Book    *book.Book
	Entry   *book.TocEntry
	Parents string
}

// Selection is an ordered set of entries, safe for concurrent use. Entries
// are compared by identity.
type Selection struct {
	mu    sync.Mutex
	items []Item
}

func New() *Selection {
	return &Selection{}
}

// Toggle selects entry when it is not selected yet and unselects it
// otherwise. It reports whether the entry ends up selected.
func (s *Selection) Toggle(b *book.Book, entry *book.TocEntry, parents string) (bool, error) {
	if !entry.Selectable() {
		return false, fmt.Errorf("%q: %w", entry.Title, ErrNotSelectable)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.index(b, entry); idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		return false, nil
	}
	s.items = append(s.items, Item{Book: b, Entry: entry, Parents: parents})
	return true, nil
}

func (s *Selection) Checked(b *book.Book, entry *book.TocEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(b, entry) >= 0
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a copy of the selection in selection order.
func (s *Selection) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item{}, s.items...)
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Selection) index(b *book.Book, entry *book.TocEntry) int {
	for idx, item := range s.items {
		if item.Book == b && item.Entry == entry {
			return idx
		}
	}
	return -1
}

// SelectPages selects, in the given order, the entries whose rendered page is
// one of htmlURLs.
func (s *Selection) SelectPages(books []*book.Book, htmlURLs ...string) error {
	for _, htmlURL := range htmlURLs {
		found := false
		for _, b := range books {
			located, ok := book.Find(b.Toc, htmlURL)
			if !ok {
				continue
			}
			found = true
			if s.Checked(b, located.Entry) {
				break
			}
			if _, err := s.Toggle(b, located.Entry, located.Parents); err != nil {
				return err
			}
			break
		}
		if !found {
			return fmt.Errorf("no harvested entry has page %s", htmlURL)
		}
	}
	return nil
}
