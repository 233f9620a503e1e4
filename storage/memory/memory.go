package memory

import (
	"context"
	"sync"

	"github.com/bcap/teachbook-harvester/book"
	"github.com/bcap/teachbook-harvester/storage"
)

type Storage struct {
	books      map[string]*book.Book
	order      []string
	booksMutex sync.RWMutex

	state      map[string]storage.State
	stateMutex sync.RWMutex
}

func (s *Storage) Initialize(context.Context) error {
	s.books = make(map[string]*book.Book)
	s.order = nil
	s.state = make(map[string]storage.State)
	return nil
}

func (s *Storage) Shutdown(ctx context.Context) error {
	s.books = nil
	s.order = nil
	s.state = nil
	return nil
}

func (s *Storage) GetBookState(ctx context.Context, url string) (storage.State, error) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	return s.state[url], nil
}

func (s *Storage) SetBookState(ctx context.Context, url string, previous storage.State, new storage.State) (bool, error) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	// CAS check
	if s.state[url] != previous {
		return false, nil
	}

	// no-op case
	if previous == new {
		return true, nil
	}

	if new == storage.NotHarvested {
		delete(s.state, url)
	} else {
		s.state[url] = new
	}

	return true, nil
}

func (s *Storage) GetBook(ctx context.Context, url string) (*book.Book, error) {
	s.booksMutex.RLock()
	defer s.booksMutex.RUnlock()

	b, has := s.books[url]
	if !has {
		return nil, storage.ErrBookNotFound{URL: url}
	}
	return b, nil
}

func (s *Storage) SetBook(ctx context.Context, url string, book *book.Book) error {
	s.booksMutex.Lock()
	defer s.booksMutex.Unlock()

	if _, has := s.books[url]; !has {
		s.order = append(s.order, url)
	}
	s.books[url] = book
	return nil
}

func (s *Storage) ListBooks(ctx context.Context) ([]*book.Book, error) {
	s.booksMutex.RLock()
	defer s.booksMutex.RUnlock()

	books := make([]*book.Book, 0, len(s.order))
	for _, url := range s.order {
		books = append(books, s.books[url])
	}
	return books, nil
}

// Making sure Storage implements Storage
var _ storage.Storage = &Storage{}
