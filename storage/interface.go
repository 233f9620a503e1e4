package storage

import (
	"context"
	"fmt"

	"github.com/bcap/teachbook-harvester/book"
)

type State int32

const (
	NotHarvested   State = 0
	BeingHarvested State = 1
	Harvested      State = 2
	Failed         State = 3
)

func (s State) String() string {
	switch s {
	case NotHarvested:
		return "not-harvested"
	case BeingHarvested:
		return "being-harvested"
	case Harvested:
		return "harvested"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type url = string

// Storage keeps harvested books keyed by their published html_url.
type Storage interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	// State manipulation is a CAS operation (Compare And Swap)
	GetBookState(ctx context.Context, url url) (State, error)
	SetBookState(ctx context.Context, url url, previous State, new State) (bool, error)

	GetBook(ctx context.Context, url url) (*book.Book, error)
	SetBook(ctx context.Context, url url, book *book.Book) error
	// ListBooks returns every stored book in the order they were first set.
	ListBooks(ctx context.Context) ([]*book.Book, error)
}

type ErrBookNotFound struct {
	URL string
}

func (e ErrBookNotFound) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("book not found: %s", e.URL)
	}
	return "book not found"
}
