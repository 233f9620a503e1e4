// Package jsonfile stores harvested books in memory and writes them as one
// JSON array when shut down.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bcap/teachbook-harvester/book"
	"github.com/bcap/teachbook-harvester/log"
	"github.com/bcap/teachbook-harvester/storage"
	"github.com/bcap/teachbook-harvester/storage/memory"
)

const DefaultPath = "chapters.json"

type Storage struct {
	Path string
	// Resume loads the books of an existing file as already harvested, so
	// a batch run only harvests what is missing.
	Resume bool

	memory.Storage
}

func New(path string) *Storage {
	return &Storage{Path: path}
}

func (s *Storage) Initialize(ctx context.Context) error {
	if err := s.Storage.Initialize(ctx); err != nil {
		return err
	}
	if !s.Resume {
		return nil
	}

	books, err := Read(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, b := range books {
		if err := s.SetBook(ctx, b.HTMLURL, b); err != nil {
			return err
		}
		if _, err := s.SetBookState(ctx, b.HTMLURL, storage.NotHarvested, storage.Harvested); err != nil {
			return err
		}
	}
	log.Infof("resuming from %d books found in %s", len(books), s.Path)
	return nil
}

func (s *Storage) Shutdown(ctx context.Context) error {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return err
	}
	if err := Write(s.Path, books); err != nil {
		return err
	}
	log.Infof("wrote %d books to %s", len(books), s.Path)
	return s.Storage.Shutdown(ctx)
}

// Abort releases the storage without writing Path, leaving a previous file
// in place.
func (s *Storage) Abort(ctx context.Context) error {
	log.Warnf("not writing %s: harvest did not complete", s.Path)
	return s.Storage.Shutdown(ctx)
}

// Read loads a JSON array of books.
func Read(path string) ([]*book.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	books := []*book.Book{}
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("invalid books file %s: %w", path, err)
	}
	return books, nil
}

// Write replaces path with the indented JSON array of books.
func Write(path string, books []*book.Book) error {
	if books == nil {
		books = []*book.Book{}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Making sure Storage implements Storage
var _ storage.Storage = &Storage{}
