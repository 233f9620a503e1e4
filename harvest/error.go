package harvest

import (
	"fmt"

	"github.com/bcap/teachbook-harvester/book"
)

// ErrTitleNotFound is returned when a declared file has no matching link in
// the rendered navigation.
type ErrTitleNotFound struct {
	File string
	Path string
}

func (e ErrTitleNotFound) Error() string {
	return fmt.Sprintf("title not found for %q: no %q link in the rendered navigation", e.File, e.Path)
}

type ErrUnknownEntryKind struct {
	Entry string
}

func (e ErrUnknownEntryKind) Error() string {
	return fmt.Sprintf("unknown kind of toc entry: %s", e.Entry)
}

type ErrUnsupportedExternalContent struct {
	Target string
}

func (e ErrUnsupportedExternalContent) Error() string {
	return fmt.Sprintf("external content is not supported: %s", e.Target)
}

// ErrHarvest is the failure of one book of a batch.
type ErrHarvest struct {
	Query book.Query
	Err   error
}

func (e ErrHarvest) Error() string {
	return fmt.Sprintf(
		"failed to harvest %s (code %s, release %s, toc %s): %s",
		e.Query.HTMLURL, e.Query.CodeURL, e.Query.Release, e.Query.TocPath, e.Err,
	)
}

func (e ErrHarvest) Unwrap() error {
	return e.Err
}
