package harvest

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/bcap/teachbook-harvester/book"
	"github.com/bcap/teachbook-harvester/log"
	"github.com/bcap/teachbook-harvester/nav"
	"github.com/bcap/teachbook-harvester/provider"
	"github.com/bcap/teachbook-harvester/storage"
	"github.com/bcap/teachbook-harvester/toc"
)

// placeholderTitle is the title books generated from the TeachBooks template
// keep until their authors change it.
const placeholderTitle = "Template"

// HarvestBook fetches the declared toc, the book config and the rendered
// navigation of query concurrently and reconciles them into a book. Any
// failure fails the whole book.
func (h *Harvester) HarvestBook(ctx context.Context, query book.Query) (*book.Book, error) {
	if _, err := provider.Detect(query.CodeURL); err != nil {
		return nil, err
	}

	var declared *toc.Toc
	var metadata Metadata
	var index nav.Index

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		declared, err = h.FetchDeclaredToc(groupCtx, query)
		return err
	})
	group.Go(func() error {
		var err error
		metadata, err = h.FetchConfig(groupCtx, query)
		return err
	})
	group.Go(func() error {
		var err error
		index, err = h.FetchRenderedNav(groupCtx, query.HTMLURL)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	root, err := Merge(query, declared, index, h.maxSectionDepth)
	if err != nil {
		return nil, err
	}

	if metadata.Title == placeholderTitle && query.CodeURL != "" {
		metadata.Title = path.Base(strings.TrimRight(query.CodeURL, "/"))
	}
	if root.Title == "" {
		root.Title = metadata.Title
	}

	return &book.Book{
		Query:  query,
		Title:  metadata.Title,
		Logo:   metadata.Logo,
		Author: metadata.Author,
		Toc:    root,
	}, nil
}

// Result is the outcome of a batch: the harvested books in catalog order and
// one ErrHarvest per book that failed.
type Result struct {
	Books    []*book.Book
	Failures []ErrHarvest
}

// HarvestAll harvests every query, isolating failures per book. Queries for a
// page that is already harvested or being harvested in the storage are
// skipped. Only storage errors abort the batch.
func (h *Harvester) HarvestAll(ctx context.Context, queries []book.Query) (Result, error) {
	queries = dedup(queries)
	log.Infof("Harvesting %d books, at most %d requests in parallel", len(queries), h.maxParallelism)

	books := make([]*book.Book, len(queries))
	failures := make([]*ErrHarvest, len(queries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(h.maxParallelism)
	for idx, query := range queries {
		idx, query := idx, query
		group.Go(func() error {
			b, err := h.harvestOne(groupCtx, query, idx, len(queries))
			if err != nil {
				var harvestErr ErrHarvest
				if errors.As(err, &harvestErr) {
					failures[idx] = &harvestErr
					return nil
				}
				return err
			}
			books[idx] = b
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Books: []*book.Book{}, Failures: []ErrHarvest{}}
	for idx := range queries {
		if failures[idx] != nil {
			result.Failures = append(result.Failures, *failures[idx])
		}
		if books[idx] == nil {
			continue
		}
		if err := h.Storage.SetBook(ctx, queries[idx].HTMLURL, books[idx]); err != nil {
			return Result{}, err
		}
		result.Books = append(result.Books, books[idx])
	}

	log.Infof(
		"Harvested %d books, %d failed, %d skipped",
		*h.harvested, *h.failed, len(queries)-len(result.Books)-len(result.Failures),
	)
	return result, nil
}

// harvestOne returns a nil book when the query is skipped, and an ErrHarvest
// when the book itself could not be harvested.
func (h *Harvester) harvestOne(ctx context.Context, query book.Query, idx int, total int) (*book.Book, error) {
	url := query.HTMLURL
	set, err := h.Storage.SetBookState(ctx, url, storage.NotHarvested, storage.BeingHarvested)
	if err != nil {
		return nil, err
	}
	if !set {
		log.Debugf("[%02d/%02d] book already harvested or being harvested, skipping (%s)", idx+1, total, url)
		return nil, nil
	}

	log.Infof("[%02d/%02d] Processing %s", idx+1, total, url)
	b, harvestErr := h.HarvestBook(ctx, query)
	if harvestErr != nil {
		atomic.AddInt32(h.failed, 1)
		log.Warnf("[%02d/%02d] skipping %s: %s", idx+1, total, url, harvestErr)
		if _, err := h.Storage.SetBookState(ctx, url, storage.BeingHarvested, storage.Failed); err != nil {
			return nil, err
		}
		return nil, ErrHarvest{Query: query, Err: harvestErr}
	}

	harvested := atomic.AddInt32(h.harvested, 1)
	if _, err := h.Storage.SetBookState(ctx, url, storage.BeingHarvested, storage.Harvested); err != nil {
		return nil, err
	}
	log.Infof("[%03d] harvested %q by %s with %d entries (%s)", harvested, b.Title, b.Author, len(book.Collect(b.Toc)), url)
	return b, nil
}

func dedup(queries []book.Query) []book.Query {
	seen := make(map[string]struct{}, len(queries))
	unique := make([]book.Query, 0, len(queries))
	for _, query := range queries {
		if _, has := seen[query.HTMLURL]; has {
			log.Debugf("ignoring duplicate catalog entry for %s", query.HTMLURL)
			continue
		}
		seen[query.HTMLURL] = struct{}{}
		unique = append(unique, query)
	}
	return unique
}
