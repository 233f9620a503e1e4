// Package search indexes harvested chapters so they can be found across
// books by title.
package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/bcap/teachbook-harvester/book"
	"github.com/bcap/teachbook-harvester/log"
)

const DefaultLimit = 10

// document is what gets indexed for every entry with a page.
type document struct {
	Book        string `json:"book"`
	Title       string `json:"title"`
	Parents     string `json:"parents"`
	HTMLURL     string `json:"html_url"`
	ExternalURL string `json:"external_url"`
}

type Hit struct {
	Book        string
	Title       string
	Parents     string
	HTMLURL     string
	ExternalURL string
	Score       float64
}

type Index struct {
	index bleve.Index
}

// New builds an in memory index over the table of contents of books.
func New(books []*book.Book) (*Index, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	batch := index.NewBatch()
	for _, b := range books {
		for idx, located := range book.Collect(b.Toc) {
			entry := located.Entry
			if entry.HTMLURL == nil {
				continue
			}
			doc := document{
				Book:    b.Title,
				Title:   entry.Title,
				Parents: located.Parents,
				HTMLURL: *entry.HTMLURL,
			}
			if entry.ExternalURL != nil {
				doc.ExternalURL = *entry.ExternalURL
			}
			id := fmt.Sprintf("%s#%d", b.HTMLURL, idx)
			if err := batch.Index(id, doc); err != nil {
				index.Close()
				return nil, fmt.Errorf("failed to add %s to batch: %w", id, err)
			}
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index batch: %w", err)
	}

	count, _ := index.DocCount()
	log.Debugf("indexed %d entries of %d books", count, len(books))
	return &Index{index: index}, nil
}

// Search returns at most limit entries matching query, best first.
func (i *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	request := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	request.Size = limit
	request.Fields = []string{"*"}

	result, err := i.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, match := range result.Hits {
		hit := Hit{Score: match.Score}
		if v, ok := match.Fields["book"].(string); ok {
			hit.Book = v
		}
		if v, ok := match.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := match.Fields["parents"].(string); ok {
			hit.Parents = v
		}
		if v, ok := match.Fields["html_url"].(string); ok {
			hit.HTMLURL = v
		}
		if v, ok := match.Fields["external_url"].(string); ok {
			hit.ExternalURL = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (i *Index) Close() error {
	return i.index.Close()
}
