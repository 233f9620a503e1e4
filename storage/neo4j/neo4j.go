package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/bcap/teachbook-harvester/book"
	"github.com/bcap/teachbook-harvester/storage"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

const DefaultURL = "neo4j://localhost:7687"

var initStatements = []string{
	"CREATE CONSTRAINT IF NOT EXISTS FOR (b:Book) REQUIRE (b.url) IS UNIQUE",
	"CREATE INDEX IF NOT EXISTS FOR (b:Book) ON (b.title)",
	"CREATE INDEX IF NOT EXISTS FOR (e:Entry) ON (e.book)",
	"CREATE INDEX IF NOT EXISTS FOR (e:Entry) ON (e.external_url)",
}

// Storage keeps books as Book nodes. Their table of contents is stored twice:
// serialized on the Book node, which is what GetBook reads back, and as a
// tree of Entry nodes linked by TOC and CHILD relationships for querying.
type Storage struct {
	URL         string
	User        string
	Password    string
	BearerToken string

	driver neo4j.DriverWithContext
}

func New(url string) *Storage {
	return &Storage{
		URL: url,
	}
}

func (s *Storage) Initialize(ctx context.Context) error {
	var auth neo4j.AuthToken
	if s.User != "" {
		auth = neo4j.BasicAuth(s.User, s.Password, "")
	} else if s.BearerToken != "" {
		auth = neo4j.BearerAuth(s.BearerToken)
	} else {
		auth = neo4j.NoAuth()
	}
	driver, err := neo4j.NewDriverWithContext(s.URL, auth)
	if err != nil {
		return fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	s.driver = driver

	return s.runInitStatements(ctx)
}

func (s *Storage) Shutdown(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Storage) GetBookState(ctx context.Context, url string) (storage.State, error) {
	work := func(tx neo4j.ManagedTransaction) (storage.State, error) {
		query := "MATCH (b:Book {url: $url}) RETURN b.state"
		records, err := tx.Run(ctx, query, map[string]any{"url": url})
		if err != nil {
			return storage.NotHarvested, NewErrQuery("get book state", query, err)
		}
		if records.Next(ctx) {
			value, ok := records.Record().Values[0].(int64)
			if !ok {
				return storage.NotHarvested, nil
			}
			return storage.State(value), nil
		}
		return storage.NotHarvested, nil
	}
	result, err := s.execute(ctx, false, func(tx neo4j.ManagedTransaction) (any, error) { return work(tx) }, storage.NotHarvested)
	return result.(storage.State), err
}

func (s *Storage) SetBookState(ctx context.Context, url string, previous storage.State, new storage.State) (bool, error) {
	work := func(tx neo4j.ManagedTransaction) (bool, error) {
		query := "MATCH (b:Book {url: $url}) RETURN id(b)"
		records, err := tx.Run(ctx, query, map[string]any{"url": url})
		if err != nil {
			return false, NewErrQuery("set book state", query, err)
		}
		if !records.Peek(ctx) {
			if previous != storage.NotHarvested {
				return false, nil
			}
			query = "CREATE (b:Book {url: $url, state: $state})"
			if _, err := tx.Run(ctx, query, map[string]any{"url": url, "state": int64(new)}); err != nil {
				return false, NewErrQuery("set book state", query, err)
			}
			return true, nil
		}

		query = "" +
			"MATCH (b:Book {url: $url}) " +
			"WHERE coalesce(b.state, 0) = $oldState " +
			"SET b.state = $newState " +
			"RETURN b "
		records, err = tx.Run(
			ctx, query,
			map[string]any{"url": url, "oldState": int64(previous), "newState": int64(new)},
		)
		if err != nil {
			return false, NewErrQuery("set book state", query, err)
		}

		return records.Peek(ctx), nil
	}
	result, err := s.execute(ctx, true, func(tx neo4j.ManagedTransaction) (any, error) { return work(tx) }, false)
	return result.(bool), err
}

func (s *Storage) GetBook(ctx context.Context, url string) (*book.Book, error) {
	work := func(tx neo4j.ManagedTransaction) (*book.Book, error) {
		query := "MATCH (b:Book {url: $url}) WHERE b.toc IS NOT NULL RETURN b"
		records, err := tx.Run(ctx, query, map[string]any{"url": url})
		if err != nil {
			return nil, NewErrQuery("get book", query, err)
		}
		if records.Next(ctx) {
			node := records.Record().Values[0].(dbtype.Node)
			return fromNode(&node)
		}
		return nil, storage.ErrBookNotFound{URL: url}
	}
	result, err := s.execute(ctx, false, func(tx neo4j.ManagedTransaction) (any, error) { return work(tx) }, (*book.Book)(nil))
	return result.(*book.Book), err
}

func (s *Storage) ListBooks(ctx context.Context) ([]*book.Book, error) {
	work := func(tx neo4j.ManagedTransaction) ([]*book.Book, error) {
		query := "MATCH (b:Book) WHERE b.toc IS NOT NULL RETURN b ORDER BY b.created, b.url"
		records, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, NewErrQuery("list books", query, err)
		}
		books := []*book.Book{}
		for records.Next(ctx) {
			node := records.Record().Values[0].(dbtype.Node)
			b, err := fromNode(&node)
			if err != nil {
				return nil, err
			}
			books = append(books, b)
		}
		return books, records.Err()
	}
	result, err := s.execute(ctx, false, func(tx neo4j.ManagedTransaction) (any, error) { return work(tx) }, []*book.Book(nil))
	return result.([]*book.Book), err
}

func (s *Storage) SetBook(ctx context.Context, url string, b *book.Book) error {
	attrs, err := toAttributes(b)
	if err != nil {
		return err
	}
	attrs["url"] = url
	work := func(tx neo4j.ManagedTransaction) (struct{}, error) {
		query := fmt.Sprintf(
			"MERGE (b:Book {url: $url}) SET %s, b.created = coalesce(b.created, timestamp()) RETURN id(b)",
			toSetString("b", attrs),
		)
		if _, err := tx.Run(ctx, query, attrs); err != nil {
			return struct{}{}, NewErrQuery("set book", query, err)
		}

		query = "MATCH (e:Entry {book: $url}) DETACH DELETE e"
		if _, err := tx.Run(ctx, query, map[string]any{"url": url}); err != nil {
			return struct{}{}, NewErrQuery("set book", query, err)
		}
		return struct{}{}, s.writeEntries(ctx, tx, url, b.Toc)
	}
	_, err = s.execute(ctx, true, func(tx neo4j.ManagedTransaction) (any, error) { return work(tx) }, struct{}{})
	return err
}

// writeEntries creates one Entry node per table of contents entry. Entries
// are keyed by their index path below the root, e.g. "0.2.1".
func (s *Storage) writeEntries(ctx context.Context, tx neo4j.ManagedTransaction, url string, root *book.TocEntry) error {
	if root == nil {
		return nil
	}
	create := "" +
		"CREATE (e:Entry {book: $book, key: $key, title: $title, html_url: $html_url, " +
		"external_url: $external_url, parents: $parents, depth: $depth})"
	linkTop := "" +
		"MATCH (b:Book {url: $book}), (e:Entry {book: $book, key: $key}) " +
		"MERGE (b)-[:TOC {idx: $idx}]->(e)"
	linkChild := "" +
		"MATCH (p:Entry {book: $book, key: $parent}), (e:Entry {book: $book, key: $key}) " +
		"MERGE (p)-[:CHILD {idx: $idx}]->(e)"

	var recurse func(parent *book.TocEntry, parentKey string, parents []string) error
	recurse = func(parent *book.TocEntry, parentKey string, parents []string) error {
		for idx, entry := range parent.Children {
			key := fmt.Sprint(idx)
			if parentKey != "" {
				key = parentKey + "." + key
			}
			path := append(append([]string{}, parents...), entry.Title)
			params := map[string]any{
				"book":         url,
				"key":          key,
				"title":        entry.Title,
				"html_url":     deref(entry.HTMLURL),
				"external_url": deref(entry.ExternalURL),
				"parents":      strings.Join(path, " / "),
				"depth":        int64(len(path)),
				"idx":          int64(idx),
				"parent":       parentKey,
			}
			if _, err := tx.Run(ctx, create, params); err != nil {
				return NewErrQuery("write toc entries", create, err)
			}
			link := linkChild
			if parentKey == "" {
				link = linkTop
			}
			if _, err := tx.Run(ctx, link, params); err != nil {
				return NewErrQuery("write toc entries", link, err)
			}
			if err := recurse(entry, key, path); err != nil {
				return err
			}
		}
		return nil
	}
	return recurse(root, "", nil)
}

func (s *Storage) runInitStatements(ctx context.Context) error {
	_, err := s.execute(ctx, true, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range initStatements {
			if _, err := tx.Run(ctx, stmt, nil); err != nil {
				return nil, NewErrQuery("initialize", stmt, err)
			}
		}
		return nil, nil
	}, nil)
	return err
}

func (s *Storage) execute(
	ctx context.Context,
	write bool,
	work neo4j.ManagedTransactionWork,
	zeroV any,
	configurers ...func(*neo4j.TransactionConfig),
) (any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)
	function := session.ExecuteRead
	if write {
		function = session.ExecuteWrite
	}
	result, err := function(ctx, work, configurers...)
	if err != nil {
		return zeroV, err
	}
	return result, nil
}

func toSetString(alias string, params map[string]any) string {
	b := strings.Builder{}
	i := 0
	for key := range params {
		b.WriteString(alias)
		b.WriteString(".")
		b.WriteString(key)
		b.WriteString(" = $")
		b.WriteString(key)
		if i != len(params)-1 {
			b.WriteString(", ")
		}
		i++
	}
	return b.String()
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Making sure Storage implements Storage
var _ storage.Storage = &Storage{}
