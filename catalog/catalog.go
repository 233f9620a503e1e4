// Package catalog reads and writes lists of book queries: the books.yml file
// fed to batch harvests and the compact form carried in share links.
package catalog

import (
	"encoding/json"
	"fmt"
	urllib "net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bcap/teachbook-harvester/book"
)

const (
	DefaultPath  = "books.yml"
	DefaultParam = "b"
)

type ErrInvalidQuery struct {
	Index int
	Field string
}

func (e ErrInvalidQuery) Error() string {
	return fmt.Sprintf("catalog entry %d has no %s", e.Index, e.Field)
}

// Load reads a YAML (or JSON) list of queries from path.
func Load(path string) ([]book.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	queries, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return queries, nil
}

// Encode returns the compact JSON form of queries.
func Encode(queries []book.Query) (string, error) {
	if queries == nil {
		queries = []book.Query{}
	}
	data, err := json.Marshal(queries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a list of queries. Any YAML is accepted, which includes the
// output of Encode.
func Decode(data string) ([]book.Query, error) {
	queries := []book.Query{}
	if err := yaml.Unmarshal([]byte(data), &queries); err != nil {
		return nil, err
	}
	for idx, query := range queries {
		if err := validate(idx, query); err != nil {
			return nil, err
		}
	}
	return queries, nil
}

func validate(idx int, query book.Query) error {
	fields := []struct {
		name  string
		value string
	}{
		{"html_url", query.HTMLURL},
		{"code_url", query.CodeURL},
		{"release", query.Release},
		{"toc_path", query.TocPath},
	}
	for _, field := range fields {
		if field.value == "" {
			return ErrInvalidQuery{Index: idx, Field: field.name}
		}
	}
	return nil
}

// FromURL decodes the queries carried by the param query string parameter of
// rawURL. A URL without the parameter carries no queries.
func FromURL(rawURL string, param string) ([]book.Query, error) {
	parsed, err := urllib.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	values := parsed.Query()
	if !values.Has(param) {
		return []book.Query{}, nil
	}
	return Decode(values.Get(param))
}

// ToURL returns baseURL with queries encoded in its param parameter.
func ToURL(baseURL string, param string, queries []book.Query) (string, error) {
	parsed, err := urllib.Parse(baseURL)
	if err != nil {
		return "", err
	}
	encoded, err := Encode(queries)
	if err != nil {
		return "", err
	}
	values := parsed.Query()
	values.Set(param, encoded)
	parsed.RawQuery = values.Encode()
	return parsed.String(), nil
}
