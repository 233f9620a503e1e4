package neo4j

import (
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/bcap/teachbook-harvester/book"
)

func fromNode(node *dbtype.Node) (*book.Book, error) {
	value := func(key string) string {
		if v, ok := node.Props[key].(string); ok {
			return v
		}
		return ""
	}
	b := &book.Book{
		Query: book.Query{
			HTMLURL: value("url"),
			CodeURL: value("code_url"),
			Release: value("release"),
			TocPath: value("toc_path"),
		},
		Title:  value("title"),
		Author: value("author"),
		Logo:   value("logo"),
	}
	if raw := value("toc"); raw != "" {
		b.Toc = &book.TocEntry{}
		if err := json.Unmarshal([]byte(raw), b.Toc); err != nil {
			return nil, fmt.Errorf("invalid toc stored for %s: %w", b.HTMLURL, err)
		}
	}
	return b, nil
}

func toAttributes(b *book.Book) (map[string]any, error) {
	toc, err := json.Marshal(b.Toc)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	result["title"] = b.Title
	result["author"] = b.Author
	result["logo"] = b.Logo
	result["code_url"] = b.CodeURL
	result["release"] = b.Release
	result["toc_path"] = b.TocPath
	result["toc"] = string(toc)
	return result, nil
}
