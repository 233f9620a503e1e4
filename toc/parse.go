package toc

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const (
	TocDocument    = "_toc.yml"
	ConfigDocument = "_config.yml"
)

var errNoLogo = errors.New("no logo: neither logo nor sphinx.config.html_theme_options.logo.image_light with html_static_path is set")

//go:embed schema/*.json
var schemaFS embed.FS

// ErrParse is returned when a document is not valid YAML or does not have
// the expected shape.
type ErrParse struct {
	Document string
	Err      error
}

func (e ErrParse) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.Document, e.Err)
}

func (e ErrParse) Unwrap() error {
	return e.Err
}

var (
	tocSchema    = sync.OnceValues(func() (*jsonschema.Schema, error) { return compileSchema("schema/toc.json") })
	configSchema = sync.OnceValues(func() (*jsonschema.Schema, error) { return compileSchema("schema/config.json") })
)

func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	return compiler.Compile(name)
}

// shape selects the part of a document that gets validated. Mapping keys
// outside of fields are never read by the harvester and are left out, a nil
// fields map keeps every key.
type shape struct {
	fields map[string]*shape
	items  *shape
}

var configShape = &shape{fields: map[string]*shape{
	"title":  {},
	"author": {},
	"logo":   {},
	"sphinx": {fields: map[string]*shape{
		"config": {fields: map[string]*shape{
			"html_static_path": {},
			"html_theme_options": {fields: map[string]*shape{
				"logo": {fields: map[string]*shape{"image_light": {}}},
			}},
		}},
	}},
}}

var tocShape = func() *shape {
	entry := &shape{fields: map[string]*shape{"file": {}, "url": {}, "title": {}}}
	entry.fields["sections"] = &shape{items: entry}
	part := &shape{fields: map[string]*shape{"caption": {}, "chapters": {items: entry}}}
	return &shape{fields: map[string]*shape{
		"format":   {},
		"root":     {},
		"parts":    {items: part},
		"chapters": {items: entry},
	}}
}()

// project turns the selected part of node into plain values for the
// validator. Scalars are kept as written, as strings, so a numeric title is
// a title.
func project(node *yaml.Node, s *shape) any {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return project(node.Alias, s)
	}
	switch node.Kind {
	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			field := &shape{}
			if s.fields != nil {
				var has bool
				if field, has = s.fields[key]; !has {
					continue
				}
			}
			m[key] = project(node.Content[i+1], field)
		}
		return m
	case yaml.SequenceNode:
		items := s.items
		if items == nil {
			items = &shape{}
		}
		list := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			list = append(list, project(child, items))
		}
		return list
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil
		}
		return node.Value
	default:
		return nil
	}
}

// validate checks the part of a YAML document selected by s against schema.
func validate(data []byte, schema func() (*jsonschema.Schema, error), s *shape) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return errors.New("empty document")
	}
	instance := project(doc.Content[0], s)
	if instance == nil {
		return errors.New("empty document")
	}
	compiled, err := schema()
	if err != nil {
		return err
	}
	return compiled.Validate(instance)
}

func ParseToc(data []byte) (*Toc, error) {
	if err := validate(data, tocSchema, tocShape); err != nil {
		return nil, ErrParse{Document: TocDocument, Err: err}
	}
	var t Toc
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, ErrParse{Document: TocDocument, Err: err}
	}
	return &t, nil
}

func ParseConfig(data []byte) (*Config, error) {
	if err := validate(data, configSchema, configShape); err != nil {
		return nil, ErrParse{Document: ConfigDocument, Err: err}
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, ErrParse{Document: ConfigDocument, Err: err}
	}
	return &c, nil
}
