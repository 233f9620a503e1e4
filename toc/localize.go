package toc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bcap/teachbook-harvester/provider"
)

const DefaultExternalPath = "external"

// ExternalRef is an external chapter that has to be present locally, in Dir,
// for a localized TOC to build.
type ExternalRef struct {
	provider.Permalink
	Dir string
}

// CloneCommand is the git invocation that fetches the ref into its directory.
func (r ExternalRef) CloneCommand() []string {
	return []string{"git", "clone", "--single-branch", "-b", r.Revision, r.RepoURL + ".git", r.Dir}
}

// Localize rewrites a parsed _toc.yml document read from inputPath so that it
// can be written to outputPath: the root is re-expressed relative to the
// output, and every external entry becomes a file entry pointing into
// externalPath/<repo>-<revision>.
func Localize(doc *yaml.Node, inputPath string, outputPath string, externalPath string) ([]ExternalRef, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, ErrParse{Document: TocDocument, Err: errors.New("empty document")}
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrParse{Document: TocDocument, Err: errors.New("top level is not a mapping")}
	}

	rootValue := mappingValue(root, "root")
	if rootValue == nil {
		return nil, ErrParse{Document: TocDocument, Err: errors.New("missing root")}
	}
	rootIn := filepath.Join(filepath.Dir(inputPath), rootValue.Value)
	rootOut, err := filepath.Rel(filepath.Dir(outputPath), rootIn)
	if err != nil {
		return nil, fmt.Errorf("cannot express root %s relative to %s: %w", rootIn, outputPath, err)
	}
	rootValue.Value = filepath.ToSlash(rootOut)

	relExternal, err := filepath.Rel(filepath.Dir(rootOut), externalPath)
	if err != nil {
		return nil, fmt.Errorf("cannot express %s relative to root %s: %w", externalPath, rootOut, err)
	}

	refs := []ExternalRef{}
	var walk func(node *yaml.Node) error
	walk = func(node *yaml.Node) error {
		switch node.Kind {
		case yaml.MappingNode:
			if idx := mappingIndex(node, "external"); idx >= 0 {
				ref, err := localizeExternal(node, idx, relExternal, externalPath)
				if err != nil {
					return err
				}
				refs = append(refs, ref)
			}
			for i := 1; i < len(node.Content); i += 2 {
				if err := walk(node.Content[i]); err != nil {
					return err
				}
			}
		case yaml.SequenceNode:
			for _, child := range node.Content {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return refs, nil
}

func localizeExternal(node *yaml.Node, idx int, relExternal string, externalPath string) (ExternalRef, error) {
	target := node.Content[idx+1].Value
	link, err := provider.ParsePermalink(target)
	if err != nil {
		return ExternalRef{}, err
	}
	repoDir := link.RepoName + "-" + link.Revision
	file := filepath.ToSlash(filepath.Join(relExternal, repoDir, link.FilePath))

	node.Content[idx].Value = "file"
	node.Content[idx+1] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: file}

	return ExternalRef{
		Permalink: link,
		Dir:       filepath.ToSlash(filepath.Join(externalPath, repoDir)),
	}, nil
}

// LocalizeFile reads inputPath, localizes it and writes the result to outputPath.
func LocalizeFile(inputPath string, outputPath string, externalPath string) ([]ExternalRef, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrParse{Document: inputPath, Err: err}
	}
	refs, err := Localize(&doc, inputPath, outputPath, externalPath)
	if err != nil {
		return nil, err
	}

	buf := bytes.Buffer{}
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	return refs, nil
}

func mappingIndex(node *yaml.Node, key string) int {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if idx := mappingIndex(node, key); idx >= 0 {
		return node.Content[idx+1]
	}
	return nil
}
