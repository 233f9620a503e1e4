package harvest

import (
	"errors"
	"path"
	"strings"

	"github.com/bcap/teachbook-harvester/book"
	myhttp "github.com/bcap/teachbook-harvester/http"
	"github.com/bcap/teachbook-harvester/log"
	"github.com/bcap/teachbook-harvester/nav"
	"github.com/bcap/teachbook-harvester/provider"
	"github.com/bcap/teachbook-harvester/toc"
)

// Merge reconciles a declared table of contents with the navigation of the
// rendered site. Titles and page links come from the navigation, permalinks
// from the declared file paths.
//
// Sections are kept down to maxSectionDepth levels below their chapter. A
// first level section whose title cannot be found is dropped and its own
// sections are attached to the chapter instead. Every other failure aborts
// the merge.
func Merge(query book.Query, declared *toc.Toc, index nav.Index, maxSectionDepth int) (*book.TocEntry, error) {
	repo, err := provider.Detect(query.CodeURL)
	if err != nil {
		return nil, err
	}
	m := merger{
		query:           query,
		repo:            repo,
		index:           index,
		base:            siteBase(query.HTMLURL, declared.Root),
		maxSectionDepth: maxSectionDepth,
	}

	root := book.NewEntry(
		"",
		book.Link(query.HTMLURL),
		book.Link(repo.Permalink(query.Release, query.TocPath, declared.Root)),
	)

	if declared.HasParts() {
		for _, part := range declared.Parts {
			caption := book.Caption(part.Caption)
			root.Append(caption)
			if err := m.chapters(caption, part.Chapters); err != nil {
				return nil, err
			}
		}
		return root, nil
	}

	if err := m.chapters(root, declared.Chapters); err != nil {
		return nil, err
	}
	return root, nil
}

type merger struct {
	query           book.Query
	repo            provider.Repository
	index           nav.Index
	base            string
	maxSectionDepth int
}

func (m *merger) chapters(parent *book.TocEntry, chapters []toc.Entry) error {
	for _, chapter := range chapters {
		entry, err := m.entry(chapter, 0)
		if err != nil {
			return err
		}
		parent.Append(entry)
	}
	return nil
}

// entry converts e, declared at the given depth below its chapter, and its
// sections.
func (m *merger) entry(e toc.Entry, depth int) (*book.TocEntry, error) {
	converted, err := m.content(e)
	if err != nil {
		return nil, err
	}
	if err := m.sections(converted, e.Sections, depth+1); err != nil {
		return nil, err
	}
	return converted, nil
}

func (m *merger) sections(parent *book.TocEntry, sections []toc.Entry, depth int) error {
	if len(sections) == 0 {
		return nil
	}
	if depth > m.maxSectionDepth {
		log.Debugf("dropping %d sections of %q nested deeper than %d levels", len(sections), parent.Title, m.maxSectionDepth)
		return nil
	}
	for _, section := range sections {
		if depth > 1 {
			entry, err := m.entry(section, depth)
			if err != nil {
				return err
			}
			parent.Append(entry)
			continue
		}

		result, err := m.section(section)
		if err != nil {
			return err
		}
		if result.absent != nil {
			log.Debugf("dropping section %s of %q: %s", section, parent.Title, result.absent)
			if err := m.sections(parent, section.Sections, depth+1); err != nil {
				return err
			}
			continue
		}
		parent.Append(result.entry)
	}
	return nil
}

// sectionResult is a first level section: either resolved to entry, or
// absent because its own title could not be found.
type sectionResult struct {
	entry  *book.TocEntry
	absent error
}

func (m *merger) section(section toc.Entry) (sectionResult, error) {
	entry, err := m.content(section)
	var notFound ErrTitleNotFound
	if errors.As(err, &notFound) {
		return sectionResult{absent: err}, nil
	}
	if err != nil {
		return sectionResult{}, err
	}
	if err := m.sections(entry, section.Sections, 2); err != nil {
		return sectionResult{}, err
	}
	return sectionResult{entry: entry}, nil
}

// content converts one declared entry, without its sections.
func (m *merger) content(e toc.Entry) (*book.TocEntry, error) {
	switch e.Kind() {
	case toc.KindFile:
		link, err := m.findTitle(e.File)
		if err != nil {
			return nil, err
		}
		htmlURL, err := myhttp.AbsoluteURL(m.base, link.Path)
		if err != nil {
			return nil, err
		}
		return book.NewEntry(
			link.Title,
			book.Link(htmlURL),
			book.Link(m.repo.Permalink(m.query.Release, m.query.TocPath, e.File)),
		), nil
	case toc.KindLink:
		return book.NewEntry(e.Title, book.Link(e.URL), nil), nil
	case toc.KindExternal:
		return nil, ErrUnsupportedExternalContent{Target: e.ExternalTarget()}
	default:
		return nil, ErrUnknownEntryKind{Entry: e.String()}
	}
}

func (m *merger) findTitle(file string) (nav.Link, error) {
	searchPath := navPath(file)
	link, found := m.index.Lookup(searchPath)
	if !found {
		return nav.Link{}, ErrTitleNotFound{File: file, Path: searchPath}
	}
	return link, nil
}

// siteBase strips the page of the root document from htmlURL, leaving the
// URL every navigation link is relative to.
func siteBase(htmlURL string, root string) string {
	rootPage := withSuffix(path.Base(root), ".html")
	base := strings.TrimSuffix(htmlURL, rootPage)
	if base == htmlURL && strings.HasSuffix(htmlURL, ".html") {
		base = htmlURL[:strings.LastIndex(htmlURL, "/")+1]
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
