package harvest

import (
	"bytes"
	"context"

	"github.com/bcap/teachbook-harvester/book"
	"github.com/bcap/teachbook-harvester/log"
	"github.com/bcap/teachbook-harvester/nav"
	"github.com/bcap/teachbook-harvester/provider"
	"github.com/bcap/teachbook-harvester/toc"
)

// Metadata is what a book's _config.yml contributes to a harvested book.
type Metadata struct {
	Title  string
	Logo   string
	Author string
}

// FetchDeclaredToc downloads and parses the _toc.yml of the queried release.
func (h *Harvester) FetchDeclaredToc(ctx context.Context, query book.Query) (*toc.Toc, error) {
	repo, err := provider.Detect(query.CodeURL)
	if err != nil {
		return nil, err
	}
	url := repo.RawURL(query.Release, query.TocPath)
	data, err := h.Client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	declared, err := toc.ParseToc(data)
	if err != nil {
		return nil, err
	}
	log.Debugf("fetched declared toc %s with root %s", url, declared.Root)
	return declared, nil
}

// FetchConfig downloads the _config.yml next to the _toc.yml and resolves the
// logo to a raw content URL.
func (h *Harvester) FetchConfig(ctx context.Context, query book.Query) (Metadata, error) {
	repo, err := provider.Detect(query.CodeURL)
	if err != nil {
		return Metadata{}, err
	}
	url := repo.RawURL(query.Release, provider.RelativeTo(query.TocPath, toc.ConfigDocument))
	data, err := h.Client.Get(ctx, url)
	if err != nil {
		return Metadata{}, err
	}
	config, err := toc.ParseConfig(data)
	if err != nil {
		return Metadata{}, err
	}
	logo, err := config.LogoPath()
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Title:  config.Title,
		Logo:   repo.RawURL(query.Release, provider.RelativeTo(query.TocPath, logo)),
		Author: string(config.Author),
	}, nil
}

// FetchRenderedNav downloads the published page and extracts its navigation.
func (h *Harvester) FetchRenderedNav(ctx context.Context, htmlURL string) (nav.Index, error) {
	data, err := h.Client.Get(ctx, htmlURL)
	if err != nil {
		return nil, err
	}
	index, err := nav.Extract(htmlURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	log.Debugf("found %d navigation links in %s", len(index), htmlURL)
	return index, nil
}
