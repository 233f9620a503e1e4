package provider

import (
	"fmt"
	urllib "net/url"
	"path"
	"strings"
)

// Provider is the hosting service of a book's source repository. It decides
// the URL grammar used for raw content and permalinks.
type Provider int

const (
	Unknown Provider = iota
	GitHub
	GitLab
	// GitLabSubgroup is a GitLab project nested under a subgroup. Those
	// projects are addressed without the "/-" separator.
	GitLabSubgroup
)

// A GitLab code URL with more than this many slashes is treated as living in
// a subgroup. This is a heuristic: a self-hosted GitLab served under a path
// prefix will be misdetected.
const gitLabSubgroupSlashes = 4

const defaultExtension = ".md"

func (p Provider) String() string {
	switch p {
	case GitHub:
		return "github"
	case GitLab:
		return "gitlab"
	case GitLabSubgroup:
		return "gitlab-subgroup"
	default:
		return "unknown"
	}
}

type ErrUnsupportedProvider struct {
	CodeURL string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported code host for %q: only GitHub and GitLab are supported", e.CodeURL)
}

// Repository is a source repository whose provider has been detected once.
type Repository struct {
	URL      string
	Provider Provider
}

func Detect(codeURL string) (Repository, error) {
	codeURL = strings.TrimRight(codeURL, "/")
	switch {
	case strings.Contains(codeURL, "github.com"):
		return Repository{URL: codeURL, Provider: GitHub}, nil
	case strings.Contains(codeURL, "gitlab"):
		if strings.Count(codeURL, "/") > gitLabSubgroupSlashes {
			return Repository{URL: codeURL, Provider: GitLabSubgroup}, nil
		}
		return Repository{URL: codeURL, Provider: GitLab}, nil
	default:
		return Repository{}, ErrUnsupportedProvider{CodeURL: codeURL}
	}
}

// RawURL points at the unrendered content of path at release.
func (r Repository) RawURL(release string, path string) string {
	switch r.Provider {
	case GitHub:
		if release == "main" {
			return fmt.Sprintf("%s/raw/refs/heads/main/%s", r.URL, path)
		}
		return fmt.Sprintf("%s/raw/refs/tags/%s/%s", r.URL, release, path)
	case GitLabSubgroup:
		return fmt.Sprintf("%s/raw/%s/%s", r.URL, release, path)
	default:
		return fmt.Sprintf("%s/-/raw/%s/%s", r.URL, release, path)
	}
}

// BlobURL is the permalink of path at release, as shown by the provider UI.
func (r Repository) BlobURL(release string, path string) string {
	switch r.Provider {
	case GitHub, GitLabSubgroup:
		return fmt.Sprintf("%s/blob/%s/%s", r.URL, release, path)
	default:
		return fmt.Sprintf("%s/-/blob/%s/%s", r.URL, release, path)
	}
}

// Permalink resolves file (as written in a TOC) against the TOC directory and
// returns its blob URL. Files without an extension are assumed to be Markdown.
func (r Repository) Permalink(release string, tocPath string, file string) string {
	if path.Ext(path.Base(file)) == "" {
		file += defaultExtension
	}
	return r.BlobURL(release, RelativeTo(tocPath, file))
}

func RawContentURL(codeURL string, release string, path string) (string, error) {
	repo, err := Detect(codeURL)
	if err != nil {
		return "", err
	}
	return repo.RawURL(release, path), nil
}

func PermalinkURL(codeURL string, release string, tocPath string, file string) (string, error) {
	repo, err := Detect(codeURL)
	if err != nil {
		return "", err
	}
	return repo.Permalink(release, tocPath, file), nil
}

// RelativeTo rewrites p, which is relative to the directory of tocPath, into a
// repository relative path by substituting the trailing TOC file name.
func RelativeTo(tocPath string, p string) string {
	if strings.HasSuffix(tocPath, "_toc.yml") {
		return strings.TrimSuffix(tocPath, "_toc.yml") + p
	}
	dir := path.Dir(tocPath)
	if dir == "." {
		return p
	}
	return dir + "/" + p
}

// Permalink is a parsed blob URL.
type Permalink struct {
	RepoName string
	RepoURL  string
	Revision string
	FilePath string
}

// ParsePermalink is the inverse of Repository.BlobURL for both providers.
func ParsePermalink(rawURL string) (Permalink, error) {
	parsed, err := urllib.Parse(rawURL)
	if err != nil {
		return Permalink{}, err
	}
	repo, rest, found := strings.Cut(parsed.Path, "/blob/")
	if !found {
		return Permalink{}, fmt.Errorf("not a permalink, missing /blob/: %s", rawURL)
	}
	// gitlab has an additional "/-" before /blob/
	repo = strings.TrimRight(repo, "/-")
	revision, filePath, found := strings.Cut(rest, "/")
	if !found || revision == "" || filePath == "" {
		return Permalink{}, fmt.Errorf("permalink has no revision or file path: %s", rawURL)
	}
	return Permalink{
		RepoName: path.Base(repo),
		RepoURL:  fmt.Sprintf("https://%s%s", parsed.Host, repo),
		Revision: revision,
		FilePath: filePath,
	}, nil
}
