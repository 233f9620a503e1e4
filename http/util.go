package http

import (
	urllib "net/url"
	"strings"
)

// AbsoluteURL resolves a link found in a rendered page against the site base
// URL. Relative links are appended to base as written, keeping their
// percent-encoding and fragments untouched. Links that already carry a host
// are returned as is.
func AbsoluteURL(baseURL string, url string) (string, error) {
	if _, err := urllib.Parse(baseURL); err != nil {
		return "", err
	}

	parsedURL, err := urllib.Parse(url)
	if err != nil {
		return "", err
	}
	if parsedURL.Host != "" {
		return url, nil
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + strings.TrimPrefix(url, "/"), nil
}
