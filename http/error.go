package http

import "fmt"

// ErrFetch is returned when a document answers with a non-success status.
type ErrFetch struct {
	URL        string
	StatusCode int
}

func (e ErrFetch) Error() string {
	return fmt.Sprintf("failed to fetch: %s returned status code %d", e.URL, e.StatusCode)
}
