package neo4j

import (
	"errors"
	"strings"
	"testing"
)

func TestErrQuery(t *testing.T) {
	cause := errors.New("connection refused")
	var err error = NewErrQuery("set book state", "MATCH (b:Book) RETURN b", cause)

	if !errors.Is(err, cause) {
		t.Error("ErrQuery should unwrap to its cause")
	}
	var queryErr *ErrQuery
	if !errors.As(err, &queryErr) || queryErr.Operation != "set book state" {
		t.Fatalf("expected an ErrQuery, got %v", err)
	}
	msg := err.Error()
	for _, part := range []string{"set book state", "MATCH (b:Book) RETURN b", "connection refused"} {
		if !strings.Contains(msg, part) {
			t.Errorf("%q misses %q", msg, part)
		}
	}
}
