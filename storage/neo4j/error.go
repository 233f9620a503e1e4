package neo4j

import (
	"fmt"
)

// ErrQuery is a failed cypher statement together with the storage operation
// it was run for.
type ErrQuery struct {
	Operation string
	Query     string
	Err       error
}

func NewErrQuery(operation string, query string, err error) *ErrQuery {
	return &ErrQuery{Operation: operation, Query: query, Err: err}
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("neo4j storage failed to %s: query %q: %s", e.Operation, e.Query, e.Err)
}

func (e *ErrQuery) Unwrap() error {
	return e.Err
}
