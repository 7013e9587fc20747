package repo

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound means no row matched. For owner-scoped lookups this covers
	// both a missing id and an id owned by someone else, so callers cannot
	// tell the difference.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means an insert violated a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
