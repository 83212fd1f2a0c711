/*
errors.go - Centralized error types for the budget engine

PURPOSE:
  All error types in one place for consistency and discoverability.

ERROR CATEGORIES:
  1. Fetch errors - A required table query failed (fatal for the snapshot)
  2. Input errors - Invalid client, year or catalog document

  Resolution gaps (unmapped owner, missing rate) are NOT errors. They are
  routed to sentinel buckets and counted in the Snapshot.

USAGE:
  snap, err := engine.ComputeSnapshot(ctx, client, year)
  if budget.IsFetchError(err) {
      // storage problem, retry belongs to the caller
  }

SEE ALSO:
  - engine.go: Wraps source failures in FetchError
  - factory/catalog.go: Wraps validation failures in ErrInvalidCatalog
*/
package budget

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrFetchFailed is returned when any input table cannot be read.
	// The snapshot is aborted; no partial result is returned.
	ErrFetchFailed = errors.New("input fetch failed")

	// ErrInvalidYear is returned for years outside a sane calendar range.
	ErrInvalidYear = errors.New("invalid year")

	// ErrInvalidClient is returned when no client is given.
	ErrInvalidClient = errors.New("invalid client")

	// ErrInvalidCatalog is returned when a catalog document fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrSourceRequired is returned when the engine has no Source.
	ErrSourceRequired = errors.New("engine requires a source")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FetchError names the table whose query failed.
type FetchError struct {
	Table string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Table, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}

// ValidationError describes one invalid field in a catalog document.
type ValidationError struct {
	Table string
	Index int
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s[%d].%s: %s", e.Table, e.Index, e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCatalog
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidYear) ||
		errors.Is(err, ErrInvalidClient) ||
		errors.Is(err, ErrInvalidCatalog)
}

// IsFetchError returns true if a source read failed.
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}
