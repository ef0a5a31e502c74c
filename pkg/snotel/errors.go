package snotel

import "fmt"

// FetchError reports a failed upstream request: either a transport
// error or a non-200 status. Fetches are never retried.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status code %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SchemaValidationError reports data that failed the declared column
// contract: a missing required column, an uncoercible value, a null in
// a non-nullable column, or a duplicate key.
type SchemaValidationError struct {
	Column string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("schema validation failed for column %q: %s", e.Column, e.Reason)
}

// CacheIOError reports a filesystem failure while reading or writing a
// cache artifact.
type CacheIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheIOError) Unwrap() error {
	return e.Err
}
