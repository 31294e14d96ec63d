package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicatePosting is returned by PostingStore.CreatePosting when the
// (owner, link) pair already exists. Ingestion treats it as "already exists".
var ErrDuplicatePosting = errors.New("posting already exists")

// ErrRunFinished is returned when a crawl run is finished more than once.
var ErrRunFinished = errors.New("crawl run already finished")

// HTTPError wraps an HTTP status code so fetch retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
