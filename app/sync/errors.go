package sync

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound reports a single-source trigger for an unknown id.
var ErrSourceNotFound = errors.New("source not found")

// StoreError wraps a repository failure inside a source reconciliation.
// Store failures abort the source: a partial write would leave the
// stored events inconsistent with the feed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
