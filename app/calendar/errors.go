package calendar

import "fmt"

// FetchError is returned when retrieving a feed fails with a non-2xx
// response or a transport failure.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch feed %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("failed to fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when feed bytes do not conform to the expected
// calendar format.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse calendar feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NormalizationError is returned when an event's date-time cannot be
// resolved to a valid absolute instant even after defaulting.
type NormalizationError struct {
	ExternalID string
	Value      string
	Err        error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("failed to normalize time %q for event %s: %v", e.Value, e.ExternalID, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}
