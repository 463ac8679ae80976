package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedStructuredData marks an embedded structured-data block that
// could not be parsed. It is recovered inside the extractor fallback chain
// and never propagates past it.
var ErrMalformedStructuredData = errors.New("malformed structured data")

// FetchError wraps a failed source retrieval with enough context to
// diagnose which source broke. The run continues without the source.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InsufficientContentError reports that fewer distinct items were available
// than a requested assortment needs. Fatal for the run; nothing is sent.
type InsufficientContentError struct {
	Need int
	Got  int
}

func (e *InsufficientContentError) Error() string {
	return fmt.Sprintf("insufficient content: need %d distinct items, got %d", e.Need, e.Got)
}

// DispatchError wraps a failed message delivery. In a multi-message run one
// failure does not block the remaining messages.
type DispatchError struct {
	Destination string
	Err         error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to %s: %v", e.Destination, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
