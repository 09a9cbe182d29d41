package baseball

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures to retrieve a page.
	ErrTransport = errors.New("transport error")
	// ErrExtraction marks a page that is not the expected type or is missing a
	// required element.
	ErrExtraction = errors.New("extraction error")
	// ErrPitchMisaligned marks a page whose pitch lists differ in length.
	ErrPitchMisaligned = errors.New("pitch lists misaligned")
)

// TransportError describes a failed fetch.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// ExtractionError describes a page that could not be interpreted.
type ExtractionError struct {
	Page   string
	Field  string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s from %s page: %s", e.Field, e.Page, e.Reason)
}

// Is reports ErrExtraction as a match.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}
