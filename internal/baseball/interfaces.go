package baseball

import (
	"context"
	"io"
	"time"
)

// Fetcher retrieves the text of a page. Implementations honor the shared
// politeness interval before issuing the request.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Notifier announces run lifecycle events to operators.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Event names carried by notifications.
const (
	EventRunStarted  = "run_started"
	EventRunFinished = "run_finished"
	EventRunFailed   = "run_failed"
)

// Notification is one run lifecycle message.
type Notification struct {
	Event   string         `json:"event"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}
