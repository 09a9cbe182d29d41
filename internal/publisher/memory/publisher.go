// Package memory contains an in-memory notifier for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

// Publisher records notifications for inspection.
type Publisher struct {
	mu            sync.RWMutex
	notifications []baseball.Notification
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Notify records the notification.
func (p *Publisher) Notify(_ context.Context, n baseball.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
	return nil
}

// Notifications returns a copy of the recorded notifications.
func (p *Publisher) Notifications() []baseball.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]baseball.Notification, len(p.notifications))
	copy(out, p.notifications)
	return out
}

// Events returns the recorded event names in order.
func (p *Publisher) Events() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.notifications))
	for i, n := range p.notifications {
		out[i] = n.Event
	}
	return out
}
