// Package events carries lifecycle notifications between the scheduling
// components and their observers (UI progress displays, tests, logs).
package events

// Event is a single lifecycle notification.
// Minimal and stable: name + subject id and optional fields via key/values.
type Event struct {
	Name    string
	Subject string
	Fields  map[string]any
}

// Publisher receives events from the pool, lazy layer, and scheduler.
// Implementations should be lightweight and non-blocking; Publish must not
// panic. No ordering is guaranteed between independent subscribers.
type Publisher interface {
	Publish(Event)
}

// NopPublisher is the default; it drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
