// Package lazy defers viewport materialization until an identity is actually
// needed, masking activation latency with adjacency and access-frequency
// based preloading. One instance exists per logical viewport id; activation
// cycles it between uninitialized and ready.
package lazy

import (
	"context"
	"sort"
	"sync"

	"viewportd/internal/events"
)

type Layer struct {
	mu  sync.Mutex
	cfg Config

	instances map[string]*instance
	// Most recent accessed ids, newest last, capped at HistorySize.
	history []string
	// Persisted access metadata applied to later registrations.
	seed map[string]seedRecord

	closed bool
	stop   chan struct{}
}

// New constructs a Layer. When HistoryPath is set, persisted access metadata
// seeds prediction for ids registered later.
func New(cfg Config) *Layer {
	cfg = cfg.withDefaults()
	l := &Layer{
		cfg:       cfg,
		instances: make(map[string]*instance),
		stop:      make(chan struct{}),
	}
	l.loadHistory()
	return l
}

// Register inserts a new uninitialized instance. Duplicate registration is a
// no-op with a warning.
func (l *Layer) Register(id string, priority int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || id == "" {
		return
	}
	if _, ok := l.instances[id]; ok {
		l.cfg.Logger.Warn().Str("viewport", id).Msg("lazy: duplicate registration")
		return
	}
	inst := &instance{id: id, state: StateUninitialized, priority: priority}
	if rec, ok := l.seed[id]; ok {
		inst.lastAccess = rec.lastAccess
		inst.accessCount = rec.count
	}
	l.instances[id] = inst
	l.publish("register", id, nil)
}

// Known reports whether id has been registered.
func (l *Layer) Known(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.instances[id]
	return ok
}

// Unregister deactivates and removes an instance.
func (l *Layer) Unregister(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inst, ok := l.instances[id]
	if !ok {
		return
	}
	l.deactivateLocked(inst)
	inst.state = StateDisposed
	delete(l.instances, id)
	l.publish("unregister", id, nil)
}

// Statuses returns a snapshot of all registered instances, ordered by id.
func (l *Layer) Statuses() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Status, 0, len(l.instances))
	for _, inst := range l.instances {
		out = append(out, Status{
			ID:          inst.id,
			State:       inst.state,
			LastAccess:  inst.lastAccess,
			AccessCount: inst.accessCount,
			Priority:    inst.priority,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveCount returns the number of instances in state ready.
func (l *Layer) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeCountLocked()
}

func (l *Layer) activeCountLocked() int {
	n := 0
	for _, inst := range l.instances {
		if inst.state == StateReady {
			n++
		}
	}
	return n
}

// Close stops the preload loop, clears timers, deactivates everything, and
// persists access metadata when configured.
func (l *Layer) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.stop)
	for _, inst := range l.instances {
		l.deactivateLocked(inst)
	}
	l.mu.Unlock()
	l.saveHistory()
	return nil
}

// Start runs the predictive preload loop until ctx is done or Close is
// called.
func (l *Layer) Start(ctx context.Context) {
	go l.predictLoop(ctx)
}

func (l *Layer) publish(name, subject string, fields map[string]any) {
	l.cfg.Publisher.Publish(events.Event{Name: name, Subject: subject, Fields: fields})
}
