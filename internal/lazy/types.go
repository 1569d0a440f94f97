package lazy

import "time"

// State is the lifecycle state of a logical viewport instance.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateError         State = "error"
	StateDisposed      State = "disposed"
)

// instance tracks one logical viewport identity across activation cycles.
type instance struct {
	id          string
	state       State
	lastAccess  time.Time
	accessCount int
	priority    int

	// Attached surface and engine-side id while materialized.
	surface  any
	engineID string

	// initDone is closed when an in-flight activation settles, letting
	// concurrent callers join it instead of starting a second one.
	initDone chan struct{}

	inactivity *time.Timer
}

// Status is the caller-visible view of an instance.
type Status struct {
	ID          string
	State       State
	LastAccess  time.Time
	AccessCount int
	Priority    int
}
