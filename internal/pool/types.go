package pool

import (
	"time"

	"viewportd/pkg/types"
)

// SlotState is the lifecycle state of a pooled viewport slot.
type SlotState string

const (
	SlotAvailable      SlotState = "available"
	SlotInUse          SlotState = "in-use"
	SlotPendingCleanup SlotState = "pending-cleanup"
	SlotDisposed       SlotState = "disposed"
)

// slot is one reusable viewport resource container. Owned exclusively by the
// pool; callers only ever see a Handle.
type slot struct {
	id        string
	vpType    types.ViewportType
	state     SlotState
	createdAt time.Time
	lastUsed  time.Time
	useCount  int
	contentID string
	// Opaque rendering-engine resource and its memory estimate.
	resource any
	estMB    int
}

// Handle is the caller-visible view of an acquired slot.
type Handle struct {
	PoolID    string
	Type      types.ViewportType
	ContentID string
	// Resource is the opaque rendering-engine handle backing the slot.
	Resource any
}

// Stats summarizes pool occupancy.
type Stats struct {
	Size             int
	Available        int
	InUse            int
	PendingCleanup   int
	Efficiency       float64
	MemoryEstimateMB int
	MinSize          int
	MaxSize          int
}

// GCReport describes the outcome of one garbage-collection pass.
type GCReport struct {
	Cleaned         int
	FreedEstimateMB int
	Duration        time.Duration
	Errors          []string
}
