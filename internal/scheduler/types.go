package scheduler

import (
	"context"
	"sync"
	"time"

	"viewportd/pkg/types"
)

// Priority orders chunk dispatch; 1 is most urgent.
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityNormal   Priority = 3
	PriorityLow      Priority = 4
	PriorityIdle     Priority = 5
)

func (p Priority) valid() bool { return p >= PriorityCritical && p <= PriorityIdle }

// ChunkStatus is the lifecycle status of one chunk.
type ChunkStatus string

const (
	ChunkPending   ChunkStatus = "pending"
	ChunkLoading   ChunkStatus = "loading"
	ChunkCompleted ChunkStatus = "completed"
	ChunkError     ChunkStatus = "error"
	ChunkCancelled ChunkStatus = "cancelled"
)

// Item is one loadable content item with its estimated transfer size.
type Item struct {
	ID        string
	SizeBytes int64
}

// chunkRequest is one bounded, prioritized unit of work. The progress block
// is mutated only by the chunk's own processing task and read by session
// aggregation.
type chunkRequest struct {
	id          string
	sessionID   string
	index       int
	totalChunks int
	items       []Item
	totalItems  int
	priority    Priority
	createdAt   time.Time
	timeout     time.Duration
	estBytes    int64

	mu          sync.Mutex
	status      ChunkStatus
	loaded      int
	failed      int
	bytesLoaded int64
	networkBps  float64
	etaSeconds  float64
	errMsg      string
	// Chunk results retained after completion can be dropped under memory
	// pressure; evicted marks that.
	evicted  bool
	doneAt   time.Time
	cancelFn context.CancelFunc
}

// snapshot copies the progress block into the API shape.
func (c *chunkRequest) snapshot() types.ChunkProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// session is the full ordered item list for one logical series load.
type session struct {
	id         string
	strategy   types.LoadStrategy
	chunks     []*chunkRequest
	totalItems int
	createdAt  time.Time
	lastAccess time.Time
	cancelled  bool

	onChunkProgress func(types.ChunkProgress)
	onChunkDone     func(types.ChunkProgress)
}

// Stats summarizes scheduler occupancy.
type Stats struct {
	ActiveSessions int
	LoadingChunks  int
	QueuedChunks   int
}
