package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"viewportd/internal/events"
	"viewportd/internal/monitor"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxConcurrentChunks = 3
	defaultBaseChunkSize       = 10
	defaultChunkTimeout        = 30 * time.Second
	defaultTickInterval        = 100 * time.Millisecond

	// Hard ceiling on computed chunk size.
	maxChunkSize = 50
	// Fraction of completed chunk results evicted under memory pressure.
	evictFraction = 0.25
)

// Config encapsulates all tunables for Scheduler construction.
type Config struct {
	// Chunk loads running concurrently.
	MaxConcurrentChunks int
	// Base chunk size before the adaptive multiplier.
	BaseChunkSize int
	// Per-chunk processing deadline.
	ChunkTimeout time.Duration
	// Interval of the scheduling loop started by Start.
	TickInterval time.Duration

	// Fetcher loads individual items. Defaults to a simulated fetcher.
	Fetcher Fetcher
	// Publisher receives lifecycle events. Defaults to a no-op.
	Publisher events.Publisher
	// Network feeds the adaptive chunk-size multiplier and is updated with
	// every completed fetch. Optional.
	Network *monitor.NetworkMonitor
	// Memory triggers completed-result eviction before dispatch. Optional.
	Memory *monitor.MemoryMonitor

	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrentChunks <= 0 {
		c.MaxConcurrentChunks = defaultMaxConcurrentChunks
	}
	if c.BaseChunkSize <= 0 {
		c.BaseChunkSize = defaultBaseChunkSize
	}
	if c.ChunkTimeout <= 0 {
		c.ChunkTimeout = defaultChunkTimeout
	}
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.Fetcher == nil {
		c.Fetcher = NewSimFetcher(0)
	}
	if c.Publisher == nil {
		c.Publisher = events.NopPublisher{}
	}
	return c
}
