package pool

import (
	"time"

	"github.com/rs/zerolog"

	"viewportd/internal/events"
	"viewportd/internal/monitor"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMinSize         = 2
	defaultMaxSize         = 10
	defaultExpandThreshold = 0.75
	defaultShrinkThreshold = 0.3
	defaultMaxIdleTime     = 5 * time.Minute
	defaultCleanupDelay    = 100 * time.Millisecond
	defaultGCInterval      = 60 * time.Second
)

// Config encapsulates all tunables for Pool construction.
type Config struct {
	MinSize int
	MaxSize int
	// Utilization at or above which Acquire may grow the pool.
	ExpandThreshold float64
	// Utilization at or below which GC shrinks the pool.
	ShrinkThreshold float64
	// Idle age after which an available slot is eligible for GC.
	MaxIdleTime time.Duration
	// Delay between Release and the slot becoming available again.
	CleanupDelay time.Duration
	// Interval of the background GC loop started by Start.
	GCInterval time.Duration

	// Factory creates and destroys rendering-engine resources. Defaults to
	// an in-memory stub.
	Factory ResourceFactory
	// Publisher receives pool lifecycle events. Defaults to a no-op.
	Publisher events.Publisher
	// Memory triggers burst-mode GC when under pressure. Optional.
	Memory *monitor.MemoryMonitor

	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.MinSize <= 0 {
		c.MinSize = defaultMinSize
	}
	if c.MaxSize <= 0 {
		c.MaxSize = defaultMaxSize
	}
	if c.MaxSize < c.MinSize {
		c.MaxSize = c.MinSize
	}
	if c.ExpandThreshold <= 0 || c.ExpandThreshold > 1 {
		c.ExpandThreshold = defaultExpandThreshold
	}
	if c.ShrinkThreshold <= 0 || c.ShrinkThreshold >= 1 {
		c.ShrinkThreshold = defaultShrinkThreshold
	}
	if c.MaxIdleTime <= 0 {
		c.MaxIdleTime = defaultMaxIdleTime
	}
	if c.CleanupDelay <= 0 {
		c.CleanupDelay = defaultCleanupDelay
	}
	if c.GCInterval <= 0 {
		c.GCInterval = defaultGCInterval
	}
	if c.Factory == nil {
		c.Factory = StubFactory{}
	}
	if c.Publisher == nil {
		c.Publisher = events.NopPublisher{}
	}
	return c
}
