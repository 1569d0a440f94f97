package lazy

import (
	"time"

	"github.com/rs/zerolog"

	"viewportd/internal/events"
	"viewportd/internal/monitor"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxActive         = 4
	defaultActivationTimeout = 5 * time.Second
	defaultInactivityTimeout = 2 * time.Minute
	defaultPreloadInterval   = 10 * time.Second
	defaultPreloadDelay      = 200 * time.Millisecond
	defaultHistorySize       = 50

	// Recent-access probability above which an inactive id is preloaded.
	preloadProbability = 0.7
)

// Config encapsulates all tunables for Layer construction.
type Config struct {
	// Maximum instances in state ready at once.
	MaxActive int
	// Bounded wait for callers joining an in-flight activation.
	ActivationTimeout time.Duration
	// Ready instances with no access for this long are deactivated.
	InactivityTimeout time.Duration
	// Cadence of the predictive preload pass started by Start.
	PreloadInterval time.Duration
	// Delay before a best-effort background preload fires.
	PreloadDelay time.Duration
	// Enables activation of ids adjacent by numeric suffix.
	AdjacencyPreload bool
	// Number of recent accesses kept for prediction.
	HistorySize int
	// Optional JSON file seeding and persisting access metadata.
	HistoryPath string

	// Materializer performs engine-side activation. Defaults to a stub.
	Materializer Materializer
	// Publisher receives lifecycle events. Defaults to a no-op.
	Publisher events.Publisher
	// Memory gates admission of new activations. Optional.
	Memory *monitor.MemoryMonitor

	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxActive <= 0 {
		c.MaxActive = defaultMaxActive
	}
	if c.ActivationTimeout <= 0 {
		c.ActivationTimeout = defaultActivationTimeout
	}
	if c.InactivityTimeout <= 0 {
		c.InactivityTimeout = defaultInactivityTimeout
	}
	if c.PreloadInterval <= 0 {
		c.PreloadInterval = defaultPreloadInterval
	}
	if c.PreloadDelay <= 0 {
		c.PreloadDelay = defaultPreloadDelay
	}
	if c.HistorySize <= 0 {
		c.HistorySize = defaultHistorySize
	}
	if c.Materializer == nil {
		c.Materializer = StubMaterializer{}
	}
	if c.Publisher == nil {
		c.Publisher = events.NopPublisher{}
	}
	return c
}
