package monitor

import (
	"sync"
	"time"
)

// Speed classification bounds in bytes/sec.
const (
	fastBps = 2 << 20   // 2 MiB/s
	slowBps = 512 << 10 // 512 KiB/s
)

type sample struct {
	at    time.Time
	bytes int64
	dur   time.Duration
}

// NetworkMonitor keeps a rolling window of transfer samples and derives a
// smoothed bytes/sec estimate from them. Safe for concurrent use.
type NetworkMonitor struct {
	mu      sync.Mutex
	window  time.Duration
	samples []sample
}

// NewNetworkMonitor creates a monitor keeping samples for the given window.
// A non-positive window defaults to 30s.
func NewNetworkMonitor(window time.Duration) *NetworkMonitor {
	if window <= 0 {
		window = 30 * time.Second
	}
	return &NetworkMonitor{window: window}
}

// Record adds one completed transfer to the window.
func (m *NetworkMonitor) Record(bytes int64, dur time.Duration) {
	if bytes < 0 || dur <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample{at: time.Now(), bytes: bytes, dur: dur})
	m.pruneLocked()
}

// BytesPerSecond returns the aggregate speed across the window, 0 when no
// samples are available.
func (m *NetworkMonitor) BytesPerSecond() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	var bytes int64
	var dur time.Duration
	for _, s := range m.samples {
		bytes += s.bytes
		dur += s.dur
	}
	if dur <= 0 {
		return 0
	}
	return float64(bytes) / dur.Seconds()
}

// SizeMultiplier maps the current speed estimate onto a chunk-size
// multiplier: fast links get bigger chunks, slow links smaller ones.
// Unknown speed (no samples yet) is treated as neutral.
func (m *NetworkMonitor) SizeMultiplier() float64 {
	bps := m.BytesPerSecond()
	switch {
	case bps == 0:
		return 1.0
	case bps >= fastBps:
		return 1.5
	case bps >= slowBps:
		return 1.0
	default:
		return 0.5
	}
}

func (m *NetworkMonitor) pruneLocked() {
	cutoff := time.Now().Add(-m.window)
	i := 0
	for i < len(m.samples) && m.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		m.samples = append(m.samples[:0], m.samples[i:]...)
	}
}
