// Package pool owns a fixed-but-elastic collection of reusable viewport
// slots. Acquire/Release avoid paying rendering-resource allocation cost on
// every use; a periodic garbage collector reclaims idle slots and shrinks the
// pool under low utilization or memory pressure.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"viewportd/internal/events"
	"viewportd/pkg/types"
)

type Pool struct {
	mu  sync.Mutex
	cfg Config

	slots map[string]*slot
	seq   int

	// Acquire accounting for the efficiency stat.
	acquires uint64
	creates  uint64

	cleanupTimers map[string]*time.Timer
	closed        bool

	stop chan struct{}
	done chan struct{}
}

// New constructs a Pool and pre-populates it with MinSize stack slots.
func New(cfg Config) *Pool {
	cfg = cfg.withDefaults()
	p := &Pool{
		cfg:           cfg,
		slots:         make(map[string]*slot),
		cleanupTimers: make(map[string]*time.Timer),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	p.mu.Lock()
	for i := 0; i < cfg.MinSize; i++ {
		if _, err := p.addSlotLocked(types.ViewportStack); err != nil {
			cfg.Logger.Warn().Err(err).Msg("pool: prewarm slot failed")
		}
	}
	p.updateSlotGauges()
	p.mu.Unlock()
	return p
}

// addSlotLocked creates a new slot in state available. Caller must hold p.mu
// and have verified size < MaxSize.
func (p *Pool) addSlotLocked(vpType types.ViewportType) (*slot, error) {
	res, estMB, err := p.cfg.Factory.Create(vpType)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	p.seq++
	s := &slot{
		id:        fmt.Sprintf("vp-pool-%d", p.seq),
		vpType:    vpType,
		state:     SlotAvailable,
		createdAt: time.Now(),
		lastUsed:  time.Now(),
		resource:  res,
		estMB:     estMB,
	}
	p.slots[s.id] = s
	p.creates++
	return s, nil
}

// Start runs the background GC loop until ctx is done or Close is called.
// When a memory monitor is configured, a pressure reading switches the pass
// into burst mode.
func (p *Pool) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.cfg.GCInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				aggressive := p.cfg.Memory != nil && p.cfg.Memory.UnderPressure()
				p.runGC(aggressive)
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			}
		}
	}()
}

// Close stops the GC loop, cancels pending cleanup timers, and disposes all
// slots. The pool must not be used afterwards.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.stop)
	for id, t := range p.cleanupTimers {
		t.Stop()
		delete(p.cleanupTimers, id)
	}
	var errs []error
	for id, s := range p.slots {
		if err := p.cfg.Factory.Destroy(s.resource); err != nil {
			errs = append(errs, err)
		}
		s.state = SlotDisposed
		delete(p.slots, id)
	}
	p.updateSlotGauges()
	p.mu.Unlock()
	if len(errs) > 0 {
		return fmt.Errorf("pool close: %d resource destroy errors, first: %w", len(errs), errs[0])
	}
	return nil
}

// Stats returns a point-in-time occupancy summary.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Stats{
		Size:    len(p.slots),
		MinSize: p.cfg.MinSize,
		MaxSize: p.cfg.MaxSize,
	}
	for _, s := range p.slots {
		st.MemoryEstimateMB += s.estMB
		switch s.state {
		case SlotAvailable:
			st.Available++
		case SlotInUse:
			st.InUse++
		case SlotPendingCleanup:
			st.PendingCleanup++
		}
	}
	if p.acquires > 0 {
		st.Efficiency = float64(p.acquires-p.creates) / float64(p.acquires)
		if st.Efficiency < 0 {
			st.Efficiency = 0
		}
	}
	return st
}

// HealthCheck reports capacity issues with remediation hints.
func (p *Pool) HealthCheck() types.HealthReport {
	st := p.Stats()
	rep := types.HealthReport{Healthy: true}
	if st.Size > 0 && float64(st.InUse)/float64(st.Size) > 0.9 && st.Size >= st.MaxSize {
		rep.Healthy = false
		rep.Issues = append(rep.Issues, "pool near capacity")
		rep.Recommendations = append(rep.Recommendations, "raise pool max_size or release unused viewports")
	}
	if p.cfg.Memory != nil && p.cfg.Memory.UnderPressure() {
		rep.Healthy = false
		rep.Issues = append(rep.Issues, "memory pressure above threshold")
		rep.Recommendations = append(rep.Recommendations, "burst GC active; consider lowering pool max_size")
	}
	return rep
}

func (p *Pool) publish(name, subject string, fields map[string]any) {
	p.cfg.Publisher.Publish(events.Event{Name: name, Subject: subject, Fields: fields})
}
