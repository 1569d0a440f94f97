// Package scheduler converts large ordered item lists into streams of
// bounded, prioritized chunk loads with observable progress. A single tick
// loop dispatches chunks from five priority buckets under a concurrency cap,
// with memory-pressure eviction of retained results.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"viewportd/internal/events"
	"viewportd/pkg/types"
)

type Scheduler struct {
	mu  sync.Mutex
	cfg Config

	sessions map[string]*session
	// buckets[p-1] holds pending chunks at priority p, FIFO by creation.
	buckets [5][]*chunkRequest
	loading int

	// ticking refuses tick re-entry while a previous tick still runs.
	ticking atomic.Bool

	baseCtx context.Context
	cancel  context.CancelFunc
	stop    chan struct{}
	closed  bool
}

// New constructs a Scheduler. Start must be called to run the dispatch loop;
// tests may drive dispatch manually through Tick.
func New(cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:      cfg,
		sessions: make(map[string]*session),
		baseCtx:  ctx,
		cancel:   cancel,
		stop:     make(chan struct{}),
	}
}

// Start runs the scheduling loop until ctx is done or Close is called.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()
}

// Close stops the loop and cancels all sessions and in-flight chunk loads.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stop)
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		_ = s.CancelSession(id)
	}
	s.cancel()
	return nil
}

// Tick runs one scheduling cycle: evict retained results under memory
// pressure, then dispatch until the concurrency cap is reached. Re-entry
// while a previous cycle is still processing is refused.
func (s *Scheduler) Tick() {
	if !s.ticking.CompareAndSwap(false, true) {
		return
	}
	defer s.ticking.Store(false)

	if s.cfg.Memory != nil && s.cfg.Memory.UnderPressure() {
		s.evictCompletedResults()
	}

	for {
		s.mu.Lock()
		if s.closed || s.loading >= s.cfg.MaxConcurrentChunks {
			s.mu.Unlock()
			return
		}
		c := s.nextLocked()
		if c == nil {
			s.mu.Unlock()
			return
		}
		s.loading++
		s.mu.Unlock()

		loadingChunksGauge.Inc()
		chunksDispatchedTotal.Inc()
		s.publish("chunk_dispatch", c.id, map[string]any{"priority": int(c.priority)})
		go s.process(c)
	}
}

// nextLocked pulls the next eligible chunk scanning buckets from most urgent
// to least, FIFO within a bucket. Caller must hold s.mu.
func (s *Scheduler) nextLocked() *chunkRequest {
	for i := range s.buckets {
		for len(s.buckets[i]) > 0 {
			c := s.buckets[i][0]
			s.buckets[i] = s.buckets[i][1:]
			queuedChunksGauge.Dec()
			c.mu.Lock()
			pending := c.status == ChunkPending
			c.mu.Unlock()
			if pending {
				return c
			}
			// Cancelled while queued; drop it.
		}
	}
	return nil
}

// evictCompletedResults drops the retained item lists of the oldest quarter
// of completed chunks to relieve memory pressure.
func (s *Scheduler) evictCompletedResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var done []*chunkRequest
	for _, sess := range s.sessions {
		for _, c := range sess.chunks {
			c.mu.Lock()
			if c.status == ChunkCompleted && !c.evicted {
				done = append(done, c)
			}
			c.mu.Unlock()
		}
	}
	if len(done) == 0 {
		return
	}
	n := int(float64(len(done)) * evictFraction)
	if n < 1 {
		n = 1
	}
	// Oldest completions first.
	for i := 0; i < len(done); i++ {
		for j := i + 1; j < len(done); j++ {
			if done[j].doneAt.Before(done[i].doneAt) {
				done[i], done[j] = done[j], done[i]
			}
		}
	}
	for _, c := range done[:n] {
		c.mu.Lock()
		c.items = nil
		c.evicted = true
		c.mu.Unlock()
	}
	s.cfg.Logger.Debug().Int("evicted", n).Msg("scheduler: evicted retained chunk results")
	s.publish("results_evicted", "", map[string]any{"count": n})
}

// Stats returns a point-in-time occupancy summary.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{ActiveSessions: len(s.sessions), LoadingChunks: s.loading}
	for i := range s.buckets {
		st.QueuedChunks += len(s.buckets[i])
	}
	return st
}

// HealthCheck reports scheduling issues with remediation hints.
func (s *Scheduler) HealthCheck() types.HealthReport {
	st := s.Stats()
	rep := types.HealthReport{Healthy: true}
	if st.QueuedChunks > 10*s.cfg.MaxConcurrentChunks {
		rep.Healthy = false
		rep.Issues = append(rep.Issues, "chunk queue backlog")
		rep.Recommendations = append(rep.Recommendations, "raise max_concurrent_chunks or cancel stale sessions")
	}
	if s.cfg.Memory != nil && s.cfg.Memory.UnderPressure() {
		rep.Healthy = false
		rep.Issues = append(rep.Issues, "memory pressure above threshold")
		rep.Recommendations = append(rep.Recommendations, "retained chunk results are being evicted")
	}
	return rep
}

func (s *Scheduler) publish(name, subject string, fields map[string]any) {
	s.cfg.Publisher.Publish(events.Event{Name: name, Subject: subject, Fields: fields})
}
