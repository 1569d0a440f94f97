package scheduler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"viewportd/pkg/types"
)

// SessionOptions tunes session creation.
type SessionOptions struct {
	// Strategy defaults to adaptive.
	Strategy types.LoadStrategy
	// ChunkSize overrides the computed adaptive size when positive.
	ChunkSize int
	// OnChunkProgress fires after every loaded item of any chunk.
	OnChunkProgress func(types.ChunkProgress)
	// OnChunkDone fires when a chunk reaches a terminal status.
	OnChunkDone func(types.ChunkProgress)
}

// CreateSession partitions items into prioritized chunks and stores the
// session. Chunks are not dispatched until QueueSession.
func (s *Scheduler) CreateSession(id string, items []Item, opts SessionOptions) (types.CreateSessionResponse, error) {
	var resp types.CreateSessionResponse
	if id == "" {
		return resp, ErrInvalidRequest("session id is required")
	}
	if len(items) == 0 {
		return resp, ErrInvalidRequest("session has no items")
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = types.StrategyAdaptive
	}
	if !strategy.Valid() {
		return resp, ErrInvalidRequest("unknown strategy: " + string(strategy))
	}

	size := opts.ChunkSize
	if size <= 0 {
		size = s.chunkSize(len(items), strategy)
	}
	totalChunks := (len(items) + size - 1) / size

	sess := &session{
		id:              id,
		strategy:        strategy,
		totalItems:      len(items),
		createdAt:       time.Now(),
		lastAccess:      time.Now(),
		onChunkProgress: opts.OnChunkProgress,
		onChunkDone:     opts.OnChunkDone,
	}
	for i := 0; i < totalChunks; i++ {
		lo := i * size
		hi := lo + size
		if hi > len(items) {
			hi = len(items)
		}
		part := make([]Item, hi-lo)
		copy(part, items[lo:hi])
		var est int64
		for _, it := range part {
			est += it.SizeBytes
		}
		sess.chunks = append(sess.chunks, &chunkRequest{
			id:          fmt.Sprintf("%s-chunk-%d", id, i),
			sessionID:   id,
			index:       i,
			totalChunks: totalChunks,
			items:       part,
			totalItems:  len(part),
			priority:    chunkPriority(strategy, i, totalChunks),
			createdAt:   time.Now(),
			timeout:     s.cfg.ChunkTimeout,
			estBytes:    est,
			status:      ChunkPending,
		})
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return resp, ErrInvalidRequest("scheduler is closed")
	}
	if _, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return resp, sessionExistsError{id: id}
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	s.cfg.Logger.Info().Str("session", id).Int("items", len(items)).Int("chunks", totalChunks).Str("strategy", string(strategy)).Msg("scheduler: session created")
	s.publish("session_created", id, map[string]any{"items": len(items), "chunks": totalChunks})
	return types.CreateSessionResponse{SessionID: id, TotalItems: len(items), TotalChunks: totalChunks, ChunkSize: size}, nil
}

// chunkSize derives the adaptive chunk size from network speed, memory
// pressure, and strategy, clamped to [1, min(50, ceil(total/10))].
func (s *Scheduler) chunkSize(total int, strategy types.LoadStrategy) int {
	mult := 1.0
	if s.cfg.Network != nil {
		mult = s.cfg.Network.SizeMultiplier()
	}
	if s.cfg.Memory != nil && s.cfg.Memory.UnderPressure() {
		mult *= 0.5
	}
	switch strategy {
	case types.StrategyPriority:
		mult *= 0.8
	case types.StrategyPredictive:
		mult *= 1.2
	}
	size := int(float64(s.cfg.BaseChunkSize) * mult)
	limit := int(math.Ceil(float64(total) / 10))
	if limit > maxChunkSize {
		limit = maxChunkSize
	}
	if size > limit {
		size = limit
	}
	if size < 1 {
		size = 1
	}
	return size
}

// chunkPriority applies the per-strategy priority assignment rule.
func chunkPriority(strategy types.LoadStrategy, index, totalChunks int) Priority {
	switch strategy {
	case types.StrategySequential:
		switch index {
		case 0:
			return PriorityCritical
		case 1:
			return PriorityHigh
		default:
			return PriorityNormal
		}
	case types.StrategyPriority:
		p := Priority(index*5/totalChunks + 1)
		if p > PriorityIdle {
			p = PriorityIdle
		}
		return p
	case types.StrategyPredictive:
		mid := totalChunks / 2
		dist := index - mid
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist <= 1:
			return PriorityHigh
		case dist <= 3:
			return PriorityNormal
		default:
			return PriorityLow
		}
	default: // adaptive
		switch {
		case index < 2:
			return PriorityHigh
		case float64(index) < 0.3*float64(totalChunks):
			return PriorityNormal
		default:
			return PriorityLow
		}
	}
}

// QueueSession inserts the session's pending chunks into the priority
// buckets. A non-zero priority is bulk-applied to every chunk first.
func (s *Scheduler) QueueSession(id string, priority Priority) error {
	if priority != 0 && !priority.valid() {
		return ErrInvalidRequest(fmt.Sprintf("priority out of range: %d", priority))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return sessionNotFoundError{id: id}
	}
	sess.lastAccess = time.Now()
	s.removeFromBucketsLocked(id)
	for _, c := range sess.chunks {
		c.mu.Lock()
		if priority != 0 {
			c.priority = priority
		}
		q := c.status == ChunkPending
		p := c.priority
		c.mu.Unlock()
		if q {
			s.buckets[p-1] = append(s.buckets[p-1], c)
			queuedChunksGauge.Inc()
		}
	}
	// Order within a bucket follows chunk creation time, not queue call
	// order, so queueing late never costs a session its place among equal
	// priorities.
	for i := range s.buckets {
		b := s.buckets[i]
		sort.SliceStable(b, func(x, y int) bool { return b[x].createdAt.Before(b[y].createdAt) })
	}
	s.publish("session_queued", id, map[string]any{"priority": int(priority)})
	return nil
}

// removeFromBucketsLocked purges all queued chunks of a session. Caller must
// hold s.mu.
func (s *Scheduler) removeFromBucketsLocked(sessionID string) {
	for i := range s.buckets {
		kept := s.buckets[i][:0]
		for _, c := range s.buckets[i] {
			if c.sessionID == sessionID {
				queuedChunksGauge.Dec()
				continue
			}
			kept = append(kept, c)
		}
		s.buckets[i] = kept
	}
}

// CancelSession aborts in-flight chunk loads, marks queued chunks cancelled,
// and removes the session. Idempotent: cancelling an unknown session is an
// error only the first time.
func (s *Scheduler) CancelSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return sessionNotFoundError{id: id}
	}
	sess.cancelled = true
	s.removeFromBucketsLocked(id)
	for _, c := range sess.chunks {
		c.mu.Lock()
		switch c.status {
		case ChunkPending:
			c.status = ChunkCancelled
		case ChunkLoading:
			if c.cancelFn != nil {
				c.cancelFn()
			}
		}
		c.mu.Unlock()
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	s.cfg.Logger.Info().Str("session", id).Msg("scheduler: session cancelled")
	s.publish("session_cancelled", id, nil)
	return nil
}

// SessionProgress derives the aggregate view by summing chunk counters.
func (s *Scheduler) SessionProgress(id string) (types.SessionProgressResponse, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastAccess = time.Now()
	}
	s.mu.Unlock()
	if !ok {
		return types.SessionProgressResponse{}, sessionNotFoundError{id: id}
	}
	return s.aggregate(sess), nil
}

func (s *Scheduler) aggregate(sess *session) types.SessionProgressResponse {
	resp := types.SessionProgressResponse{
		SessionID:   sess.id,
		TotalChunks: len(sess.chunks),
		TotalItems:  sess.totalItems,
	}
	loadingOrPending := 0
	for _, c := range sess.chunks {
		cp := c.snapshot()
		resp.Chunks = append(resp.Chunks, cp)
		resp.LoadedItems += cp.LoadedItems
		resp.FailedItems += cp.FailedItems
		resp.BytesLoaded += cp.BytesLoaded
		resp.BytesTotal += cp.BytesTotal
		switch ChunkStatus(cp.Status) {
		case ChunkCompleted:
			resp.CompletedChunks++
		case ChunkError:
			resp.FailedChunks++
		case ChunkPending, ChunkLoading:
			loadingOrPending++
		}
	}
	switch {
	case sess.cancelled:
		resp.Status = string(ChunkCancelled)
	case resp.CompletedChunks == resp.TotalChunks:
		resp.Status = string(ChunkCompleted)
	case resp.FailedChunks > 0 && loadingOrPending == 0:
		resp.Status = string(ChunkError)
	default:
		resp.Status = string(ChunkLoading)
	}
	return resp
}

// Sessions lists the ids of all live sessions.
func (s *Scheduler) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, id)
	}
	return out
}
