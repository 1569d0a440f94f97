package scheduler

import (
	"context"
	"time"

	"viewportd/pkg/types"
)

// process runs one chunk load to a terminal status. Items are fetched
// sequentially; a single item failure is recorded and loading continues,
// while timeout or cancellation aborts the remainder of the chunk.
func (s *Scheduler) process(c *chunkRequest) {
	ctx, cancel := context.WithTimeout(s.baseCtx, c.timeout)
	defer cancel()

	c.mu.Lock()
	if c.status != ChunkPending {
		// Cancelled between dispatch and start.
		c.mu.Unlock()
		loadingChunksGauge.Dec()
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
		return
	}
	c.status = ChunkLoading
	c.cancelFn = cancel
	items := c.items
	c.mu.Unlock()

	start := time.Now()
	aborted := false
	for _, it := range items {
		if ctx.Err() != nil {
			aborted = true
			break
		}
		fetchStart := time.Now()
		n, err := s.cfg.Fetcher.Fetch(ctx, it.ID, it.SizeBytes)
		if err != nil {
			if ctx.Err() != nil {
				aborted = true
				break
			}
			itemsFailedTotal.Inc()
			c.mu.Lock()
			c.failed++
			c.mu.Unlock()
			s.cfg.Logger.Warn().Str("chunk", c.id).Str("item", it.ID).Err(err).Msg("scheduler: item fetch failed")
			continue
		}
		dur := time.Since(fetchStart)
		if s.cfg.Network != nil {
			s.cfg.Network.Record(n, dur)
		}
		itemsLoadedTotal.Inc()

		c.mu.Lock()
		c.loaded++
		c.bytesLoaded += n
		elapsed := time.Since(start).Seconds()
		if elapsed > 0 {
			c.networkBps = float64(c.bytesLoaded) / elapsed
			if remaining := c.estBytes - c.bytesLoaded; remaining > 0 && c.networkBps > 0 {
				c.etaSeconds = float64(remaining) / c.networkBps
			} else {
				c.etaSeconds = 0
			}
		}
		progress := c.snapshotLocked()
		c.mu.Unlock()

		s.notifyProgress(c.sessionID, progress, false)
		s.publish("chunk_progress", c.id, map[string]any{
			"loaded": progress.LoadedItems,
			"total":  progress.TotalItems,
		})
	}

	c.mu.Lock()
	switch {
	case aborted && ctx.Err() == context.DeadlineExceeded:
		c.status = ChunkError
		c.errMsg = "chunk load timed out after " + c.timeout.String()
	case aborted:
		c.status = ChunkCancelled
	default:
		c.status = ChunkCompleted
	}
	c.etaSeconds = 0
	c.doneAt = time.Now()
	c.cancelFn = nil
	final := c.snapshotLocked()
	c.mu.Unlock()

	chunksFinishedTotal.WithLabelValues(final.Status).Inc()
	loadingChunksGauge.Dec()
	s.publish("chunk_done", c.id, map[string]any{"status": final.Status})
	s.cfg.Logger.Debug().
		Str("chunk", c.id).
		Str("status", final.Status).
		Int("loaded", final.LoadedItems).
		Int("failed", final.FailedItems).
		Dur("took", time.Since(start)).
		Msg("scheduler: chunk finished")

	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
	s.notifyProgress(c.sessionID, final, true)
}

// snapshotLocked is snapshot for callers already holding c.mu.
func (c *chunkRequest) snapshotLocked() types.ChunkProgress {
	return types.ChunkProgress{
		ChunkID:     c.id,
		Index:       c.index,
		Priority:    int(c.priority),
		Status:      string(c.status),
		LoadedItems: c.loaded,
		FailedItems: c.failed,
		TotalItems:  c.totalItems,
		BytesLoaded: c.bytesLoaded,
		BytesTotal:  c.estBytes,
		NetworkBps:  c.networkBps,
		ETASeconds:  c.etaSeconds,
		Error:       c.errMsg,
	}
}

// notifyProgress invokes the session's callbacks outside the scheduler lock.
func (s *Scheduler) notifyProgress(sessionID string, cp types.ChunkProgress, done bool) {
	s.mu.Lock()
	sess := s.sessions[sessionID]
	var onProgress, onDone func(types.ChunkProgress)
	if sess != nil {
		onProgress = sess.onChunkProgress
		onDone = sess.onChunkDone
	}
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(cp)
	}
	if done && onDone != nil {
		onDone(cp)
	}
}
