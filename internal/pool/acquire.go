package pool

import (
	"time"

	"viewportd/pkg/types"
)

// Acquire returns an available slot of the requested type, expanding or
// recycling when none exists. ok=false is the backpressure signal: the pool
// is at capacity and the caller should retry after a Release.
func (p *Pool) Acquire(vpType types.ViewportType, contentID string) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || contentID == "" {
		return Handle{}, false
	}
	p.acquires++

	// No two in-use slots may share a content id.
	for _, s := range p.slots {
		if s.state == SlotInUse && s.contentID == contentID {
			p.cfg.Logger.Warn().Str("content_id", contentID).Msg("pool: content already assigned")
			acquiresTotal.WithLabelValues("backpressure").Inc()
			return Handle{}, false
		}
	}

	outcome := "hit"
	s := p.pickAvailableLocked(vpType)
	if s == nil {
		switch {
		case p.utilizationLocked() >= p.cfg.ExpandThreshold && len(p.slots) < p.cfg.MaxSize:
			var err error
			s, err = p.addSlotLocked(vpType)
			if err != nil {
				p.cfg.Logger.Error().Err(err).Msg("pool: expand failed")
				acquiresTotal.WithLabelValues("backpressure").Inc()
				return Handle{}, false
			}
			outcome = "create"
		default:
			s = p.recycleLocked(vpType)
			if s == nil {
				acquiresTotal.WithLabelValues("backpressure").Inc()
				p.publish("acquire_backpressure", contentID, map[string]any{"type": string(vpType)})
				return Handle{}, false
			}
			outcome = "recycle"
		}
	}

	s.state = SlotInUse
	s.contentID = contentID
	s.lastUsed = time.Now()
	s.useCount++
	p.updateSlotGauges()
	acquiresTotal.WithLabelValues(outcome).Inc()
	p.publish("acquire", s.id, map[string]any{"type": string(s.vpType), "content_id": contentID, "outcome": outcome})
	return Handle{PoolID: s.id, Type: s.vpType, ContentID: contentID, Resource: s.resource}, true
}

// pickAvailableLocked returns the most recently used available slot of the
// given type, keeping warm resources in rotation.
func (p *Pool) pickAvailableLocked(vpType types.ViewportType) *slot {
	var best *slot
	for _, s := range p.slots {
		if s.state != SlotAvailable || s.vpType != vpType {
			continue
		}
		if best == nil || s.lastUsed.After(best.lastUsed) {
			best = s
		}
	}
	return best
}

// recycleLocked re-tags the least recently used available slot of a
// different type, swapping its rendering resource for one of the requested
// type.
func (p *Pool) recycleLocked(vpType types.ViewportType) *slot {
	var lru *slot
	for _, s := range p.slots {
		if s.state != SlotAvailable || s.vpType == vpType {
			continue
		}
		if lru == nil || s.lastUsed.Before(lru.lastUsed) {
			lru = s
		}
	}
	if lru == nil {
		return nil
	}
	res, estMB, err := p.cfg.Factory.Create(vpType)
	if err != nil {
		p.cfg.Logger.Error().Err(err).Str("slot", lru.id).Msg("pool: recycle resource create failed")
		return nil
	}
	if err := p.cfg.Factory.Destroy(lru.resource); err != nil {
		p.cfg.Logger.Warn().Err(err).Str("slot", lru.id).Msg("pool: recycle resource destroy failed")
	}
	lru.vpType = vpType
	lru.resource = res
	lru.estMB = estMB
	return lru
}

func (p *Pool) utilizationLocked() float64 {
	if len(p.slots) == 0 {
		return 1
	}
	inUse := 0
	for _, s := range p.slots {
		if s.state == SlotInUse {
			inUse++
		}
	}
	return float64(inUse) / float64(len(p.slots))
}

// Release returns an in-use slot to the pool. Cleanup is deferred by a fixed
// short delay so rapid release/acquire cycles for the same content do not
// pay teardown cost twice; the slot becomes available once cleanup completes.
func (p *Pool) Release(poolID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.slots[poolID]
	if !ok {
		return slotNotFoundError{id: poolID}
	}
	if s.state != SlotInUse {
		p.cfg.Logger.Warn().Str("slot", poolID).Str("state", string(s.state)).Msg("pool: release of slot not in-use")
		return notInUseError{id: poolID}
	}
	s.contentID = ""
	s.state = SlotPendingCleanup
	s.lastUsed = time.Now()
	p.updateSlotGauges()
	releasesTotal.Inc()
	p.publish("release", poolID, nil)

	p.cleanupTimers[poolID] = time.AfterFunc(p.cfg.CleanupDelay, func() {
		p.finishCleanup(poolID)
	})
	return nil
}

// finishCleanup transitions a pending-cleanup slot back to available.
// Cleanup errors are logged and the slot is still returned to available to
// avoid deadlocking the pool.
func (p *Pool) finishCleanup(poolID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cleanupTimers, poolID)
	if p.closed {
		return
	}
	s, ok := p.slots[poolID]
	if !ok || s.state != SlotPendingCleanup {
		return
	}
	s.state = SlotAvailable
	p.updateSlotGauges()
	p.publish("cleanup_done", poolID, nil)
}
