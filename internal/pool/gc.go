package pool

import (
	"sort"
	"time"
)

// RunGarbageCollection runs one ordinary GC pass: reap available slots idle
// past MaxIdleTime, then shrink under low utilization.
func (p *Pool) RunGarbageCollection() GCReport {
	return p.runGC(false)
}

// RunBurstGC runs an aggressive pass for memory-pressure situations: every
// available slot above MinSize is removed regardless of idle age.
func (p *Pool) RunBurstGC() GCReport {
	return p.runGC(true)
}

func (p *Pool) runGC(aggressive bool) GCReport {
	start := time.Now()
	var rep GCReport

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return rep
	}

	// Idle-age reaping (or everything available, in burst mode), oldest
	// first, never below MinSize. In-use and pending-cleanup slots are never
	// touched.
	cutoff := time.Now().Add(-p.cfg.MaxIdleTime)
	var candidates []*slot
	for _, s := range p.slots {
		if s.state != SlotAvailable {
			continue
		}
		if aggressive || s.lastUsed.Before(cutoff) {
			candidates = append(candidates, s)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].lastUsed.Before(candidates[j].lastUsed) })
	for _, s := range candidates {
		if len(p.slots) <= p.cfg.MinSize {
			break
		}
		p.removeSlotLocked(s, &rep)
	}

	// Shrink pass: at low utilization, trim least-used available slots down
	// to a computed target.
	if !aggressive && p.utilizationLocked() <= p.cfg.ShrinkThreshold {
		inUse := 0
		for _, s := range p.slots {
			if s.state == SlotInUse {
				inUse++
			}
		}
		target := inUse * 2
		if target < p.cfg.MinSize {
			target = p.cfg.MinSize
		}
		var avail []*slot
		for _, s := range p.slots {
			if s.state == SlotAvailable {
				avail = append(avail, s)
			}
		}
		sort.Slice(avail, func(i, j int) bool {
			if avail[i].useCount != avail[j].useCount {
				return avail[i].useCount < avail[j].useCount
			}
			return avail[i].lastUsed.Before(avail[j].lastUsed)
		})
		for _, s := range avail {
			if len(p.slots) <= target {
				break
			}
			p.removeSlotLocked(s, &rep)
		}
	}
	p.updateSlotGauges()
	p.mu.Unlock()

	rep.Duration = time.Since(start)
	mode := "normal"
	if aggressive {
		mode = "burst"
	}
	gcRunsTotal.WithLabelValues(mode).Inc()
	gcCleanedTotal.Add(float64(rep.Cleaned))
	if rep.Cleaned > 0 || len(rep.Errors) > 0 {
		p.cfg.Logger.Debug().Int("cleaned", rep.Cleaned).Int("freed_mb", rep.FreedEstimateMB).Str("mode", mode).Msg("pool: gc pass")
	}
	p.publish("gc_done", "", map[string]any{"cleaned": rep.Cleaned, "freed_mb": rep.FreedEstimateMB, "mode": mode})
	return rep
}

// removeSlotLocked disposes a slot and records it in the report. Caller must
// hold p.mu.
func (p *Pool) removeSlotLocked(s *slot, rep *GCReport) {
	if err := p.cfg.Factory.Destroy(s.resource); err != nil {
		rep.Errors = append(rep.Errors, err.Error())
	}
	s.state = SlotDisposed
	delete(p.slots, s.id)
	rep.Cleaned++
	rep.FreedEstimateMB += s.estMB
}
