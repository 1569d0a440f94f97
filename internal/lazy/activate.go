package lazy

import (
	"context"
	"time"
)

// Activate brings the viewport id to state ready.
//
// Ready instances just get their access metrics touched. A caller racing an
// in-flight activation joins it with a bounded wait instead of starting a
// second one. Otherwise admission is checked (active count and memory
// pressure) unless immediate is set; an inadmissible request first tries to
// free capacity by deactivating the least recently used ready instance.
//
// Returns (false, nil) on admission refusal: that is backpressure, not an
// error.
func (l *Layer) Activate(ctx context.Context, id string, surface any, immediate bool) (bool, error) {
	return l.activate(ctx, id, surface, immediate, true)
}

// activate carries the flag distinguishing caller-driven activation, which
// may deactivate the LRU ready instance to make room, from best-effort
// preloads, which are refused outright when inadmissible.
func (l *Layer) activate(ctx context.Context, id string, surface any, immediate, allowEvict bool) (bool, error) {
	l.mu.Lock()
	inst, ok := l.instances[id]
	if !ok || l.closed {
		l.mu.Unlock()
		return false, viewportNotFoundError{id: id}
	}

	switch inst.state {
	case StateReady:
		l.touchLocked(inst)
		l.mu.Unlock()
		return true, nil

	case StateInitializing:
		ch := inst.initDone
		l.mu.Unlock()
		return l.joinActivation(ctx, id, ch)
	}

	// uninitialized, or error retried as a fresh attempt.
	if !immediate && !l.admitLocked() {
		if !allowEvict {
			l.mu.Unlock()
			return false, nil
		}
		l.evictIdleLocked()
		if !l.admitLocked() {
			l.mu.Unlock()
			l.publish("activate_backpressure", id, nil)
			return false, nil
		}
	}

	inst.state = StateInitializing
	inst.initDone = make(chan struct{})
	surfaceArg := surface
	if surfaceArg == nil {
		surfaceArg = inst.surface
	} else {
		inst.surface = surfaceArg
	}
	l.mu.Unlock()

	engineID, err := l.cfg.Materializer.Materialize(ctx, id, surfaceArg)

	l.mu.Lock()
	done := inst.initDone
	inst.initDone = nil
	if _, still := l.instances[id]; !still || l.closed {
		// Unregistered or shut down while materializing; don't leak the
		// engine resource.
		close(done)
		l.mu.Unlock()
		if err == nil {
			_ = l.cfg.Materializer.Release(id, engineID)
		}
		return false, viewportNotFoundError{id: id}
	}
	if err != nil {
		inst.state = StateError
		close(done)
		l.mu.Unlock()
		l.cfg.Logger.Warn().Err(err).Str("viewport", id).Msg("lazy: materialization failed")
		l.publish("activate_error", id, map[string]any{"error": err.Error()})
		return false, err
	}
	inst.state = StateReady
	inst.engineID = engineID
	l.touchLocked(inst)
	close(done)
	l.mu.Unlock()

	l.publish("activate_ready", id, nil)
	if l.cfg.AdjacencyPreload {
		l.schedulePreload(adjacentIDs(id))
	}
	return true, nil
}

// joinActivation waits for the in-flight activation of id to settle.
func (l *Layer) joinActivation(ctx context.Context, id string, ch chan struct{}) (bool, error) {
	timer := time.NewTimer(l.cfg.ActivationTimeout)
	defer timer.Stop()
	select {
	case <-ch:
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
		return false, activationTimeoutError{id: id}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	inst, ok := l.instances[id]
	if !ok {
		return false, viewportNotFoundError{id: id}
	}
	if inst.state == StateReady {
		l.touchLocked(inst)
		return true, nil
	}
	return false, nil
}

// Deactivate releases the materialized resources of id and returns it to
// uninitialized. No-op when the instance is not ready.
func (l *Layer) Deactivate(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	inst, ok := l.instances[id]
	if !ok {
		return viewportNotFoundError{id: id}
	}
	l.deactivateLocked(inst)
	return nil
}

func (l *Layer) deactivateLocked(inst *instance) {
	if inst.inactivity != nil {
		inst.inactivity.Stop()
		inst.inactivity = nil
	}
	if inst.state != StateReady {
		return
	}
	if err := l.cfg.Materializer.Release(inst.id, inst.engineID); err != nil {
		l.cfg.Logger.Warn().Err(err).Str("viewport", inst.id).Msg("lazy: release failed")
	}
	inst.engineID = ""
	inst.state = StateUninitialized
	l.publish("deactivate", inst.id, nil)
}

// admitLocked checks activation admission: active count below MaxActive and
// no memory pressure.
func (l *Layer) admitLocked() bool {
	if l.activeCountLocked() >= l.cfg.MaxActive {
		return false
	}
	if l.cfg.Memory != nil && l.cfg.Memory.UnderPressure() {
		return false
	}
	return true
}

// evictIdleLocked deactivates the least recently used ready instance to free
// capacity for a new activation.
func (l *Layer) evictIdleLocked() {
	var lru *instance
	for _, inst := range l.instances {
		if inst.state != StateReady {
			continue
		}
		if lru == nil || inst.lastAccess.Before(lru.lastAccess) {
			lru = inst
		}
	}
	if lru != nil {
		l.deactivateLocked(lru)
	}
}

// touchLocked stamps access metrics, records history, and (re)arms the
// inactivity timer. Caller must hold l.mu and inst must be ready.
func (l *Layer) touchLocked(inst *instance) {
	inst.lastAccess = time.Now()
	inst.accessCount++
	l.history = append(l.history, inst.id)
	if len(l.history) > l.cfg.HistorySize {
		l.history = l.history[len(l.history)-l.cfg.HistorySize:]
	}
	if inst.inactivity != nil {
		inst.inactivity.Reset(l.cfg.InactivityTimeout)
		return
	}
	id := inst.id
	inst.inactivity = time.AfterFunc(l.cfg.InactivityTimeout, func() {
		l.expireInactive(id)
	})
}

// expireInactive deactivates a ready instance whose timer fired with no
// intervening access.
func (l *Layer) expireInactive(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inst, ok := l.instances[id]
	if !ok || l.closed || inst.state != StateReady {
		return
	}
	if time.Since(inst.lastAccess) < l.cfg.InactivityTimeout {
		// Accessed since the timer was armed; touchLocked resets the timer,
		// so this only races a concurrent reset.
		return
	}
	l.publish("inactivity_expired", id, nil)
	l.deactivateLocked(inst)
}
