package lazy

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var numericSuffix = regexp.MustCompile(`^(.*?)(\d+)$`)

// adjacentIDs returns the ids differing by ±1 in a trailing numeric suffix.
// The convention is advisory; ids without a suffix have no neighbors.
func adjacentIDs(id string) []string {
	m := numericSuffix.FindStringSubmatch(id)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	var out []string
	if n > 0 {
		out = append(out, fmt.Sprintf("%s%d", m[1], n-1))
	}
	out = append(out, fmt.Sprintf("%s%d", m[1], n+1))
	return out
}

// schedulePreload arms best-effort background activation of the given ids
// after the configured delay. Failures are silently ignored; preloads never
// evict anything, an inadmissible id is simply skipped.
func (l *Layer) schedulePreload(ids []string) {
	if len(ids) == 0 {
		return
	}
	time.AfterFunc(l.cfg.PreloadDelay, func() {
		for _, id := range ids {
			l.mu.Lock()
			inst, ok := l.instances[id]
			skip := !ok || l.closed || inst.state != StateUninitialized && inst.state != StateError
			l.mu.Unlock()
			if skip {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), l.cfg.ActivationTimeout)
			_, _ = l.activate(ctx, id, nil, false, false)
			cancel()
		}
	})
}

// predictLoop periodically preloads ids whose share of recent accesses
// exceeds the probability threshold.
func (l *Layer) predictLoop(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.PreloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.schedulePreload(l.predictCandidates())
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		}
	}
}

// predictCandidates computes a frequency histogram over the recent access
// history and returns the inactive ids with probability above the threshold.
func (l *Layer) predictCandidates() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.history) == 0 {
		return nil
	}
	counts := make(map[string]int, len(l.history))
	for _, id := range l.history {
		counts[id]++
	}
	total := float64(len(l.history))
	var out []string
	for id, c := range counts {
		inst, ok := l.instances[id]
		if !ok || inst.state == StateReady || inst.state == StateInitializing {
			continue
		}
		if float64(c)/total > preloadProbability {
			out = append(out, id)
		}
	}
	return out
}
