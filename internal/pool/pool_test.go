package pool

import (
	"testing"
	"time"

	"viewportd/internal/events"
	"viewportd/pkg/types"
)

func newTestPool(t *testing.T, cfg Config) *Pool {
	t.Helper()
	if cfg.CleanupDelay == 0 {
		cfg.CleanupDelay = 5 * time.Millisecond
	}
	p := New(cfg)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// waitAvailable polls until the pool reports at least n available slots.
func waitAvailable(t *testing.T, p *Pool, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Stats().Available >= n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d available slots, stats=%+v", n, p.Stats())
}

func TestAcquireExpandAndBackpressure(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 4})
	var handles []Handle
	for i := 0; i < 4; i++ {
		h, ok := p.Acquire(types.ViewportStack, "content-"+string(rune('a'+i)))
		if !ok {
			t.Fatalf("acquire %d failed unexpectedly", i+1)
		}
		handles = append(handles, h)
	}
	if st := p.Stats(); st.Size != 4 {
		t.Fatalf("expected pool expanded to 4, got %d", st.Size)
	}
	// 5th acquire must signal backpressure, not error.
	if _, ok := p.Acquire(types.ViewportStack, "content-e"); ok {
		t.Fatalf("expected backpressure on 5th acquire")
	}
	// After a release the content becomes acquirable again.
	if err := p.Release(handles[0].PoolID); err != nil {
		t.Fatalf("release: %v", err)
	}
	waitAvailable(t, p, 1)
	if _, ok := p.Acquire(types.ViewportStack, "content-e"); !ok {
		t.Fatalf("expected acquire to succeed after release")
	}
}

func TestPoolSizeStaysWithinBounds(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 4, MaxIdleTime: time.Millisecond})
	var ids []string
	for i := 0; i < 10; i++ {
		if h, ok := p.Acquire(types.ViewportStack, "c-"+string(rune('0'+i))); ok {
			ids = append(ids, h.PoolID)
		}
		if st := p.Stats(); st.Size < 2 || st.Size > 4 {
			t.Fatalf("size out of bounds after acquire: %+v", st)
		}
	}
	for _, id := range ids {
		_ = p.Release(id)
		if st := p.Stats(); st.Size < 2 || st.Size > 4 {
			t.Fatalf("size out of bounds after release: %+v", st)
		}
	}
	waitAvailable(t, p, len(ids))
	time.Sleep(2 * time.Millisecond)
	p.RunGarbageCollection()
	if st := p.Stats(); st.Size < 2 || st.Size > 4 {
		t.Fatalf("size out of bounds after gc: %+v", st)
	}
}

func TestAcquireRejectsDuplicateContent(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 4})
	if _, ok := p.Acquire(types.ViewportStack, "same"); !ok {
		t.Fatalf("first acquire failed")
	}
	if _, ok := p.Acquire(types.ViewportStack, "same"); ok {
		t.Fatalf("expected rejection of duplicate content id")
	}
}

func TestAcquireRecyclesOtherType(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 2})
	h, ok := p.Acquire(types.ViewportVolume, "vol-1")
	if !ok {
		t.Fatalf("expected recycle of a stack slot into a volume slot")
	}
	if h.Type != types.ViewportVolume {
		t.Fatalf("expected volume handle, got %s", h.Type)
	}
}

func TestReleaseStates(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 4, CleanupDelay: 20 * time.Millisecond})
	h, ok := p.Acquire(types.ViewportStack, "c1")
	if !ok {
		t.Fatalf("acquire failed")
	}
	if err := p.Release(h.PoolID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if st := p.Stats(); st.PendingCleanup != 1 {
		t.Fatalf("expected deferred cleanup, stats=%+v", st)
	}
	// Releasing again while pending-cleanup is rejected and state unchanged.
	err := p.Release(h.PoolID)
	if err == nil || !IsNotInUse(err) {
		t.Fatalf("expected not-in-use error, got %v", err)
	}
	waitAvailable(t, p, 2)
	if err := p.Release("vp-pool-999"); err == nil || !IsSlotNotFound(err) {
		t.Fatalf("expected slot-not-found error, got %v", err)
	}
}

func TestGCReapsIdleDownToMin(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 6, MaxIdleTime: 5 * time.Millisecond})
	// Grow to 4 then release everything.
	var ids []string
	for i := 0; i < 4; i++ {
		h, ok := p.Acquire(types.ViewportStack, "c-"+string(rune('0'+i)))
		if !ok {
			t.Fatalf("acquire %d failed", i)
		}
		ids = append(ids, h.PoolID)
	}
	for _, id := range ids {
		if err := p.Release(id); err != nil {
			t.Fatalf("release: %v", err)
		}
	}
	waitAvailable(t, p, 4)
	time.Sleep(10 * time.Millisecond) // exceed MaxIdleTime
	rep := p.RunGarbageCollection()
	if rep.Cleaned != 2 {
		t.Fatalf("expected 2 cleaned, got %+v", rep)
	}
	if st := p.Stats(); st.Size != 2 {
		t.Fatalf("expected size back at min, stats=%+v", st)
	}
}

func TestGCNeverRemovesInUse(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 4, MaxIdleTime: time.Nanosecond})
	h, ok := p.Acquire(types.ViewportStack, "held")
	if !ok {
		t.Fatalf("acquire failed")
	}
	p.RunBurstGC()
	st := p.Stats()
	if st.InUse != 1 {
		t.Fatalf("in-use slot removed by gc: %+v", st)
	}
	if err := p.Release(h.PoolID); err != nil {
		t.Fatalf("release after gc: %v", err)
	}
}

func TestBurstGCIgnoresIdleAge(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 6, MaxIdleTime: time.Hour})
	var ids []string
	for i := 0; i < 4; i++ {
		h, ok := p.Acquire(types.ViewportStack, "c-"+string(rune('0'+i)))
		if !ok {
			t.Fatalf("acquire %d failed", i)
		}
		ids = append(ids, h.PoolID)
	}
	// Release two, keep two held so utilization stays above the shrink
	// threshold and only idle age / burst mode matter.
	for _, id := range ids[2:] {
		_ = p.Release(id)
	}
	waitAvailable(t, p, 2)
	// Ordinary GC leaves fresh slots alone; burst mode removes them anyway.
	if rep := p.RunGarbageCollection(); rep.Cleaned != 0 {
		t.Fatalf("normal gc should not reap fresh slots: %+v", rep)
	}
	rep := p.RunBurstGC()
	if rep.Cleaned != 2 || rep.FreedEstimateMB <= 0 {
		t.Fatalf("unexpected burst report: %+v", rep)
	}
	st := p.Stats()
	if st.Size != 2 || st.InUse != 2 {
		t.Fatalf("expected only held slots to remain, stats=%+v", st)
	}
}

func TestGCShrinksAtLowUtilization(t *testing.T) {
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 6, MaxIdleTime: time.Hour})
	var ids []string
	for i := 0; i < 4; i++ {
		h, ok := p.Acquire(types.ViewportStack, "c-"+string(rune('0'+i)))
		if !ok {
			t.Fatalf("acquire %d failed", i)
		}
		ids = append(ids, h.PoolID)
	}
	for _, id := range ids {
		_ = p.Release(id)
	}
	waitAvailable(t, p, 4)
	// Nothing is idle past MaxIdleTime, but utilization is zero, so the
	// shrink pass trims back to min.
	rep := p.RunGarbageCollection()
	if rep.Cleaned != 2 {
		t.Fatalf("expected shrink to clean 2, got %+v", rep)
	}
	if st := p.Stats(); st.Size != 2 {
		t.Fatalf("expected min size after shrink, stats=%+v", st)
	}
}

func TestPoolEvents(t *testing.T) {
	pub := events.NewMemoryPublisher()
	p := newTestPool(t, Config{MinSize: 2, MaxSize: 4, Publisher: pub})
	h, _ := p.Acquire(types.ViewportStack, "c1")
	_ = p.Release(h.PoolID)
	names := pub.Names()
	if len(names) < 2 || names[0] != "acquire" || names[1] != "release" {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := New(Config{MinSize: 2, MaxSize: 4})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, ok := p.Acquire(types.ViewportStack, "c1"); ok {
		t.Fatalf("acquire after close must fail")
	}
}
