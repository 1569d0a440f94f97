package daemon

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"viewportd/internal/lazy"
	"viewportd/internal/pool"
	"viewportd/internal/scheduler"
	"viewportd/pkg/types"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	p := pool.New(pool.Config{MinSize: 1, MaxSize: 2, Factory: pool.StubFactory{}, Logger: zerolog.Nop()})
	l := lazy.New(lazy.Config{Materializer: lazy.StubMaterializer{}, Logger: zerolog.Nop()})
	s := scheduler.New(scheduler.Config{Fetcher: scheduler.NewSimFetcher(1 << 40), Logger: zerolog.Nop()})
	d := New(Options{
		Registry: []types.Series{
			{ID: "series-1", Modality: "CT", Images: []types.ImageRef{
				{ID: "img-0", SizeBytes: 1024},
				{ID: "img-1", SizeBytes: 1024},
				{ID: "img-2", SizeBytes: 1024},
			}},
		},
		Pool:   p,
		Lazy:   l,
		Sched:  s,
		Logger: zerolog.Nop(),
	})
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestCreateSessionFromSeries(t *testing.T) {
	d := newTestDaemon(t)

	resp, err := d.CreateSession(types.CreateSessionRequest{SessionID: "s1", SeriesID: "series-1"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if resp.TotalItems != 3 {
		t.Fatalf("total items = %d, want 3", resp.TotalItems)
	}

	_, err = d.CreateSession(types.CreateSessionRequest{SessionID: "s2", SeriesID: "series-missing"})
	if !scheduler.IsInvalidRequest(err) {
		t.Fatalf("unknown series: expected invalid request, got %v", err)
	}
}

func TestCreateSessionGeneratesID(t *testing.T) {
	d := newTestDaemon(t)
	resp, err := d.CreateSession(types.CreateSessionRequest{ItemIDs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if !strings.HasPrefix(resp.SessionID, "sess-") {
		t.Fatalf("generated id = %q", resp.SessionID)
	}
}

func TestCreateSessionWithPriorityQueuesImmediately(t *testing.T) {
	d := newTestDaemon(t)
	resp, err := d.CreateSession(types.CreateSessionRequest{
		SessionID: "auto",
		SeriesID:  "series-1",
		Priority:  1,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	// All chunks must be queued or already dispatched once the scheduler ticks.
	deadline := time.Now().Add(2 * time.Second)
	for {
		d.sched.Tick()
		prog, err := d.SessionProgress(resp.SessionID)
		if err != nil {
			t.Fatalf("SessionProgress: %v", err)
		}
		if prog.Status == "completed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session never completed, status %q", prog.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestActivateViewportRegistersOnFirstUse(t *testing.T) {
	d := newTestDaemon(t)
	ok, err := d.ActivateViewport(context.Background(), "viewport-1", false)
	if err != nil || !ok {
		t.Fatalf("ActivateViewport: ok=%v err=%v", ok, err)
	}
	vps := d.Viewports()
	if len(vps) != 1 || vps[0].ID != "viewport-1" || vps[0].State != string(lazy.StateReady) {
		t.Fatalf("viewports = %+v", vps)
	}
	if err := d.DeactivateViewport("viewport-1"); err != nil {
		t.Fatalf("DeactivateViewport: %v", err)
	}
}

func TestActivateViewportRepeatDoesNotWarn(t *testing.T) {
	var logs bytes.Buffer
	p := pool.New(pool.Config{MinSize: 1, MaxSize: 2, Factory: pool.StubFactory{}, Logger: zerolog.Nop()})
	l := lazy.New(lazy.Config{Materializer: lazy.StubMaterializer{}, Logger: zerolog.New(&logs)})
	s := scheduler.New(scheduler.Config{Fetcher: scheduler.NewSimFetcher(1 << 40), Logger: zerolog.Nop()})
	d := New(Options{Pool: p, Lazy: l, Sched: s, Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = d.Close() })

	for i := 0; i < 3; i++ {
		if ok, err := d.ActivateViewport(context.Background(), "viewport-1", false); !ok || err != nil {
			t.Fatalf("activation %d: ok=%v err=%v", i, ok, err)
		}
	}
	if strings.Contains(logs.String(), "duplicate registration") {
		t.Fatalf("repeated activation warned: %s", logs.String())
	}
}

func TestAcquireSlotValidation(t *testing.T) {
	d := newTestDaemon(t)

	if _, _, err := d.AcquireSlot(types.AcquireRequest{Type: "hologram", ContentID: "c1"}); !scheduler.IsInvalidRequest(err) {
		t.Fatalf("bad type: expected invalid request, got %v", err)
	}
	if _, _, err := d.AcquireSlot(types.AcquireRequest{Type: "stack"}); !scheduler.IsInvalidRequest(err) {
		t.Fatalf("missing content: expected invalid request, got %v", err)
	}

	resp, ok, err := d.AcquireSlot(types.AcquireRequest{Type: "stack", ContentID: "c1"})
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if resp.PoolID == "" {
		t.Fatal("acquire returned empty pool id")
	}
	if err := d.ReleaseSlot(resp.PoolID); err != nil {
		t.Fatalf("ReleaseSlot: %v", err)
	}
	if err := d.ReleaseSlot("vp-pool-999"); !pool.IsSlotNotFound(err) {
		t.Fatalf("unknown slot: expected not-found, got %v", err)
	}
}

func TestStatusAndReadiness(t *testing.T) {
	d := newTestDaemon(t)

	if d.Ready() {
		t.Fatal("daemon ready before Start")
	}
	if st := d.Status(); st.State != "starting" {
		t.Fatalf("state = %q before Start", st.State)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	if !d.Ready() {
		t.Fatal("daemon not ready after Start")
	}
	st := d.Status()
	if st.State != "ready" {
		t.Fatalf("state = %q after Start", st.State)
	}
	if st.Pool.Size < 1 {
		t.Fatalf("pool stats missing: %+v", st.Pool)
	}
	if !st.Health.Healthy {
		t.Fatalf("fresh daemon unhealthy: %+v", st.Health)
	}
}

func TestRunPoolGCMapsReport(t *testing.T) {
	d := newTestDaemon(t)
	resp := d.RunPoolGC()
	if resp.Cleaned < 0 || resp.DurationMS < 0 {
		t.Fatalf("gc response %+v", resp)
	}
}
