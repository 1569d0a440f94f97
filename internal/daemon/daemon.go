// Package daemon ties the viewport pool, lazy activation layer, and
// progressive scheduler together behind the Service interface consumed by
// the HTTP layer.
package daemon

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"viewportd/internal/lazy"
	"viewportd/internal/monitor"
	"viewportd/internal/pool"
	"viewportd/internal/registry"
	"viewportd/internal/scheduler"
	"viewportd/pkg/types"
)

// Options carries the constructed components into New.
type Options struct {
	Registry []types.Series
	Pool     *pool.Pool
	Lazy     *lazy.Layer
	Sched    *scheduler.Scheduler
	Network  *monitor.NetworkMonitor
	Memory   *monitor.MemoryMonitor
	Logger   zerolog.Logger
}

type Daemon struct {
	reg     []types.Series
	pool    *pool.Pool
	lazy    *lazy.Layer
	sched   *scheduler.Scheduler
	network *monitor.NetworkMonitor
	memory  *monitor.MemoryMonitor
	log     zerolog.Logger

	start time.Time
	ready atomic.Bool
}

func New(opts Options) *Daemon {
	return &Daemon{
		reg:     opts.Registry,
		pool:    opts.Pool,
		lazy:    opts.Lazy,
		sched:   opts.Sched,
		network: opts.Network,
		memory:  opts.Memory,
		log:     opts.Logger,
		start:   time.Now(),
	}
}

// Start launches the background loops of all components and marks the
// daemon ready.
func (d *Daemon) Start(ctx context.Context) {
	d.pool.Start(ctx)
	d.lazy.Start(ctx)
	d.sched.Start(ctx)
	d.ready.Store(true)
}

// Close shuts components down in reverse dependency order.
func (d *Daemon) Close() error {
	d.ready.Store(false)
	err := d.sched.Close()
	if lerr := d.lazy.Close(); err == nil {
		err = lerr
	}
	if perr := d.pool.Close(); err == nil {
		err = perr
	}
	return err
}

func (d *Daemon) Ready() bool { return d.ready.Load() }

// CreateSession resolves the item list from the series registry or the
// explicit ids and creates a scheduler session. A set priority queues the
// session immediately.
func (d *Daemon) CreateSession(req types.CreateSessionRequest) (types.CreateSessionResponse, error) {
	id := req.SessionID
	if id == "" {
		id = "sess-" + uuid.NewString()
	}

	var items []scheduler.Item
	if req.SeriesID != "" {
		series, ok := registry.Find(d.reg, req.SeriesID)
		if !ok {
			return types.CreateSessionResponse{}, scheduler.ErrInvalidRequest("unknown series: " + req.SeriesID)
		}
		items = make([]scheduler.Item, len(series.Images))
		for i, img := range series.Images {
			items[i] = scheduler.Item{ID: img.ID, SizeBytes: img.SizeBytes}
		}
	} else {
		items = make([]scheduler.Item, len(req.ItemIDs))
		for i, itemID := range req.ItemIDs {
			items[i] = scheduler.Item{ID: itemID}
		}
	}

	resp, err := d.sched.CreateSession(id, items, scheduler.SessionOptions{
		Strategy:  types.LoadStrategy(req.Strategy),
		ChunkSize: req.ChunkSize,
	})
	if err != nil {
		return resp, err
	}
	if req.Priority > 0 {
		if err := d.QueueSession(id, req.Priority); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (d *Daemon) QueueSession(id string, priority int) error {
	return d.sched.QueueSession(id, scheduler.Priority(priority))
}

func (d *Daemon) CancelSession(id string) error {
	return d.sched.CancelSession(id)
}

func (d *Daemon) SessionProgress(id string) (types.SessionProgressResponse, error) {
	return d.sched.SessionProgress(id)
}

// Viewports lists the lazy layer's registered instances.
func (d *Daemon) Viewports() []types.ViewportStatus {
	statuses := d.lazy.Statuses()
	out := make([]types.ViewportStatus, len(statuses))
	for i, st := range statuses {
		out[i] = types.ViewportStatus{
			ID:          st.ID,
			State:       string(st.State),
			LastAccess:  st.LastAccess.Unix(),
			AccessCount: st.AccessCount,
			Priority:    st.Priority,
		}
	}
	return out
}

// ActivateViewport registers unknown ids on first use, then activates.
func (d *Daemon) ActivateViewport(ctx context.Context, id string, immediate bool) (bool, error) {
	if !d.lazy.Known(id) {
		d.lazy.Register(id, 0)
	}
	return d.lazy.Activate(ctx, id, nil, immediate)
}

func (d *Daemon) DeactivateViewport(id string) error {
	return d.lazy.Deactivate(id)
}

func (d *Daemon) AcquireSlot(req types.AcquireRequest) (types.AcquireResponse, bool, error) {
	vpType := types.ViewportType(req.Type)
	if !vpType.Valid() {
		return types.AcquireResponse{}, false, scheduler.ErrInvalidRequest("unknown viewport type: " + req.Type)
	}
	if req.ContentID == "" {
		return types.AcquireResponse{}, false, scheduler.ErrInvalidRequest("content_id is required")
	}
	h, ok := d.pool.Acquire(vpType, req.ContentID)
	if !ok {
		return types.AcquireResponse{}, false, nil
	}
	return types.AcquireResponse{PoolID: h.PoolID, Type: string(h.Type)}, true, nil
}

func (d *Daemon) ReleaseSlot(poolID string) error {
	return d.pool.Release(poolID)
}

func (d *Daemon) PoolStats() types.PoolStatsResponse {
	return poolStatsResponse(d.pool.Stats())
}

func (d *Daemon) RunPoolGC() types.GCResponse {
	rep := d.pool.RunGarbageCollection()
	return types.GCResponse{
		Cleaned:         rep.Cleaned,
		FreedEstimateMB: rep.FreedEstimateMB,
		DurationMS:      rep.Duration.Milliseconds(),
		Errors:          rep.Errors,
	}
}

// Status aggregates the component views into one response.
func (d *Daemon) Status() types.StatusResponse {
	state := "starting"
	if d.ready.Load() {
		state = "ready"
	}
	st := d.sched.Stats()
	resp := types.StatusResponse{
		State:          state,
		UptimeSeconds:  int64(time.Since(d.start).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		ActiveSessions: st.ActiveSessions,
		LoadingChunks:  st.LoadingChunks,
		QueuedChunks:   st.QueuedChunks,
		Pool:           poolStatsResponse(d.pool.Stats()),
		Viewports:      d.Viewports(),
	}
	if d.memory != nil {
		resp.MemoryPressure = d.memory.Pressure()
	}
	if d.network != nil {
		resp.NetworkBps = d.network.BytesPerSecond()
	}
	resp.Health = mergeHealth(d.pool.HealthCheck(), d.sched.HealthCheck())
	return resp
}

func poolStatsResponse(st pool.Stats) types.PoolStatsResponse {
	return types.PoolStatsResponse{
		Size:             st.Size,
		Available:        st.Available,
		InUse:            st.InUse,
		PendingCleanup:   st.PendingCleanup,
		Efficiency:       st.Efficiency,
		MemoryEstimateMB: st.MemoryEstimateMB,
		MinSize:          st.MinSize,
		MaxSize:          st.MaxSize,
	}
}

func mergeHealth(reports ...types.HealthReport) types.HealthReport {
	merged := types.HealthReport{Healthy: true}
	for _, r := range reports {
		if !r.Healthy {
			merged.Healthy = false
		}
		merged.Issues = append(merged.Issues, r.Issues...)
		merged.Recommendations = append(merged.Recommendations, r.Recommendations...)
	}
	return merged
}
