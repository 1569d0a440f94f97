package types

// CreateSessionRequest is the payload for POST /sessions.
type CreateSessionRequest struct {
	// Optional session identifier. Generated when empty.
	// example: sess-42
	SessionID string `json:"session_id,omitempty" example:"sess-42"`
	// Series to load. When set, item ids and sizes come from the registry.
	// example: series-1.2.840.113619.2.5
	SeriesID string `json:"series_id,omitempty" example:"series-1.2.840.113619.2.5"`
	// Explicit ordered item ids. Ignored when series_id resolves.
	ItemIDs []string `json:"item_ids,omitempty"`
	// Chunking strategy: sequential|adaptive|priority-based|predictive.
	// Defaults to adaptive.
	// example: adaptive
	Strategy string `json:"strategy,omitempty" example:"adaptive"`
	// Explicit chunk size. 0 lets the scheduler derive one from network
	// speed and memory pressure.
	// example: 10
	ChunkSize int `json:"chunk_size,omitempty" example:"10"`
	// Optional priority (1..5, 1 most urgent) applied to every chunk when
	// the session is queued. 0 keeps the strategy-assigned priorities.
	// example: 2
	Priority int `json:"priority,omitempty" example:"2"`
}

// CreateSessionResponse is returned by POST /sessions.
type CreateSessionResponse struct {
	// Identifier of the created session.
	// example: sess-42
	SessionID string `json:"session_id" example:"sess-42"`
	// Number of items in the session.
	// example: 250
	TotalItems int `json:"total_items" example:"250"`
	// Number of chunks the item list was partitioned into.
	// example: 13
	TotalChunks int `json:"total_chunks" example:"13"`
	// Chunk size chosen for this session.
	// example: 20
	ChunkSize int `json:"chunk_size" example:"20"`
}

// ChunkProgress summarizes one chunk of a session.
type ChunkProgress struct {
	// Chunk identifier ({session}-chunk-{index}).
	// example: sess-42-chunk-0
	ChunkID string `json:"chunk_id" example:"sess-42-chunk-0"`
	// Position of the chunk within the session.
	// example: 0
	Index int `json:"index" example:"0"`
	// Scheduling priority (1 most urgent .. 5 idle).
	// example: 1
	Priority int `json:"priority" example:"1"`
	// Lifecycle status: pending|loading|completed|error|cancelled.
	// example: loading
	Status string `json:"status" example:"loading"`
	// Items loaded so far.
	// example: 7
	LoadedItems int `json:"loaded_items" example:"7"`
	// Items that failed to load.
	// example: 1
	FailedItems int `json:"failed_items" example:"1"`
	// Total items in the chunk.
	// example: 20
	TotalItems int `json:"total_items" example:"20"`
	// Bytes loaded so far.
	// example: 3670016
	BytesLoaded int64 `json:"bytes_loaded" example:"3670016"`
	// Estimated total bytes for the chunk.
	// example: 10485760
	BytesTotal int64 `json:"bytes_total" example:"10485760"`
	// Last measured transfer speed in bytes/sec.
	// example: 1048576
	NetworkBps float64 `json:"network_bps" example:"1048576"`
	// Estimated seconds remaining, 0 when unknown.
	// example: 6.5
	ETASeconds float64 `json:"eta_seconds" example:"6.5"`
	// Error message for status=error.
	Error string `json:"error,omitempty"`
}

// SessionProgressResponse is returned by GET /sessions/{id}/progress.
type SessionProgressResponse struct {
	// Session identifier.
	// example: sess-42
	SessionID string `json:"session_id" example:"sess-42"`
	// Aggregate status: loading|completed|error|cancelled.
	// example: loading
	Status string `json:"status" example:"loading"`
	// Chunks finished successfully.
	// example: 5
	CompletedChunks int `json:"completed_chunks" example:"5"`
	// Chunks finished with an error.
	// example: 1
	FailedChunks int `json:"failed_chunks" example:"1"`
	// Total chunks in the session.
	// example: 13
	TotalChunks int `json:"total_chunks" example:"13"`
	// Items loaded across all chunks.
	// example: 117
	LoadedItems int `json:"loaded_items" example:"117"`
	// Items failed across all chunks.
	// example: 2
	FailedItems int `json:"failed_items" example:"2"`
	// Total items in the session.
	// example: 250
	TotalItems int `json:"total_items" example:"250"`
	// Bytes loaded across all chunks.
	BytesLoaded int64 `json:"bytes_loaded"`
	// Estimated total bytes across all chunks.
	BytesTotal int64 `json:"bytes_total"`
	// Per-chunk breakdown.
	Chunks []ChunkProgress `json:"chunks,omitempty"`
}

// QueueSessionRequest is the payload for POST /sessions/{id}/queue.
type QueueSessionRequest struct {
	// Priority applied to every chunk (1..5). 0 keeps current priorities.
	// example: 1
	Priority int `json:"priority,omitempty" example:"1"`
}

// PoolStatsResponse summarizes viewport pool occupancy for GET /pool/stats.
type PoolStatsResponse struct {
	// Total slots currently in the pool.
	// example: 6
	Size int `json:"size" example:"6"`
	// Slots ready for acquisition.
	// example: 2
	Available int `json:"available" example:"2"`
	// Slots currently assigned to content.
	// example: 3
	InUse int `json:"in_use" example:"3"`
	// Slots awaiting deferred cleanup.
	// example: 1
	PendingCleanup int `json:"pending_cleanup" example:"1"`
	// Fraction of acquires served without allocation.
	// example: 0.87
	Efficiency float64 `json:"efficiency" example:"0.87"`
	// Rough memory estimate for pooled resources in MB.
	// example: 384
	MemoryEstimateMB int `json:"memory_estimate_mb" example:"384"`
	// Configured bounds.
	MinSize int `json:"min_size"`
	MaxSize int `json:"max_size"`
}

// GCResponse is returned by POST /pool/gc.
type GCResponse struct {
	// Slots removed by the pass.
	// example: 2
	Cleaned int `json:"cleaned" example:"2"`
	// Estimated memory freed in MB.
	// example: 128
	FreedEstimateMB int `json:"freed_estimate_mb" example:"128"`
	// Pass duration in milliseconds.
	// example: 3
	DurationMS int64 `json:"duration_ms" example:"3"`
	// Non-fatal errors encountered while cleaning.
	Errors []string `json:"errors,omitempty"`
}

// ViewportStatus describes one registered logical viewport.
type ViewportStatus struct {
	// Logical viewport id.
	// example: viewport-3
	ID string `json:"id" example:"viewport-3"`
	// Lifecycle state: uninitialized|initializing|ready|error|disposed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Last access in unix seconds.
	// example: 1700000000
	LastAccess int64 `json:"last_access_unix" example:"1700000000"`
	// Number of accesses since registration.
	// example: 12
	AccessCount int `json:"access_count" example:"12"`
	// Activation priority hint.
	// example: 1
	Priority int `json:"priority" example:"1"`
}

// AcquireRequest is the payload for POST /pool/acquire.
type AcquireRequest struct {
	// Viewport type to acquire: stack|volume.
	// example: stack
	Type string `json:"type" example:"stack"`
	// Content id to assign to the slot.
	// example: series-9/img-1
	ContentID string `json:"content_id" example:"series-9/img-1"`
}

// AcquireResponse is returned by POST /pool/acquire.
type AcquireResponse struct {
	// Pool-assigned slot id.
	// example: vp-pool-4
	PoolID string `json:"pool_id" example:"vp-pool-4"`
	// Slot type.
	// example: stack
	Type string `json:"type" example:"stack"`
}

// HealthReport carries issues and recommendations from a component health check.
type HealthReport struct {
	Healthy         bool     `json:"healthy"`
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// StatusResponse is the aggregate view returned by GET /status.
type StatusResponse struct {
	// Overall daemon state (ready as long as the scheduler loop runs).
	// example: ready
	State string `json:"state" example:"ready"`
	// Uptime in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
	// Active loading sessions.
	ActiveSessions int `json:"active_sessions"`
	// Chunks currently loading.
	LoadingChunks int `json:"loading_chunks"`
	// Chunks waiting in priority buckets.
	QueuedChunks int `json:"queued_chunks"`
	// Current memory pressure reading in [0,1].
	MemoryPressure float64 `json:"memory_pressure"`
	// Last measured network speed in bytes/sec.
	NetworkBps float64 `json:"network_bps"`
	// Pool occupancy.
	Pool PoolStatsResponse `json:"pool"`
	// Registered logical viewports.
	Viewports []ViewportStatus `json:"viewports,omitempty"`
	// Health summary across components.
	Health HealthReport `json:"health"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: session not found: sess-9
	Error string `json:"error" example:"session not found: sess-9"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
