package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"viewportd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	CreateSession(req types.CreateSessionRequest) (types.CreateSessionResponse, error)
	QueueSession(id string, priority int) error
	CancelSession(id string) error
	SessionProgress(id string) (types.SessionProgressResponse, error)

	Viewports() []types.ViewportStatus
	ActivateViewport(ctx context.Context, id string, immediate bool) (bool, error)
	DeactivateViewport(id string) error

	AcquireSlot(req types.AcquireRequest) (types.AcquireResponse, bool, error)
	ReleaseSlot(poolID string) error
	PoolStats() types.PoolStatsResponse
	RunPoolGC() types.GCResponse

	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Post("/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateSessionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := svc.CreateSession(req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	})

	r.Get("/sessions/{id}/progress", func(w http.ResponseWriter, r *http.Request) {
		resp, err := svc.SessionProgress(chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Post("/sessions/{id}/queue", func(w http.ResponseWriter, r *http.Request) {
		var req types.QueueSessionRequest
		if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
			return
		}
		if err := svc.QueueSession(chi.URLParam(r, "id"), req.Priority); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	r.Delete("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CancelSession(chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/viewports", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"viewports": svc.Viewports()})
	})

	r.Post("/viewports/{id}/activate", func(w http.ResponseWriter, r *http.Request) {
		immediate := r.URL.Query().Get("immediate") == "1"
		// Join server base context with request context so shutdown cancels
		// pending activations too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		ok, err := svc.ActivateViewport(ctx, chi.URLParam(r, "id"), immediate)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeServiceError(w, r, err)
			return
		}
		if !ok {
			IncrementBackpressure("activation_refused")
			writeJSONError(w, http.StatusTooManyRequests, "activation refused: active viewport limit or memory pressure")
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/viewports/{id}/deactivate", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeactivateViewport(chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/pool/acquire", func(w http.ResponseWriter, r *http.Request) {
		var req types.AcquireRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, ok, err := svc.AcquireSlot(req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if !ok {
			IncrementBackpressure("pool_exhausted")
			writeJSONError(w, http.StatusTooManyRequests, "viewport pool exhausted")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Post("/pool/release/{poolID}", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ReleaseSlot(chi.URLParam(r, "poolID")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	r.Get("/pool/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.PoolStats())
	})

	r.Post("/pool/gc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.RunPoolGC())
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces content type and body size, decoding into dst.
// Writes the error response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
