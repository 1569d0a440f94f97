package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"viewportd/internal/scheduler"
	"viewportd/pkg/types"
)

// fakeService implements Service with injectable behavior.
type fakeService struct {
	createErr    error
	progressErr  error
	queueErr     error
	cancelErr    error
	activateOK   bool
	activateErr  error
	acquireOK    bool
	acquireErr   error
	releaseErr   error
	ready        bool
	lastSession  string
	lastPriority int
}

func (f *fakeService) CreateSession(req types.CreateSessionRequest) (types.CreateSessionResponse, error) {
	if f.createErr != nil {
		return types.CreateSessionResponse{}, f.createErr
	}
	id := req.SessionID
	if id == "" {
		id = "generated"
	}
	f.lastSession = id
	return types.CreateSessionResponse{SessionID: id, TotalItems: len(req.ItemIDs), TotalChunks: 1, ChunkSize: 10}, nil
}

func (f *fakeService) QueueSession(id string, priority int) error {
	f.lastSession, f.lastPriority = id, priority
	return f.queueErr
}

func (f *fakeService) CancelSession(id string) error {
	f.lastSession = id
	return f.cancelErr
}

func (f *fakeService) SessionProgress(id string) (types.SessionProgressResponse, error) {
	if f.progressErr != nil {
		return types.SessionProgressResponse{}, f.progressErr
	}
	return types.SessionProgressResponse{SessionID: id, Status: "loading"}, nil
}

func (f *fakeService) Viewports() []types.ViewportStatus {
	return []types.ViewportStatus{{ID: "viewport-1", State: "ready"}}
}

func (f *fakeService) ActivateViewport(_ context.Context, id string, _ bool) (bool, error) {
	if f.activateErr != nil {
		return false, f.activateErr
	}
	return f.activateOK, nil
}

func (f *fakeService) DeactivateViewport(string) error { return nil }

func (f *fakeService) AcquireSlot(req types.AcquireRequest) (types.AcquireResponse, bool, error) {
	if f.acquireErr != nil {
		return types.AcquireResponse{}, false, f.acquireErr
	}
	return types.AcquireResponse{PoolID: "vp-pool-1", Type: req.Type}, f.acquireOK, nil
}

func (f *fakeService) ReleaseSlot(string) error { return f.releaseErr }

func (f *fakeService) PoolStats() types.PoolStatsResponse {
	return types.PoolStatsResponse{Size: 4, Available: 2, InUse: 2}
}

func (f *fakeService) RunPoolGC() types.GCResponse { return types.GCResponse{Cleaned: 1} }

func (f *fakeService) Status() types.StatusResponse {
	return types.StatusResponse{State: "ready"}
}

func (f *fakeService) Ready() bool { return f.ready }

// sessionNotFound obtains a real not-found error from a scheduler instance.
func sessionNotFound(t *testing.T) error {
	t.Helper()
	s := scheduler.New(scheduler.Config{Logger: zerolog.Nop()})
	defer s.Close()
	_, err := s.SessionProgress("missing")
	if err == nil {
		t.Fatal("expected error for missing session")
	}
	return err
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateSessionEndpoint(t *testing.T) {
	svc := &fakeService{}
	h := NewMux(svc)

	rec := doJSON(t, h, http.MethodPost, "/sessions", `{"session_id":"s1","item_ids":["a","b"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var resp types.CreateSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != "s1" || resp.TotalItems != 2 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestCreateSessionRejectsBadBodies(t *testing.T) {
	h := NewMux(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("missing content type: status = %d, want 415", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/sessions", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status = %d, want 400", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	notFound := sessionNotFound(t)

	cases := []struct {
		name string
		svc  *fakeService
		do   func(h http.Handler) *httptest.ResponseRecorder
		want int
	}{
		{
			name: "unknown session is 404",
			svc:  &fakeService{progressErr: notFound},
			do: func(h http.Handler) *httptest.ResponseRecorder {
				return doJSON(t, h, http.MethodGet, "/sessions/x/progress", "")
			},
			want: http.StatusNotFound,
		},
		{
			name: "invalid request is 400",
			svc:  &fakeService{createErr: scheduler.ErrInvalidRequest("no items")},
			do: func(h http.Handler) *httptest.ResponseRecorder {
				return doJSON(t, h, http.MethodPost, "/sessions", `{}`)
			},
			want: http.StatusBadRequest,
		},
		{
			name: "activation refusal is 429",
			svc:  &fakeService{activateOK: false},
			do: func(h http.Handler) *httptest.ResponseRecorder {
				return doJSON(t, h, http.MethodPost, "/viewports/v1/activate", "")
			},
			want: http.StatusTooManyRequests,
		},
		{
			name: "pool exhaustion is 429",
			svc:  &fakeService{acquireOK: false},
			do: func(h http.Handler) *httptest.ResponseRecorder {
				return doJSON(t, h, http.MethodPost, "/pool/acquire", `{"type":"stack","content_id":"c1"}`)
			},
			want: http.StatusTooManyRequests,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewMux(tc.svc)
			rec := tc.do(h)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.want, rec.Body.String())
			}
			var er types.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
				t.Fatalf("error payload not JSON: %v", err)
			}
			if er.Code != tc.want {
				t.Fatalf("payload code = %d, want %d", er.Code, tc.want)
			}
		})
	}
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	svc := &fakeService{}
	h := NewMux(svc)

	rec := doJSON(t, h, http.MethodPost, "/sessions/s1/queue", `{"priority":2}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("queue: status = %d, want 202", rec.Code)
	}
	if svc.lastSession != "s1" || svc.lastPriority != 2 {
		t.Fatalf("queue forwarded %q/%d", svc.lastSession, svc.lastPriority)
	}

	// Queue with no body keeps strategy priorities.
	rec = doJSON(t, h, http.MethodPost, "/sessions/s1/queue", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("bodyless queue: status = %d, want 202", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/sessions/s1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/sessions/s1/progress", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: status = %d, want 200", rec.Code)
	}
}

func TestPoolAndViewportEndpoints(t *testing.T) {
	svc := &fakeService{acquireOK: true, activateOK: true}
	h := NewMux(svc)

	rec := doJSON(t, h, http.MethodPost, "/pool/acquire", `{"type":"stack","content_id":"c1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("acquire: status = %d", rec.Code)
	}
	var ar types.AcquireResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ar); err != nil || ar.PoolID == "" {
		t.Fatalf("acquire response %q err %v", rec.Body.String(), err)
	}

	rec = doJSON(t, h, http.MethodPost, "/pool/release/vp-pool-1", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("release: status = %d, want 202", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/pool/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/pool/gc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("gc: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/viewports", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("viewports: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/viewports/v1/activate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/viewports/v1/deactivate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: status = %d", rec.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	svc := &fakeService{}
	h := NewMux(svc)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz while starting: status = %d, want 503", rec.Code)
	}
	svc.ready = true
	rec = doJSON(t, h, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz when ready: status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	h := NewMux(&fakeService{})
	// Prime the request counter so the scrape has something to show.
	doJSON(t, h, http.MethodGet, "/healthz", "")
	rec := doJSON(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "viewportd_http_requests_total") {
		t.Fatal("metrics output missing http request counter")
	}
}

func TestStatusEndpoint(t *testing.T) {
	h := NewMux(&fakeService{})
	rec := doJSON(t, h, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil || st.State != "ready" {
		t.Fatalf("status body %q err %v", rec.Body.String(), err)
	}
}
