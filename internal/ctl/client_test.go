package ctl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"viewportd/pkg/types"
)

func newFakeDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(types.CreateSessionResponse{SessionID: req.SessionID, TotalItems: len(req.ItemIDs)})
	})
	mux.HandleFunc("GET /sessions/s1/progress", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.SessionProgressResponse{SessionID: "s1", Status: "loading"})
	})
	mux.HandleFunc("GET /sessions/missing/progress", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: "session not found: missing", Code: 404})
	})
	mux.HandleFunc("GET /viewports", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"viewports": []types.ViewportStatus{{ID: "viewport-1", State: "ready"}}})
	})
	mux.HandleFunc("GET /pool/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.PoolStatsResponse{Size: 4})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCreateAndProgress(t *testing.T) {
	srv := newFakeDaemon(t)
	c := NewClient(srv.URL, srv.Client())

	resp, err := c.CreateSession(types.CreateSessionRequest{SessionID: "s1", ItemIDs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if resp.SessionID != "s1" || resp.TotalItems != 2 {
		t.Fatalf("resp = %+v", resp)
	}

	prog, err := c.SessionProgress("s1")
	if err != nil {
		t.Fatalf("SessionProgress: %v", err)
	}
	if prog.Status != "loading" {
		t.Fatalf("progress = %+v", prog)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := newFakeDaemon(t)
	c := NewClient(srv.URL, srv.Client())

	_, err := c.SessionProgress("missing")
	if err == nil {
		t.Fatal("expected error for missing session")
	}
	want := "session not found: missing"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Fatalf("error %q does not mention %q", got, want)
	}
}

func TestClientViewportsAndPool(t *testing.T) {
	srv := newFakeDaemon(t)
	c := NewClient(srv.URL, srv.Client())

	vps, err := c.Viewports()
	if err != nil || len(vps) != 1 || vps[0].ID != "viewport-1" {
		t.Fatalf("viewports = %+v err %v", vps, err)
	}
	st, err := c.PoolStats()
	if err != nil || st.Size != 4 {
		t.Fatalf("pool stats = %+v err %v", st, err)
	}
}
