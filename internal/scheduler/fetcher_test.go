package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSimFetcherHonorsContext(t *testing.T) {
	f := NewSimFetcher(1 << 10) // 1 KiB/s, so 1 MiB takes far too long
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Fetch(ctx, "img-1", 1<<20); err == nil {
		t.Fatal("expected context error from slow simulated fetch")
	}
}

func TestSimFetcherReportsSize(t *testing.T) {
	f := NewSimFetcher(1 << 30)
	n, err := f.Fetch(context.Background(), "img-1", 4096)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if n != 4096 {
		t.Fatalf("size = %d, want 4096", n)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/items/img-ok"):
			_, _ = w.Write(make([]byte, 1024))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, srv.Client())
	n, err := f.Fetch(context.Background(), "img-ok", 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if n != 1024 {
		t.Fatalf("size = %d, want 1024", n)
	}
	if _, err := f.Fetch(context.Background(), "img-missing", 0); err == nil {
		t.Fatal("expected error for missing item")
	}
}
