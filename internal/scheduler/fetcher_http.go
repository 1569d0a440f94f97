package scheduler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPFetcher retrieves items from a WADO-style HTTP endpoint:
// GET {base}/items/{id}. The response body is drained and its length
// reported as the transferred size.
type HTTPFetcher struct {
	base   string
	client *http.Client
}

// NewHTTPFetcher builds a fetcher against base. A nil client gets a default
// with a 30s timeout.
func NewHTTPFetcher(base string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{base: base, client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, itemID string, _ int64) (int64, error) {
	u := fmt.Sprintf("%s/items/%s", f.base, url.PathEscape(itemID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch %s: unexpected status %d", itemID, resp.StatusCode)
	}
	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return n, err
	}
	return n, nil
}
