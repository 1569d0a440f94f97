package scheduler

import (
	"context"
	"time"
)

// Fetcher loads one content item and reports its transferred size. The
// DICOM/network layer behind it is an external collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, itemID string, sizeHint int64) (int64, error)
}

// SimFetcher simulates transfers with size-proportional latency. Used in
// development and as the default when no fetch backend is configured.
type SimFetcher struct {
	bps int64
}

// NewSimFetcher builds a simulated fetcher with the given link speed in
// bytes/sec; non-positive defaults to 4 MiB/s.
func NewSimFetcher(bps int64) *SimFetcher {
	if bps <= 0 {
		bps = 4 << 20
	}
	return &SimFetcher{bps: bps}
}

func (f *SimFetcher) Fetch(ctx context.Context, _ string, sizeHint int64) (int64, error) {
	if sizeHint <= 0 {
		sizeHint = 256 << 10
	}
	delay := time.Duration(float64(sizeHint) / float64(f.bps) * float64(time.Second))
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return sizeHint, nil
}
