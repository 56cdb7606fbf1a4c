// Package e2e drives the built filter-complete binary. The tests only run
// when FILTER_COMPLETE_E2E is set.
package e2e

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

const (
	readyTimeout = 10 * time.Second
	pollInterval = 50 * time.Millisecond
	probeTimeout = time.Second
)

var errNotReady = errors.New("endpoint not ready")

// waitForStatus fails the test unless url answers want within readyTimeout.
func waitForStatus(t *testing.T, url string, want int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()
	if err := pollStatus(ctx, url, want); err != nil {
		t.Fatalf("waiting for %s: %v", url, err)
	}
}

// pollStatus requests url until it answers want or ctx ends. The error
// carries the last status seen, 0 when nothing answered.
func pollStatus(ctx context.Context, url string, want int) error {
	client := &http.Client{Timeout: probeTimeout}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last int
	for {
		last = statusOf(ctx, client, url)
		if last == want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: want %d, last %d: %w", errNotReady, want, last, ctx.Err())
		case <-ticker.C:
		}
	}
}

func statusOf(ctx context.Context, client *http.Client, url string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0
	}
	resp.Body.Close()
	return resp.StatusCode
}
