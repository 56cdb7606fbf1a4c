package e2e

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollStatusWaitsForReady(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pollStatus(ctx, srv.URL, http.StatusOK); err != nil {
		t.Fatalf("pollStatus: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestPollStatusReportsLastStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err := pollStatus(ctx, srv.URL, http.StatusOK)
	if !errors.Is(err, errNotReady) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected not-ready deadline error, got %v", err)
	}
	if !strings.Contains(err.Error(), "last 503") {
		t.Fatalf("error should carry the last status: %v", err)
	}
}

func TestPollStatusUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pollStatus(ctx, url, http.StatusOK)
	if !errors.Is(err, context.Canceled) || !strings.Contains(err.Error(), "last 0") {
		t.Fatalf("expected canceled error with no status, got %v", err)
	}
}
