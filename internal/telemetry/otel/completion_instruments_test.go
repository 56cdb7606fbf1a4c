package otel

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDisabledProviderHasNoInstruments(t *testing.T) {
	t.Parallel()

	p, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if p.Completion() != nil {
		t.Fatalf("expected nil instruments when telemetry is disabled")
	}

	var inst *CompletionInstruments
	h, ctx := inst.Start(context.Background(), RequestInfo{OperationKey: "POST /x"})
	if h != nil || ctx == nil {
		t.Fatalf("nil instruments should return nil handle and the parent context")
	}
	inst.Finish(h, 0, OutcomeEmpty, nil)

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	var nilProvider *Provider
	if err := nilProvider.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil Shutdown returned error: %v", err)
	}
}

func TestCompletionMetrics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p, err := Setup(ctx, Config{EnableMetrics: true})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	inst := p.Completion()
	if inst == nil {
		t.Fatalf("expected completion instruments")
	}

	h, _ := inst.Start(ctx, RequestInfo{OperationKey: "POST /collections/{collection_name}/points/visualize", Transport: "http"})
	inst.Finish(h, 3, OutcomeOK, nil)
	h, _ = inst.Start(ctx, RequestInfo{OperationKey: "POST /collections/{collection_name}/points/visualize", Transport: "http"})
	inst.Finish(h, 0, OutcomeEmpty, nil)

	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if got := sumCounter(t, rm, "completion.requests_total"); got != 2 {
		t.Fatalf("requests_total = %d, want 2", got)
	}
	if got := sumCounter(t, rm, "completion.empty_total"); got != 1 {
		t.Fatalf("empty_total = %d, want 1", got)
	}
	if !hasMetric(rm, "completion.request.duration") {
		t.Fatalf("expected duration histogram to be recorded")
	}
}

func TestCompletionSpans(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	ctx := context.Background()
	p, err := Setup(ctx, Config{EnableTraces: true, TraceOutput: &out})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	inst := p.Completion()
	h, spanCtx := inst.Start(ctx, RequestInfo{OperationKey: "POST /collections/aliases", Transport: "ws"})
	if spanCtx == ctx {
		t.Fatalf("expected span context to differ from parent")
	}
	inst.Finish(h, 0, "", errors.New("boom"))

	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	text := out.String()
	for _, want := range []string{"completion POST /collections/aliases", "completion.transport", "boom"} {
		if !strings.Contains(text, want) {
			t.Fatalf("exported span missing %q:\n%s", want, text)
		}
	}
}

func TestExtractHTTPWithoutHeader(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := ExtractHTTP(ctx, nil); got != ctx {
		t.Fatalf("expected unchanged context for nil header")
	}
	if got := ExtractHTTP(ctx, http.Header{}); got == nil {
		t.Fatalf("expected non-nil context")
	}
}

func TestEnvBool(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in        string
		defaultOn bool
		want      bool
	}{
		{"", true, true},
		{"", false, false},
		{"YES", false, true},
		{" off ", true, false},
		{"maybe", true, true},
	}
	for _, tc := range cases {
		if got := EnvBool(tc.in, tc.defaultOn); got != tc.want {
			t.Fatalf("EnvBool(%q, %v) = %v, want %v", tc.in, tc.defaultOn, got, tc.want)
		}
	}
}

func sumCounter(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s has unexpected data %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func hasMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}
