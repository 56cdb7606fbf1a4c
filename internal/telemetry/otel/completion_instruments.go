package otel

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Outcomes recorded for a completion request.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeNoTarget = "no_target"
	OutcomeError    = "error"
)

// CompletionInstruments publishes metrics and traces for completion requests.
type CompletionInstruments struct {
	meterEnabled bool
	traceEnabled bool

	counterRequests metric.Int64Counter
	counterEmpty    metric.Int64Counter
	histDuration    metric.Int64Histogram

	tracer trace.Tracer
}

// RequestHandle tracks one in-flight completion request.
type RequestHandle struct {
	ctx   context.Context
	span  trace.Span
	start time.Time
	attrs []attribute.KeyValue
}

// RequestInfo describes a completion request for attribute tagging.
type RequestInfo struct {
	OperationKey string
	Transport    string
}

// HeaderCarrier adapts http.Header to OTEL propagation carrier.
type HeaderCarrier http.Header

// Get returns the first value associated with the given key.
func (hc HeaderCarrier) Get(key string) string {
	return http.Header(hc).Get(key)
}

// Set sets the header entries associated with key to the single element value.
func (hc HeaderCarrier) Set(key, value string) {
	http.Header(hc).Set(key, value)
}

// Keys returns all keys in the carrier.
func (hc HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(hc))
	for k := range hc {
		keys = append(keys, k)
	}
	return keys
}

// ExtractHTTP returns ctx carrying any remote span context found in header.
func ExtractHTTP(ctx context.Context, header http.Header) context.Context {
	if header == nil {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, HeaderCarrier(header))
}

func newCompletionInstruments(p *Provider) *CompletionInstruments {
	if p == nil {
		return nil
	}

	inst := &CompletionInstruments{
		meterEnabled: p.meterProvider != nil,
		traceEnabled: p.tracerProvider != nil,
	}
	if p.meterProvider != nil {
		inst.counterRequests, _ = p.meter.Int64Counter(
			"completion.requests_total",
			metric.WithDescription("Number of completion requests served"),
		)
		inst.counterEmpty, _ = p.meter.Int64Counter(
			"completion.empty_total",
			metric.WithDescription("Number of completion requests that produced no suggestions"),
		)
		inst.histDuration, _ = p.meter.Int64Histogram(
			"completion.request.duration",
			metric.WithDescription("Duration of completion requests in microseconds"),
			metric.WithUnit("us"),
		)
	}
	if p.tracerProvider != nil {
		inst.tracer = p.tracer
	}
	return inst
}

// Start returns a request handle and context including the active span when tracing is enabled.
func (i *CompletionInstruments) Start(parent context.Context, info RequestInfo) (*RequestHandle, context.Context) {
	if i == nil {
		return nil, parent
	}

	h := &RequestHandle{
		ctx:   parent,
		start: time.Now(),
		attrs: buildAttributes(info),
	}
	if i.traceEnabled && i.tracer != nil {
		ctx, span := i.tracer.Start(parent, spanNameFor(info.OperationKey), trace.WithAttributes(h.attrs...))
		h.ctx = ctx
		h.span = span
	}
	return h, h.ctx
}

// Finish records the outcome of the request and closes its span.
func (i *CompletionInstruments) Finish(h *RequestHandle, suggestions int, outcome string, err error) {
	if i == nil || h == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeOK
		if err != nil {
			outcome = OutcomeError
		}
	}

	attrs := append(append([]attribute.KeyValue(nil), h.attrs...),
		attribute.String("completion.outcome", outcome),
		attribute.Int("completion.suggestions", suggestions),
	)
	elapsed := time.Since(h.start).Microseconds()

	if i.meterEnabled {
		set := metric.WithAttributes(attrs...)
		if i.counterRequests != nil {
			i.counterRequests.Add(h.ctx, 1, set)
		}
		if suggestions == 0 && i.counterEmpty != nil {
			i.counterEmpty.Add(h.ctx, 1, set)
		}
		if i.histDuration != nil {
			i.histDuration.Record(h.ctx, elapsed, set)
		}
	}

	if h.span != nil {
		h.span.SetAttributes(attrs...)
		if err != nil {
			h.span.RecordError(err)
			h.span.SetStatus(codes.Error, err.Error())
		} else {
			h.span.SetStatus(codes.Ok, "")
		}
		h.span.End()
	}
}

func buildAttributes(info RequestInfo) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if key := strings.TrimSpace(info.OperationKey); key != "" {
		attrs = append(attrs, attribute.String("completion.operation", key))
		if method, _, ok := strings.Cut(key, " "); ok {
			attrs = append(attrs, attribute.String("http.request.method", strings.ToUpper(method)))
		}
	}
	if info.Transport != "" {
		attrs = append(attrs, attribute.String("completion.transport", info.Transport))
	}
	return attrs
}

func spanNameFor(operationKey string) string {
	operationKey = strings.TrimSpace(operationKey)
	if operationKey == "" {
		return "completion"
	}
	return "completion " + operationKey
}

var _ propagation.TextMapCarrier = HeaderCarrier(nil)
