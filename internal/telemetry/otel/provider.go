package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kaijietti/qdrant-web-ui/completion"

// Config controls OTEL exporter behaviour.
type Config struct {
	ServiceName   string
	EnableMetrics bool
	EnableTraces  bool
	Endpoint      string
	// TraceOutput receives pretty-printed spans; nil means stdout.
	TraceOutput io.Writer
}

// Provider owns OTEL meter/tracer providers and derived completion instruments.
type Provider struct {
	cfg            Config
	meterProvider  *sdkmetric.MeterProvider
	reader         *sdkmetric.ManualReader
	tracerProvider *sdktrace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	completion   *CompletionInstruments
	shutdownOnce sync.Once
}

// Setup initialises the meter and tracer providers following the provided config.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.EnableMetrics && !cfg.EnableTraces {
		return &Provider{cfg: cfg}, nil
	}

	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "filter-complete"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	p := &Provider{cfg: cfg}

	if cfg.EnableMetrics {
		reader := sdkmetric.NewManualReader()
		mp := createMeterProvider(cfg, res, reader)
		p.reader = reader
		p.meterProvider = mp
		otel.SetMeterProvider(mp)
		p.meter = mp.Meter(instrumentationName)
	}

	if cfg.EnableTraces {
		tp, err := createTracerProvider(cfg, res)
		if err != nil {
			return nil, err
		}
		p.tracerProvider = tp
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.TraceContext{})
		p.tracer = tp.Tracer(instrumentationName)
	}

	p.completion = newCompletionInstruments(p)
	return p, nil
}

func createMeterProvider(cfg Config, res *resource.Resource, reader sdkmetric.Reader) *sdkmetric.MeterProvider {
	if strings.TrimSpace(cfg.Endpoint) != "" {
		log.Printf("otel endpoint %s ignored: remote OTLP metric export not implemented", cfg.Endpoint)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
}

func createTracerProvider(cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if strings.TrimSpace(cfg.Endpoint) != "" {
		log.Printf("otel endpoint %s ignored: OTLP trace export unsupported; using stdout exporter", cfg.Endpoint)
	}

	out := cfg.TraceOutput
	if out == nil {
		out = os.Stdout
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("init stdout trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithMaxExportBatchSize(64)),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

// Shutdown flushes and stops the configured providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var err error
	p.shutdownOnce.Do(func() {
		var errs []error
		if p.meterProvider != nil {
			if shutdownErr := p.meterProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}
		if p.tracerProvider != nil {
			if shutdownErr := p.tracerProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}
		if len(errs) > 0 {
			err = errors.Join(errs...)
		}
	})
	return err
}

// Completion returns the completion request instruments, or nil when
// telemetry is disabled.
func (p *Provider) Completion() *CompletionInstruments {
	if p == nil {
		return nil
	}
	return p.completion
}

// EnvBool interprets on/off environment toggles.
func EnvBool(value string, defaultOn bool) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "":
		return defaultOn
	case "1", "true", "on", "enable", "enabled", "yes":
		return true
	case "0", "false", "off", "disable", "disabled", "no":
		return false
	default:
		return defaultOn
	}
}

// LoadConfigFromEnv reads OTEL config from the environment.
func LoadConfigFromEnv() Config {
	return Config{
		ServiceName:   "filter-complete",
		EnableMetrics: EnvBool(os.Getenv("FILTER_COMPLETE_OTEL_METRICS"), false),
		EnableTraces:  EnvBool(os.Getenv("FILTER_COMPLETE_OTEL_TRACES"), false),
		Endpoint:      strings.TrimSpace(os.Getenv("FILTER_COMPLETE_OTEL_ENDPOINT")),
	}
}
