package completiond

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kaijietti/qdrant-web-ui/internal/augment"
	"github.com/kaijietti/qdrant-web-ui/internal/autocomplete"
	"github.com/kaijietti/qdrant-web-ui/internal/configstore"
	"github.com/kaijietti/qdrant-web-ui/internal/editor"
	"github.com/kaijietti/qdrant-web-ui/internal/httpserver"
	"github.com/kaijietti/qdrant-web-ui/internal/openapi"
	"github.com/kaijietti/qdrant-web-ui/internal/qdrant"
	"github.com/kaijietti/qdrant-web-ui/internal/telemetry/otel"
)

const schemaFetchTimeout = 30 * time.Second

// serving is everything a completion request reads. It is built once and
// never modified after it is published.
type serving struct {
	httpProvider *editor.Provider
	wsProvider   *editor.Provider
	identifiers  augment.Identifiers
	schemaJSON   []byte
}

type runtimeState struct {
	cfg               *runtimeConfig
	api               *completionAPI
	mux               *http.ServeMux
	telemetryProvider *otel.Provider
	fatal             chan error
	closeOnce         sync.Once
}

// initRuntime wires the HTTP surface and starts loading the schema in the
// background. Completion routes answer 503 until loading finishes.
func initRuntime(ctx context.Context, cfg *runtimeConfig) (*runtimeState, error) {
	tel, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	rt := &runtimeState{
		cfg:               cfg,
		api:               newCompletionAPI(),
		mux:               http.NewServeMux(),
		telemetryProvider: tel,
		fatal:             make(chan error, 1),
	}
	rt.api.register(rt.mux)

	go rt.bootstrap(ctx)
	return rt, nil
}

func (rt *runtimeState) bootstrap(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, rt.cfg.InitTimeout)
	defer cancel()

	start := time.Now()
	s, err := buildServing(ctx, rt.cfg.Store, rt.telemetryProvider.Completion())
	if err != nil {
		logEvent("bootstrap.ready", map[string]any{"error": fmt.Sprintf("%q", err.Error())})
		rt.fatal <- err
		return
	}
	rt.api.publish(s)
	logEvent("bootstrap.ready", map[string]any{
		"collections": len(s.identifiers),
		"elapsed":     time.Since(start).Round(time.Millisecond),
	})
}

// buildServing fetches the base document, augments it, lists identifiers
// and builds the engine. Any error other than a failed listing is fatal.
func buildServing(ctx context.Context, store configstore.Config, inst *otel.CompletionInstruments) (*serving, error) {
	base, err := loadBaseDocument(ctx, store)
	if err != nil {
		return nil, err
	}

	var source augment.IdentifierSource
	if store.QdrantURL != "" {
		source = qdrant.NewClient(store.QdrantURL, store.APIKey, nil)
	}
	doc, ids, err := augment.Augment(ctx, base, source)
	if err != nil {
		return nil, err
	}
	return newServing(doc, ids, inst)
}

func newServing(doc *openapi.Document, ids augment.Identifiers, inst *otel.CompletionInstruments) (*serving, error) {
	engine, err := autocomplete.New(doc, ids)
	if err != nil {
		return nil, fmt.Errorf("build completion engine: %w", err)
	}
	raw, err := doc.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode augmented schema: %w", err)
	}
	return &serving{
		httpProvider: editor.NewProvider(engine, editor.WithInstruments(inst), editor.WithTransport("http")),
		wsProvider:   editor.NewProvider(engine, editor.WithInstruments(inst), editor.WithTransport("ws")),
		identifiers:  append(augment.Identifiers{}, ids...),
		schemaJSON:   raw,
	}, nil
}

func loadBaseDocument(ctx context.Context, store configstore.Config) (*openapi.Document, error) {
	location, isFile := store.SchemaSource()
	logEvent("schema.load", map[string]any{"source": location, "file": isFile})
	if isFile {
		return openapi.LoadFile(location)
	}
	return openapi.Fetch(ctx, &http.Client{Timeout: schemaFetchTimeout}, location)
}

// Run serves until ctx ends or initialization fails.
func (rt *runtimeState) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", rt.cfg.Listen.Address())
	if err != nil {
		return fmt.Errorf("listen %s: %w", rt.cfg.Listen.Address(), err)
	}
	return rt.serve(ctx, ln)
}

func (rt *runtimeState) serve(ctx context.Context, ln net.Listener) error {
	srv := httpserver.NewWebServer(ln.Addr().String(), rt.mux)
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- httpserver.Serve(serveCtx, srv, ln)
	}()
	logEvent("frontend.start", map[string]any{"addr": ln.Addr().String(), "url": rt.cfg.Listen.DisplayURL()})

	select {
	case err := <-rt.fatal:
		cancel()
		<-done
		return fmt.Errorf("initialize completion: %w", err)
	case err := <-done:
		return err
	}
}

func (rt *runtimeState) Close() {
	rt.closeOnce.Do(func() {
		rt.api.hub.Close()
		if rt.telemetryProvider != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = rt.telemetryProvider.Shutdown(ctx)
		}
	})
}

// NewProvider loads and augments the schema described by store and returns a
// provider for one-off callers such as the CLI.
func NewProvider(ctx context.Context, store configstore.Config) (*editor.Provider, error) {
	s, err := buildServing(ctx, store, nil)
	if err != nil {
		return nil, err
	}
	return s.httpProvider, nil
}
