package editor

import (
	"context"
	"errors"

	"github.com/kaijietti/qdrant-web-ui/internal/autocomplete"
	"github.com/kaijietti/qdrant-web-ui/internal/telemetry/otel"
)

// Provider answers completion requests against one shared engine. It holds
// no mutable state and may be used from many goroutines.
type Provider struct {
	engine      Engine
	instruments *otel.CompletionInstruments
	transport   string
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithInstruments records metrics and spans for each request.
func WithInstruments(inst *otel.CompletionInstruments) ProviderOption {
	return func(p *Provider) {
		p.instruments = inst
	}
}

// WithTransport tags telemetry with the surface serving the request.
func WithTransport(name string) ProviderOption {
	return func(p *Provider) {
		p.transport = name
	}
}

// NewProvider returns a provider bound to engine.
func NewProvider(engine Engine, opts ...ProviderOption) *Provider {
	p := &Provider{engine: engine}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProvideCompletionItems returns the suggestions for cursor inside block.
// It never fails; every unresolvable situation yields an empty list.
func (p *Provider) ProvideCompletionItems(ctx context.Context, block *CodeBlock, cursor Cursor) CompletionList {
	if ctx == nil {
		ctx = context.Background()
	}
	info := otel.RequestInfo{Transport: p.transport}
	if block != nil {
		info.OperationKey = block.OperationKey
	}
	// Engine calls take no context, so the span context ends here.
	handle, _ := p.instruments.Start(ctx, info)

	resolved, ok := Resolve(block, cursor)
	if !ok {
		p.instruments.Finish(handle, 0, otel.OutcomeNoTarget, nil)
		return CompletionList{Suggestions: []Suggestion{}}
	}

	suggestions, err := complete(p.engine, resolved)
	switch {
	case errors.Is(err, autocomplete.ErrUnknownOperation):
		p.instruments.Finish(handle, 0, otel.OutcomeNoTarget, nil)
	case err != nil:
		p.instruments.Finish(handle, 0, otel.OutcomeError, err)
	case len(suggestions) == 0:
		p.instruments.Finish(handle, 0, otel.OutcomeEmpty, nil)
	default:
		p.instruments.Finish(handle, len(suggestions), otel.OutcomeOK, nil)
	}
	return CompletionList{Suggestions: suggestions}
}
