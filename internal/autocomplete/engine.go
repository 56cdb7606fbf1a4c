// Package autocomplete proposes the next tokens of a JSON request body by
// walking the body schema of an API operation.
package autocomplete

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaijietti/qdrant-web-ui/internal/openapi"
)

const defaultMaxItems = 75

// Engine completes request bodies against one schema document. It is built
// once and is safe for concurrent use; nothing mutates it after New returns.
type Engine struct {
	doc         *openapi.Document
	resolver    resolver
	identifiers []string
	templates   map[string][]template
	maxItems    int
}

// template is a path template of one method, split into segments.
type template struct {
	key      string
	segments []string
	params   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxItems caps the number of candidates returned per request.
func WithMaxItems(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxItems = n
		}
	}
}

// New builds an engine for doc. Every schema reference in the document must
// resolve; a broken reference is returned as a *RefError.
func New(doc *openapi.Document, identifiers []string, opts ...Option) (*Engine, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		doc:         doc,
		resolver:    resolver{doc: doc},
		identifiers: append([]string(nil), identifiers...),
		templates:   make(map[string][]template),
		maxItems:    defaultMaxItems,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}

	for _, key := range doc.OperationKeys() {
		method, path, _ := openapi.SplitOperationKey(key)
		segs := splitPath(path)
		params := 0
		for _, seg := range segs {
			if isParam(seg) {
				params++
			}
		}
		e.templates[method] = append(e.templates[method], template{key: key, segments: segs, params: params})
	}
	for method := range e.templates {
		list := e.templates[method]
		sort.SliceStable(list, func(i, j int) bool { return list[i].params < list[j].params })
	}
	return e, nil
}

func (e *Engine) validate() error {
	names := make([]string, 0, len(e.doc.Components.Schemas))
	for name := range e.doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := e.resolver.validate(e.doc.Components.Schemas[name], "components.schemas."+name); err != nil {
			return err
		}
	}

	for _, key := range e.doc.OperationKeys() {
		op, _ := e.doc.Operation(key)
		if op.RequestBody != nil {
			for ct, mt := range op.RequestBody.Content {
				if err := e.resolver.validate(mt.Schema, key+" requestBody."+ct); err != nil {
					return err
				}
			}
		}
		for _, p := range op.Parameters {
			if err := e.resolver.validate(p.Schema, key+" parameters."+p.Name); err != nil {
				return err
			}
		}
		for code, resp := range op.Responses {
			if resp == nil {
				continue
			}
			for ct, mt := range resp.Content {
				if err := e.resolver.validate(mt.Schema, key+" responses."+code+"."+ct); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Identifiers returns the identifiers the engine offers for collection fields.
func (e *Engine) Identifiers() []string {
	return append([]string(nil), e.identifiers...)
}

// CompleteRequestBody returns candidate tokens for the body of operationKey
// typed up to partialBody. Candidates come back in relevance order.
func (e *Engine) CompleteRequestBody(operationKey, partialBody string) ([]string, error) {
	op, err := e.lookup(operationKey)
	if err != nil {
		return nil, err
	}
	root := op.BodySchema()
	if root == nil {
		return []string{}, nil
	}

	ctx := scanBody(stripRequestLine(partialBody))
	if ctx.position == positionNone {
		return []string{}, nil
	}

	schemas := e.resolver.walk(root, ctx.path)
	var cands []candidate
	switch ctx.position {
	case positionKey:
		cands = keyCandidates(schemas, ctx)
	case positionValue:
		cands = e.valueCandidates(schemas, ctx)
	}
	return selectAndRank(dedupeCandidates(cands), ctx.prefix, e.maxItems), nil
}

// lookup resolves a template key such as "POST /collections/{collection_name}/points/scroll"
// or a concrete request line such as "POST collections/books/points/scroll".
func (e *Engine) lookup(operationKey string) (*openapi.Operation, error) {
	if op, ok := e.doc.Operation(operationKey); ok {
		return op, nil
	}
	method, path, ok := openapi.SplitOperationKey(operationKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, operationKey)
	}
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	segs := splitPath(path)
	for _, tpl := range e.templates[method] {
		if matchSegments(tpl.segments, segs) {
			op, _ := e.doc.Operation(tpl.key)
			return op, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, operationKey)
}

func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func isParam(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

func matchSegments(tpl, segs []string) bool {
	if len(tpl) != len(segs) {
		return false
	}
	for i, seg := range tpl {
		if isParam(seg) {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if seg != segs[i] {
			return false
		}
	}
	return true
}
