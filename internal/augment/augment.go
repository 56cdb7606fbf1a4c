// Package augment derives the completion-ready schema document from the base
// document published by the search service. The base document never describes
// the console's visualize request, so the augmenter adds that operation and
// its FilterRequest body schema. It also gathers the collection names that the
// completion engine offers as values.
package augment

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/kaijietti/qdrant-web-ui/internal/openapi"
)

// VisualizeKey is the operation key of the synthetic visualize request.
const VisualizeKey = "POST /collections/{collection_name}/points/visualize"

// ErrMalformedDocument marks a base document that cannot be augmented.
var ErrMalformedDocument = errors.New("malformed base document")

//go:embed visualize.json
var syntheticJSON []byte

type synthetic struct {
	Path      string                     `json:"path"`
	Method    string                     `json:"method"`
	Operation *openapi.Operation         `json:"operation"`
	Schemas   map[string]*openapi.Schema `json:"schemas"`
}

// Identifiers is the ordered set of known collection names. Empty is valid.
type Identifiers []string

// IdentifierSource lists dynamic identifiers from a remote service.
type IdentifierSource interface {
	List(ctx context.Context) ([]string, error)
}

// Augment builds the augmented document and lists identifiers. Only a
// malformed base document is an error; a failed listing degrades to an empty
// identifier set.
func Augment(ctx context.Context, base *openapi.Document, source IdentifierSource) (*openapi.Document, Identifiers, error) {
	doc, err := Document(base)
	if err != nil {
		return nil, nil, err
	}
	return doc, ListIdentifiers(ctx, source), nil
}

// Document returns a new document holding base plus the synthetic operation
// and schema. base is not modified. Applying Document to its own output
// yields an equal document.
func Document(base *openapi.Document) (*openapi.Document, error) {
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	add, err := loadSynthetic()
	if err != nil {
		return nil, err
	}

	doc := base.Clone()
	doc.SetOperation(add.Method, add.Path, add.Operation)
	for name, schema := range add.Schemas {
		doc.SetSchema(name, schema)
	}
	return doc, nil
}

// ListIdentifiers returns the identifiers reported by source, or an empty set
// when source is nil or fails.
func ListIdentifiers(ctx context.Context, source IdentifierSource) Identifiers {
	if source == nil {
		return Identifiers{}
	}
	names, err := source.List(ctx)
	if err != nil {
		log.Printf("event=identifiers.list error=%q", err.Error())
		return Identifiers{}
	}
	out := make(Identifiers, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func loadSynthetic() (*synthetic, error) {
	var add synthetic
	if err := json.Unmarshal(syntheticJSON, &add); err != nil {
		return nil, fmt.Errorf("decode synthetic operation: %w", err)
	}
	if add.Operation == nil || add.Path == "" || add.Method == "" {
		return nil, fmt.Errorf("synthetic operation incomplete")
	}
	add.Method = strings.ToLower(add.Method)
	return &add, nil
}
