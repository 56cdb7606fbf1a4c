package augment

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/kaijietti/qdrant-web-ui/internal/openapi"
	"github.com/kaijietti/qdrant-web-ui/internal/openapi/openapitest"
)

type stubSource struct {
	names []string
	err   error
	calls int
}

func (s *stubSource) List(context.Context) ([]string, error) {
	s.calls++
	return s.names, s.err
}

func TestDocumentAddsVisualizeOperation(t *testing.T) {
	t.Parallel()

	base := openapitest.Document(t)
	if _, ok := base.Schema("FilterRequest"); ok {
		t.Fatalf("fixture must not contain FilterRequest")
	}

	doc, err := Document(base)
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}

	var visualize []string
	for _, key := range doc.OperationKeys() {
		if key == VisualizeKey {
			visualize = append(visualize, key)
		}
	}
	if len(visualize) != 1 {
		t.Fatalf("expected exactly one visualize operation, got %v", doc.OperationKeys())
	}

	op, ok := doc.Operation(VisualizeKey)
	if !ok {
		t.Fatalf("visualize operation missing")
	}
	body := op.BodySchema()
	if body == nil || body.Ref != "#/components/schemas/FilterRequest" {
		t.Fatalf("unexpected body schema %+v", body)
	}

	filterRequest, ok := doc.Schema("FilterRequest")
	if !ok {
		t.Fatalf("FilterRequest schema missing")
	}
	var fields []string
	for name := range filterRequest.Properties {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	if want := []string{"color_by", "filter", "limit", "vector_name"}; !reflect.DeepEqual(fields, want) {
		t.Fatalf("FilterRequest fields = %v, want %v", fields, want)
	}

	limit := filterRequest.Properties["limit"]
	if limit.Type != "integer" || limit.Minimum == nil || *limit.Minimum != 1 || !limit.Nullable {
		t.Fatalf("unexpected limit schema %+v", limit)
	}
	filter := filterRequest.Properties["filter"]
	if len(filter.AnyOf) != 2 || filter.AnyOf[0].Ref != "#/components/schemas/Filter" || !filter.AnyOf[1].Nullable {
		t.Fatalf("unexpected filter schema %+v", filter)
	}
	for _, name := range []string{"vector_name", "color_by"} {
		if s := filterRequest.Properties[name]; s.Type != "string" || !s.Nullable {
			t.Fatalf("unexpected %s schema %+v", name, s)
		}
	}

	if len(op.Parameters) != 2 || op.Parameters[0].Name != "collection_name" || op.Parameters[1].Name != "consistency" {
		t.Fatalf("unexpected parameters %+v", op.Parameters)
	}
}

func TestDocumentDoesNotMutateBase(t *testing.T) {
	t.Parallel()

	base := openapitest.Document(t)
	before := base.Clone()

	if _, err := Document(base); err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	if !reflect.DeepEqual(base, before) {
		t.Fatalf("base document was modified")
	}
}

func TestDocumentIdempotent(t *testing.T) {
	t.Parallel()

	once, err := Document(openapitest.Document(t))
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	twice, err := Document(once)
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	thrice, err := Document(twice)
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	if !reflect.DeepEqual(once, twice) || !reflect.DeepEqual(twice, thrice) {
		t.Fatalf("augmenting an augmented document changed it")
	}

	encodedOnce, err := once.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	encodedTwice, err := twice.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if string(encodedOnce) != string(encodedTwice) {
		t.Fatalf("encoded documents differ after re-augmenting")
	}
}

func TestDocumentRejectsMalformedBase(t *testing.T) {
	t.Parallel()

	cases := map[string]*openapi.Document{
		"nil":        nil,
		"no paths":   {Components: openapi.Components{Schemas: map[string]*openapi.Schema{}}},
		"no schemas": {Paths: map[string]openapi.PathItem{}},
	}
	for name, doc := range cases {
		name, doc := name, doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Document(doc); !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestAugmentListsIdentifiers(t *testing.T) {
	t.Parallel()

	src := &stubSource{names: []string{"books", "", "movies", "books"}}
	doc, ids, err := Augment(context.Background(), openapitest.Document(t), src)
	if err != nil {
		t.Fatalf("Augment returned error: %v", err)
	}
	if doc == nil {
		t.Fatalf("expected document")
	}
	if want := (Identifiers{"books", "movies"}); !reflect.DeepEqual(ids, want) {
		t.Fatalf("identifiers = %v, want %v", ids, want)
	}
	if src.calls != 1 {
		t.Fatalf("expected one listing call, got %d", src.calls)
	}
}

func TestAugmentDegradesOnListingFailure(t *testing.T) {
	t.Parallel()

	src := &stubSource{err: errors.New("connection refused")}
	doc, ids, err := Augment(context.Background(), openapitest.Document(t), src)
	if err != nil {
		t.Fatalf("listing failure must not surface, got %v", err)
	}
	if doc == nil {
		t.Fatalf("expected document despite listing failure")
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty identifier set, got %#v", ids)
	}
}

func TestAugmentNilSource(t *testing.T) {
	t.Parallel()

	_, ids, err := Augment(context.Background(), openapitest.Document(t), nil)
	if err != nil {
		t.Fatalf("Augment returned error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no identifiers, got %v", ids)
	}
}

func TestAugmentMalformedBaseSkipsListing(t *testing.T) {
	t.Parallel()

	src := &stubSource{names: []string{"books"}}
	if _, _, err := Augment(context.Background(), &openapi.Document{}, src); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("listing should not run for a malformed document")
	}
}
