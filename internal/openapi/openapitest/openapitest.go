// Package openapitest provides a small Qdrant-shaped schema document for tests.
package openapitest

import (
	_ "embed"
	"testing"

	"github.com/kaijietti/qdrant-web-ui/internal/openapi"
)

//go:embed openapi.json
var rawDocument []byte

// Raw returns a copy of the fixture bytes.
func Raw() []byte {
	return append([]byte(nil), rawDocument...)
}

// Document parses a fresh copy of the fixture.
func Document(t testing.TB) *openapi.Document {
	t.Helper()
	doc, err := openapi.Parse(rawDocument)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}
