// Package openapi models the subset of an OpenAPI 3 document that request body
// completion needs: operations keyed by method and path, and the reusable
// schemas they reference.
package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SchemaRefPrefix is the only reference form the document resolves.
const SchemaRefPrefix = "#/components/schemas/"

// ErrMissingSection is returned when a document lacks paths or component schemas.
var ErrMissingSection = errors.New("openapi document missing required section")

var httpMethods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {},
	"options": {}, "head": {}, "patch": {}, "trace": {},
}

// Document is an API schema document. Values returned by Parse, Clone or the
// augmenter are treated as read-only by every consumer.
type Document struct {
	OpenAPI    string              `json:"openapi,omitempty"`
	Info       json.RawMessage     `json:"info,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`

	// source holds the bytes the document was parsed from. Encode keeps
	// every field of it the model does not carry.
	source json.RawMessage
	// replaced records operation keys and schema names set through
	// SetOperation and SetSchema; Encode takes those from the model.
	replaced replacements
}

type replacements struct {
	operations map[string]struct{}
	schemas    map[string]struct{}
}

// Components holds the reusable schema definitions.
type Components struct {
	Schemas map[string]*Schema `json:"schemas"`
}

// PathItem maps a lower-case HTTP method to its operation. Non-method keys of
// the path object (shared parameters, summaries) are dropped on decode.
type PathItem map[string]*Operation

// UnmarshalJSON keeps only HTTP method entries.
func (p *PathItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(PathItem, len(raw))
	for key, value := range raw {
		method := strings.ToLower(key)
		if _, ok := httpMethods[method]; !ok {
			continue
		}
		var op Operation
		if err := json.Unmarshal(value, &op); err != nil {
			return fmt.Errorf("decode %s operation: %w", method, err)
		}
		out[method] = &op
	}
	*p = out
	return nil
}

// Operation describes one method/path pair.
type Operation struct {
	Tags        []string             `json:"tags,omitempty"`
	Summary     string               `json:"summary,omitempty"`
	Description string               `json:"description,omitempty"`
	OperationID string               `json:"operationId,omitempty"`
	RequestBody *RequestBody         `json:"requestBody,omitempty"`
	Parameters  []Parameter          `json:"parameters,omitempty"`
	Responses   map[string]*Response `json:"responses,omitempty"`
}

// RequestBody is the body definition of an operation.
type RequestBody struct {
	Description string               `json:"description,omitempty"`
	Required    bool                 `json:"required,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType wraps the schema of one content type.
type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

// Parameter is a path, query or header parameter.
type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// Response is one entry of an operation's responses map.
type Response struct {
	Description string               `json:"description,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// Schema is a JSON schema node. When Ref is set the node is a reference and
// the remaining fields are ignored by resolution.
type Schema struct {
	Ref         string             `json:"$ref,omitempty"`
	Type        string             `json:"type,omitempty"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	AnyOf       []*Schema          `json:"anyOf,omitempty"`
	OneOf       []*Schema          `json:"oneOf,omitempty"`
	AllOf       []*Schema          `json:"allOf,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Default     any                `json:"default,omitempty"`
}

// Parse decodes a JSON document and checks that it carries the sections the
// completion engine relies on.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.source = append(json.RawMessage(nil), data...)
	return &doc, nil
}

// SetOperation registers op under method and path, replacing any operation
// already there.
func (d *Document) SetOperation(method, path string, op *Operation) {
	method = strings.ToLower(method)
	if d.Paths == nil {
		d.Paths = make(map[string]PathItem)
	}
	item := d.Paths[path]
	if item == nil {
		item = make(PathItem, 1)
	}
	item[method] = op
	d.Paths[path] = item

	if d.replaced.operations == nil {
		d.replaced.operations = make(map[string]struct{})
	}
	d.replaced.operations[OperationKey(method, path)] = struct{}{}
}

// SetSchema registers a named component schema, replacing any schema of the
// same name.
func (d *Document) SetSchema(name string, schema *Schema) {
	if d.Components.Schemas == nil {
		d.Components.Schemas = make(map[string]*Schema)
	}
	d.Components.Schemas[name] = schema

	if d.replaced.schemas == nil {
		d.replaced.schemas = make(map[string]struct{})
	}
	d.replaced.schemas[name] = struct{}{}
}

// Validate reports whether the document has paths and component schemas.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrMissingSection)
	}
	if d.Paths == nil {
		return fmt.Errorf("%w: paths", ErrMissingSection)
	}
	if d.Components.Schemas == nil {
		return fmt.Errorf("%w: components.schemas", ErrMissingSection)
	}
	return nil
}

// OperationKey renders the canonical "<METHOD> <path>" key.
func OperationKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// SplitOperationKey splits a key into its method and path.
func SplitOperationKey(key string) (method, path string, ok bool) {
	method, path, ok = strings.Cut(strings.TrimSpace(key), " ")
	if !ok {
		return "", "", false
	}
	path = strings.TrimSpace(path)
	if method == "" || path == "" {
		return "", "", false
	}
	return strings.ToUpper(method), path, true
}

// Operation returns the operation registered under key, if any.
func (d *Document) Operation(key string) (*Operation, bool) {
	method, path, ok := SplitOperationKey(key)
	if !ok || d == nil {
		return nil, false
	}
	item, ok := d.Paths[path]
	if !ok {
		return nil, false
	}
	op, ok := item[strings.ToLower(method)]
	if !ok || op == nil {
		return nil, false
	}
	return op, true
}

// OperationKeys lists every operation key in sorted order.
func (d *Document) OperationKeys() []string {
	if d == nil {
		return nil
	}
	var keys []string
	for path, item := range d.Paths {
		for method, op := range item {
			if op == nil {
				continue
			}
			keys = append(keys, OperationKey(method, path))
		}
	}
	sort.Strings(keys)
	return keys
}

// Schema looks up a named component schema.
func (d *Document) Schema(name string) (*Schema, bool) {
	if d == nil {
		return nil, false
	}
	s, ok := d.Components.Schemas[name]
	return s, ok && s != nil
}

// BodySchema returns the application/json request body schema.
func (o *Operation) BodySchema() *Schema {
	if o == nil || o.RequestBody == nil {
		return nil
	}
	if mt, ok := o.RequestBody.Content["application/json"]; ok {
		return mt.Schema
	}
	return nil
}

// RefName extracts the component name from a schema reference.
func RefName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, SchemaRefPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, SchemaRefPrefix)
	return name, name != ""
}
