package openapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Encode renders the document as JSON. A parsed document is written from its
// source, so fields the model does not carry (servers, security schemes,
// path-level parameters, extra schema keywords) survive. Operations and
// schemas set through SetOperation or SetSchema, or absent from the source,
// are written from the model.
func (d *Document) Encode() ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil document", ErrMissingSection)
	}
	if len(d.source) == 0 {
		return json.Marshal(d)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(d.source, &top); err != nil {
		return nil, fmt.Errorf("decode source document: %w", err)
	}

	paths, err := d.encodePaths(top["paths"])
	if err != nil {
		return nil, err
	}
	top["paths"] = paths

	components, err := d.encodeComponents(top["components"])
	if err != nil {
		return nil, err
	}
	top["components"] = components

	return json.Marshal(top)
}

func (d *Document) encodePaths(raw json.RawMessage) (json.RawMessage, error) {
	paths := make(map[string]map[string]json.RawMessage)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &paths); err != nil {
			return nil, fmt.Errorf("decode source paths: %w", err)
		}
	}
	for path, item := range d.Paths {
		rawItem := paths[path]
		if rawItem == nil {
			rawItem = make(map[string]json.RawMessage, len(item))
		}
		for method, op := range item {
			if op == nil {
				continue
			}
			key := methodKey(rawItem, method)
			_, inSource := rawItem[key]
			_, replaced := d.replaced.operations[OperationKey(method, path)]
			if inSource && !replaced {
				continue
			}
			data, err := json.Marshal(op)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", OperationKey(method, path), err)
			}
			rawItem[key] = data
		}
		paths[path] = rawItem
	}
	return json.Marshal(paths)
}

func (d *Document) encodeComponents(raw json.RawMessage) (json.RawMessage, error) {
	components := make(map[string]json.RawMessage)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &components); err != nil {
			return nil, fmt.Errorf("decode source components: %w", err)
		}
	}
	schemas := make(map[string]json.RawMessage)
	if rawSchemas := components["schemas"]; len(rawSchemas) > 0 {
		if err := json.Unmarshal(rawSchemas, &schemas); err != nil {
			return nil, fmt.Errorf("decode source schemas: %w", err)
		}
	}
	for name, schema := range d.Components.Schemas {
		_, inSource := schemas[name]
		_, replaced := d.replaced.schemas[name]
		if inSource && !replaced {
			continue
		}
		data, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("encode schema %s: %w", name, err)
		}
		schemas[name] = data
	}
	data, err := json.Marshal(schemas)
	if err != nil {
		return nil, err
	}
	components["schemas"] = data
	return json.Marshal(components)
}

// methodKey returns the key the source uses for method, which may differ in
// case from the model's lower-case key.
func methodKey(item map[string]json.RawMessage, method string) string {
	if _, ok := item[method]; ok {
		return method
	}
	for key := range item {
		if strings.EqualFold(key, method) {
			return key
		}
	}
	return method
}
