package openapi

import "encoding/json"

// Clone produces a deep copy suitable for building a derived document without
// affecting the original instance. Enum and default values are JSON scalars or
// decoded containers that nothing mutates, so they are shared.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		OpenAPI: d.OpenAPI,
		Info:    append(json.RawMessage(nil), d.Info...),
		source:  d.source,
		replaced: replacements{
			operations: cloneSet(d.replaced.operations),
			schemas:     cloneSet(d.replaced.schemas),
		},
	}
	if d.Paths != nil {
		out.Paths = make(map[string]PathItem, len(d.Paths))
		for path, item := range d.Paths {
			out.Paths[path] = item.Clone()
		}
	}
	if d.Components.Schemas != nil {
		out.Components.Schemas = cloneSchemaMap(d.Components.Schemas)
	}
	return out
}

// Clone copies every operation of the path item.
func (p PathItem) Clone() PathItem {
	if p == nil {
		return nil
	}
	out := make(PathItem, len(p))
	for method, op := range p {
		out[method] = op.Clone()
	}
	return out
}

// Clone deep-copies the operation.
func (o *Operation) Clone() *Operation {
	if o == nil {
		return nil
	}
	out := &Operation{
		Tags:        append([]string(nil), o.Tags...),
		Summary:     o.Summary,
		Description: o.Description,
		OperationID: o.OperationID,
	}
	if o.RequestBody != nil {
		out.RequestBody = &RequestBody{
			Description: o.RequestBody.Description,
			Required:    o.RequestBody.Required,
			Content:     cloneContent(o.RequestBody.Content),
		}
	}
	if o.Parameters != nil {
		out.Parameters = make([]Parameter, len(o.Parameters))
		for i, p := range o.Parameters {
			p.Schema = p.Schema.Clone()
			out.Parameters[i] = p
		}
	}
	if o.Responses != nil {
		out.Responses = make(map[string]*Response, len(o.Responses))
		for code, resp := range o.Responses {
			if resp == nil {
				out.Responses[code] = nil
				continue
			}
			out.Responses[code] = &Response{
				Description: resp.Description,
				Content:     cloneContent(resp.Content),
			}
		}
	}
	return out
}

// Clone deep-copies the schema tree rooted at s.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Properties = cloneSchemaMap(s.Properties)
	out.Items = s.Items.Clone()
	out.AnyOf = cloneSchemaList(s.AnyOf)
	out.OneOf = cloneSchemaList(s.OneOf)
	out.AllOf = cloneSchemaList(s.AllOf)
	if s.Enum != nil {
		out.Enum = append([]any(nil), s.Enum...)
	}
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Minimum != nil {
		minimum := *s.Minimum
		out.Minimum = &minimum
	}
	return &out
}

func cloneSchemaMap(in map[string]*Schema) map[string]*Schema {
	if in == nil {
		return nil
	}
	out := make(map[string]*Schema, len(in))
	for name, s := range in {
		out[name] = s.Clone()
	}
	return out
}

func cloneSchemaList(in []*Schema) []*Schema {
	if in == nil {
		return nil
	}
	out := make([]*Schema, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func cloneContent(in map[string]MediaType) map[string]MediaType {
	if in == nil {
		return nil
	}
	out := make(map[string]MediaType, len(in))
	for ct, mt := range in {
		out[ct] = MediaType{Schema: mt.Schema.Clone()}
	}
	return out
}

func cloneSet(in map[string]struct{}) map[string]struct{} {
	if in == nil {
		return nil
	}
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
