package autocomplete

import (
	"strconv"

	"github.com/kaijietti/qdrant-web-ui/internal/openapi"
)

const maxResolveDepth = 32

// resolver expands schema nodes against the component schemas of a document.
type resolver struct {
	doc *openapi.Document
}

// expand follows references and flattens allOf/anyOf/oneOf into the list of
// concrete alternatives a value may match.
func (r resolver) expand(s *openapi.Schema) []*openapi.Schema {
	var out []*openapi.Schema
	r.expandInto(s, 0, map[*openapi.Schema]struct{}{}, &out)
	return out
}

func (r resolver) expandInto(s *openapi.Schema, depth int, seen map[*openapi.Schema]struct{}, out *[]*openapi.Schema) {
	if s == nil || depth > maxResolveDepth {
		return
	}
	if _, ok := seen[s]; ok {
		return
	}
	seen[s] = struct{}{}

	if s.Ref != "" {
		name, ok := openapi.RefName(s.Ref)
		if !ok {
			return
		}
		target, ok := r.doc.Schema(name)
		if !ok {
			return
		}
		r.expandInto(target, depth+1, seen, out)
		return
	}

	composite := len(s.AnyOf) > 0 || len(s.OneOf) > 0 || len(s.AllOf) > 0
	for _, alt := range s.AllOf {
		r.expandInto(alt, depth+1, seen, out)
	}
	for _, alt := range s.AnyOf {
		r.expandInto(alt, depth+1, seen, out)
	}
	for _, alt := range s.OneOf {
		r.expandInto(alt, depth+1, seen, out)
	}
	if !composite || s.Type != "" || len(s.Properties) > 0 || s.Nullable {
		*out = append(*out, s)
	}
}

// walk resolves the schemas that describe the value found at path.
func (r resolver) walk(root *openapi.Schema, path []pathElem) []*openapi.Schema {
	current := r.expand(root)
	for _, elem := range path {
		var next []*openapi.Schema
		for _, s := range current {
			var child *openapi.Schema
			if elem.items {
				child = s.Items
			} else if s.Properties != nil {
				child = s.Properties[elem.property]
			}
			if child != nil {
				next = append(next, r.expand(child)...)
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// validate reports the first reference in s that does not resolve.
func (r resolver) validate(s *openapi.Schema, location string) error {
	if s == nil {
		return nil
	}
	if s.Ref != "" {
		name, ok := openapi.RefName(s.Ref)
		if !ok {
			return &RefError{Ref: s.Ref, Location: location}
		}
		if _, ok := r.doc.Schema(name); !ok {
			return &RefError{Ref: s.Ref, Location: location}
		}
	}
	for name, prop := range s.Properties {
		if err := r.validate(prop, location+".properties."+name); err != nil {
			return err
		}
	}
	if err := r.validate(s.Items, location+".items"); err != nil {
		return err
	}
	for _, group := range []struct {
		name string
		list []*openapi.Schema
	}{{"allOf", s.AllOf}, {"anyOf", s.AnyOf}, {"oneOf", s.OneOf}} {
		for i, alt := range group.list {
			if err := r.validate(alt, location+"."+group.name+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	}
	return nil
}
