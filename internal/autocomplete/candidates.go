package autocomplete

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/kaijietti/qdrant-web-ui/internal/openapi"
)

// identifierFields are properties whose string values name a collection.
var identifierFields = map[string]struct{}{
	"collection_name": {},
	"collection":      {},
}

type candidate struct {
	text      string
	priority  int
	uniqueKey string
}

func keyCandidates(schemas []*openapi.Schema, ctx bodyContext) []candidate {
	required := make(map[string]struct{})
	var names []string
	seen := make(map[string]struct{})
	for _, s := range schemas {
		for _, name := range s.Required {
			required[name] = struct{}{}
		}
		for name := range s.Properties {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]candidate, 0, len(names))
	for _, name := range names {
		if _, ok := ctx.present[name]; ok {
			continue
		}
		priority := 1
		if _, ok := required[name]; ok {
			priority = 0
		}
		out = append(out, candidate{
			text:      quote(name, ctx.quoted),
			priority:  priority,
			uniqueKey: name,
		})
	}
	return out
}

func (e *Engine) valueCandidates(schemas []*openapi.Schema, ctx bodyContext) []candidate {
	var out []candidate
	add := func(text string, priority int) {
		out = append(out, candidate{text: text, priority: priority, uniqueKey: text})
	}

	for _, s := range schemas {
		for _, v := range s.Enum {
			if str, ok := v.(string); ok {
				add(quote(str, ctx.quoted), 0)
				continue
			}
			if !ctx.quoted {
				add(encode(v), 0)
			}
		}

		if s.Type == "string" {
			if _, ok := identifierFields[ctx.field]; ok {
				for _, id := range e.identifiers {
					add(quote(id, ctx.quoted), 0)
				}
			}
		}
		if s.Default != nil && s.Enum == nil {
			if str, ok := s.Default.(string); ok {
				add(quote(str, ctx.quoted), 1)
			} else if !ctx.quoted {
				add(encode(s.Default), 1)
			}
		}
		if ctx.quoted {
			continue
		}

		switch {
		case s.Type == "boolean":
			add("true", 1)
			add("false", 1)
		case s.Type == "object" || (s.Type == "" && len(s.Properties) > 0):
			add("{", 2)
		case s.Type == "array":
			add("[", 2)
		}
		if s.Nullable {
			add("null", 3)
		}
	}
	return out
}

func quote(s string, insideString bool) string {
	if insideString {
		return s
	}
	b, err := json.Marshal(s)
	if err != nil {
		return `"` + s + `"`
	}
	return string(b)
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func dedupeCandidates(in []candidate) []candidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]candidate, 0, len(in))
	for _, c := range in {
		key := c.uniqueKey
		if key == "" {
			key = c.text
		}
		if c.text == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// selectAndRank keeps candidates matching prefix and orders them by priority,
// then by how well they match. Ties keep their original order.
func selectAndRank(candidates []candidate, prefix string, maxItems int) []string {
	type rankedItem struct {
		text string
		rank int
	}

	prefix = strings.ToLower(prefix)
	ranked := make([]rankedItem, 0, len(candidates))
	for _, cand := range candidates {
		score := cand.priority * 100
		if prefix != "" {
			bare := strings.ToLower(strings.TrimPrefix(cand.text, `"`))
			switch {
			case strings.HasPrefix(bare, prefix):
			case strings.Contains(bare, prefix):
				score += 5
			default:
				continue
			}
		}
		ranked = append(ranked, rankedItem{text: cand.text, rank: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].rank < ranked[j].rank
	})

	limit := maxItems
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, ranked[i].text)
	}
	return out
}
