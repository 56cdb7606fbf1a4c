package editor

// Engine proposes the next tokens of a request body.
type Engine interface {
	CompleteRequestBody(operationKey, partialBody string) ([]string, error)
}

// Complete asks engine for candidates and wraps them as suggestions in the
// order the engine returned them. Engine errors, including an unknown
// operation, produce an empty list.
func Complete(engine Engine, ctx ResolvedContext) []Suggestion {
	suggestions, _ := complete(engine, ctx)
	return suggestions
}

func complete(engine Engine, ctx ResolvedContext) ([]Suggestion, error) {
	if engine == nil {
		return []Suggestion{}, nil
	}
	raw, err := engine.CompleteRequestBody(ctx.OperationKey, ctx.PartialBody)
	if err != nil {
		return []Suggestion{}, err
	}
	out := make([]Suggestion, 0, len(raw))
	for _, s := range raw {
		out = append(out, Suggestion{Label: s, InsertText: s, Kind: KindKeyword})
	}
	return out, nil
}
