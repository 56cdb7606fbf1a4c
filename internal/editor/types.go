// Package editor connects a host editor's cursor to the completion engine:
// it resolves the partial request body typed inside the active block and
// turns engine candidates into suggestion items.
package editor

import (
	"encoding/json"
	"fmt"
)

// CodeBlock is one request of the console document. StartLine is the
// document-absolute line holding the request line (the header).
type CodeBlock struct {
	Text         string `json:"text"`
	StartLine    int    `json:"startLine"`
	OperationKey string `json:"operationKey"`
}

// Cursor is a document-absolute, 1-based position.
type Cursor struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ResolvedContext is what the engine needs to complete a body.
type ResolvedContext struct {
	OperationKey string
	PartialBody  string
}

// Kind classifies a suggestion for the host's rendering layer.
type Kind uint8

const (
	KindKeyword Kind = iota
	KindProperty
	KindValue
	KindText
)

var kindCodes = map[Kind]int{
	KindKeyword:  17,
	KindProperty: 9,
	KindValue:    12,
	KindText:     18,
}

var kindNames = map[Kind]string{
	KindKeyword:  "keyword",
	KindProperty: "property",
	KindValue:    "value",
	KindText:     "text",
}

// Code returns the integer the host editor uses for k.
func (k Kind) Code() int {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindText]
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalJSON encodes the kind as its host integer code.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Code())
}

// UnmarshalJSON accepts a host integer code.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("suggestion kind: %w", err)
	}
	for kind, c := range kindCodes {
		if c == code {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("suggestion kind: unknown code %d", code)
}

// Suggestion is one completion item.
type Suggestion struct {
	Label      string `json:"label"`
	InsertText string `json:"insertText"`
	Kind       Kind   `json:"kind"`
}

// CompletionList is the provider result shape expected by the host.
type CompletionList struct {
	Suggestions []Suggestion `json:"suggestions"`
}
