package completiond

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/kaijietti/qdrant-web-ui/internal/editor"
)

type wsRequest struct {
	ID     string            `json:"id"`
	Block  *editor.CodeBlock `json:"block"`
	Cursor *editor.Cursor    `json:"cursor"`
}

type wsError struct {
	Message string `json:"message"`
}

type wsReply struct {
	ID          string              `json:"id"`
	Suggestions []editor.Suggestion `json:"suggestions"`
	Error       *wsError            `json:"error,omitempty"`
}

// handleFrame answers one websocket completion request. The reply carries
// the caller's id, or a generated one, so the host can drop stale answers.
func (api *completionAPI) handleFrame(ctx context.Context, clientID string, payload []byte) []byte {
	var req wsRequest
	decodeErr := json.Unmarshal(payload, &req)

	reply := wsReply{ID: strings.TrimSpace(req.ID), Suggestions: []editor.Suggestion{}}
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}

	s := api.state.Load()
	switch {
	case decodeErr != nil:
		reply.Error = &wsError{Message: "invalid JSON frame"}
	case s == nil:
		reply.Error = &wsError{Message: "completion is initializing"}
	default:
		if msg := validateCursor(req.Cursor); msg != "" {
			reply.Error = &wsError{Message: msg}
			break
		}
		reply.Suggestions = s.wsProvider.ProvideCompletionItems(ctx, req.Block, *req.Cursor).Suggestions
	}
	if reply.Error != nil {
		logEvent("ws.frame", map[string]any{"client": clientID, "id": reply.ID, "error": reply.Error.Message})
	}

	out, err := json.Marshal(reply)
	if err != nil {
		return nil
	}
	return out
}
