package completiond

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/kaijietti/qdrant-web-ui/internal/editor"
	"github.com/kaijietti/qdrant-web-ui/internal/telemetry/otel"
	"github.com/kaijietti/qdrant-web-ui/internal/websocket"
)

const maxCompletePayloadBytes = 1 << 20 // 1 MiB

type completionAPI struct {
	state atomic.Pointer[serving]
	hub   *websocket.Hub
}

type completeRequest struct {
	Block  *editor.CodeBlock `json:"block"`
	Cursor *editor.Cursor    `json:"cursor"`
}

func newCompletionAPI() *completionAPI {
	api := &completionAPI{}
	api.hub = websocket.NewHub(api.handleFrame)
	return api
}

func (api *completionAPI) publish(s *serving) {
	api.state.Store(s)
}

func (api *completionAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", api.handleHealth)
	mux.HandleFunc("/health/ready", api.handleReady)
	mux.HandleFunc("/api/complete", api.handleComplete)
	mux.HandleFunc("/api/complete/ws", api.handleCompleteWS)
	mux.HandleFunc("/api/openapi.json", api.handleSchema)
	mux.HandleFunc("/api/collections", api.handleCollections)
}

func (api *completionAPI) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (api *completionAPI) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if api.state.Load() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("initializing"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// ready writes 503 and returns nil until the schema has loaded.
func (api *completionAPI) ready(w http.ResponseWriter) *serving {
	s := api.state.Load()
	if s == nil {
		writeError(w, http.StatusServiceUnavailable, "completion is initializing")
	}
	return s
}

func (api *completionAPI) handleComplete(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s := api.ready(w)
	if s == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCompletePayloadBytes)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "body required")
		return
	}

	var req completeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateCursor(req.Cursor); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := otel.ExtractHTTP(r.Context(), r.Header)
	writeJSON(w, http.StatusOK, s.httpProvider.ProvideCompletionItems(ctx, req.Block, *req.Cursor))
}

func validateCursor(c *editor.Cursor) string {
	switch {
	case c == nil:
		return "cursor required"
	case c.Line < 1:
		return "cursor.line must be >= 1"
	}
	return ""
}

func (api *completionAPI) handleCompleteWS(w http.ResponseWriter, r *http.Request) {
	if api.ready(w) == nil {
		return
	}
	api.hub.HandleWebSocket(w, r)
}

func (api *completionAPI) handleSchema(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s := api.ready(w)
	if s == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.schemaJSON)
}

func (api *completionAPI) handleCollections(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s := api.ready(w)
	if s == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": s.identifiers})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, traceparent")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
		},
	})
}
