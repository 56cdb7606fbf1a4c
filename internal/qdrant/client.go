// Package qdrant lists collection names from a Qdrant REST endpoint.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 4 << 20 // 4 MiB
)

// Client talks to the collections endpoint of a Qdrant service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a client rooted at baseURL. A nil httpClient uses a
// client with a bounded timeout.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		http:    httpClient,
	}
}

type collectionsResponse struct {
	Result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	} `json:"result"`
	Status any `json:"status"`
}

// List returns collection names in the order the service reports them.
func (c *Client) List(ctx context.Context) ([]string, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("qdrant url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/collections", nil)
	if err != nil {
		return nil, fmt.Errorf("build collections request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read collections response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list collections: unexpected status %d", resp.StatusCode)
	}

	var payload collectionsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode collections response: %w", err)
	}

	names := make([]string, 0, len(payload.Result.Collections))
	for _, col := range payload.Result.Collections {
		if name := strings.TrimSpace(col.Name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
