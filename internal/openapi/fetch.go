package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

const (
	maxDocumentBytes = 32 << 20 // 32 MiB
	acceptEncoding   = "gzip, br, zstd, deflate"
)

var errDocumentTooLarge = errors.New("openapi document exceeds size limit")

// FetchError describes a failed document retrieval.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch openapi document %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch openapi document %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetch retrieves and parses the base schema document. Compressed responses
// are decoded according to Content-Encoding.
func Fetch(ctx context.Context, client *http.Client, url string) (*Document, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	raw, err := readLimited(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	data, err := decodeBody(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return Parse(data)
}

// LoadFile reads a schema document from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}
	return Parse(data)
}

func decodeBody(encoding string, raw []byte) ([]byte, error) {
	encoding = strings.ToLower(strings.TrimSpace(encoding))
	switch encoding {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer reader.Close()
		return readLimited(reader)
	case "deflate":
		reader, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		defer reader.Close()
		return readLimited(reader)
	case "br":
		return readLimited(brotli.NewReader(bytes.NewReader(raw)))
	case "zstd":
		reader, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer reader.Close()
		return readLimited(reader)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	limited := &io.LimitedReader{R: r, N: maxDocumentBytes + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if limited.N <= 0 {
		return nil, errDocumentTooLarge
	}
	return data, nil
}
