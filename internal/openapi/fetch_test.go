package openapi_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/kaijietti/qdrant-web-ui/internal/openapi"
	"github.com/kaijietti/qdrant-web-ui/internal/openapi/openapitest"
)

func compressGzip(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func compressBrotli(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("brotli write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("brotli close: %v", err)
	}
	return buf.Bytes()
}

func compressZstd(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestFetchDecodesContentEncodings(t *testing.T) {
	t.Parallel()

	raw := openapitest.Raw()
	cases := map[string][]byte{
		"":     raw,
		"gzip": compressGzip(t, raw),
		"br":   compressBrotli(t, raw),
		"zstd": compressZstd(t, raw),
	}

	for encoding, body := range cases {
		encoding, body := encoding, body
		t.Run("encoding="+encoding, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Accept-Encoding"); got == "" {
					t.Errorf("expected Accept-Encoding header")
				}
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			doc, err := openapi.Fetch(context.Background(), srv.Client(), srv.URL+"/openapi.json")
			if err != nil {
				t.Fatalf("Fetch returned error: %v", err)
			}
			if _, ok := doc.Operation("POST /collections/{collection_name}/points/scroll"); !ok {
				t.Fatalf("expected scroll operation in fetched document")
			}
		})
	}
}

func TestFetchReportsStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := openapi.Fetch(context.Background(), srv.Client(), srv.URL)
	var fetchErr *openapi.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", fetchErr.Status)
	}
}

func TestFetchRejectsUnknownEncoding(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "compress")
		_, _ = w.Write([]byte("????"))
	}))
	defer srv.Close()

	if _, err := openapi.Fetch(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatalf("expected error for unsupported encoding")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "openapi.json")
	if err := os.WriteFile(path, openapitest.Raw(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	doc, err := openapi.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if _, ok := doc.Schema("Filter"); !ok {
		t.Fatalf("expected Filter schema")
	}

	if _, err := openapi.LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
