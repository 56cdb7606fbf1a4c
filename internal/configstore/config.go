package configstore

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	defaultQdrantURL = "http://localhost:6333"
	defaultListen    = "127.0.0.1:18731"

	// schemaAssetPath is where the console serves its bundled schema.
	schemaAssetPath = "/dashboard/openapi.json"
)

// Environment variables that override file values.
const (
	EnvQdrantURL = "QDRANT_URL"
	EnvAPIKey    = "QDRANT_API_KEY"
	EnvSchemaURL = "FILTER_COMPLETE_SCHEMA_URL"
	EnvListen    = "FILTER_COMPLETE_LISTEN"
)

// ErrInvalidURL marks a configured URL that is not absolute http(s).
var ErrInvalidURL = errors.New("invalid url")

// Config is the persisted daemon configuration.
type Config struct {
	SchemaURL  string    `toml:"schema_url,omitempty"`
	SchemaPath string    `toml:"schema_path,omitempty"`
	QdrantURL  string    `toml:"qdrant_url,omitempty"`
	APIKey     string    `toml:"api_key,omitempty"`
	Listen     string    `toml:"listen,omitempty"`
	Telemetry  Telemetry `toml:"telemetry"`
}

// Telemetry toggles the OTEL exporters.
type Telemetry struct {
	Metrics bool `toml:"metrics"`
	Traces  bool `toml:"traces"`
}

// New returns a configuration populated with defaults.
func New() Config {
	return Config{
		QdrantURL: defaultQdrantURL,
		Listen:    defaultListen,
	}
}

// ApplyEnv overrides fields from the process environment. Empty variables
// are ignored.
func (c *Config) ApplyEnv() {
	c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvQdrantURL, &c.QdrantURL)
	set(EnvAPIKey, &c.APIKey)
	set(EnvSchemaURL, &c.SchemaURL)
	set(EnvListen, &c.Listen)
}

// SchemaSource reports where the base schema document is read from. A local
// path wins over a URL; with neither set the console asset on the Qdrant
// server is used.
func (c Config) SchemaSource() (location string, isFile bool) {
	if path := strings.TrimSpace(c.SchemaPath); path != "" {
		return path, true
	}
	if u := strings.TrimSpace(c.SchemaURL); u != "" {
		return u, false
	}
	return strings.TrimRight(strings.TrimSpace(c.QdrantURL), "/") + schemaAssetPath, false
}

// Validate checks the URLs the daemon will dial.
func (c Config) Validate() error {
	if err := checkURL("qdrant_url", c.QdrantURL, false); err != nil {
		return err
	}
	if err := checkURL("schema_url", c.SchemaURL, true); err != nil {
		return err
	}
	return nil
}

func checkURL(field, raw string, optional bool) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if optional {
			return nil
		}
		return fmt.Errorf("%s: %w: empty", field, ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", field, ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s: %w: %q", field, ErrInvalidURL, raw)
	}
	return nil
}
