// Package completiond runs the completion daemon: it loads and augments the
// schema document in the background, then answers completion requests over
// HTTP and websocket.
package completiond

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/kaijietti/qdrant-web-ui/internal/completiond/listen"
	"github.com/kaijietti/qdrant-web-ui/internal/configstore"
	"github.com/kaijietti/qdrant-web-ui/internal/telemetry/otel"
)

const defaultInitTimeout = 30 * time.Second

type runtimeConfig struct {
	Store       configstore.Config
	Listen      listen.Config
	Telemetry   otel.Config
	InitTimeout time.Duration
}

// Main runs the daemon using the provided argv slice. When args is empty,
// os.Args is used.
func Main(args []string) error {
	if len(args) == 0 {
		args = os.Args
	}

	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := initRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.Run(ctx)
}

// logEvent emits compact structured event logs: event=<name> key=value ...
func logEvent(event string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("event=")
	b.WriteString(event)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	log.Print(b.String())
}

// parseConfig layers the config file, environment and flags, in that order.
func parseConfig(args []string) (*runtimeConfig, error) {
	name := commandName(args)
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	configPath := fs.String("config", "", "Config file path (default: $FILTER_COMPLETE_HOME/config.toml or the XDG location)")
	listenAddr := fs.String("listen", "", "Serve the completion API on the provided address (e.g. :18731, 127.0.0.1:18731)")
	fs.StringVar(listenAddr, "l", "", "Alias for --listen")
	schemaURL := fs.String("schema-url", "", "URL of the base OpenAPI document")
	schemaFile := fs.String("schema-file", "", "Local base OpenAPI document (wins over --schema-url)")
	qdrantURL := fs.String("qdrant-url", "", "Qdrant REST endpoint used to list collections")
	apiKey := fs.String("api-key", "", "Qdrant API key")
	initTimeout := fs.Duration("init-timeout", defaultInitTimeout, "Time allowed for loading the schema and listing collections")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags]\n\n", name)
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nEnvironment:\n  %s  Default Qdrant endpoint\n  %s  Default Qdrant API key\n  %s  Default schema URL\n  %s  Default listen address\n  FILTER_COMPLETE_OTEL_METRICS / FILTER_COMPLETE_OTEL_TRACES  Enable telemetry\n",
			configstore.EnvQdrantURL, configstore.EnvAPIKey, configstore.EnvSchemaURL, configstore.EnvListen)
	}

	var flagArgs []string
	if len(args) > 1 {
		flagArgs = args[1:]
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(fs.Args()) > 0 {
		return nil, fmt.Errorf("unexpected extra arguments: %v", fs.Args())
	}

	var (
		store configstore.Config
		err   error
	)
	if path := strings.TrimSpace(*configPath); path != "" {
		store, err = configstore.LoadFile(path)
	} else {
		store, err = configstore.Load()
	}
	if err != nil {
		return nil, err
	}
	store.ApplyEnv()

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["listen"] || set["l"] {
		store.Listen = strings.TrimSpace(*listenAddr)
	}
	if set["schema-url"] {
		store.SchemaURL = strings.TrimSpace(*schemaURL)
	}
	if set["schema-file"] {
		store.SchemaPath = strings.TrimSpace(*schemaFile)
	}
	if set["qdrant-url"] {
		store.QdrantURL = strings.TrimSpace(*qdrantURL)
	}
	if set["api-key"] {
		store.APIKey = strings.TrimSpace(*apiKey)
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}

	listenCfg, err := listen.Parse(store.Listen)
	if err != nil {
		return nil, fmt.Errorf("parse listen: %w", err)
	}
	if *initTimeout <= 0 {
		return nil, fmt.Errorf("--init-timeout must be positive")
	}

	telemetry := otel.LoadConfigFromEnv()
	telemetry.EnableMetrics = telemetry.EnableMetrics || store.Telemetry.Metrics
	telemetry.EnableTraces = telemetry.EnableTraces || store.Telemetry.Traces

	return &runtimeConfig{
		Store:       store,
		Listen:      listenCfg,
		Telemetry:   telemetry,
		InitTimeout: *initTimeout,
	}, nil
}

func commandName(args []string) string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "filter-complete"
	}
	return filepath.Base(args[0])
}
