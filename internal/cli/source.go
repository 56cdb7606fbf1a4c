package cli

import (
	"context"
	"flag"
	"strings"

	"github.com/kaijietti/qdrant-web-ui/internal/completiond"
	"github.com/kaijietti/qdrant-web-ui/internal/configstore"
	"github.com/kaijietti/qdrant-web-ui/internal/editor"
)

// completer is the part of editor.Provider the commands use.
type completer interface {
	ProvideCompletionItems(ctx context.Context, block *editor.CodeBlock, cursor editor.Cursor) editor.CompletionList
}

var newCompleter = func(ctx context.Context, store configstore.Config) (completer, error) {
	p, err := completiond.NewProvider(ctx, store)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type sourceFlags struct {
	config     *string
	schemaFile *string
	schemaURL  *string
	qdrantURL  *string
	apiKey     *string
}

func addSourceFlags(fs *flag.FlagSet) *sourceFlags {
	return &sourceFlags{
		config:     fs.String("config", "", "Config file path"),
		schemaFile: fs.String("schema-file", "", "Local base OpenAPI document"),
		schemaURL:  fs.String("schema-url", "", "URL of the base OpenAPI document"),
		qdrantURL:  fs.String("qdrant-url", "", "Qdrant REST endpoint used to list collections"),
		apiKey:     fs.String("api-key", "", "Qdrant API key"),
	}
}

// store layers the config file, environment and any flags that were set.
func (s *sourceFlags) store(fs *flag.FlagSet) (configstore.Config, error) {
	var (
		cfg configstore.Config
		err error
	)
	if path := strings.TrimSpace(*s.config); path != "" {
		cfg, err = configstore.LoadFile(path)
	} else {
		cfg, err = configstore.Load()
	}
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "schema-file":
			cfg.SchemaPath = strings.TrimSpace(*s.schemaFile)
		case "schema-url":
			cfg.SchemaURL = strings.TrimSpace(*s.schemaURL)
		case "qdrant-url":
			cfg.QdrantURL = strings.TrimSpace(*s.qdrantURL)
		case "api-key":
			cfg.APIKey = strings.TrimSpace(*s.apiKey)
		}
	})
	return cfg, cfg.Validate()
}

// requestLine returns the first line of a block, which names its operation.
func requestLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(strings.TrimSuffix(line, "\r"))
}
