package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kaijietti/qdrant-web-ui/internal/editor"
)

// ErrNoCaret is returned when the block file has no cursor marker.
var ErrNoCaret = errors.New("block has no " + editor.CaretMarker + " marker")

func runComplete(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "-", "Block file holding a "+editor.CaretMarker+" marker ('-' reads stdin)")
	operation := fs.String("operation", "", "Operation key (default: the block's request line)")
	asJSON := fs.Bool("json", false, "Print the completion list as JSON")
	src := addSourceFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: filter-complete complete [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected extra arguments: %v", fs.Args())
	}

	data, err := readBlock(*file, stdin)
	if err != nil {
		return err
	}
	text, cursor, ok := editor.SplitCaret(string(data))
	if !ok {
		return ErrNoCaret
	}
	key := strings.TrimSpace(*operation)
	if key == "" {
		key = requestLine(text)
	}

	store, err := src.store(fs)
	if err != nil {
		return err
	}
	provider, err := newCompleter(ctx, store)
	if err != nil {
		return err
	}
	list := provider.ProvideCompletionItems(ctx, &editor.CodeBlock{Text: text, StartLine: 1, OperationKey: key}, cursor)

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	printSuggestions(stdout, newTheme(supportsColor(stdout)), list.Suggestions)
	return nil
}

func readBlock(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			return nil, fmt.Errorf("no block on stdin")
		}
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read block: %w", err)
	}
	return data, nil
}

func printSuggestions(w io.Writer, t theme, suggestions []editor.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, t.muted.Render("no suggestions"))
		return
	}
	for i, s := range suggestions {
		fmt.Fprintf(w, "%s %s\n", t.index.Render(fmt.Sprintf("%2d.", i+1)), t.label.Render(s.Label))
	}
}
