// Package cli implements the filter-complete command line: the daemon, a
// one-shot completion command and an interactive playground.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaijietti/qdrant-web-ui/internal/completiond"
)

// Main dispatches args (including argv[0]) to a subcommand. Anything that
// is not a known subcommand runs the daemon.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) < 2 {
		return completiond.Main(args)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[1] {
	case "serve":
		return completiond.Main(append([]string{args[0]}, args[2:]...))
	case "complete":
		return runComplete(ctx, args[2:], stdin, stdout, stderr)
	case "try":
		return runTry(ctx, args[2:], stdin, stdout, stderr)
	case "help":
		printUsage(stdout)
		return nil
	default:
		return completiond.Main(args)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage:
  filter-complete [serve] [flags]   run the completion daemon
  filter-complete complete [flags]  complete a block file holding a <caret> marker
  filter-complete try [flags]       interactive completion playground
  filter-complete --version         print version information
`)
}
