// Package main provides the cuepoint command line tool for ingesting caption
// files, asking questions and inspecting chapters without running the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: cuepoint <command> [flags]

commands:
  ingest     ingest a video (-video ID, -file path or -all)
  reindex    rebuild the passage index from the captions directory
  ask        ask a question about an ingested video
  chapters   extract chapters from a description file
  eval       summarize graded answers from a JSONL file

Run "cuepoint <command> -h" for command flags.
`

type command func(ctx context.Context, args []string, stdout io.Writer) error

var commands = map[string]command{
	"ingest":   runIngest,
	"reindex":  runReindex,
	"ask":      runAsk,
	"chapters": runChapters,
	"eval":     runEval,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err := cmd(ctx, args[1:], stdout); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintf(stderr, "cuepoint %s: %v\n", args[0], err)
		return 1
	}
	return 0
}
