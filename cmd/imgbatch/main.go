package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	// Create signal-aware context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	code := a.run(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}

// run dispatches to a subcommand and returns the exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		usage(a.stderr)
		return exitUsage
	}

	name, rest := args[0], args[1:]
	switch name {
	case "-h", "--help", "help":
		usage(a.stdout)
		return exitOK
	case "version", "--version", "-V":
		fmt.Fprintf(a.stdout, "imgbatch %s\n", version)
		return exitOK
	case "info":
		return a.runInfo(rest)
	case "history":
		return a.runHistory(ctx, rest)
	case "config":
		return a.runConfig(rest)
	}

	if _, ok := operationCommands[name]; ok {
		return a.runOperation(ctx, name, rest)
	}

	fmt.Fprintf(a.stderr, "Unknown command %q\n\n", name)
	usage(a.stderr)
	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: imgbatch <command> [flags] <image>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Image commands:")

	names := make([]string, 0, len(operationCommands))
	for name := range operationCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %s\n", name, operationCommands[name])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Other commands:")
	fmt.Fprintf(w, "  %-15s %s\n", "info", "Show image dimensions, format and color type")
	fmt.Fprintf(w, "  %-15s %s\n", "history", "List recorded runs")
	fmt.Fprintf(w, "  %-15s %s\n", "config", "Edit or show the configuration")
	fmt.Fprintf(w, "  %-15s %s\n", "version", "Print the version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'imgbatch <command> --help' for the flags of a command.")
}
