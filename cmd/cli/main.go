package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/mlrcs/internal/cli"
)

// main is the entrypoint for the mlrcs application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFailure)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) (err error) {
	// A panic anywhere below is a bug; report it instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application panicked: %v", r)
		}
	}()
	return cli.Execute(ctx, args, outW, errW)
}
