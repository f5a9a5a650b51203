package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/cli"
)

func TestRun_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	netlist := `
.model one
.inputs a
.outputs y
.names a y
0 1
.end
`
	path := filepath.Join(t.TempDir(), "one.blif")
	require.NoError(t, os.WriteFile(path, []byte(netlist), 0o600), "failed to set up test file")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"heuristic", path, "1", "1", "1"})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "Heuristic Scheduling Result\n1: {} {} {y}\nLATENCY: 1\nEND\n", out.String())
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, cli.ExitUsage, exitErr.Code)
	require.Contains(t, exitErr.Message, "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_InputError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.blif")
	require.NoError(t, os.WriteFile(path, []byte(".latch a b\n"), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"exact", path, "1", "1", "1"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, cli.ExitFailure, exitErr.Code)
	require.Contains(t, exitErr.Message, "unsupported directive")
}
