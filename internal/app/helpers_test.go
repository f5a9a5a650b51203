package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/testutil"
)

const chainBLIF = `# x, y -> a=AND -> b=OR -> c=NOT
.model chain
.inputs x y
.outputs c
.names x y a
11 1
.names a x b
1- 1
-1 1
.names b c
0 1
.end
`

// setupAppTest creates an app writing schedules to the returned buffer.
// Logs are captured and printed when MLRCS_TEST_LOGS is set.
func setupAppTest(t *testing.T, cfg Config, opts ...Option) (*App, *bytes.Buffer) {
	t.Helper()
	a, out, _ := setupAppTestWithLogs(t, cfg, opts...)
	return a, out
}

// setupAppTestWithLogs is setupAppTest that also returns the captured logs.
func setupAppTestWithLogs(t *testing.T, cfg Config, opts ...Option) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	a := NewApp(out, logs, validated, opts...)

	t.Cleanup(func() {
		if os.Getenv("MLRCS_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

// writeFile writes content under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
