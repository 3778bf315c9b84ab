package optimizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTool writes an executable shell script standing in for wasm-opt
// or wasm-metadce, running the given body; each test's body finds the
// argument after -o and copies its first argument (the input file) there,
// so Run's output round-trips the bytes it was given.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestRunWithoutRootsSkipsMetadce(t *testing.T) {
	opt := fakeTool(t, `
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
cp "$1" "$out"
`)
	result, err := Run([]byte("hello"), Options{WasmOptPath: opt})
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), result)
}

func TestRunWithRootsInvokesMetadceThenWasmOpt(t *testing.T) {
	passthrough := `
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
cp "$1" "$out"
`
	metadce := fakeTool(t, passthrough)
	opt := fakeTool(t, passthrough)
	result, err := Run([]byte("payload"), Options{
		WasmOptPath:     opt,
		WasmMetadcePath: metadce,
		Roots:           []string{"main"},
		Level:           O2,
	})
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), result)
}

func TestRunReportsMissingBinary(t *testing.T) {
	_, err := Run([]byte("x"), Options{WasmOptPath: "/nonexistent/wasm-opt-binary"})
	require.Error(t, err)
}

func TestRunReportsNonZeroExit(t *testing.T) {
	opt := fakeTool(t, "exit 1")
	_, err := Run([]byte("x"), Options{WasmOptPath: opt})
	require.Error(t, err)
}
