// Package optimizer shims out to the external wasm-opt/wasm-metadce
// binaries (spec.md §4.13) the same way the teacher's internal/ossec
// shells out to platform tools: build an *exec.Cmd, capture stderr,
// detect failure from the command's own exit status rather than
// parsing its output.
package optimizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"warpc/internal/errors"
)

// Level is one of wasm-opt's optimisation presets.
type Level string

const (
	O1 Level = "-O1"
	O2 Level = "-O2"
	O3 Level = "-O3"
	O4 Level = "-O4"
	Oz Level = "-Oz"
)

// Options configures one optimizer pass over a compiled module.
type Options struct {
	Level Level
	// Roots, when non-empty, names the exports wasm-metadce should treat
	// as always-live, run as a dead-code elimination pass before
	// wasm-opt (spec.md §4.13).
	Roots []string

	// WasmOptPath / WasmMetadcePath override the binaries looked up on
	// PATH, mainly so tests can point at a fake executable.
	WasmOptPath     string
	WasmMetadcePath string
}

func (o Options) optPath() string {
	if o.WasmOptPath != "" {
		return o.WasmOptPath
	}
	return "wasm-opt"
}

func (o Options) metadcePath() string {
	if o.WasmMetadcePath != "" {
		return o.WasmMetadcePath
	}
	return "wasm-metadce"
}

// metadceRoot is one entry of the roots graph wasm-metadce's -f flag
// expects: a "root" node whose export field names a live export.
type metadceRoot struct {
	Name   string `json:"name"`
	Export string `json:"export,omitempty"`
	Root   bool   `json:"root,omitempty"`
}

// Run writes wasmBytes to a temp file, optionally runs wasm-metadce
// against a roots graph built from opts.Roots, then runs wasm-opt at
// opts.Level with GC and reference-types enabled, and returns the
// resulting bytes. Every external process runs synchronously; a
// missing binary or non-zero exit surfaces as a *errors.CompileError
// with Kind ToolError, never a panic — optimizer failures don't abort
// the compilation that produced wasmBytes (spec.md §7).
func Run(wasmBytes []byte, opts Options) ([]byte, error) {
	dir, err := os.MkdirTemp("", "warpc-opt-*")
	if err != nil {
		return nil, errors.NewToolError("create temp dir: " + err.Error())
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.wasm")
	if err := os.WriteFile(in, wasmBytes, 0o644); err != nil {
		return nil, errors.NewToolError("write temp module: " + err.Error())
	}

	current := in
	if len(opts.Roots) > 0 {
		current, err = runMetadce(dir, current, opts)
		if err != nil {
			return nil, err
		}
	}
	return runWasmOpt(current, opts)
}

func runMetadce(dir, in string, opts Options) (string, error) {
	rootsPath := filepath.Join(dir, "roots.json")
	var roots []metadceRoot
	for _, name := range opts.Roots {
		roots = append(roots, metadceRoot{Name: name, Export: name, Root: true})
	}
	payload, err := json.Marshal(roots)
	if err != nil {
		return "", errors.NewToolError("marshal metadce roots: " + err.Error())
	}
	if err := os.WriteFile(rootsPath, payload, 0o644); err != nil {
		return "", errors.NewToolError("write metadce roots: " + err.Error())
	}

	out := filepath.Join(dir, "metadce.wasm")
	cmd := exec.Command(opts.metadcePath(), in, "-f", rootsPath, "-o", out, "--enable-gc", "--enable-reference-types")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.NewToolError(fmt.Sprintf("wasm-metadce: %v: %s", err, stderr.String()))
	}
	if _, err := os.Stat(out); err != nil {
		return "", errors.NewToolError("wasm-metadce: output file was not created")
	}
	return out, nil
}

func runWasmOpt(in string, opts Options) ([]byte, error) {
	level := opts.Level
	if level == "" {
		level = O2
	}
	out := in + ".opt.wasm"
	cmd := exec.Command(opts.optPath(), in, string(level), "--enable-gc", "--enable-reference-types", "-o", out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.NewToolError(fmt.Sprintf("wasm-opt: %v: %s", err, stderr.String()))
	}
	result, err := os.ReadFile(out)
	if err != nil {
		return nil, errors.NewToolError("wasm-opt: output file was not created")
	}
	return result, nil
}
