// Package reader embeds wazero to run a compiled module and decode the
// $Node tree its `main` export computed, turning the round trip
// parse -> analyze -> emit -> read into something the rest of the Go
// toolchain (tests, a REPL, cmd/warpc's -run flag) can consume directly
// as a *node.Node (spec.md §5).
package reader

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"warpc/internal/errors"
	"warpc/internal/node"
)

// Engine owns one wazero.Runtime plus the host modules every emitted
// module might import (WASI's fd_write, the host.fetch/host.run stubs,
// and the libm/libc FFI tables) — spec.md §5 calls out that an Engine
// may be shared and reused across many reads, so all of that setup
// happens once here rather than per Read call.
type Engine struct {
	runtime wazero.Runtime
}

// NewEngine builds an Engine and instantiates every host module it
// might need to satisfy a compiled module's imports. Closing the
// returned Engine tears all of them down together.
func NewEngine(ctx context.Context) (*Engine, error) {
	rt := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, errors.NewReaderError("instantiate wasi_snapshot_preview1: " + err.Error())
	}

	e := &Engine{runtime: rt}
	if err := e.instantiateHostModule(ctx); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	if err := e.instantiateLibm(ctx); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	if err := e.instantiateLibc(ctx); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	return e, nil
}

// Close releases the runtime and every host module registered against
// it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Read compiles wasmBytes, instantiates it in its own Store (spec.md §5:
// one Store per read, so running the same module twice never shares
// mutable globals between runs), calls its exported `main`, and decodes
// the $Node tree `main` serialized into linear memory.
func (e *Engine) Read(ctx context.Context, wasmBytes []byte) (*node.Node, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.NewReaderError("compile module: " + err.Error())
	}
	defer compiled.Close(ctx)

	mod, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		return nil, errors.NewReaderError("instantiate module: " + err.Error())
	}
	defer mod.Close(ctx)

	main := mod.ExportedFunction("main")
	if main == nil {
		return nil, errors.NewReaderError("module has no exported main function")
	}
	results, err := main.Call(ctx)
	if err != nil {
		return nil, errors.NewReaderError("call main: " + err.Error())
	}
	if len(results) != 1 {
		return nil, errors.NewReaderError(fmt.Sprintf("main returned %d values, want 1", len(results)))
	}

	mem := mod.Memory()
	if mem == nil {
		return nil, errors.NewReaderError("module exports no memory")
	}
	root, _, err := decodeNode(mem, uint32(results[0]))
	if err != nil {
		return nil, err
	}
	return root, nil
}
