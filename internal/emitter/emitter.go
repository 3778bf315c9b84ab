// internal/emitter/emitter.go
package emitter

import (
	"warpc/internal/analyzer"
	"warpc/internal/errors"
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
	"warpc/internal/wasmcode"
)

// Config mirrors the teacher's build-flag struct (see cmd/sentra's build
// options) but governs which parts of the module the emitter actually
// writes — a program with no FFI declarations gets no FFI import section,
// and EmitKindGlobals gates the kind-tag globals.
type Config struct {
	EmitAllFunctions bool
	EmitKindGlobals  bool
	EmitHostImports  bool
	EmitWasiImports  bool
	EmitFfiImports   bool
}

// DefaultConfig emits everything the reader needs to round-trip a Node
// and nothing more exotic: host and WASI imports are off here and are
// turned on only by a `use host` / `use wasi` declaration in the program.
func DefaultConfig() Config {
	return Config{EmitKindGlobals: true}
}

// Emitter lowers an analyzed tree into a WASM module, one function body
// at a time, mirroring the teacher's Compiler: a single mutable struct
// wrapping the in-progress output (here a set of wasmcode.Builders
// instead of one bytecode.Chunk) plus the shared compilation Context.
type Emitter struct {
	ctx   *registry.Context
	types *typemanager.Manager
	ann   analyzer.Annotations
	cfg   Config

	fn   *registry.Function
	code *wasmcode.Builder

	globalOrder  []string
	pendingCalls []pendingCall
}

// Emit runs analysis output through the emitter and returns the encoded
// module bytes. A lowering rule that hits an unrecoverable condition
// (an unhandled runtime formatter, say) panics with *errors.CompileError
// the same way the parser's primary/consume do; Emit recovers it here so
// every caller sees a plain error, never a panic (spec.md §7).
func Emit(ctx *registry.Context, result *analyzer.Result, cfg Config) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*errors.CompileError); ok {
				out, err = nil, ce
				return
			}
			panic(r)
		}
	}()

	e := &Emitter{ctx: ctx, types: typemanager.New(ctx.Types), ann: result.Annotations, cfg: cfg}

	for _, d := range result.Functions {
		ctx.MarkUsed(d.Name)
	}

	// A program that declared any FFI import gets its import section
	// regardless of cfg, the same way a program with no imports at all
	// shouldn't pay for an empty one — see analyzer.CollectDeclarations.
	if len(ctx.FFIImports) > 0 {
		e.cfg.EmitFfiImports = true
	}
	for _, mod := range result.UsedModules {
		switch mod {
		case "host":
			e.cfg.EmitHostImports = true
		case "wasi":
			e.cfg.EmitWasiImports = true
		}
	}

	if err := e.types.Build(); err != nil {
		return nil, err
	}

	// Imports must be registered before any code function — WASM's
	// function index space puts every import first (spec.md §4.3).
	e.declareImports()
	e.declareConstructors()
	e.declareRuntimeOps()
	e.declareDumpSupport()
	// Kind-tag globals occupy the low global indices; user globals
	// assigned while lowering function bodies are appended after them,
	// so this must run before any body is emitted.
	e.declareKindGlobals()

	// main's declared result is i32, not a $Node ref: see declareDumpSupport
	// for why the exported entry point hands the host a linear-memory
	// pointer rather than a typed GC reference.
	main := registry.NewFunction("main", registry.Signature{
		Results: []kindtype.Ref{{Val: kindtype.I32}},
	})
	main.ExportName = "main"

	// Reserve every code function's call_index up front, before any body
	// is lowered — a call site to a function defined later in source
	// order (or mutually recursive with the current one) must see its
	// real index, not a zero placeholder baked into the instruction
	// stream (the Builder has no forward-patch mechanism).
	e.reserveFunctionSlot(main)
	for _, d := range result.Functions {
		e.reserveFunctionSlot(d.Function)
	}

	for _, d := range result.Functions {
		e.fillFunctionBody(d.Function, d.Function.Body)
	}
	e.fillMainBody(main, result.Root)

	mod := e.buildModule()
	return mod.Encode(), nil
}

// reserveFunctionSlot assigns fn's TypeIndex and call_index without
// lowering its body yet.
func (e *Emitter) reserveFunctionSlot(fn *registry.Function) {
	var params []kindtype.Ref
	for _, p := range fn.Signature.Params {
		params = append(params, p.Type)
	}
	fn.TypeIndex = e.types.DeclareFuncType(typemanager.FuncType{Params: params, Results: fn.Signature.Results})
	e.ctx.Functions.RegisterCode(fn)
}

// fillFunctionBody lowers body into fn's already-reserved slot.
func (e *Emitter) fillFunctionBody(fn *registry.Function, body *node.Node) {
	prevFn, prevCode := e.fn, e.code
	e.fn = fn
	e.code = wasmcode.NewBuilder()
	e.emitExpr(body)
	e.code.Op(wasmcode.OpEnd)
	fn.CodeBytes = e.code.Bytes()
	fn.IsHandled = true
	e.fn, e.code = prevFn, prevCode
}

// fillMainBody lowers the program's root expression, then hands the
// resulting $Node off to __dump_node so the exported `main` can return a
// plain i32 pointer instead of a typed GC reference — see
// declareDumpSupport.
func (e *Emitter) fillMainBody(fn *registry.Function, body *node.Node) {
	prevFn, prevCode := e.fn, e.code
	e.fn = fn
	e.code = wasmcode.NewBuilder()
	e.emitExpr(body)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(dumpScratchBase))
	e.call(dumpNodeFuncName)
	e.code.Op(wasmcode.OpDrop)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(dumpScratchBase))
	e.code.Op(wasmcode.OpEnd)
	fn.CodeBytes = e.code.Bytes()
	fn.IsHandled = true
	e.fn, e.code = prevFn, prevCode
}

// kindOf is the Annotations lookup every lowering rule consults before
// choosing an instruction sequence.
func (e *Emitter) kindOf(n *node.Node) kindtype.Kind {
	return e.ann.Get(n)
}
