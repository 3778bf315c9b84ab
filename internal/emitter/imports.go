// internal/emitter/imports.go
package emitter

import (
	"sort"

	"warpc/internal/kindtype"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
)

// declareImports registers every configured import through the
// FunctionRegistry before any code function is registered, so call
// indices come out stable (spec.md §4.8): host, then WASI, then FFI
// entries in alphabetical order.
func (e *Emitter) declareImports() {
	if e.cfg.EmitHostImports {
		e.declareHostImports()
	}
	if e.cfg.EmitWasiImports {
		e.declareWasiImport()
	}
	if e.cfg.EmitFfiImports {
		e.declareFFIImports()
	}
}

func (e *Emitter) declareHostImports() {
	fetch := registry.NewFunction("host.fetch", registry.Signature{
		Params:  []registry.Param{{Name: "url_ptr", Type: kindtype.Ref{Val: kindtype.I32}}, {Name: "url_len", Type: kindtype.Ref{Val: kindtype.I32}}},
		Results: []kindtype.Ref{{Val: kindtype.I32}, {Val: kindtype.I32}},
	})
	fetch.IsHost = true
	e.registerImport(fetch)

	run := registry.NewFunction("host.run", registry.Signature{
		Params:  []registry.Param{{Name: "ptr", Type: kindtype.Ref{Val: kindtype.I32}}, {Name: "len", Type: kindtype.Ref{Val: kindtype.I32}}},
		Results: []kindtype.Ref{{Val: kindtype.I64}},
	})
	run.IsHost = true
	e.registerImport(run)
}

func (e *Emitter) declareWasiImport() {
	fdWrite := registry.NewFunction("wasi_snapshot_preview1.fd_write", registry.Signature{
		Params: []registry.Param{
			{Name: "fd", Type: kindtype.Ref{Val: kindtype.I32}},
			{Name: "iovs", Type: kindtype.Ref{Val: kindtype.I32}},
			{Name: "iovs_len", Type: kindtype.Ref{Val: kindtype.I32}},
			{Name: "nwritten", Type: kindtype.Ref{Val: kindtype.I32}},
		},
		Results: []kindtype.Ref{{Val: kindtype.I32}},
	})
	fdWrite.IsHost = true
	e.registerImport(fdWrite)
}

// declareFFIImports emits one import per ctx.FFIImports entry, sorted by
// name — spec.md §4.8's reproducibility requirement.
func (e *Emitter) declareFFIImports() {
	names := make([]string, 0, len(e.ctx.FFIImports))
	for name := range e.ctx.FFIImports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sig := e.ctx.FFIImports[name]
		var params []registry.Param
		for i, p := range sig.Params {
			params = append(params, registry.Param{Name: paramName(i), Type: p})
		}
		fn := registry.NewFunction(name, registry.Signature{Params: params, Results: sig.Results})
		fn.IsFFI = true
		fn.FFILibrary = sig.Library
		e.registerImport(fn)
	}
}

func (e *Emitter) registerImport(fn *registry.Function) {
	var params []kindtype.Ref
	for _, p := range fn.Signature.Params {
		params = append(params, p.Type)
	}
	fn.TypeIndex = e.types.DeclareFuncType(typemanager.FuncType{Params: params, Results: fn.Signature.Results})
	e.ctx.Functions.RegisterImport(fn)
	e.ctx.DeclareUserFunction(fn.Name, fn)
}
