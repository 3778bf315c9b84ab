// internal/emitter/ffi.go
package emitter

import (
	"warpc/internal/ffi"
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
	"warpc/internal/wasmcode"
)

// emitFFICall marshals each argument to the physical type the foreign
// signature declares, calls the import, and wraps the result back into a
// $Node (spec.md §4.11). A Text/Symbol argument against an i32 parameter
// is passed as its $String struct's linear-memory pointer (the
// null-terminated convention every built-in header uses); everything
// else marshals as a plain numeric conversion.
func (e *Emitter) emitFFICall(sig ffi.Signature, args []*node.Node) {
	for i, arg := range args {
		if i >= len(sig.Params) {
			break
		}
		e.marshalArg(arg, sig.Params[i])
	}
	e.ctx.MarkUsed(sig.Name)
	if fn, ok := e.ctx.UserFunctions[sig.Name]; ok {
		e.code.Op(wasmcode.OpCall).U32(uint32(fn.CallIndex))
	}
	e.wrapFFIResult(sig)
}

func (e *Emitter) marshalArg(arg *node.Node, want kindtype.Ref) {
	k := e.kindOf(arg)
	if want.Val == kindtype.I32 && (k == kindtype.Text || k == kindtype.Symbol) {
		e.emitExpr(arg)
		e.structGetNode(fieldStr)
		e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(0) // $String.ptr
		return
	}
	switch want.Val {
	case kindtype.I32:
		e.emitAsI64(arg)
		e.code.Op(wasmcode.OpI32WrapI64)
	case kindtype.I64:
		e.emitAsI64(arg)
	case kindtype.F32:
		e.emitAsF64(arg)
		e.code.Op(wasmcode.OpF32DemoteF64)
	case kindtype.F64:
		e.emitAsF64(arg)
	default:
		e.emitAsI64(arg)
	}
}

func (e *Emitter) wrapFFIResult(sig ffi.Signature) {
	if len(sig.Results) == 0 {
		e.emitEmpty()
		return
	}
	switch sig.Results[0].Val {
	case kindtype.F32:
		e.code.Op(wasmcode.OpF64PromoteF32)
		e.ensureRequired(registry.RequireNewFloat)
		e.call("new_float")
	case kindtype.F64:
		e.ensureRequired(registry.RequireNewFloat)
		e.call("new_float")
	case kindtype.I32:
		e.code.Op(wasmcode.OpI64ExtendI32S)
		e.ensureRequired(registry.RequireNewInt)
		e.call("new_int")
	default:
		e.ensureRequired(registry.RequireNewInt)
		e.call("new_int")
	}
}
