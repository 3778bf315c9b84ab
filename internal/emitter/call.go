// internal/emitter/call.go
package emitter

import (
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
	"warpc/internal/wasmcode"
)

// introspectionBuiltins lowers to a short instruction sequence over a
// single argument rather than a genuine call (spec.md §4.9).
var introspectionBuiltins = map[string]bool{
	"type": true, "count": true, "size": true,
	"ceil": true, "floor": true, "round": true,
}

// wasiBuiltins are the WASI-glue call names spec.md §4.10 names.
var wasiBuiltins = map[string]bool{
	"puts": true, "puti": true, "putl": true, "putf": true, "fd_write": true,
}

// emitCall routes a `name(args...)` call site: a user function, an FFI
// import, a WASI/host builtin, an introspection builtin, or — when name
// resolves to none of those — falls through to constructing a plain
// list headed by a Symbol, which is what an ordinary undefined-function
// "call" actually means in a dynamically-kinded language without a
// closed function universe.
func (e *Emitter) emitCall(name string, args []*node.Node) {
	switch {
	case introspectionBuiltins[name]:
		e.emitIntrospection(name, args)
	case wasiBuiltins[name]:
		e.emitWasiCall(name, args)
	case name == "fetch":
		e.emitHostFetch(args)
	default:
		if fn, ok := e.ctx.UserFunctions[name]; ok && fn.Body != nil {
			e.emitUserCall(fn, args)
			return
		}
		if sig, ok := e.ctx.FFIImports[name]; ok {
			e.emitFFICall(sig, args)
			return
		}
		e.emitListCallFallback(name, args)
	}
}

func (e *Emitter) emitUserCall(fn *registry.Function, args []*node.Node) {
	for i, arg := range args {
		if i >= len(fn.Signature.Params) {
			break
		}
		e.emitExpr(arg)
	}
	e.ctx.MarkUsed(fn.Name)
	e.code.Op(wasmcode.OpCall).U32(uint32(fn.CallIndex))
}

// emitIntrospection handles type/count/size/ceil/floor/round, each a
// direct instruction or tiny sequence over its single argument.
func (e *Emitter) emitIntrospection(name string, args []*node.Node) {
	if len(args) == 0 {
		e.emitEmpty()
		return
	}
	arg := args[0]
	switch name {
	case "ceil", "floor", "round":
		e.emitAsF64(arg)
		switch name {
		case "ceil":
			e.code.Op(wasmcode.OpF64Ceil)
		case "floor":
			e.code.Op(wasmcode.OpF64Floor)
		default:
			e.code.Op(wasmcode.OpF64Nearest)
		}
		e.code.Op(wasmcode.OpI64TruncF64S)
		e.ensureRequired(registry.RequireNewInt)
		e.call("new_int")
	case "type":
		e.emitExpr(arg)
		e.structGetNode(fieldTag)
		e.code.Op(wasmcode.OpI64ExtendI32S)
		e.ensureRequired(registry.RequireNewInt)
		e.call("new_int")
	case "count", "size":
		e.emitExpr(arg)
		e.callBuiltin("list_length")
	}
}

func (e *Emitter) emitWasiCall(name string, args []*node.Node) {
	switch name {
	case "puts":
		e.emitPuts(args)
	case "puti", "putl", "putf":
		e.emitPrintNumeric(name, args)
	case "fd_write":
		e.emitRawFdWrite(args)
	}
}

func (e *Emitter) emitHostFetch(args []*node.Node) {
	if len(args) == 0 {
		e.emitEmpty()
		return
	}
	// host.fetch takes a raw (ptr, len) pair, the same scalar marshalling
	// every FFI string argument uses (see marshalArg in ffi.go) — a
	// concrete $String ref can't cross the host import boundary itself.
	e.emitExpr(args[0])
	e.structGetNode(fieldStr)
	e.code.Op(wasmcode.OpLocalTee).U32(e.scratchStrLocal())
	e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(0)
	e.code.Op(wasmcode.OpLocalGet).U32(e.scratchStrLocal())
	e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(1)
	e.callHostImport("host.fetch")
	e.ensureRequired(registry.RequireNewText)
	e.call("new_text")
}

// scratchStrLocal lazily declares (and reuses) a $String-typed scratch
// local on the current function, needed whenever a $String ref must be
// read twice (once for its ptr field, once for its len field) without
// re-evaluating the expression that produced it.
func (e *Emitter) scratchStrLocal() uint32 {
	const name = "__fetch_str_scratch"
	if l, ok := e.fn.Local(name); ok {
		return uint32(l.Position)
	}
	l := e.fn.DeclareLocal(name, kindtype.Empty, false)
	return uint32(l.Position)
}

func (e *Emitter) callHostImport(name string) {
	e.ctx.MarkUsed(name)
	if fn, ok := e.ctx.UserFunctions[name]; ok {
		e.code.Op(wasmcode.OpCall).U32(uint32(fn.CallIndex))
	}
}

// callBuiltin calls one of the list/string runtime helpers (list_node_at,
// list_set_at, string_char_at, string_set_char_at, list_length) that back
// indexing and introspection. These are emitted once per module as plain
// host-independent code functions operating over the $Node encoding.
func (e *Emitter) callBuiltin(name string) {
	e.ctx.MarkUsed(name)
	if fn, ok := e.ctx.UserFunctions[name]; ok {
		e.code.Op(wasmcode.OpCall).U32(uint32(fn.CallIndex))
	}
}

// emitListCallFallback treats an unresolved `name(args...)` as ordinary
// list construction headed by the callee's Symbol — the closest
// approximation available for a call to something that is neither a
// declared function nor an FFI import (spec.md leaves this case to the
// reader: constructing a List spine is the conservative/lossless
// response.)
func (e *Emitter) emitListCallFallback(name string, args []*node.Node) {
	items := make([]*node.Node, 0, len(args)+1)
	items = append(items, node.NewSymbol(name))
	items = append(items, args...)
	e.emitListLiteral(node.NewList(items, node.Round, node.CommaSep))
}

// emitListLiteral builds the linked new_list chain spec.md §4.5
// describes: each link wraps one element plus a pointer to the rest of
// the chain, built tail-first so each new_list call only ever needs the
// already-built rest.
func (e *Emitter) emitListLiteral(n *node.Node) {
	if len(n.Items) == 0 {
		e.emitEmpty()
		return
	}
	e.emitListChain(n.Items, n.Bracket, n.Separator)
}

func (e *Emitter) emitListChain(items []*node.Node, bracket node.Bracket, sep node.Separator) {
	if len(items) == 0 {
		e.pushNullRef()
		return
	}
	e.emitExpr(items[0])
	e.emitListChain(items[1:], bracket, sep)
	e.code.Op(wasmcode.OpI64Const).S64(packBracketSep(bracket, sep))
	e.ensureRequired(registry.RequireNewList)
	e.call("new_list")
}

func packBracketSep(b node.Bracket, s node.Separator) int64 {
	return int64(b)<<8 | int64(s)
}
