// internal/emitter/runtimeops.go
package emitter

import (
	"warpc/internal/kindtype"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
	"warpc/internal/wasmcode"
)

var nodeResult = kindtype.Ref{Val: kindtype.RefNullIdx, Index: typemanager.NodeTypeIndex}

// runtimeOpTable names the list/string helpers callBuiltin dispatches to,
// plus the kind-dispatching and alias entry points spec.md §6 requires
// exported under their own names. Each walks the $Node encoding directly
// rather than calling back into source-level code, the same way the
// constructor table in constructors.go builds $Node values by hand.
//
// Order matters: a build func that calls another runtime op by name (via
// e.call) must come after that op's own table entry, since declareRuntimeOps
// registers each function's call_index before building the next one's body.
var runtimeOpTable = []struct {
	name   string
	params []kindtype.Ref
	result kindtype.Ref
	build  func(e *Emitter)
}{
	{"list_length", []kindtype.Ref{{Val: kindtype.AnyRef}}, nodeResult, (*Emitter).buildListLength},
	{"list_node_at", []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.I64}}, nodeResult, (*Emitter).buildListNodeAt},
	{"string_char_at", []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.I64}}, nodeResult, (*Emitter).buildStringCharAt},
	{"list_set_at", []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.I64}, {Val: kindtype.AnyRef}}, nodeResult, (*Emitter).buildListSetAt},
	{"string_set_char_at", []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.I64}, {Val: kindtype.AnyRef}}, nodeResult, (*Emitter).buildStringSetCharAt},
	// list_at and node_count are plain aliases: spec.md §6 lists them
	// alongside list_node_at/list_length under distinct export names but
	// gives them no separate semantics anywhere else, so each gets its own
	// exported function built the same way as the op it aliases.
	{"list_at", []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.I64}}, nodeResult, (*Emitter).buildListNodeAt},
	{"node_count", []kindtype.Ref{{Val: kindtype.AnyRef}}, nodeResult, (*Emitter).buildListLength},
	// node_index_at/node_set_at are the generic, kind-dispatching entry
	// points spec.md §4.9 describes in prose ("dispatch at runtime on the
	// target's kind") — unlike emitIndex/emitAssign, which pick
	// string_char_at/list_node_at statically from the analyzer's Kind
	// annotation, these check the tag at runtime, for a caller (reader or
	// host) that doesn't have that static information.
	{"node_index_at", []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.I64}}, nodeResult, (*Emitter).buildNodeIndexAt},
	{"node_set_at", []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.I64}, {Val: kindtype.AnyRef}}, nodeResult, (*Emitter).buildNodeSetAt},
}

// declareRuntimeOps registers every helper spec.md §6 requires exported,
// unconditionally — cheap enough, and simpler than threading a second
// used-set through the analyzer pass.
func (e *Emitter) declareRuntimeOps() {
	for _, spec := range runtimeOpTable {
		fn := registry.NewFunction(spec.name, registry.Signature{Results: []kindtype.Ref{spec.result}})
		for i, p := range spec.params {
			fn.Signature.Params = append(fn.Signature.Params, registry.Param{Name: paramName(i), Type: p})
			fn.DeclareLocal(paramName(i), kindtype.Empty, true)
		}
		fn.IsRuntime = true
		fn.ExportName = spec.name
		e.reserveFunctionSlot(fn)
		prevFn, prevCode := e.fn, e.code
		e.fn, e.code = fn, wasmcode.NewBuilder()
		spec.build(e)
		e.code.Op(wasmcode.OpEnd)
		fn.CodeBytes = e.code.Bytes()
		e.fn, e.code = prevFn, prevCode
		e.ctx.DeclareUserFunction(spec.name, fn)
	}
}

// buildListLength counts links by walking fieldRight until a null ref,
// the chain shape emitListChain builds (spec.md §4.5).
func (e *Emitter) buildListLength() {
	e.fn.DeclareLocal("cursor", kindtype.Empty, false)
	e.fn.DeclareLocal("count", kindtype.Int, false)
	cursor, _ := e.fn.Local("cursor")
	count, _ := e.fn.Local("count")

	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(cursor.Position))
	e.code.Op(wasmcode.OpI64Const).S64(0)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(count.Position))

	e.code.Op(wasmcode.OpBlock).Byte(wasmcode.BlockEmpty)
	e.code.Op(wasmcode.OpLoop).Byte(wasmcode.BlockEmpty)
	e.code.Op(wasmcode.OpLocalGet).U32(uint32(cursor.Position))
	e.code.Op(wasmcode.OpRefIsNull)
	e.code.Op(wasmcode.OpBrIf).U32(1)

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(count.Position))
	e.code.Op(wasmcode.OpI64Const).S64(1)
	e.code.Op(wasmcode.OpI64Add)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(count.Position))

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(cursor.Position))
	e.structGetNode(fieldRight)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(cursor.Position))

	e.code.Op(wasmcode.OpBr).U32(0)
	e.code.Op(wasmcode.OpEnd)
	e.code.Op(wasmcode.OpEnd)

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(count.Position))
	e.ensureRequired(registry.RequireNewInt)
	e.call("new_int")
}

// buildListNodeAt walks fieldRight `index` times then returns fieldLeft.
func (e *Emitter) buildListNodeAt() {
	e.fn.DeclareLocal("cursor", kindtype.Empty, false)
	e.fn.DeclareLocal("remaining", kindtype.Int, false)
	cursor, _ := e.fn.Local("cursor")
	remaining, _ := e.fn.Local("remaining")

	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(cursor.Position))
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(remaining.Position))

	e.code.Op(wasmcode.OpBlock).Byte(wasmcode.BlockEmpty)
	e.code.Op(wasmcode.OpLoop).Byte(wasmcode.BlockEmpty)
	e.code.Op(wasmcode.OpLocalGet).U32(uint32(remaining.Position))
	e.code.Op(wasmcode.OpI64Eqz)
	e.code.Op(wasmcode.OpBrIf).U32(1)

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(cursor.Position))
	e.structGetNode(fieldRight)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(cursor.Position))

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(remaining.Position))
	e.code.Op(wasmcode.OpI64Const).S64(1)
	e.code.Op(wasmcode.OpI64Sub)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(remaining.Position))

	e.code.Op(wasmcode.OpBr).U32(0)
	e.code.Op(wasmcode.OpEnd)
	e.code.Op(wasmcode.OpEnd)

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(cursor.Position))
	e.structGetNode(fieldLeft)
}

// buildStringCharAt loads the byte at (ptr+index) out of linear memory
// and wraps it as a Codepoint — only correct for single-byte (ASCII)
// text; full UTF-8 decoding is a future concern.
func (e *Emitter) buildStringCharAt() {
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.structGetNode(fieldStr)
	e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(0) // $String.ptr
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.code.Op(wasmcode.OpI32WrapI64)
	e.code.Op(wasmcode.OpI32Add)
	e.code.Op(wasmcode.OpI32Load8U).MemArg(0, 0)
	e.ensureRequired(registry.RequireNewCodepoint)
	e.call("new_codepoint")
}

// buildListSetAt walks the chain exactly like buildListNodeAt, then
// overwrites the located link's fieldLeft with the value argument instead
// of reading it, and hands the value back (an indexed assignment's
// result is the assigned value, matching emitAssign's plain-symbol case).
func (e *Emitter) buildListSetAt() {
	e.fn.DeclareLocal("cursor", kindtype.Empty, false)
	e.fn.DeclareLocal("remaining", kindtype.Int, false)
	cursor, _ := e.fn.Local("cursor")
	remaining, _ := e.fn.Local("remaining")

	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(cursor.Position))
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(remaining.Position))

	e.code.Op(wasmcode.OpBlock).Byte(wasmcode.BlockEmpty)
	e.code.Op(wasmcode.OpLoop).Byte(wasmcode.BlockEmpty)
	e.code.Op(wasmcode.OpLocalGet).U32(uint32(remaining.Position))
	e.code.Op(wasmcode.OpI64Eqz)
	e.code.Op(wasmcode.OpBrIf).U32(1)

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(cursor.Position))
	e.structGetNode(fieldRight)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(cursor.Position))

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(remaining.Position))
	e.code.Op(wasmcode.OpI64Const).S64(1)
	e.code.Op(wasmcode.OpI64Sub)
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(remaining.Position))

	e.code.Op(wasmcode.OpBr).U32(0)
	e.code.Op(wasmcode.OpEnd)
	e.code.Op(wasmcode.OpEnd)

	e.code.Op(wasmcode.OpLocalGet).U32(uint32(cursor.Position))
	e.code.Op(wasmcode.OpLocalGet).U32(2) // value
	e.structSetNode(fieldLeft)

	e.code.Op(wasmcode.OpLocalGet).U32(2)
}

// buildStringSetCharAt mirrors buildStringCharAt's address arithmetic so
// a write through index i lands on the exact byte a read through index i
// would load, then stores the value node's packed codepoint there and
// hands the value back.
func (e *Emitter) buildStringSetCharAt() {
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.structGetNode(fieldStr)
	e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(0) // $String.ptr
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.code.Op(wasmcode.OpI32WrapI64)
	e.code.Op(wasmcode.OpI32Add)
	e.code.Op(wasmcode.OpLocalGet).U32(2)
	e.structGetNode(fieldPacked) // the codepoint's raw rune value
	e.code.Op(wasmcode.OpI32Store8).MemArg(0, 0)
	e.code.Op(wasmcode.OpLocalGet).U32(2)
}

// buildNodeIndexAt is node_index_at: runtime dispatch on the target's
// kind tag between string_char_at and list_node_at, per spec.md §4.9's
// indexing rule.
func (e *Emitter) buildNodeIndexAt() {
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.structGetNode(fieldTag)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(kindtype.Text))
	e.code.Op(wasmcode.OpI32Eq)
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.structGetNode(fieldTag)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(kindtype.Symbol))
	e.code.Op(wasmcode.OpI32Eq)
	e.code.Op(wasmcode.OpI32Or)
	e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockAnyRef)
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.call("string_char_at")
	e.code.Op(wasmcode.OpElse)
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.call("list_node_at")
	e.code.Op(wasmcode.OpEnd)
}

// buildNodeSetAt is node_set_at: the write-side counterpart of
// node_index_at, dispatching to string_set_char_at/list_set_at.
func (e *Emitter) buildNodeSetAt() {
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.structGetNode(fieldTag)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(kindtype.Text))
	e.code.Op(wasmcode.OpI32Eq)
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.structGetNode(fieldTag)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(kindtype.Symbol))
	e.code.Op(wasmcode.OpI32Eq)
	e.code.Op(wasmcode.OpI32Or)
	e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockAnyRef)
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.code.Op(wasmcode.OpLocalGet).U32(2)
	e.call("string_set_char_at")
	e.code.Op(wasmcode.OpElse)
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.code.Op(wasmcode.OpLocalGet).U32(2)
	e.call("list_set_at")
	e.code.Op(wasmcode.OpEnd)
}
