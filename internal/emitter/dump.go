// internal/emitter/dump.go
package emitter

import (
	"warpc/internal/kindtype"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
	"warpc/internal/wasmcode"
)

// dumpNodeFuncName is the internal (unexported) runtime helper the
// reader's host boundary leans on: the embedding engine's public API has
// no way to hand a typed WASM-GC struct reference back across a host
// call, so the exported `main` (see fillMainBody) walks its computed
// root through this function instead of returning it directly,
// serializing the $Node tree into linear memory as a fixed-width,
// recursively-nested record. internal/reader decodes that record byte
// for byte using the exact same field order as typemanager's $Node
// layout (fieldTag..fieldRight in key.go).
const dumpNodeFuncName = "__dump_node"

// dumpScratchBase is a fixed linear-memory address reserved for
// __dump_node's output, placed past anything a realistically sized
// string table (internal/stringtable) would reach into — see
// memoryPages in module.go.
const dumpScratchBase int32 = 0x20000

// dumpHeaderSize is the fixed byte width every serialized node's header
// occupies before its optional left/right subtrees:
// tag(4) + packed(4) + ival(8) + fval(8) + str_ptr(4) + str_len(4) +
// has_left(4) + has_right(4).
const dumpHeaderSize = 40

// Byte offsets of each header field within one dumpHeaderSize record.
const (
	dumpOffTag      = 0
	dumpOffPacked   = 4
	dumpOffIval     = 8
	dumpOffFval     = 16
	dumpOffStrPtr   = 24
	dumpOffStrLen   = 28
	dumpOffHasLeft  = 32
	dumpOffHasRight = 36
)

// declareDumpSupport registers __dump_node: a recursive function taking
// (node: anyref, cursor: i32) and returning the i32 cursor position just
// past everything it wrote for node and its subtree. It never allocates
// — the caller supplies the write position and gets the next free
// position back, the same threading style emitListChain uses to build a
// new_list chain tail-first.
func (e *Emitter) declareDumpSupport() {
	fn := registry.NewFunction(dumpNodeFuncName, registry.Signature{
		Params: []registry.Param{
			{Name: "node", Type: kindtype.Ref{Val: kindtype.AnyRef}},
			{Name: "cursor", Type: kindtype.Ref{Val: kindtype.I32}},
		},
		Results: []kindtype.Ref{{Val: kindtype.I32}},
	})
	fn.DeclareLocal("node", kindtype.Empty, true)
	fn.DeclareLocal("cursor", kindtype.Codepoint, true)
	fn.DeclareLocal("str", kindtype.Empty, false)
	fn.DeclareLocal("left", kindtype.Empty, false)
	fn.DeclareLocal("right", kindtype.Empty, false)
	fn.DeclareLocal("c", kindtype.Codepoint, false)
	fn.IsRuntime = true
	e.reserveFunctionSlot(fn)

	prevFn, prevCode := e.fn, e.code
	e.fn, e.code = fn, wasmcode.NewBuilder()
	e.buildDumpNode()
	e.code.Op(wasmcode.OpEnd)
	fn.CodeBytes = e.code.Bytes()
	e.fn, e.code = prevFn, prevCode
	e.ctx.DeclareUserFunction(dumpNodeFuncName, fn)
}

func (e *Emitter) localPos(name string) uint32 {
	l, _ := e.fn.Local(name)
	return uint32(l.Position)
}

// buildDumpNode writes the header fields, then recurses into whichever
// of left/right are non-null, each time re-anchoring at the cursor the
// previous write returned.
func (e *Emitter) buildDumpNode() {
	node, cursor, str, left, right, c := e.localPos("node"), e.localPos("cursor"), e.localPos("str"), e.localPos("left"), e.localPos("right"), e.localPos("c")

	// tag
	e.code.Op(wasmcode.OpLocalGet).U32(cursor)
	e.code.Op(wasmcode.OpLocalGet).U32(node)
	e.structGetNode(fieldTag)
	e.code.Op(wasmcode.OpI32Store).MemArg(2, dumpOffTag)

	// packed (op/bracket/separator info)
	e.code.Op(wasmcode.OpLocalGet).U32(cursor)
	e.code.Op(wasmcode.OpLocalGet).U32(node)
	e.structGetNode(fieldPacked)
	e.code.Op(wasmcode.OpI32Store).MemArg(2, dumpOffPacked)

	// ival
	e.code.Op(wasmcode.OpLocalGet).U32(cursor)
	e.code.Op(wasmcode.OpLocalGet).U32(node)
	e.structGetNode(fieldIval)
	e.code.Op(wasmcode.OpI64Store).MemArg(3, dumpOffIval)

	// fval
	e.code.Op(wasmcode.OpLocalGet).U32(cursor)
	e.code.Op(wasmcode.OpLocalGet).U32(node)
	e.structGetNode(fieldFval)
	e.code.Op(wasmcode.OpF64Store).MemArg(3, dumpOffFval)

	// str := node.str ($String ref, possibly null)
	e.code.Op(wasmcode.OpLocalGet).U32(node)
	e.structGetNode(fieldStr)
	e.code.Op(wasmcode.OpLocalSet).U32(str)

	e.code.Op(wasmcode.OpLocalGet).U32(str)
	e.code.Op(wasmcode.OpRefIsNull)
	e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockEmpty)
	{
		e.code.Op(wasmcode.OpLocalGet).U32(cursor)
		e.code.Op(wasmcode.OpI32Const).U32(0)
		e.code.Op(wasmcode.OpI32Store).MemArg(2, dumpOffStrPtr)
		e.code.Op(wasmcode.OpLocalGet).U32(cursor)
		e.code.Op(wasmcode.OpI32Const).U32(0xFFFFFFFF) // sentinel: no string
		e.code.Op(wasmcode.OpI32Store).MemArg(2, dumpOffStrLen)
	}
	e.code.Op(wasmcode.OpElse)
	{
		e.code.Op(wasmcode.OpLocalGet).U32(cursor)
		e.code.Op(wasmcode.OpLocalGet).U32(str)
		e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(0)
		e.code.Op(wasmcode.OpI32Store).MemArg(2, dumpOffStrPtr)
		e.code.Op(wasmcode.OpLocalGet).U32(cursor)
		e.code.Op(wasmcode.OpLocalGet).U32(str)
		e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(1)
		e.code.Op(wasmcode.OpI32Store).MemArg(2, dumpOffStrLen)
	}
	e.code.Op(wasmcode.OpEnd)

	// left / right children, possibly null
	e.code.Op(wasmcode.OpLocalGet).U32(node)
	e.structGetNode(fieldLeft)
	e.code.Op(wasmcode.OpLocalSet).U32(left)
	e.code.Op(wasmcode.OpLocalGet).U32(node)
	e.structGetNode(fieldRight)
	e.code.Op(wasmcode.OpLocalSet).U32(right)

	e.code.Op(wasmcode.OpLocalGet).U32(cursor)
	e.code.Op(wasmcode.OpLocalGet).U32(left)
	e.code.Op(wasmcode.OpRefIsNull)
	e.code.Op(wasmcode.OpI32Eqz)
	e.code.Op(wasmcode.OpI32Store).MemArg(2, dumpOffHasLeft)

	e.code.Op(wasmcode.OpLocalGet).U32(cursor)
	e.code.Op(wasmcode.OpLocalGet).U32(right)
	e.code.Op(wasmcode.OpRefIsNull)
	e.code.Op(wasmcode.OpI32Eqz)
	e.code.Op(wasmcode.OpI32Store).MemArg(2, dumpOffHasRight)

	// c := cursor + dumpHeaderSize
	e.code.Op(wasmcode.OpLocalGet).U32(cursor)
	e.code.Op(wasmcode.OpI32Const).U32(dumpHeaderSize)
	e.code.Op(wasmcode.OpI32Add)
	e.code.Op(wasmcode.OpLocalSet).U32(c)

	// if left present: c := dump_node(left, c)
	e.code.Op(wasmcode.OpLocalGet).U32(left)
	e.code.Op(wasmcode.OpRefIsNull)
	e.code.Op(wasmcode.OpI32Eqz)
	e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockEmpty)
	{
		e.code.Op(wasmcode.OpLocalGet).U32(left)
		e.code.Op(wasmcode.OpLocalGet).U32(c)
		e.code.Op(wasmcode.OpCall).U32(uint32(e.fn.CallIndex))
		e.code.Op(wasmcode.OpLocalSet).U32(c)
	}
	e.code.Op(wasmcode.OpEnd)

	// if right present: c := dump_node(right, c)
	e.code.Op(wasmcode.OpLocalGet).U32(right)
	e.code.Op(wasmcode.OpRefIsNull)
	e.code.Op(wasmcode.OpI32Eqz)
	e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockEmpty)
	{
		e.code.Op(wasmcode.OpLocalGet).U32(right)
		e.code.Op(wasmcode.OpLocalGet).U32(c)
		e.code.Op(wasmcode.OpCall).U32(uint32(e.fn.CallIndex))
		e.code.Op(wasmcode.OpLocalSet).U32(c)
	}
	e.code.Op(wasmcode.OpEnd)

	e.code.Op(wasmcode.OpLocalGet).U32(c)
}
