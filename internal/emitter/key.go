// internal/emitter/key.go
package emitter

import (
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/op"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
	"warpc/internal/wasmcode"
)

// $Node field indices, matching the struct layout typemanager.New lays
// out: tag, packed op/bracket info, int value, float value, string
// payload, left child, right child, erased payload/items.
const (
	fieldTag     = 0
	fieldPacked  = 1
	fieldIval    = 2
	fieldFval    = 3
	fieldStr     = 4
	fieldLeft    = 5
	fieldRight   = 6
	fieldPayload = 7
)

func (e *Emitter) structGetNode(field uint32) {
	e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.NodeTypeIndex)).U32(field)
}

// structSetNode writes field on the $Node ref already pushed, consuming a
// value pushed on top of it — struct.set's (structref, value) operand
// order, mirrored from structGetNode above.
func (e *Emitter) structSetNode(field uint32) {
	e.code.GC(wasmcode.GCStructSet).U32(uint32(typemanager.NodeTypeIndex)).U32(field)
}

// emitAsI64 lowers n and extracts its boxed int value as a raw i64.
func (e *Emitter) emitAsI64(n *node.Node) {
	e.emitExpr(n)
	e.structGetNode(fieldIval)
}

// emitAsF64 lowers n as a raw f64, promoting an int-kinded operand.
func (e *Emitter) emitAsF64(n *node.Node) {
	k := e.kindOf(n)
	e.emitExpr(n)
	if k == kindtype.Float {
		e.structGetNode(fieldFval)
		return
	}
	e.structGetNode(fieldIval)
	e.code.Op(wasmcode.OpF64ConvertI64S)
}

func (e *Emitter) emitKey(n *node.Node) {
	switch {
	case isFunctionDefKey(n):
		e.emitFunctionDefSkip(n)
	case n.Op == op.Assign || n.Op == op.Define:
		e.emitAssign(n)
	case n.Op == op.Pow:
		e.emitPow(n)
	case n.Op.IsArithmetic():
		e.emitArithmetic(n)
	case n.Op.IsComparison():
		e.emitComparison(n)
	case n.Op == op.Not:
		e.emitNot(n)
	case n.Op.IsLogical():
		e.emitShortCircuit(n)
	case n.Op == op.Cond:
		e.emitTernary(n)
	case n.Op == op.Index:
		e.emitIndex(n)
	case n.Op == op.As:
		e.emitCast(n)
	case n.Op == op.Range:
		e.emitRange(n)
	case n.Op == op.Dot:
		e.emitDot(n)
	case n.Op == op.Comma:
		e.emitPairLike(n)
	default:
		e.emitPairLike(n)
	}
}

// isFunctionDefKey mirrors analyzer.isFunctionSignature — a function
// definition encountered while walking an expression position is already
// registered and emitted as a separate code function, so the surrounding
// statement sequence just skips over it (spec.md §4.9 "filter out
// function definitions").
func isFunctionDefKey(n *node.Node) bool {
	if n.Op != op.Assign && n.Op != op.Define {
		return false
	}
	sig := n.Left.DropMeta()
	return sig != nil && sig.Variant == node.List && sig.Bracket == node.Round && len(sig.Items) > 0 &&
		sig.Items[0].DropMeta() != nil && sig.Items[0].DropMeta().Variant == node.Symbol
}

func (e *Emitter) emitFunctionDefSkip(n *node.Node) {
	e.emitEmpty()
}

func (e *Emitter) emitAssign(n *node.Node) {
	if lhs := n.Left.DropMeta(); lhs != nil && lhs.Variant == node.Key && lhs.Op == op.Index {
		e.emitIndexAssign(lhs, n.Right)
		return
	}
	e.emitExpr(n.Right)
	sym := n.Left.DropMeta()
	if sym == nil || sym.Variant != node.Symbol {
		e.code.Op(wasmcode.OpDrop)
		return
	}
	k := e.kindOf(n)
	if e.fn != nil {
		if l, ok := e.fn.Local(sym.Str); ok {
			e.code.Op(wasmcode.OpLocalTee).U32(uint32(l.Position))
			return
		}
		l := e.fn.DeclareLocal(sym.Str, k, false)
		e.code.Op(wasmcode.OpLocalTee).U32(uint32(l.Position))
		return
	}
	slot, ok := e.ctx.UserGlobals[sym.Str]
	if !ok {
		// Kind-tag globals (if any) occupy the low indices, declared
		// once up front in e.globalOrder — user globals are appended
		// after them in the same module-level global index space.
		slot = registry.GlobalSlot{Index: len(e.globalOrder), Kind: k}
		e.ctx.DeclareUserGlobal(sym.Str, slot)
		e.globalOrder = append(e.globalOrder, sym.Str)
	}
	e.code.Op(wasmcode.OpGlobalSet).U32(uint32(slot.Index))
	e.code.Op(wasmcode.OpGlobalGet).U32(uint32(slot.Index))
}

// emitIndexAssign lowers `x[i] = v` / `x#i = v`: push the target, its
// index, and the value, then route to string_set_char_at or list_set_at
// by the target's statically inferred Kind — the same dispatch emitIndex
// uses for reads (spec.md §4.9). The call's own return value (the
// written value, echoed back) becomes the whole assignment expression's
// value, matching the plain-symbol case just above.
func (e *Emitter) emitIndexAssign(target *node.Node, value *node.Node) {
	targetKind := e.kindOf(target.Left)
	e.emitExpr(target.Left)
	e.emitAsI64(target.Right)
	e.emitExpr(value)
	switch targetKind {
	case kindtype.Text, kindtype.Symbol:
		e.callBuiltin("string_set_char_at")
	default:
		e.callBuiltin("list_set_at")
	}
}

func (e *Emitter) emitArithmetic(n *node.Node) {
	resultKind := e.kindOf(n)
	if resultKind == kindtype.Float {
		e.emitAsF64(n.Left)
		e.emitAsF64(n.Right)
		e.code.Op(f64ArithOp(n.Op))
		e.ensureRequired(registry.RequireNewFloat)
		e.call("new_float")
		return
	}
	e.emitAsI64(n.Left)
	e.emitAsI64(n.Right)
	e.code.Op(i64ArithOp(n.Op))
	e.ensureRequired(registry.RequireNewInt)
	e.call("new_int")
}

// emitPow has no native WASM instruction; it calls out to libm's pow,
// matching how the emitter routes any other libm entry point.
func (e *Emitter) emitPow(n *node.Node) {
	e.emitAsF64(n.Left)
	e.emitAsF64(n.Right)
	e.ctx.MarkUsed("pow")
	if fn, ok := e.ctx.UserFunctions["pow"]; ok {
		e.code.Op(wasmcode.OpCall).U32(uint32(fn.CallIndex))
	}
	e.ensureRequired(registry.RequireNewFloat)
	e.call("new_float")
}

func f64ArithOp(o op.Op) wasmcode.Op {
	switch o {
	case op.Add:
		return wasmcode.OpF64Add
	case op.Sub:
		return wasmcode.OpF64Sub
	case op.Mul:
		return wasmcode.OpF64Mul
	default:
		return wasmcode.OpF64Div
	}
}

func i64ArithOp(o op.Op) wasmcode.Op {
	switch o {
	case op.Add:
		return wasmcode.OpI64Add
	case op.Sub:
		return wasmcode.OpI64Sub
	case op.Mul:
		return wasmcode.OpI64Mul
	case op.Mod:
		return wasmcode.OpI64RemS
	default:
		return wasmcode.OpI64DivS
	}
}

func (e *Emitter) emitComparison(n *node.Node) {
	useFloat := e.kindOf(n.Left) == kindtype.Float || e.kindOf(n.Right) == kindtype.Float
	if useFloat {
		e.emitAsF64(n.Left)
		e.emitAsF64(n.Right)
		e.code.Op(f64CompareOp(n.Op))
	} else {
		e.emitAsI64(n.Left)
		e.emitAsI64(n.Right)
		e.code.Op(i64CompareOp(n.Op))
	}
	e.code.Op(wasmcode.OpI64ExtendI32S)
	e.ensureRequired(registry.RequireNewInt)
	e.call("new_int")
}

func f64CompareOp(o op.Op) wasmcode.Op {
	switch o {
	case op.Eq:
		return wasmcode.OpF64Eq
	case op.Ne:
		return wasmcode.OpF64Ne
	case op.Lt:
		return wasmcode.OpF64Lt
	case op.Gt:
		return wasmcode.OpF64Gt
	case op.Le:
		return wasmcode.OpF64Le
	default:
		return wasmcode.OpF64Ge
	}
}

func i64CompareOp(o op.Op) wasmcode.Op {
	switch o {
	case op.Eq:
		return wasmcode.OpI64Eq
	case op.Ne:
		return wasmcode.OpI64Ne
	case op.Lt:
		return wasmcode.OpI64LtS
	case op.Gt:
		return wasmcode.OpI64GtS
	case op.Le:
		return wasmcode.OpI64LeS
	default:
		return wasmcode.OpI64GeS
	}
}

func (e *Emitter) emitNot(n *node.Node) {
	e.emitAsI64(n.Right)
	e.code.Op(wasmcode.OpI64Eqz)
	e.code.Op(wasmcode.OpI64ExtendI32S)
	e.ensureRequired(registry.RequireNewInt)
	e.call("new_int")
}

// emitShortCircuit lowers and/or/xor to an if/else block yielding a raw
// i64, matching spec.md §4.9; xor has no short-circuit to take advantage
// of, so both arms are always evaluated.
func (e *Emitter) emitShortCircuit(n *node.Node) {
	switch n.Op {
	case op.And:
		e.emitAsI64(n.Left)
		e.code.Op(wasmcode.OpI32WrapI64)
		e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockI64)
		e.emitAsI64(n.Right)
		e.code.Op(wasmcode.OpElse)
		e.code.Op(wasmcode.OpI64Const).S64(0)
		e.code.Op(wasmcode.OpEnd)
	case op.Or:
		e.emitAsI64(n.Left)
		e.code.Op(wasmcode.OpI32WrapI64)
		e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockI64)
		e.code.Op(wasmcode.OpI64Const).S64(1)
		e.code.Op(wasmcode.OpElse)
		e.emitAsI64(n.Right)
		e.code.Op(wasmcode.OpEnd)
	default: // Xor
		e.emitAsI64(n.Left)
		e.code.Op(wasmcode.OpI64Eqz)
		e.emitAsI64(n.Right)
		e.code.Op(wasmcode.OpI64Eqz)
		e.code.Op(wasmcode.OpI64Ne)
		e.code.Op(wasmcode.OpI64ExtendI32S)
	}
	e.ensureRequired(registry.RequireNewInt)
	e.call("new_int")
}

// emitTernary lowers Key(cond, Cond, Key(then, Colon, else)) — the
// parser's ternary shape — to an if/else yielding a ref $Node.
func (e *Emitter) emitTernary(n *node.Node) {
	arms := n.Right.DropMeta()
	e.emitAsI64(n.Left)
	e.code.Op(wasmcode.OpI32WrapI64)
	e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockAnyRef)
	e.emitExpr(arms.Left)
	e.code.Op(wasmcode.OpElse)
	e.emitExpr(arms.Right)
	e.code.Op(wasmcode.OpEnd)
}

// emitIndex lowers x#i / x[i] by picking a helper at compile time from the
// target's analyzer Kind: Text and Symbol go to string_char_at, every other
// Kind to list_node_at. The value's runtime tag is not consulted here (the
// tag-checking node_index_at helper in runtimeops.go is not called). Both
// helpers take their index as i64 (they do their own i32 narrowing
// internally, once they need a byte offset or a decrement counter), so
// the raw value emitAsI64 extracts is pushed as-is.
func (e *Emitter) emitIndex(n *node.Node) {
	targetKind := e.kindOf(n.Left)
	e.emitExpr(n.Left)
	e.emitAsI64(n.Right)
	switch targetKind {
	case kindtype.Text, kindtype.Symbol:
		e.callBuiltin("string_char_at")
	default:
		e.callBuiltin("list_node_at")
	}
}

// emitCast lowers `x as T` with the obvious numeric conversions to Int and
// Float; for any other target Kind the value passes through unchanged,
// kind tag included.
func (e *Emitter) emitCast(n *node.Node) {
	target := e.kindOf(n)
	switch target {
	case kindtype.Int:
		e.emitAsF64IfFloatElseI64(n.Left)
		e.ensureRequired(registry.RequireNewInt)
		e.call("new_int")
	case kindtype.Float:
		e.emitAsF64(n.Left)
		e.ensureRequired(registry.RequireNewFloat)
		e.call("new_float")
	default:
		e.emitExpr(n.Left)
	}
}

func (e *Emitter) emitAsF64IfFloatElseI64(n *node.Node) {
	k := e.kindOf(n)
	if k == kindtype.Float {
		e.emitAsF64(n)
		e.code.Op(wasmcode.OpI64TruncF64S)
		return
	}
	e.emitAsI64(n)
}

func (e *Emitter) emitRange(n *node.Node) {
	// No lowering path turns a range into a list; as a Key expression it
	// evaluates to Empty.
	e.emitEmpty()
}

// emitDot reads a named field off a user-typed struct value. The struct
// type's field order comes straight from the type registry's
// registration-order field list, matching typemanager's struct layout.
// A non-user target or an unresolved field name degrades to Empty rather
// than failing the whole compile; the analyzer does not report field
// access on a non-struct either, so such source compiles without error.
func (e *Emitter) emitDot(n *node.Node) {
	targetKind := e.kindOf(n.Left)
	e.emitExpr(n.Left)
	if !targetKind.IsUser() {
		e.code.Op(wasmcode.OpDrop)
		e.emitEmpty()
		return
	}
	typeName := userTypeNameOf(e.ctx, targetKind)
	idx, ok := e.types.IndexOf(typeName)
	field := n.Right.DropMeta()
	if !ok || field == nil || field.Variant != node.Symbol {
		e.code.Op(wasmcode.OpDrop)
		e.emitEmpty()
		return
	}
	fieldIdx, ok := fieldPosition(e.ctx, typeName, field.Str)
	if !ok {
		e.code.Op(wasmcode.OpDrop)
		e.emitEmpty()
		return
	}
	e.code.GC(wasmcode.GCStructGet).U32(uint32(idx)).U32(uint32(fieldIdx))
}

func fieldPosition(ctx *registry.Context, typeName, fieldName string) (int, bool) {
	for i, f := range ctx.Types.Fields(typeName) {
		if f.Name == fieldName {
			return i, true
		}
	}
	return 0, false
}

func userTypeNameOf(ctx *registry.Context, k kindtype.Kind) string {
	for _, name := range ctx.Types.Names() {
		if tag, _, ok := ctx.Types.Lookup(name); ok && tag == k {
			return name
		}
	}
	return ""
}

func (e *Emitter) emitPairLike(n *node.Node) {
	e.emitExpr(n.Left)
	e.code.Op(wasmcode.OpDrop)
	e.emitExpr(n.Right)
}
