// internal/emitter/expr.go
package emitter

import (
	"warpc/internal/node"
	"warpc/internal/registry"
	"warpc/internal/wasmcode"
)

// emitExpr dispatches on the Meta-stripped Node variant and leaves
// exactly one ref $Node on the stack — the same contract the teacher's
// compiler.go VisitXExpr methods keep for its own stack machine, just
// against a GC heap value instead of a constant-pool slot.
func (e *Emitter) emitExpr(n *node.Node) {
	n = n.DropMeta()
	switch n.Variant {
	case node.Empty:
		e.emitEmpty()
	case node.True:
		e.emitBool(true)
	case node.False:
		e.emitBool(false)
	case node.Number:
		e.emitNumber(n)
	case node.Text:
		e.emitStringLiteral(n.Str, registry.RequireNewText)
	case node.Symbol:
		e.emitSymbolRef(n)
	case node.Char:
		e.emitCodepoint(n.Rune)
	case node.Key:
		e.emitKey(n)
	case node.List:
		e.emitList(n)
	case node.TypeDef:
		e.emitTypeDef(n)
	case node.Pair:
		e.emitPair(n)
	default:
		e.emitEmpty()
	}
}

func (e *Emitter) emitEmpty() {
	e.ensureRequired(registry.RequireNewEmpty)
	e.call("new_empty")
}

func (e *Emitter) emitBool(v bool) {
	e.ensureRequired(registry.RequireNewInt)
	if v {
		e.code.Op(wasmcode.OpI64Const).S64(1)
	} else {
		e.code.Op(wasmcode.OpI64Const).S64(0)
	}
	e.call("new_int")
}

func (e *Emitter) emitNumber(n *node.Node) {
	switch n.NumForm {
	case node.FloatForm, node.NanForm:
		e.ensureRequired(registry.RequireNewFloat)
		e.code.Op(wasmcode.OpF64Const).F64(n.FloatVal)
		e.call("new_float")
	default:
		e.ensureRequired(registry.RequireNewInt)
		e.code.Op(wasmcode.OpI64Const).S64(n.IntVal)
		e.call("new_int")
	}
}

func (e *Emitter) emitCodepoint(r rune) {
	e.ensureRequired(registry.RequireNewCodepoint)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(r))
	e.call("new_codepoint")
}

// emitStringLiteral interns s in the string table and calls the given
// constructor (new_text or new_symbol) with its (ptr, len).
func (e *Emitter) emitStringLiteral(s string, req registry.RequiredRuntime) {
	ptr, length := e.ctx.Strings.Intern(s)
	e.ensureRequired(req)
	name := "new_text"
	if req == registry.RequireNewSymbol {
		name = "new_symbol"
	}
	e.code.Op(wasmcode.OpI32Const).U32(uint32(ptr))
	e.code.Op(wasmcode.OpI32Const).U32(uint32(length))
	e.call(name)
}

// emitSymbolRef looks a name up: a local gets local.get; a global gets
// global.get; an unbound identifier at top level becomes its own Symbol
// literal (spec.md §4.9).
func (e *Emitter) emitSymbolRef(n *node.Node) {
	if e.fn != nil {
		if l, ok := e.fn.Local(n.Str); ok {
			e.code.Op(wasmcode.OpLocalGet).U32(uint32(l.Position))
			return
		}
	}
	if slot, ok := e.ctx.UserGlobals[n.Str]; ok {
		e.code.Op(wasmcode.OpGlobalGet).U32(uint32(slot.Index))
		return
	}
	e.emitStringLiteral(n.Str, registry.RequireNewSymbol)
}

func (e *Emitter) emitPair(n *node.Node) {
	e.emitExpr(n.Left)
	e.code.Op(wasmcode.OpDrop)
	e.emitExpr(n.Right)
}

func (e *Emitter) emitTypeDef(n *node.Node) {
	e.ensureRequired(registry.RequireNewEmpty)
	e.call("new_empty")
}

// call looks the function up by name and emits the appropriate call
// instruction; the callee must already be registered (constructors are
// declared before any code function, user functions are collected before
// emission begins).
func (e *Emitter) call(name string) {
	e.ctx.MarkUsed(name)
	if fn, ok := e.ctx.UserFunctions[name]; ok {
		e.code.Op(wasmcode.OpCall).U32(uint32(fn.CallIndex))
		return
	}
	// Forward reference to a function not yet registered (e.g. a
	// constructor not declared until after this body is lowered) is
	// patched by the caller's second pass — recorded as a pending call.
	e.pendingCalls = append(e.pendingCalls, pendingCall{name: name, at: e.code.Len()})
	e.code.Op(wasmcode.OpCall).U32(0)
}

type pendingCall struct {
	name string
	at   int
}
