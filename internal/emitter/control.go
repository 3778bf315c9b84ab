// internal/emitter/control.go
package emitter

import (
	"warpc/internal/node"
	"warpc/internal/op"
	"warpc/internal/registry"
	"warpc/internal/wasmcode"
)

// emitList dispatches the keyword-headed forms (if/while/use/import/
// global), the general call/list-literal shapes, and statement sequences
// (spec.md §4.9's "list node emission" and "statement sequence" rules).
func (e *Emitter) emitList(n *node.Node) {
	if len(n.Items) == 0 {
		e.emitEmpty()
		return
	}
	head := n.Items[0].DropMeta()
	if head != nil && head.Variant == node.Symbol {
		switch head.Str {
		case "if":
			e.emitIf(n)
			return
		case "while":
			e.emitWhile(n)
			return
		case "use", "import", "global":
			e.emitDeclaration(n)
			return
		}
		if n.Bracket == node.Round {
			e.emitCall(head.Str, n.Items[1:])
			return
		}
	}
	if isStatementSequence(n) {
		e.emitStatementSequence(n)
		return
	}
	e.emitListLiteral(n)
}

// isStatementSequence tells a statement sequence apart from a plain data
// list literal using the only signal the parser actually preserves: a
// NoBracket list only ever comes from parseProgram/parseTopLevelInBracket
// threading multiple top-level forms together, and a Curly list only ever
// comes from a `{ ... }` block body — except when its items are
// colon-separated, which is the key:value object-literal reading of `{ }`
// (spec.md §4.1's bracket/separator table), not a block. Round/Square/
// Angle lists are always data (calls are handled earlier, by the
// Round-bracket branch above).
func isStatementSequence(n *node.Node) bool {
	if n.Bracket == node.NoBracket {
		return true
	}
	return n.Bracket == node.Curly && n.Separator != node.ColonSep
}

// emitStatementSequence lowers a statement sequence in order, dropping
// every intermediate value and leaving only the last — filtering out
// function definitions first, since those were already registered and
// compiled as their own code functions during analysis (spec.md §4.9).
func (e *Emitter) emitStatementSequence(n *node.Node) {
	var kept []*node.Node
	for _, item := range n.Items {
		if isFunctionDefKey(item.DropMeta()) {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		e.emitEmpty()
		return
	}
	for _, item := range kept[:len(kept)-1] {
		e.emitExpr(item)
		e.code.Op(wasmcode.OpDrop)
	}
	e.emitExpr(kept[len(kept)-1])
}

func (e *Emitter) emitIf(n *node.Node) {
	e.emitAsI64(n.Items[1])
	e.code.Op(wasmcode.OpI32WrapI64)
	e.code.Op(wasmcode.OpIf).Byte(wasmcode.BlockAnyRef)
	e.emitExpr(n.Items[2])
	e.code.Op(wasmcode.OpElse)
	if len(n.Items) > 3 {
		e.emitExpr(n.Items[3])
	} else {
		e.emitEmpty()
	}
	e.code.Op(wasmcode.OpEnd)
}

// emitWhile lowers to a loop/block pair with a forward br_if exit test,
// matching spec.md §4.9; the loop's value is the last body evaluation
// (tracked in a local) or new_int(0) if the body never ran.
func (e *Emitter) emitWhile(n *node.Node) {
	resultLocal := e.fn.DeclareLocal(whileResultName(e.fn), 0, false)
	e.code.Op(wasmcode.OpI64Const).S64(0)
	e.ensureRequired(registry.RequireNewInt)
	e.call("new_int")
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(resultLocal.Position))

	e.code.Op(wasmcode.OpBlock).Byte(wasmcode.BlockEmpty)
	e.code.Op(wasmcode.OpLoop).Byte(wasmcode.BlockEmpty)
	e.emitAsI64(n.Items[1])
	e.code.Op(wasmcode.OpI32WrapI64)
	e.code.Op(wasmcode.OpI32Eqz)
	e.code.Op(wasmcode.OpBrIf).U32(1) // exit to block when condition false
	e.emitExpr(n.Items[2])
	e.code.Op(wasmcode.OpLocalSet).U32(uint32(resultLocal.Position))
	e.code.Op(wasmcode.OpBr).U32(0)
	e.code.Op(wasmcode.OpEnd) // loop
	e.code.Op(wasmcode.OpEnd) // block
	e.code.Op(wasmcode.OpLocalGet).U32(uint32(resultLocal.Position))
}

func whileResultName(fn *registry.Function) string {
	return "$while_result_" + itoa(len(fn.LocalNames()))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// emitDeclaration handles the three keyword-headed declaration forms.
// `use`/`import` carry no runtime value of their own — their effect
// (enabling an import section, registering an FFI signature) already
// happened during analysis, see analyzer.CollectDeclarations. `global`
// does carry an effect here: its binding must land in a true module-level
// WASM global regardless of whether it's lexically inside `main`'s own
// function body (every top-level statement is, since main is itself a
// code function) — ordinary `=`/`:=` assignment can't be trusted to pick
// a global over a local for that reason, so this bypasses emitAssign.
func (e *Emitter) emitDeclaration(n *node.Node) {
	head := n.Items[0].DropMeta()
	if head != nil && head.Str == "global" && len(n.Items) > 1 {
		e.emitGlobalBinding(n.Items[1])
		return
	}
	e.emitEmpty()
}

// emitGlobalBinding lowers `global x = e` / `global x := e`. A name
// already declared global is reused (idempotent, matching
// registry.Context.DeclareUserGlobal); this is the only call site that
// populates ctx.UserGlobals, everywhere else assignment targets a
// function-local slot (spec.md §4.9's assignment rule).
func (e *Emitter) emitGlobalBinding(n *node.Node) {
	key := n.DropMeta()
	if key == nil || key.Variant != node.Key || (key.Op != op.Assign && key.Op != op.Define) {
		e.emitExpr(n)
		e.code.Op(wasmcode.OpDrop)
		e.emitEmpty()
		return
	}
	sym := key.Left.DropMeta()
	if sym == nil || sym.Variant != node.Symbol {
		e.emitExpr(key.Right)
		e.code.Op(wasmcode.OpDrop)
		e.emitEmpty()
		return
	}
	slot, ok := e.ctx.UserGlobals[sym.Str]
	if !ok {
		slot = registry.GlobalSlot{Index: len(e.globalOrder), Kind: e.kindOf(key)}
		e.ctx.DeclareUserGlobal(sym.Str, slot)
		e.globalOrder = append(e.globalOrder, sym.Str)
	}
	e.emitExpr(key.Right)
	e.code.Op(wasmcode.OpGlobalSet).U32(uint32(slot.Index))
	e.emitEmpty()
}
