// internal/emitter/globals.go
package emitter

import (
	"warpc/internal/kindtype"
)

// builtinKindOrder is the fixed emission order for the builtin Kind
// constant globals spec.md §4.6 calls for — one immutable i32 global per
// tag, so generated code and any hand-written glue can reference e.g.
// $kind_int instead of a bare magic number.
var builtinKindOrder = []kindtype.Kind{
	kindtype.Empty, kindtype.Int, kindtype.Float, kindtype.Codepoint,
	kindtype.Text, kindtype.Symbol, kindtype.Key, kindtype.TypeDef, kindtype.List,
}

// declareKindGlobals assigns a global index to every builtin Kind tag,
// plus every user-defined type's tag once the type registry is final.
// Skipped entirely when cfg.EmitKindGlobals is false — a module that
// never introspects kinds by global has no use for them.
func (e *Emitter) declareKindGlobals() {
	if !e.cfg.EmitKindGlobals {
		return
	}
	idx := 0
	for _, k := range builtinKindOrder {
		e.ctx.AssignKindGlobal(k, idx)
		e.globalOrder = append(e.globalOrder, kindGlobalName(k))
		idx++
	}
	for _, name := range e.ctx.Types.Names() {
		tag, _, _ := e.ctx.Types.Lookup(name)
		e.ctx.AssignKindGlobal(tag, idx)
		e.globalOrder = append(e.globalOrder, "kind_"+name)
		idx++
	}
}

func kindGlobalName(k kindtype.Kind) string {
	return "kind_" + k.String()
}
