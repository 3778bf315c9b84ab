// internal/analyzer/functions.go
package analyzer

import (
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/op"
	"warpc/internal/registry"
)

// CollectFunctions walks root for every function-definition Key
// (spec.md §4.1/§5 — a List(Round)[Symbol(name), Symbol(param)...]
// signature on the left of `=` or `:=`) and registers a registry.Function
// for each, with every parameter typed kindtype.Empty (Infer later sets
// only the result type; parameter kinds stay Empty). Returns the definitions found, in source order,
// since the emitter needs each one's body alongside its registered
// Function record.
func CollectFunctions(ctx *registry.Context, root *node.Node) []FunctionDef {
	var defs []FunctionDef
	var walk func(n *node.Node)
	walk = func(n *node.Node) {
		n = n.DropMeta()
		if n == nil {
			return
		}
		switch n.Variant {
		case node.Key:
			if def, ok := asFunctionDef(n); ok {
				fn := registerFunction(ctx, def)
				defs = append(defs, FunctionDef{Name: def.name, Params: def.params, Body: def.body, Function: fn})
				return
			}
			walk(n.Left)
			walk(n.Right)
		case node.List:
			for _, item := range n.Items {
				walk(item)
			}
		case node.Pair:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(root)
	return defs
}

// FunctionDef is one source-level function definition found during
// collection, paired with the registry.Function it was registered as.
type FunctionDef struct {
	Name     string
	Params   []string
	Body     *node.Node
	Function *registry.Function
}

type rawFunctionDef struct {
	name   string
	params []string
	body   *node.Node
}

// asFunctionDef recognises Key(List(Round)[Symbol(name), Symbol(p)...], Assign|Define, body).
func asFunctionDef(n *node.Node) (rawFunctionDef, bool) {
	if n.Op != op.Assign && n.Op != op.Define {
		return rawFunctionDef{}, false
	}
	sig := n.Left.DropMeta()
	if sig == nil || sig.Variant != node.List || sig.Bracket != node.Round || len(sig.Items) == 0 {
		return rawFunctionDef{}, false
	}
	head := sig.Items[0].DropMeta()
	if head == nil || head.Variant != node.Symbol {
		return rawFunctionDef{}, false
	}
	var params []string
	for _, p := range sig.Items[1:] {
		p = p.DropMeta()
		if p != nil && p.Variant == node.Symbol {
			params = append(params, p.Str)
		}
	}
	return rawFunctionDef{name: head.Str, params: params, body: n.Right}, true
}

func registerFunction(ctx *registry.Context, def rawFunctionDef) *registry.Function {
	sig := registry.Signature{}
	for _, p := range def.params {
		sig.Params = append(sig.Params, registry.Param{Name: p, Type: kindtype.Promote(kindtype.Empty)})
	}
	sig.Results = []kindtype.Ref{kindtype.Promote(kindtype.Empty)}
	fn := registry.NewFunction(def.name, sig)
	fn.Body = def.body
	for _, p := range def.params {
		fn.DeclareLocal(p, kindtype.Empty, true)
	}
	ctx.DeclareUserFunction(def.name, fn)
	return fn
}
