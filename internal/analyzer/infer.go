// internal/analyzer/infer.go
package analyzer

import (
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/op"
	"warpc/internal/registry"
)

// Annotations records the inferred Kind of every expression node the
// analyzer visited, keyed by the Meta-stripped node pointer (Meta
// wrapping is stable across re-walks, so the emitter's own DropMeta calls
// land on the same keys). Nodes the analyzer never reached (dead code,
// Error nodes) simply have no entry; callers treat a miss as
// kindtype.Empty.
type Annotations map[*node.Node]kindtype.Kind

func (a Annotations) Get(n *node.Node) kindtype.Kind {
	return a[n.DropMeta()]
}

// Infer assigns a Kind to every node in the tree rooted at n, declaring
// and looking up bindings through scope as it goes, and registering any
// `type` definitions it encounters into ctx.Types. It is the single
// recursive-descent pass spec.md §5 describes: literal -> its own kind,
// arithmetic -> Float if either operand is Float else Int, division
// always Float, comparisons -> Int, free identifiers -> Symbol.
func Infer(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind {
	n = n.DropMeta()
	if n == nil {
		return kindtype.Empty
	}
	k := inferVariant(scope, ctx, ann, n)
	ann[n] = k
	return k
}

func inferVariant(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind {
	switch n.Variant {
	case node.Empty:
		return kindtype.Empty
	case node.True, node.False:
		return kindtype.Int
	case node.Number:
		if n.NumForm == node.FloatForm || n.NumForm == node.NanForm {
			return kindtype.Float
		}
		return kindtype.Int
	case node.Text:
		return kindtype.Text
	case node.Char:
		return kindtype.Codepoint
	case node.Symbol:
		if k, ok := scope.Lookup(n.Str); ok {
			return k
		}
		return kindtype.Symbol
	case node.Key:
		return inferKey(scope, ctx, ann, n)
	case node.Pair:
		Infer(scope, ctx, ann, n.Left)
		Infer(scope, ctx, ann, n.Right)
		return kindtype.Key
	case node.List:
		return inferList(scope, ctx, ann, n)
	case node.TypeDef:
		return inferTypeDef(ctx, n)
	case node.Data:
		return inferDataCategory(n)
	case node.Error:
		return kindtype.Empty
	}
	return kindtype.Empty
}

func inferKey(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind {
	switch {
	case (n.Op == op.Assign || n.Op == op.Define) && isFunctionSignature(n.Left):
		return inferFunctionDef(scope, ctx, ann, n)
	case n.Op == op.Assign || n.Op == op.Define:
		rhs := Infer(scope, ctx, ann, n.Right)
		if sym := n.Left.DropMeta(); sym != nil && sym.Variant == node.Symbol {
			scope.Declare(sym.Str, rhs)
			ann[sym] = rhs
		} else {
			Infer(scope, ctx, ann, n.Left)
		}
		return rhs
	case n.Op.IsArithmetic():
		left := Infer(scope, ctx, ann, n.Left)
		right := Infer(scope, ctx, ann, n.Right)
		if n.Op == op.Div {
			return kindtype.Float
		}
		if left == kindtype.Float || right == kindtype.Float {
			return kindtype.Float
		}
		return kindtype.Int
	case n.Op.IsComparison(), n.Op.IsLogical():
		Infer(scope, ctx, ann, n.Left)
		Infer(scope, ctx, ann, n.Right)
		return kindtype.Int
	case n.Op == op.Cond:
		Infer(scope, ctx, ann, n.Left)
		armsKind := Infer(scope, ctx, ann, n.Right)
		return armsKind
	case n.Op == op.Colon:
		left := Infer(scope, ctx, ann, n.Left)
		right := Infer(scope, ctx, ann, n.Right)
		if left == right {
			return left
		}
		return kindtype.Empty
	case n.Op == op.As:
		Infer(scope, ctx, ann, n.Left)
		return resolveCastKind(ctx, n.Right)
	case n.Op == op.Index:
		Infer(scope, ctx, ann, n.Left)
		Infer(scope, ctx, ann, n.Right)
		return kindtype.Empty
	case n.Op == op.Dot:
		Infer(scope, ctx, ann, n.Left)
		return kindtype.Empty
	case n.Op == op.Range:
		Infer(scope, ctx, ann, n.Left)
		Infer(scope, ctx, ann, n.Right)
		return kindtype.List
	default:
		Infer(scope, ctx, ann, n.Left)
		Infer(scope, ctx, ann, n.Right)
		return kindtype.Empty
	}
}

// isFunctionSignature reports whether n is the List(Round)[Symbol(name),
// Symbol(param)...] shape parseFunctionDef and its call-sugar forms both
// produce on the left of `=`/`:=` (see internal/parser/parser.go).
func isFunctionSignature(n *node.Node) bool {
	s := n.DropMeta()
	if s == nil || s.Variant != node.List || s.Bracket != node.Round || len(s.Items) == 0 {
		return false
	}
	head := s.Items[0].DropMeta()
	return head != nil && head.Variant == node.Symbol
}

// inferFunctionDef infers a function body in its own scope, with
// parameters declared as kindtype.Empty (anyref; how the body uses them
// does not change that), and records the body's inferred Kind as
// the function's result type.
func inferFunctionDef(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind {
	sig := n.Left.DropMeta()
	name := sig.Items[0].DropMeta().Str
	scope.Declare(name, kindtype.Symbol)
	scope.Push()
	for _, p := range sig.Items[1:] {
		p = p.DropMeta()
		if p != nil && p.Variant == node.Symbol {
			scope.Declare(p.Str, kindtype.Empty)
		}
	}
	for _, item := range sig.Items {
		Infer(scope, ctx, ann, item)
	}
	ann[sig] = kindtype.List
	bodyKind := Infer(scope, ctx, ann, n.Right)
	scope.Pop()
	if fn, ok := ctx.UserFunctions[name]; ok {
		fn.Signature.Results = []kindtype.Ref{kindtype.Promote(bodyKind)}
	}
	return kindtype.Symbol
}

func inferList(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind {
	if form, ok := specialForm(n); ok {
		return form.infer(scope, ctx, ann, n)
	}
	for _, item := range n.Items {
		Infer(scope, ctx, ann, item)
	}
	return kindtype.List
}

func inferTypeDef(ctx *registry.Context, n *node.Node) kindtype.Kind {
	name := n.TypeName.DropMeta()
	if name == nil || name.Variant != node.Symbol {
		return kindtype.TypeDef
	}
	var fields []kindtype.FieldDef
	body := n.TypeBody.DropMeta()
	if body != nil && body.Variant == node.List {
		for _, item := range body.Items {
			item = item.DropMeta()
			if item != nil && item.Variant == node.Symbol {
				fields = append(fields, kindtype.FieldDef{Name: item.Str, TypeName: "empty"})
			}
		}
	}
	ctx.Types.Register(name.Str, fields)
	return kindtype.TypeDef
}

func inferDataCategory(n *node.Node) kindtype.Kind {
	switch n.DataCategory {
	case node.StringData:
		return kindtype.Text
	case node.VecData, node.TupleData:
		return kindtype.List
	default:
		return kindtype.Empty
	}
}

// resolveCastKind resolves the right-hand operand of `x as T` to the
// Kind it names — a builtin kind name or a registered user type.
func resolveCastKind(ctx *registry.Context, typeExpr *node.Node) kindtype.Kind {
	sym := typeExpr.DropMeta()
	if sym == nil || sym.Variant != node.Symbol {
		return kindtype.Empty
	}
	switch sym.Str {
	case "int":
		return kindtype.Int
	case "float":
		return kindtype.Float
	case "text", "string":
		return kindtype.Text
	case "symbol":
		return kindtype.Symbol
	case "codepoint", "char":
		return kindtype.Codepoint
	case "list":
		return kindtype.List
	}
	if k, _, ok := ctx.Types.Lookup(sym.Str); ok {
		return k
	}
	return kindtype.Empty
}
