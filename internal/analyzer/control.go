// internal/analyzer/control.go
package analyzer

import (
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/registry"
)

// specialFormKind recognises the keyword-headed List shapes the parser
// produces for control flow and module-level declarations (spec.md §4.1):
// List(NoBracket, SpaceSep)[Symbol("if"|"while"|"use"|"import"|"global"), ...].
type specialFormKind struct {
	infer func(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind
}

// specialForm reports whether n is one of the recognised keyword-headed
// forms and returns the handler that infers its Kind.
func specialForm(n *node.Node) (specialFormKind, bool) {
	if n.Bracket != node.NoBracket || len(n.Items) == 0 {
		return specialFormKind{}, false
	}
	head := n.Items[0].DropMeta()
	if head == nil || head.Variant != node.Symbol {
		return specialFormKind{}, false
	}
	switch head.Str {
	case "if":
		return specialFormKind{infer: inferIf}, true
	case "while":
		return specialFormKind{infer: inferWhile}, true
	case "use", "import", "global":
		return specialFormKind{infer: inferDeclaration}, true
	}
	return specialFormKind{}, false
}

// inferIf infers List[Symbol("if"), cond, then, else]. The if expression's
// own Kind is the common Kind of its branches when they agree, else
// kindtype.Empty (spec.md §5 — matching the Cond/ternary rule).
func inferIf(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind {
	Infer(scope, ctx, ann, n.Items[1])
	thenKind := Infer(scope, ctx, ann, n.Items[2])
	var elseKind kindtype.Kind
	if len(n.Items) > 3 {
		elseKind = Infer(scope, ctx, ann, n.Items[3])
	}
	if len(n.Items) > 3 && thenKind == elseKind {
		return thenKind
	}
	return kindtype.Empty
}

// inferWhile infers List[Symbol("while"), cond, body] and reports the
// loop's Kind as Empty (anyref); the emitted loop yields the last body
// value at runtime, or Int 0 when the body never runs.
func inferWhile(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind {
	Infer(scope, ctx, ann, n.Items[1])
	Infer(scope, ctx, ann, n.Items[2])
	return kindtype.Empty
}

// inferDeclaration infers List[Symbol("use"|"import"|"global"), ...]:
// these carry no runtime value of their own.
func inferDeclaration(scope *Scope, ctx *registry.Context, ann Annotations, n *node.Node) kindtype.Kind {
	for _, item := range n.Items[1:] {
		Infer(scope, ctx, ann, item)
	}
	return kindtype.Empty
}
