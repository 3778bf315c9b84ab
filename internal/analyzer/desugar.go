// internal/analyzer/desugar.go
package analyzer

import (
	"warpc/internal/node"
	"warpc/internal/op"
)

// Desugar rewrites surface sugar into the canonical shapes the emitter
// expects, in place, and returns the (possibly replaced) root. Only one
// rewrite exists today: compound assignment `x op= e` becomes
// `x = x op e` (spec.md §5), which lets the emitter's assignment lowering
// stay single-shaped.
func Desugar(n *node.Node) *node.Node {
	if n == nil {
		return nil
	}
	switch n.Variant {
	case node.Meta:
		n.Inner = Desugar(n.Inner)
		return n
	case node.Key:
		n.Left = Desugar(n.Left)
		n.Right = Desugar(n.Right)
		if n.Op.IsCompoundAssign() {
			base := n.Op.BaseOp()
			n.Right = node.NewKey(n.Left.Clone(), base, n.Right)
			n.Op = op.Assign
		}
		return n
	case node.Pair:
		n.Left = Desugar(n.Left)
		n.Right = Desugar(n.Right)
		return n
	case node.List:
		for i, item := range n.Items {
			n.Items[i] = Desugar(item)
		}
		return n
	case node.TypeDef:
		n.TypeBody = Desugar(n.TypeBody)
		return n
	}
	return n
}
