// internal/stringtable/collect.go
package stringtable

import (
	"warpc/internal/node"
	"warpc/internal/op"
)

// LiteralBinding records that `symbol := "literal"` (or `symbol =
// "literal"`) appeared, so the emitter can pre-populate the target
// local's (data_pointer, data_length) instead of reading through the
// $Node struct at `puts` time (spec.md §4.7).
type LiteralBinding struct {
	Symbol  string
	Literal string
}

// Collect walks the whole AST once, before emission, and returns every
// string literal it finds (Text and Symbol leaves both contribute bytes
// to the pool) plus the direct symbol := "literal" bindings.
func Collect(root *node.Node) (literals []string, bindings []LiteralBinding) {
	walk(root, &literals, &bindings)
	return
}

func walk(n *node.Node, literals *[]string, bindings *[]LiteralBinding) {
	n = n.DropMeta()
	if n == nil {
		return
	}
	switch n.Variant {
	case node.Text:
		*literals = append(*literals, n.Str)
	case node.Symbol:
		*literals = append(*literals, n.Str)
	case node.Key:
		if (n.Op == op.Define || n.Op == op.Assign) && n.Left.DropMeta().Variant == node.Symbol {
			if lit := n.Right.DropMeta(); lit.Variant == node.Text {
				*bindings = append(*bindings, LiteralBinding{Symbol: n.Left.DropMeta().Str, Literal: lit.Str})
			}
		}
		walk(n.Left, literals, bindings)
		walk(n.Right, literals, bindings)
	case node.Pair:
		walk(n.Left, literals, bindings)
		walk(n.Right, literals, bindings)
	case node.List:
		for _, item := range n.Items {
			walk(item, literals, bindings)
		}
	case node.TypeDef:
		walk(n.TypeName, literals, bindings)
		walk(n.TypeBody, literals, bindings)
	}
}
