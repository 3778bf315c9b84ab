// internal/node/equal.go
package node

// Equal implements the equality law from spec.md §3: Meta wrappers are
// transparent, numeric promotion applies (Int == equal-valued Float),
// True/False compare as 1/0 against numeric nodes, Empty equals 0, "",
// and the empty list, and Data nodes compare via their payload capability.
func (n *Node) Equal(other *Node) bool {
	a := n.DropMeta()
	b := other.DropMeta()
	if a == nil || b == nil {
		return a == b
	}

	if a.isEmptyLike() && b.isEmptyLike() {
		return true
	}

	if a.Variant == True || a.Variant == False || b.Variant == True || b.Variant == False {
		return boolNumEqual(a, b)
	}

	if a.Variant != b.Variant {
		// Numeric cross-form comparison: Int vs Float.
		if a.Variant == Number && b.Variant == Number {
			return numEqual(a, b)
		}
		return false
	}

	switch a.Variant {
	case Empty, True, False:
		return true
	case Number:
		return numEqual(a, b)
	case Text, Symbol:
		return a.Str == b.Str
	case Char:
		return a.Rune == b.Rune
	case Key:
		return a.Op == b.Op && a.Left.Equal(b.Left) && a.Right.Equal(b.Right)
	case Pair:
		return a.Left.Equal(b.Left) && a.Right.Equal(b.Right)
	case List:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !a.Items[i].Equal(b.Items[i]) {
				return false
			}
		}
		return true
	case TypeDef:
		return a.TypeName.Equal(b.TypeName) && a.TypeBody.Equal(b.TypeBody)
	case Data:
		if a.Payload == nil || b.Payload == nil {
			return a.Payload == b.Payload
		}
		return a.DataTypeName == b.DataTypeName && a.Payload.Equal(b.Payload)
	case Error:
		return a.ErrMessage == b.ErrMessage
	}
	return false
}

func asFloat(n *Node) (float64, bool) {
	switch {
	case n.Variant == Number && n.NumForm == IntForm:
		return float64(n.IntVal), true
	case n.Variant == Number && n.NumForm == FloatForm:
		return n.FloatVal, true
	case n.Variant == Number && n.NumForm == QuotientForm && n.NumQuot[1] != 0:
		return float64(n.NumQuot[0]) / float64(n.NumQuot[1]), true
	}
	return 0, false
}

func numEqual(a, b *Node) bool {
	if a.NumForm == IntForm && b.NumForm == IntForm {
		return a.IntVal == b.IntVal
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af == bf
}

func boolNumEqual(a, b *Node) bool {
	val := func(n *Node) (float64, bool) {
		switch n.Variant {
		case True:
			return 1, true
		case False:
			return 0, true
		default:
			return asFloat(n)
		}
	}
	av, aok := val(a)
	bv, bok := val(b)
	return aok && bok && av == bv
}
