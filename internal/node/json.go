// internal/node/json.go
package node

import (
	"encoding/json"

	"warpc/internal/op"
)

// variantName gives the JSON export's tag field a readable spelling
// instead of the bare integer Variant.
var variantName = map[Variant]string{
	Empty: "empty", True: "true", False: "false", Number: "number",
	Text: "text", Symbol: "symbol", Char: "char", Key: "key", Pair: "pair",
	List: "list", TypeDef: "type", Data: "data", Meta: "meta", Error: "error",
}

// jsonNode is the implementation-defined compact wire shape described in
// spec.md §6: enough to round-trip structure, no type tags beyond the
// variant name itself.
type jsonNode struct {
	Variant string      `json:"v"`
	Int     *int64      `json:"i,omitempty"`
	Float   *float64    `json:"f,omitempty"`
	Str     string      `json:"s,omitempty"`
	Rune    *rune       `json:"c,omitempty"`
	Op      string      `json:"op,omitempty"`
	Left    *jsonNode   `json:"l,omitempty"`
	Right   *jsonNode   `json:"r,omitempty"`
	Items   []*jsonNode `json:"items,omitempty"`
	Bracket int         `json:"bracket,omitempty"`
	Sep     int         `json:"sep,omitempty"`
	Name    *jsonNode   `json:"name,omitempty"`
	Body    *jsonNode   `json:"body,omitempty"`
	Message string      `json:"message,omitempty"`
}

func toWire(n *Node) *jsonNode {
	if n == nil {
		return nil
	}
	n = n.DropMeta() // JSON export drops source decoration; see spec.md §6
	w := &jsonNode{Variant: variantName[n.Variant]}
	switch n.Variant {
	case Number:
		switch n.NumForm {
		case IntForm:
			v := n.IntVal
			w.Int = &v
		case FloatForm:
			v := n.FloatVal
			w.Float = &v
		}
	case Text, Symbol:
		w.Str = n.Str
	case Char:
		r := n.Rune
		w.Rune = &r
	case Key:
		w.Op = n.Op.String()
		w.Left = toWire(n.Left)
		w.Right = toWire(n.Right)
	case Pair:
		w.Left = toWire(n.Left)
		w.Right = toWire(n.Right)
	case List:
		w.Bracket = int(n.Bracket)
		w.Sep = int(n.Separator)
		for _, it := range n.Items {
			w.Items = append(w.Items, toWire(it))
		}
	case TypeDef:
		w.Name = toWire(n.TypeName)
		w.Body = toWire(n.TypeBody)
	case Error:
		w.Message = n.ErrMessage
	}
	return w
}

// ToJSON serialises n to the compact wire form. The operator carried by
// a Key node (`:` vs `=`) is preserved in the "op" field.
func (n *Node) ToJSON() ([]byte, error) {
	return json.Marshal(toWire(n))
}

// FromJSON is the inverse of ToJSON, used by the round-trip tests in
// spec.md §8 invariant 2.
func FromJSON(data []byte) (*Node, error) {
	var w jsonNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(&w), nil
}

var nameToVariant = func() map[string]Variant {
	m := make(map[string]Variant, len(variantName))
	for k, v := range variantName {
		m[v] = k
	}
	return m
}()

func fromWire(w *jsonNode) *Node {
	if w == nil {
		return nil
	}
	variant := nameToVariant[w.Variant]
	switch variant {
	case Number:
		if w.Int != nil {
			return NewInt(*w.Int)
		}
		if w.Float != nil {
			return NewFloat(*w.Float)
		}
		return NewInt(0)
	case Text:
		return NewText(w.Str)
	case Symbol:
		return NewSymbol(w.Str)
	case Char:
		if w.Rune != nil {
			return NewChar(*w.Rune)
		}
		return NewChar(0)
	case Key:
		o, _ := op.Lookup(w.Op)
		return NewKey(fromWire(w.Left), o, fromWire(w.Right))
	case Pair:
		return NewPair(fromWire(w.Left), fromWire(w.Right))
	case List:
		items := make([]*Node, len(w.Items))
		for i, it := range w.Items {
			items[i] = fromWire(it)
		}
		return NewList(items, Bracket(w.Bracket), Separator(w.Sep))
	case TypeDef:
		return NewTypeDef(fromWire(w.Name), fromWire(w.Body))
	case True:
		return NewTrue()
	case False:
		return NewFalse()
	case Error:
		return NewError(w.Message)
	default:
		return NewEmpty()
	}
}
