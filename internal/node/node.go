// internal/node/node.go
package node

import (
	"math"

	"warpc/internal/op"
)

// Variant tags every Node. It is distinct from kindtype.Kind: Variant
// classifies the *shape* of an AST node, Kind classifies the *runtime*
// value it will lower to. The two line up one-to-one for leaves (Number
// carries Int/Float, Text/Symbol map directly) and diverge for Key/List,
// which always carry kindtype.Key / kindtype.List regardless of what
// they compute.
type Variant int

const (
	Empty Variant = iota
	True
	False
	Number
	Text
	Symbol
	Char
	Key
	Pair
	List
	TypeDef
	Data
	Meta
	Error
)

// NumForm distinguishes the four ways a Number node stores its value.
type NumForm int

const (
	IntForm NumForm = iota
	FloatForm
	NanForm
	// QuotientForm carries a lossless integer-division result as a
	// numerator/denominator pair; arithmetic promotes it to FloatForm
	// only when a Float operand forces it, per spec.md Number invariant.
	QuotientForm
)

// Bracket records which bracket style produced a List node.
type Bracket int

const (
	NoBracket Bracket = iota
	Round
	Square
	Curly
	Angle
)

// Separator records which separator a List node's elements used. The
// parser promotes mixed separators to the most general one present:
// newline > semicolon > comma > space > colon > none.
type Separator int

const (
	NoSeparator Separator = iota
	ColonSep
	SpaceSep
	CommaSep
	SemicolonSep
	NewlineSep
)

// promotionRank gives the "more general wins" ordering used when mixed
// separators appear in one bracket group.
var promotionRank = map[Separator]int{
	NoSeparator:  0,
	ColonSep:     1,
	SpaceSep:     2,
	CommaSep:     3,
	SemicolonSep: 4,
	NewlineSep:   5,
}

// Promote returns whichever of a, b is the more general separator.
func Promote(a, b Separator) Separator {
	if promotionRank[b] > promotionRank[a] {
		return b
	}
	return a
}

// DataCategory classifies a Data node's payload for Kind-inference
// purposes (spec.md §3 Data).
type DataCategory int

const (
	OtherData DataCategory = iota
	VecData
	TupleData
	StringData
	StructData
	PrimitiveData
)

// DataPayload is the erased-value capability a Data node wraps: it must
// be cloneable and comparable without resorting to reference identity.
type DataPayload interface {
	Clone() DataPayload
	Equal(other DataPayload) bool
	TypeName() string
}

// MetaData is the decoration a Meta node carries: leading comments and
// the source position of the node it wraps.
type MetaData struct {
	Comment string
	Line    int
	Column  int
}

// Node is the uniform tagged sum every AST shape compiles to. Only the
// fields relevant to Variant are populated; this mirrors the emitter's
// $Node encoding (tag/ival/fval/str/left/right/payload) at the Go level so that lowering a
// Node to WASM is close to a structural copy (see internal/emitter).
type Node struct {
	Variant Variant

	// Number
	NumForm  NumForm
	IntVal   int64
	FloatVal float64
	NumQuot  [2]int64 // numerator, denominator for QuotientForm

	// Text / Symbol
	Str string

	// Char
	Rune rune

	// Key / Pair
	Left  *Node
	Op    op.Op
	Right *Node

	// List
	Items     []*Node
	Bracket   Bracket
	Separator Separator

	// TypeDef
	TypeName *Node
	TypeBody *Node

	// Data
	DataTypeName string
	DataCategory DataCategory
	Payload      DataPayload

	// Meta
	Inner *Node
	Meta  MetaData

	// Error
	ErrMessage string
}

// NewEmpty, NewTrue, ... are the Go-level constructors mirroring the
// compiled new_* functions of internal/emitter/constructors.go.
func NewEmpty() *Node  { return &Node{Variant: Empty} }
func NewTrue() *Node   { return &Node{Variant: True} }
func NewFalse() *Node  { return &Node{Variant: False} }

func NewInt(v int64) *Node   { return &Node{Variant: Number, NumForm: IntForm, IntVal: v} }
func NewFloat(v float64) *Node {
	if math.IsNaN(v) {
		return &Node{Variant: Number, NumForm: NanForm}
	}
	return &Node{Variant: Number, NumForm: FloatForm, FloatVal: v}
}
func NewQuotient(num, den int64) *Node {
	return &Node{Variant: Number, NumForm: QuotientForm, NumQuot: [2]int64{num, den}}
}

func NewText(s string) *Node   { return &Node{Variant: Text, Str: s} }
func NewSymbol(s string) *Node { return &Node{Variant: Symbol, Str: s} }
func NewChar(r rune) *Node     { return &Node{Variant: Char, Rune: r} }

func NewKey(left *Node, o op.Op, right *Node) *Node {
	return &Node{Variant: Key, Left: left, Op: o, Right: right}
}

func NewPair(left, right *Node) *Node {
	return &Node{Variant: Pair, Left: left, Right: right}
}

func NewList(items []*Node, b Bracket, sep Separator) *Node {
	return &Node{Variant: List, Items: items, Bracket: b, Separator: sep}
}

func NewTypeDef(name, body *Node) *Node {
	return &Node{Variant: TypeDef, TypeName: name, TypeBody: body}
}

func NewData(typeName string, cat DataCategory, payload DataPayload) *Node {
	return &Node{Variant: Data, DataTypeName: typeName, DataCategory: cat, Payload: payload}
}

func WrapMeta(inner *Node, comment string, line, column int) *Node {
	return &Node{Variant: Meta, Inner: inner, Meta: MetaData{Comment: comment, Line: line, Column: column}}
}

func NewError(message string) *Node {
	return &Node{Variant: Error, ErrMessage: message}
}

// DropMeta strips any number of nested Meta wrappers and returns the
// first non-Meta node. This is the operation every dispatch site in the
// analyzer and emitter calls before switching on Variant.
func (n *Node) DropMeta() *Node {
	for n != nil && n.Variant == Meta {
		n = n.Inner
	}
	return n
}

// IsEmptyLike reports the cross-kind equalities spec.md §3 requires of
// Empty: it equals 0, "", and the empty list.
func (n *Node) isEmptyLike() bool {
	n = n.DropMeta()
	switch n.Variant {
	case Empty:
		return true
	case Number:
		return n.NumForm == IntForm && n.IntVal == 0 || n.NumForm == FloatForm && n.FloatVal == 0
	case Text, Symbol:
		return n.Str == ""
	case List:
		return len(n.Items) == 0
	case False:
		return true
	}
	return false
}
