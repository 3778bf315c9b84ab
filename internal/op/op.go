// internal/op/op.go
package op

// Op is the fixed enumeration of operators the parser and emitter both
// understand. Every Op carries its own binding-power pair so the parser
// table and the pretty-printer read from the same source of truth.
type Op int

const (
	Invalid Op = iota

	Add
	Sub
	Mul
	Div
	Mod
	Pow

	Eq
	Ne
	Lt
	Gt
	Le
	Ge

	And
	Or
	Xor
	Not

	Assign
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign

	Neg  // unary -
	Pos  // unary +
	Incr // suffix ++
	Decr // suffix --

	Cond  // ?
	Colon // : (ternary arm, and key:value)

	Range // ..
	As    // as T (type cast)
	Index // # / []
	Dot   // member access
	Define

	Comma
)

// spec is the static precedence/arity table: parser and printer both read
// it, so adding an operator is a one-line change.
type spec struct {
	name               string
	synonyms           []string
	leftBP, rightBP    int
	arithmetic         bool
	comparison         bool
	logical            bool
	compoundAssign     bool
	baseOp             Op
}

var table = map[Op]spec{
	Invalid: {name: ""},

	Add: {name: "+", leftBP: 50, rightBP: 51, arithmetic: true},
	Sub: {name: "-", leftBP: 50, rightBP: 51, arithmetic: true},
	Mul: {name: "*", leftBP: 60, rightBP: 61, arithmetic: true},
	Div: {name: "/", synonyms: []string{"÷"}, leftBP: 60, rightBP: 61, arithmetic: true},
	Mod: {name: "%", leftBP: 60, rightBP: 61, arithmetic: true},
	// right-associative: right_bp < left_bp
	Pow: {name: "^", synonyms: []string{"**"}, leftBP: 70, rightBP: 69, arithmetic: true},

	Eq: {name: "==", leftBP: 30, rightBP: 31, comparison: true},
	Ne: {name: "!=", synonyms: []string{"≠"}, leftBP: 30, rightBP: 31, comparison: true},
	Lt: {name: "<", leftBP: 30, rightBP: 31, comparison: true},
	Gt: {name: ">", leftBP: 30, rightBP: 31, comparison: true},
	Le: {name: "<=", synonyms: []string{"≤"}, leftBP: 30, rightBP: 31, comparison: true},
	Ge: {name: ">=", synonyms: []string{"≥"}, leftBP: 30, rightBP: 31, comparison: true},

	And: {name: "and", synonyms: []string{"&&", "∧"}, leftBP: 20, rightBP: 21, logical: true},
	Or:  {name: "or", synonyms: []string{"||", "∨"}, leftBP: 10, rightBP: 11, logical: true},
	Xor: {name: "xor", leftBP: 15, rightBP: 16, logical: true},
	Not: {name: "not", synonyms: []string{"!", "¬"}, leftBP: 0, rightBP: 80, logical: true},

	Assign:    {name: "=", leftBP: 5, rightBP: 4},
	AddAssign: {name: "+=", leftBP: 5, rightBP: 4, compoundAssign: true, baseOp: Add},
	SubAssign: {name: "-=", leftBP: 5, rightBP: 4, compoundAssign: true, baseOp: Sub},
	MulAssign: {name: "*=", leftBP: 5, rightBP: 4, compoundAssign: true, baseOp: Mul},
	DivAssign: {name: "/=", leftBP: 5, rightBP: 4, compoundAssign: true, baseOp: Div},
	ModAssign: {name: "%=", leftBP: 5, rightBP: 4, compoundAssign: true, baseOp: Mod},

	Neg:  {name: "-", leftBP: 0, rightBP: 75},
	Pos:  {name: "+", leftBP: 0, rightBP: 75},
	Incr: {name: "++", leftBP: 90, rightBP: 0},
	Decr: {name: "--", leftBP: 90, rightBP: 0},

	Cond:  {name: "?", leftBP: 12, rightBP: 2},
	Colon: {name: ":", leftBP: 3, rightBP: 3},

	Range: {name: "..", leftBP: 40, rightBP: 41},
	As:    {name: "as", leftBP: 45, rightBP: 46},
	Index: {name: "#", leftBP: 90, rightBP: 91},
	Dot:   {name: ".", leftBP: 95, rightBP: 96},
	Define: {name: ":=", leftBP: 5, rightBP: 4},

	Comma: {name: ",", leftBP: 1, rightBP: 2},
}

// synonymLookup maps every accepted spelling (canonical and Unicode
// synonyms) back to its Op.
var synonymLookup = buildSynonymLookup()

func buildSynonymLookup() map[string]Op {
	m := make(map[string]Op, len(table)*2)
	for o, s := range table {
		if s.name != "" {
			m[s.name] = o
		}
		for _, syn := range s.synonyms {
			m[syn] = o
		}
	}
	return m
}

// Lookup resolves a token's textual form (canonical or Unicode synonym)
// to its Op. ok is false for unrecognised text.
func Lookup(text string) (Op, bool) {
	o, ok := synonymLookup[text]
	return o, ok
}

// String returns the canonical spelling of the operator.
func (o Op) String() string {
	return table[o].name
}

// BindingPower returns the (left, right) binding powers used by the Pratt
// parser. Prefix operators have leftBP == 0; suffix operators have
// rightBP == 0; right-associative operators have rightBP < leftBP.
func (o Op) BindingPower() (left, right int) {
	s := table[o]
	return s.leftBP, s.rightBP
}

func (o Op) IsPrefix() bool { return table[o].leftBP == 0 && table[o].rightBP != 0 }
func (o Op) IsSuffix() bool { return table[o].rightBP == 0 }

func (o Op) IsArithmetic() bool     { return table[o].arithmetic }
func (o Op) IsComparison() bool     { return table[o].comparison }
func (o Op) IsLogical() bool        { return table[o].logical }
func (o Op) IsCompoundAssign() bool { return table[o].compoundAssign }

// BaseOp returns the underlying binary operator for a compound-assignment
// Op (e.g. AddAssign -> Add). Returns Invalid for a non-compound Op.
func (o Op) BaseOp() Op {
	return table[o].baseOp
}
