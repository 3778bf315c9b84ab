// internal/kindtype/kind.go
package kindtype

import "fmt"

// Kind is the compact integer tag identifying the runtime kind of a value
// flowing through the AST/WASM pipeline. A compiled $Node stores it in its
// i32 tag field, field 0 (see internal/typemanager).
type Kind uint8

const (
	Empty Kind = iota
	Int
	Float
	Codepoint
	Text
	Symbol
	Key
	TypeDef
	List
)

// UserTypeTagStart is the first tag value available to user-defined
// struct types, so runtime kind checks can distinguish built-ins from
// user structs by a single comparison.
const UserTypeTagStart Kind = 64

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Int:
		return "int"
	case Float:
		return "float"
	case Codepoint:
		return "codepoint"
	case Text:
		return "text"
	case Symbol:
		return "symbol"
	case Key:
		return "key"
	case TypeDef:
		return "type"
	case List:
		return "list"
	default:
		if k >= UserTypeTagStart {
			return fmt.Sprintf("user(%d)", k-UserTypeTagStart)
		}
		return fmt.Sprintf("kind(%d)", k)
	}
}

// IsUser reports whether k was assigned by the TypeRegistry rather than
// being one of the built-in kinds above.
func (k Kind) IsUser() bool { return k >= UserTypeTagStart }

// ValType is the physical WASM type a Kind promotes to.
type ValType int

const (
	I32 ValType = iota
	I64
	F32
	F64
	AnyRef
	I31Ref
	RefIdx    // ref <type index>
	RefNullIdx // ref null <type index>
	Void
)

// Ref is a ValType parameterised by a type-section index, used for
// Ref/RefNull.
type Ref struct {
	Val   ValType
	Index int // only meaningful for RefIdx / RefNullIdx
}

func (r Ref) String() string {
	switch r.Val {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case AnyRef:
		return "anyref"
	case I31Ref:
		return "i31ref"
	case RefIdx:
		return fmt.Sprintf("(ref %d)", r.Index)
	case RefNullIdx:
		return fmt.Sprintf("(ref null %d)", r.Index)
	default:
		return "void"
	}
}

// Promote returns the WASM physical type a Kind lowers to.
//   Int -> i64, Float -> f64, Codepoint -> i32, everything else -> anyref.
func Promote(k Kind) Ref {
	switch k {
	case Int:
		return Ref{Val: I64}
	case Float:
		return Ref{Val: F64}
	case Codepoint:
		return Ref{Val: I32}
	default:
		return Ref{Val: AnyRef}
	}
}
