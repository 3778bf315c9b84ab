// internal/typemanager/fieldtype.go
package typemanager

import (
	"fmt"

	"warpc/internal/kindtype"
)

// FieldValType translates a source-level field type name — as written in
// a `type` declaration's body, or an FFI header's C type — into the
// physical WASM value it is stored as. Unknown names that aren't a
// registered user type are a compile-time error: unlike expression kinds,
// which fall back to anyref, a struct field layout must be fully known
// before the types section can be emitted (spec.md §4.6).
func FieldValType(types *kindtype.TypeRegistry, typeName string) (kindtype.Ref, error) {
	switch typeName {
	case "int", "i64", "long":
		return kindtype.Ref{Val: kindtype.I64}, nil
	case "float", "f64", "double":
		return kindtype.Ref{Val: kindtype.F64}, nil
	case "i32", "codepoint":
		return kindtype.Ref{Val: kindtype.I32}, nil
	case "f32":
		return kindtype.Ref{Val: kindtype.F32}, nil
	case "text", "string", "symbol":
		return kindtype.Ref{Val: kindtype.RefNullIdx, Index: StringTypeIndex}, nil
	case "node", "empty", "any":
		return kindtype.Ref{Val: kindtype.RefNullIdx, Index: NodeTypeIndex}, nil
	}
	if k, _, ok := types.Lookup(typeName); ok {
		return kindtype.Ref{Val: kindtype.RefNullIdx, Index: int(k)}, nil
	}
	return kindtype.Ref{}, fmt.Errorf("unknown field type %q", typeName)
}

// Fixed type-section slots reserved by the prelude, before any
// user-defined struct type. These are stable indices every emitted
// function body can reference without consulting the Manager.
const (
	StringTypeIndex = 0
	NodeTypeIndex   = 1
	I64BoxTypeIndex = 2
	F64BoxTypeIndex = 3
	preludeCount    = 4
)
