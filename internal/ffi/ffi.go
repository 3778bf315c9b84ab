// internal/ffi/ffi.go
package ffi

import "warpc/internal/kindtype"

// Signature is what the emitter needs to generate an import and a call
// site for one foreign function (spec.md §4.11).
type Signature struct {
	Library string
	Name    string
	Params  []kindtype.Ref
	Results []kindtype.Ref
}

// CType is the restricted set of C types the header parser understands.
type CType int

const (
	CVoid CType = iota
	CInt
	CLong
	CFloat
	CDouble
	CSizeT
	CCharPtr
	CConstCharPtr
	CIntPtr
)

// ValType maps a CType to the WASM physical type it marshals as.
func (c CType) ValType() kindtype.Ref {
	switch c {
	case CInt, CSizeT:
		return kindtype.Ref{Val: kindtype.I32}
	case CLong:
		return kindtype.Ref{Val: kindtype.I64}
	case CFloat:
		return kindtype.Ref{Val: kindtype.F32}
	case CDouble:
		return kindtype.Ref{Val: kindtype.F64}
	case CCharPtr, CConstCharPtr, CIntPtr:
		return kindtype.Ref{Val: kindtype.I32}
	default:
		return kindtype.Ref{Val: kindtype.Void}
	}
}

// IsString reports whether values of this CType should be marshalled as
// string arguments (ptr/len pair or a null-terminated pointer) rather
// than as plain scalars.
func (c CType) IsString() bool {
	return c == CCharPtr || c == CConstCharPtr
}
