// internal/registry/function.go
package registry

import (
	"warpc/internal/kindtype"
	"warpc/internal/node"
)

// ABI names the calling convention a Function targets; only Native
// (ordinary WASM params/results) is used by code the emitter produces
// itself, but an FFI import carries its own ABI hint from the C header.
type ABI int

const (
	NativeABI ABI = iota
	CABI
)

// Param is one named, typed parameter of a Signature.
type Param struct {
	Name string
	Type kindtype.Ref
}

// Signature is a Function's calling shape: ordered named parameters plus
// possibly multiple result types (multi-value return).
type Signature struct {
	Params  []Param
	Results []kindtype.Ref
	ABI     ABI
}

// Function is the metadata record kept for every WASM function the
// module will contain, whether it is an import, a constructor, a
// user-defined function, or an FFI call target.
type Function struct {
	Name       string
	ExportName string // empty if not exported
	MangledName string
	Signature  Signature
	Body       *node.Node // nil for imports/builtins with no source body

	TypeIndex int
	CodeIndex int
	CallIndex int

	IsImport     bool
	IsHost       bool
	IsBuiltin    bool
	IsRuntime    bool
	IsFFI        bool
	IsPolymorphic bool
	IsHandled    bool
	IsUsed       bool

	FFILibrary string
	Variants   []*Function

	Locals   map[string]*Local
	localOrd []string

	// CodeBytes holds the function body's raw instruction stream once the
	// emitter has lowered it (see internal/emitter), ready to be wrapped
	// with a locals-declaration vector and a size prefix for the code
	// section.
	CodeBytes []byte
}

func NewFunction(name string, sig Signature) *Function {
	return &Function{Name: name, Signature: sig, Locals: map[string]*Local{}}
}

// DeclareLocal reserves the next local slot for name, or returns the
// existing slot if name was already declared in this function.
func (f *Function) DeclareLocal(name string, k kindtype.Kind, isParam bool) *Local {
	if l, ok := f.Locals[name]; ok {
		return l
	}
	l := &Local{Position: len(f.localOrd), Kind: k, IsParam: isParam}
	f.Locals[name] = l
	f.localOrd = append(f.localOrd, name)
	return l
}

func (f *Function) Local(name string) (*Local, bool) {
	l, ok := f.Locals[name]
	return l, ok
}

// LocalNames returns declared locals in slot order — the order the code
// section's local-declarations vector must list them in.
func (f *Function) LocalNames() []string {
	out := make([]string, len(f.localOrd))
	copy(out, f.localOrd)
	return out
}
