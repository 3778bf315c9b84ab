// internal/registry/context.go
package registry

import (
	"warpc/internal/ffi"
	"warpc/internal/kindtype"
	"warpc/internal/stringtable"
)

// RequiredRuntime enumerates the constructor host functions every emitted
// module needs access to, regardless of whether the source program calls
// them directly — the emitter's own lowering rules reach for them when
// building list/pair/key nodes (spec.md §4.5).
type RequiredRuntime string

const (
	RequireNewEmpty     RequiredRuntime = "new_empty"
	RequireNewInt       RequiredRuntime = "new_int"
	RequireNewFloat     RequiredRuntime = "new_float"
	RequireNewText      RequiredRuntime = "new_text"
	RequireNewSymbol    RequiredRuntime = "new_symbol"
	RequireNewCodepoint RequiredRuntime = "new_codepoint"
	RequireNewKey       RequiredRuntime = "new_key"
	RequireNewList      RequiredRuntime = "new_list"
)

// GlobalSlot records a module-level global's assigned index and kind.
type GlobalSlot struct {
	Index int
	Kind  kindtype.Kind
}

// Context is the single object threaded through analysis and emission for
// one module compilation. It owns the function registry, the string
// pool, the user type registry, and every index table the emitter
// consults when it lowers a Node into WASM — mirroring the teacher's
// Compiler struct, which plays the same "one mutable context per
// compilation" role around its Chunk and locals tables.
type Context struct {
	Functions *FunctionRegistry
	Types     *kindtype.TypeRegistry
	Strings   *stringtable.Table

	usedFunctions     map[string]bool
	requiredFunctions map[RequiredRuntime]bool

	FFIImports map[string]ffi.Signature

	KindGlobalIndices map[kindtype.Kind]int
	UserTypeIndices   map[string]int
	UserGlobals       map[string]GlobalSlot
	UserFunctions     map[string]*Function
}

// NewContext builds an empty compilation context. base is the linear
// memory offset below which the string table must not allocate (the
// teacher's constant-pool base, reused here for WASI iovec staging).
func NewContext(base int32) *Context {
	ctx := &Context{
		Functions:         NewFunctionRegistry(),
		Types:             kindtype.NewTypeRegistry(),
		Strings:           stringtable.New(base),
		usedFunctions:     map[string]bool{},
		requiredFunctions: map[RequiredRuntime]bool{},
		FFIImports:        map[string]ffi.Signature{},
		KindGlobalIndices: map[kindtype.Kind]int{},
		UserTypeIndices:   map[string]int{},
		UserGlobals:       map[string]GlobalSlot{},
		UserFunctions:     map[string]*Function{},
	}
	// spec.md §3's required_functions is this literal set, not something
	// usage discovers during lowering — every module carries all eight
	// regardless of whether source code happens to reach them, so the
	// reader and direct constructor tests can always call them.
	for _, r := range []RequiredRuntime{
		RequireNewEmpty, RequireNewInt, RequireNewFloat, RequireNewText,
		RequireNewSymbol, RequireNewCodepoint, RequireNewKey, RequireNewList,
	} {
		ctx.requiredFunctions[r] = true
	}
	return ctx
}

// MarkUsed records that name was called somewhere in the program, so the
// emitter's dead-import trimming (spec.md §4.8) can tell actually-called
// FFI/host imports from merely-declared ones.
func (c *Context) MarkUsed(name string) { c.usedFunctions[name] = true }

func (c *Context) IsUsed(name string) bool { return c.usedFunctions[name] }

// Require marks a constructor host function as needed by the emitted
// module even though no source-level call names it.
func (c *Context) Require(fn RequiredRuntime) { c.requiredFunctions[fn] = true }

func (c *Context) IsRequired(fn RequiredRuntime) bool { return c.requiredFunctions[fn] }

// RequiredList returns every required runtime constructor in a stable
// order, used when the emitter decides which constructor imports/
// functions to materialize.
func (c *Context) RequiredList() []RequiredRuntime {
	order := []RequiredRuntime{
		RequireNewEmpty, RequireNewInt, RequireNewFloat, RequireNewText,
		RequireNewSymbol, RequireNewCodepoint, RequireNewKey, RequireNewList,
	}
	var out []RequiredRuntime
	for _, r := range order {
		if c.requiredFunctions[r] {
			out = append(out, r)
		}
	}
	return out
}

// DeclareFFIImport records an FFI signature keyed by its call name,
// idempotently — repeated `import` declarations of the same symbol collapse
// to a single import.
func (c *Context) DeclareFFIImport(sig ffi.Signature) {
	if _, ok := c.FFIImports[sig.Name]; ok {
		return
	}
	c.FFIImports[sig.Name] = sig
}

// AssignKindGlobal records the global-index chosen for a builtin Kind's
// type-tag constant (spec.md §4.6), idempotently.
func (c *Context) AssignKindGlobal(k kindtype.Kind, index int) {
	if _, ok := c.KindGlobalIndices[k]; ok {
		return
	}
	c.KindGlobalIndices[k] = index
}

// AssignUserType records the types-section index chosen for a
// user-defined struct type, idempotently.
func (c *Context) AssignUserType(name string, index int) {
	if _, ok := c.UserTypeIndices[name]; ok {
		return
	}
	c.UserTypeIndices[name] = index
}

// DeclareUserGlobal records a module-level global binding's slot.
func (c *Context) DeclareUserGlobal(name string, slot GlobalSlot) {
	c.UserGlobals[name] = slot
}

// DeclareUserFunction registers a source-level function definition under
// its call name, so call sites can resolve it irrespective of emission
// order (forward references, spec.md §5).
func (c *Context) DeclareUserFunction(name string, fn *Function) {
	c.UserFunctions[name] = fn
}
