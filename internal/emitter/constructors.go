// internal/emitter/constructors.go
package emitter

import (
	"warpc/internal/kindtype"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
	"warpc/internal/wasmcode"
)

// constructorSpec names one of the fixed new_* builders from spec.md
// §4.6 and how to build it.
type constructorSpec struct {
	name   string
	params []kindtype.Ref
	build  func(e *Emitter)
}

var constructorTable = []constructorSpec{
	{name: "new_empty", build: (*Emitter).buildNewEmpty},
	{name: "new_int", params: []kindtype.Ref{{Val: kindtype.I64}}, build: (*Emitter).buildNewInt},
	{name: "new_float", params: []kindtype.Ref{{Val: kindtype.F64}}, build: (*Emitter).buildNewFloat},
	{name: "new_codepoint", params: []kindtype.Ref{{Val: kindtype.I32}}, build: (*Emitter).buildNewCodepoint},
	{name: "new_text", params: []kindtype.Ref{{Val: kindtype.I32}, {Val: kindtype.I32}}, build: (*Emitter).buildNewText},
	{name: "new_symbol", params: []kindtype.Ref{{Val: kindtype.I32}, {Val: kindtype.I32}}, build: (*Emitter).buildNewSymbol},
	{name: "new_key", params: []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.AnyRef}, {Val: kindtype.I64}}, build: (*Emitter).buildNewKey},
	{name: "new_type", params: []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.AnyRef}}, build: (*Emitter).buildNewType},
	{name: "new_list", params: []kindtype.Ref{{Val: kindtype.AnyRef}, {Val: kindtype.AnyRef}, {Val: kindtype.I64}}, build: (*Emitter).buildNewList},
}

// requiredName maps the runtime-requirement flags a lowering rule sets
// onto the constructor it unlocks.
var requiredName = map[registry.RequiredRuntime]string{
	registry.RequireNewEmpty:     "new_empty",
	registry.RequireNewInt:       "new_int",
	registry.RequireNewFloat:     "new_float",
	registry.RequireNewText:      "new_text",
	registry.RequireNewSymbol:    "new_symbol",
	registry.RequireNewCodepoint: "new_codepoint",
	registry.RequireNewKey:       "new_key",
	registry.RequireNewList:      "new_list",
}

// declareConstructors emits every constructor that is marked required on
// the Context (registry.NewContext marks all eight), or unconditionally
// when tree-shaking is disabled (cfg.EmitAllFunctions), per spec.md §4.6.
func (e *Emitter) declareConstructors() {
	for _, spec := range constructorTable {
		if !e.cfg.EmitAllFunctions && !e.isConstructorNeeded(spec.name) {
			continue
		}
		fn := registry.NewFunction(spec.name, registry.Signature{
			Results: []kindtype.Ref{{Val: kindtype.RefNullIdx, Index: typemanager.NodeTypeIndex}},
		})
		for i, p := range spec.params {
			fn.Signature.Params = append(fn.Signature.Params, registry.Param{Name: paramName(i), Type: p})
			fn.DeclareLocal(paramName(i), kindtype.Empty, true)
		}
		fn.IsRuntime = true
		fn.ExportName = spec.name
		prevFn, prevCode := e.fn, e.code
		e.fn, e.code = fn, wasmcode.NewBuilder()
		spec.build(e)
		e.code.Op(wasmcode.OpEnd)
		fn.CodeBytes = e.code.Bytes()
		var params []kindtype.Ref
		for _, p := range fn.Signature.Params {
			params = append(params, p.Type)
		}
		fn.TypeIndex = e.types.DeclareFuncType(typemanager.FuncType{Params: params, Results: fn.Signature.Results})
		e.ctx.Functions.RegisterCode(fn)
		e.fn, e.code = prevFn, prevCode
		e.ctx.DeclareUserFunction(spec.name, fn)
	}
}

func (e *Emitter) isConstructorNeeded(name string) bool {
	for req, n := range requiredName {
		if n == name && e.ctx.IsRequired(req) {
			return true
		}
	}
	return false
}

func paramName(i int) string {
	names := []string{"a", "b", "c"}
	if i < len(names) {
		return names[i]
	}
	return "x"
}

// structNewNode emits struct.new $Node over 8 fields already pushed in
// declaration order: tag, packed, ival, fval, str, left, right, payload.
func (e *Emitter) structNewNode() {
	e.code.GC(wasmcode.GCStructNew).U32(uint32(typemanager.NodeTypeIndex))
}

func (e *Emitter) pushKindTag(k kindtype.Kind) {
	e.code.Op(wasmcode.OpI32Const).U32(uint32(k))
}

func (e *Emitter) pushZeroI32() { e.code.Op(wasmcode.OpI32Const).U32(0) }
func (e *Emitter) pushZeroI64() { e.code.Op(wasmcode.OpI64Const).S64(0) }
func (e *Emitter) pushZeroF64() { e.code.F64(0) }
func (e *Emitter) pushNullRef()  { e.code.Op(wasmcode.OpRefNull).U32(uint32(typemanager.NodeTypeIndex)) }

func (e *Emitter) buildNewEmpty() {
	e.pushKindTag(kindtype.Empty)
	e.pushZeroI32()
	e.pushZeroI64()
	e.code.Op(wasmcode.OpF64Const).F64(0)
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.structNewNode()
}

func (e *Emitter) buildNewInt() {
	e.pushKindTag(kindtype.Int)
	e.pushZeroI32()
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpF64Const).F64(0)
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.structNewNode()
}

func (e *Emitter) buildNewFloat() {
	e.pushKindTag(kindtype.Float)
	e.pushZeroI32()
	e.pushZeroI64()
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.structNewNode()
}

func (e *Emitter) buildNewCodepoint() {
	e.pushKindTag(kindtype.Codepoint)
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.pushZeroI64()
	e.code.Op(wasmcode.OpF64Const).F64(0)
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.structNewNode()
}

// buildNewText and buildNewSymbol both box (ptr, len) into a $String and
// store it in the str field; they differ only in the tag.
func (e *Emitter) buildNewText() { e.buildStringLike(kindtype.Text) }

func (e *Emitter) buildNewSymbol() { e.buildStringLike(kindtype.Symbol) }

func (e *Emitter) buildStringLike(k kindtype.Kind) {
	e.pushKindTag(k)
	e.pushZeroI32()
	e.pushZeroI64()
	e.code.Op(wasmcode.OpF64Const).F64(0)
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.code.GC(wasmcode.GCStructNew).U32(uint32(typemanager.StringTypeIndex))
	e.pushNullRef()
	e.pushNullRef()
	e.pushNullRef()
	e.structNewNode()
}

func (e *Emitter) buildNewKey() {
	e.pushKindTag(kindtype.Key)
	e.code.Op(wasmcode.OpLocalGet).U32(2) // op_info, caller packs it as an i64 so plain Symbol calls need no i32 overload
	e.code.Op(wasmcode.OpI32WrapI64)
	e.pushZeroI64()
	e.code.Op(wasmcode.OpF64Const).F64(0)
	e.pushNullRef()
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.pushNullRef()
	e.structNewNode()
}

func (e *Emitter) buildNewType() {
	e.pushKindTag(kindtype.TypeDef)
	e.pushZeroI32()
	e.pushZeroI64()
	e.code.Op(wasmcode.OpF64Const).F64(0)
	e.pushNullRef()
	e.code.Op(wasmcode.OpLocalGet).U32(0)
	e.code.Op(wasmcode.OpLocalGet).U32(1)
	e.pushNullRef()
	e.structNewNode()
}

func (e *Emitter) buildNewList() {
	e.pushKindTag(kindtype.List)
	e.code.Op(wasmcode.OpLocalGet).U32(2) // bracket_info, see packBracketSep
	e.code.Op(wasmcode.OpI32WrapI64)
	e.pushZeroI64()
	e.code.Op(wasmcode.OpF64Const).F64(0)
	e.pushNullRef()
	e.code.Op(wasmcode.OpLocalGet).U32(0) // first element wrapper
	e.code.Op(wasmcode.OpLocalGet).U32(1) // rest chain head
	e.pushNullRef()
	e.structNewNode()
}

// ensureRequired marks fn as needed and records the dependency so
// declareConstructors emits it even when the program's own source never
// names it (spec.md §3's required_functions).
func (e *Emitter) ensureRequired(fn registry.RequiredRuntime) {
	e.ctx.Require(fn)
}
