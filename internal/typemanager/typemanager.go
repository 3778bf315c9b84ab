// internal/typemanager/typemanager.go
package typemanager

import (
	"warpc/internal/kindtype"
	"warpc/internal/wasmcode"
)

// StructField is one field of a GC struct type: its physical value type.
// It carries no mutability flag; the types section writes every field as
// mutable.
type StructField struct {
	Type kindtype.Ref
}

// StructDef is one entry the types section will encode as a GC struct
// type.
type StructDef struct {
	Name   string
	Fields []StructField
}

// FuncType is a plain (non-GC) function type: a Signature's physical
// params/results, deduplicated across functions that share a shape.
type FuncType struct {
	Params  []kindtype.Ref
	Results []kindtype.Ref
}

// Manager builds the module's types section: the fixed prelude structs
// ($String, $Node, $i64box, $f64box) at indices 0-3, then one struct per
// registered user type in registration order, then one function type per
// distinct Function signature (spec.md §4.6).
type Manager struct {
	types        *kindtype.TypeRegistry
	structs      []StructDef
	userIndex    map[string]int
	funcTypes    []FuncType
	funcTypeKey  map[string]int
}

func New(types *kindtype.TypeRegistry) *Manager {
	m := &Manager{types: types, userIndex: map[string]int{}, funcTypeKey: map[string]int{}}
	m.structs = []StructDef{
		{Name: "$String", Fields: []StructField{
			{Type: kindtype.Ref{Val: kindtype.I32}}, // ptr
			{Type: kindtype.Ref{Val: kindtype.I32}}, // len
		}},
		{Name: "$Node", Fields: []StructField{
			{Type: kindtype.Ref{Val: kindtype.I32}},                                         // variant tag
			{Type: kindtype.Ref{Val: kindtype.I32}},                                         // numform / op / bracket / separator, packed
			{Type: kindtype.Ref{Val: kindtype.I64}},                                         // int value
			{Type: kindtype.Ref{Val: kindtype.F64}},                                         // float value
			{Type: kindtype.Ref{Val: kindtype.RefNullIdx, Index: StringTypeIndex}},          // str/symbol payload
			{Type: kindtype.Ref{Val: kindtype.RefNullIdx, Index: NodeTypeIndex}},             // left
			{Type: kindtype.Ref{Val: kindtype.RefNullIdx, Index: NodeTypeIndex}},             // right
			{Type: kindtype.Ref{Val: kindtype.AnyRef}},                                       // items (array) / payload, erased
		}},
		{Name: "$i64box", Fields: []StructField{{Type: kindtype.Ref{Val: kindtype.I64}}}},
		{Name: "$f64box", Fields: []StructField{{Type: kindtype.Ref{Val: kindtype.F64}}}},
	}
	return m
}

// Build finalizes the struct list by appending one entry per user type
// registered in m.types, in registration order, and assigns each a type
// index following the prelude. Call once, after analysis has registered
// every `type` declaration.
func (m *Manager) Build() error {
	for _, name := range m.types.Names() {
		if _, ok := m.userIndex[name]; ok {
			continue
		}
		_, fields, _ := m.types.Lookup(name)
		var sf []StructField
		for _, f := range fields {
			vt, err := FieldValType(m.types, f.TypeName)
			if err != nil {
				return err
			}
			sf = append(sf, StructField{Type: vt})
		}
		m.userIndex[name] = len(m.structs)
		m.structs = append(m.structs, StructDef{Name: name, Fields: sf})
	}
	return nil
}

// IndexOf returns the type-section index assigned to a user type name,
// after Build has run.
func (m *Manager) IndexOf(name string) (int, bool) {
	i, ok := m.userIndex[name]
	return i, ok
}

// Structs returns every struct definition, prelude first, in the order
// they must appear in the types section.
func (m *Manager) Structs() []StructDef {
	out := make([]StructDef, len(m.structs))
	copy(out, m.structs)
	return out
}

// DeclareFuncType deduplicates and registers a plain function type,
// returning its type-section index (placed after every struct type).
func (m *Manager) DeclareFuncType(ft FuncType) int {
	key := funcTypeKey(ft)
	if i, ok := m.funcTypeKey[key]; ok {
		return i
	}
	idx := len(m.structs) + len(m.funcTypes)
	m.funcTypeKey[key] = idx
	m.funcTypes = append(m.funcTypes, ft)
	return idx
}

func (m *Manager) FuncTypes() []FuncType {
	out := make([]FuncType, len(m.funcTypes))
	copy(out, m.funcTypes)
	return out
}

func funcTypeKey(ft FuncType) string {
	s := ""
	for _, p := range ft.Params {
		s += p.String() + ","
	}
	s += "->"
	for _, r := range ft.Results {
		s += r.String() + ","
	}
	return s
}

// EncodeSection renders the complete types section: every GC struct type
// (0x5E sub-type form) followed by every plain function type (0x60 form).
func (m *Manager) EncodeSection() *wasmcode.Section {
	sec := wasmcode.NewSection(wasmcode.SecType)
	sec.WriteU32(uint32(len(m.structs) + len(m.funcTypes)))
	for _, s := range m.structs {
		encodeStructType(sec, s)
	}
	for _, f := range m.funcTypes {
		encodeFuncType(sec, f)
	}
	return sec
}

const (
	gcStructForm = 0x5E
	funcForm     = 0x60
)

func encodeStructType(sec *wasmcode.Section, s StructDef) {
	sec.WriteByte(gcStructForm)
	sec.WriteU32(uint32(len(s.Fields)))
	for _, f := range s.Fields {
		encodeValType(sec, f.Type)
		sec.WriteByte(1) // mutable
	}
}

func encodeFuncType(sec *wasmcode.Section, f FuncType) {
	sec.WriteByte(funcForm)
	sec.WriteU32(uint32(len(f.Params)))
	for _, p := range f.Params {
		encodeValType(sec, p)
	}
	sec.WriteU32(uint32(len(f.Results)))
	for _, r := range f.Results {
		encodeValType(sec, r)
	}
}

// Binary value-type encodings from the WASM GC / function-references
// proposals.
const (
	vtI32     = 0x7F
	vtI64     = 0x7E
	vtF32     = 0x7D
	vtF64     = 0x7C
	vtAnyRef  = 0x6E
	vtI31Ref  = 0x6C
	vtRef     = 0x64
	vtRefNull = 0x63
)

func encodeValType(sec *wasmcode.Section, r kindtype.Ref) {
	switch r.Val {
	case kindtype.I32:
		sec.WriteByte(vtI32)
	case kindtype.I64:
		sec.WriteByte(vtI64)
	case kindtype.F32:
		sec.WriteByte(vtF32)
	case kindtype.F64:
		sec.WriteByte(vtF64)
	case kindtype.AnyRef:
		sec.WriteByte(vtAnyRef)
	case kindtype.I31Ref:
		sec.WriteByte(vtI31Ref)
	case kindtype.RefIdx:
		sec.WriteByte(vtRef)
		sec.WriteU32(uint32(r.Index))
	case kindtype.RefNullIdx:
		sec.WriteByte(vtRefNull)
		sec.WriteU32(uint32(r.Index))
	}
}
