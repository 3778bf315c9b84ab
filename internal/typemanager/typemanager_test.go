// internal/typemanager/typemanager_test.go
package typemanager

import (
	"testing"

	"github.com/stretchr/testify/require"
	"warpc/internal/kindtype"
)

func TestPreludeStructsAreFixedAndOrdered(t *testing.T) {
	m := New(kindtype.NewTypeRegistry())
	require.NoError(t, m.Build())
	structs := m.Structs()
	require.Equal(t, "$String", structs[StringTypeIndex].Name)
	require.Equal(t, "$Node", structs[NodeTypeIndex].Name)
	require.Equal(t, "$i64box", structs[I64BoxTypeIndex].Name)
	require.Equal(t, "$f64box", structs[F64BoxTypeIndex].Name)
}

func TestUserTypeGetsIndexAfterPrelude(t *testing.T) {
	types := kindtype.NewTypeRegistry()
	types.Register("point", []kindtype.FieldDef{{Name: "x", TypeName: "int"}, {Name: "y", TypeName: "int"}})
	m := New(types)
	require.NoError(t, m.Build())
	idx, ok := m.IndexOf("point")
	require.True(t, ok)
	require.Equal(t, 4, idx)
	require.Len(t, m.Structs()[idx].Fields, 2)
}

func TestUnknownFieldTypeFailsBuild(t *testing.T) {
	types := kindtype.NewTypeRegistry()
	types.Register("bad", []kindtype.FieldDef{{Name: "x", TypeName: "nonsense"}})
	m := New(types)
	require.Error(t, m.Build())
}

func TestDeclareFuncTypeDeduplicates(t *testing.T) {
	m := New(kindtype.NewTypeRegistry())
	ft := FuncType{Params: []kindtype.Ref{{Val: kindtype.I64}}, Results: []kindtype.Ref{{Val: kindtype.I64}}}
	i1 := m.DeclareFuncType(ft)
	i2 := m.DeclareFuncType(ft)
	require.Equal(t, i1, i2)
}

func TestEncodeSectionProducesNonEmptyPayload(t *testing.T) {
	m := New(kindtype.NewTypeRegistry())
	require.NoError(t, m.Build())
	m.DeclareFuncType(FuncType{Results: []kindtype.Ref{{Val: kindtype.I64}}})
	sec := m.EncodeSection()
	require.NotEmpty(t, sec.Encode())
}
