// internal/node/node_test.go
package node

import (
	"testing"

	"github.com/stretchr/testify/require"
	"warpc/internal/op"
)

func TestMetaDropEquality(t *testing.T) {
	n := NewInt(42)
	wrapped := WrapMeta(n, "leading comment", 3, 1)
	require.True(t, wrapped.DropMeta().Equal(n.DropMeta()))
	require.True(t, wrapped.Equal(n))
}

func TestEmptyEqualsZeroStringAndList(t *testing.T) {
	require.True(t, NewEmpty().Equal(NewInt(0)))
	require.True(t, NewEmpty().Equal(NewText("")))
	require.True(t, NewEmpty().Equal(NewList(nil, Round, NoSeparator)))
}

func TestBoolNumericEquality(t *testing.T) {
	require.True(t, NewTrue().Equal(NewInt(1)))
	require.True(t, NewFalse().Equal(NewInt(0)))
}

func TestIntFloatPromotionEquality(t *testing.T) {
	require.True(t, NewInt(3).Equal(NewFloat(3.0)))
}

func TestKeyStructuralEquality(t *testing.T) {
	a := NewKey(NewInt(1), op.Add, NewInt(2))
	b := NewKey(NewInt(1), op.Add, NewInt(2))
	require.True(t, a.Equal(b))

	c := NewKey(NewInt(1), op.Sub, NewInt(2))
	require.False(t, a.Equal(c))
}

func TestCloneIsDeepAndIndependent(t *testing.T) {
	orig := NewList([]*Node{NewInt(1), NewInt(2)}, Square, CommaSep)
	clone := orig.Clone()
	require.True(t, orig.Equal(clone))
	clone.Items[0].IntVal = 99
	require.False(t, orig.Equal(clone))
}

func TestJSONRoundTrip(t *testing.T) {
	n := NewKey(NewSymbol("x"), op.Assign, NewInt(10))
	data, err := n.ToJSON()
	require.NoError(t, err)
	back, err := FromJSON(data)
	require.NoError(t, err)
	require.True(t, n.Equal(back))
}
