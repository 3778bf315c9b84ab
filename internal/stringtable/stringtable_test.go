// internal/stringtable/stringtable_test.go
package stringtable

import (
	"testing"

	"github.com/stretchr/testify/require"
	"warpc/internal/node"
	"warpc/internal/op"
)

func TestInternDeduplicates(t *testing.T) {
	tbl := New(16)
	off1, len1 := tbl.Intern("hello")
	off2, len2 := tbl.Intern("hello")
	require.Equal(t, off1, off2)
	require.Equal(t, len1, len2)
	require.Len(t, tbl.Entries(), 1)
}

func TestInternDistinctStringsGetDistinctOffsets(t *testing.T) {
	tbl := New(16)
	offA, _ := tbl.Intern("aa")
	offB, _ := tbl.Intern("bbb")
	require.NotEqual(t, offA, offB)
	require.Equal(t, int32(2), offB-offA)
}

func TestCollectFindsLiteralBindings(t *testing.T) {
	tree := node.NewKey(node.NewSymbol("greeting"), op.Define, node.NewText("hi"))
	_, bindings := Collect(tree)
	require.Len(t, bindings, 1)
	require.Equal(t, "greeting", bindings[0].Symbol)
	require.Equal(t, "hi", bindings[0].Literal)
}
