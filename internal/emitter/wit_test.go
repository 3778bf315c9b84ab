package emitter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/op"
	"warpc/internal/registry"
)

func TestWitEmitterSkipsUnexportedFunctions(t *testing.T) {
	ctx := registry.NewContext(16)
	fn := registry.NewFunction("helper", registry.Signature{})
	ctx.Functions.RegisterCode(fn)

	w := NewWitEmitter()
	w.EmitInterface("warpc", "ast", ctx)
	require.NotContains(t, w.GetOutput(), "helper")
}

func TestWitEmitterRendersExportedSignature(t *testing.T) {
	ctx := registry.NewContext(16)
	fn := registry.NewFunction("add_one", registry.Signature{
		Params:  []registry.Param{{Name: "x", Type: kindtype.Ref{Val: kindtype.I64}}},
		Results: []kindtype.Ref{{Val: kindtype.I64}},
	})
	fn.ExportName = "add_one"
	ctx.Functions.RegisterCode(fn)

	w := NewWitEmitter()
	w.EmitInterface("warpc", "ast", ctx)
	out := w.GetOutput()
	require.Contains(t, out, "package warpc:ast;")
	require.Contains(t, out, "interface ast {")
	require.Contains(t, out, "add-one: func(x: s64) -> s64;")
}

func TestWitEmitterRendersMultiResultAsTuple(t *testing.T) {
	ctx := registry.NewContext(16)
	fn := registry.NewFunction("split", registry.Signature{
		Results: []kindtype.Ref{{Val: kindtype.I32}, {Val: kindtype.I32}},
	})
	fn.ExportName = "split"
	ctx.Functions.RegisterCode(fn)

	w := NewWitEmitter()
	w.EmitInterface("warpc", "ast", ctx)
	require.Contains(t, w.GetOutput(), "split: func() -> tuple<s32, s32>;")
}

func TestNodeToWitValueLeaves(t *testing.T) {
	require.Equal(t, "none", NodeToWitValue(node.NewEmpty()))
	require.Equal(t, "42", NodeToWitValue(node.NewInt(42)))
	require.Equal(t, "3.5", NodeToWitValue(node.NewFloat(3.5)))
	require.Equal(t, `"hi"`, NodeToWitValue(node.NewText("hi")))
	require.Equal(t, "sym", NodeToWitValue(node.NewSymbol("sym")))
}

func TestNodeToWitValueKeyAndList(t *testing.T) {
	key := node.NewKey(node.NewSymbol("name"), op.Assign, node.NewText("Alice"))
	require.Equal(t, `{name: "Alice"}`, NodeToWitValue(key))

	list := node.NewList([]*node.Node{node.NewInt(1), node.NewFloat(2.5), node.NewText("x")}, node.Square, node.CommaSep)
	require.Equal(t, `[1, 2.5, "x"]`, NodeToWitValue(list))
}
