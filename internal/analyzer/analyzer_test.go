// internal/analyzer/analyzer_test.go
package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/op"
	"warpc/internal/parser"
	"warpc/internal/registry"
)

func parse(t *testing.T, src string) *node.Node {
	t.Helper()
	n := parser.Parse(src, "test.wp")
	require.NotEqual(t, node.Error, n.DropMeta().Variant, "parse error: %s", node.Dump(n))
	return n
}

func TestInferArithmeticPromotesToFloat(t *testing.T) {
	root := parse(t, "1 + 2.5")
	ctx := registry.NewContext(16)
	res := Analyze(ctx, root)
	require.Equal(t, kindtype.Float, res.Annotations.Get(res.Root))
}

func TestInferIntegerArithmeticStaysInt(t *testing.T) {
	root := parse(t, "2 + 3 * 4")
	ctx := registry.NewContext(16)
	res := Analyze(ctx, root)
	require.Equal(t, kindtype.Int, res.Annotations.Get(res.Root))
}

func TestInferDivisionIsAlwaysFloat(t *testing.T) {
	root := parse(t, "4 / 2")
	ctx := registry.NewContext(16)
	res := Analyze(ctx, root)
	require.Equal(t, kindtype.Float, res.Annotations.Get(res.Root))
}

func TestInferComparisonIsInt(t *testing.T) {
	root := parse(t, "1 < 2")
	ctx := registry.NewContext(16)
	res := Analyze(ctx, root)
	require.Equal(t, kindtype.Int, res.Annotations.Get(res.Root))
}

func TestCollectFunctionsFindsDefForm(t *testing.T) {
	root := parse(t, "def add(a, b): a + b\nadd(1, 2)")
	ctx := registry.NewContext(16)
	res := Analyze(ctx, root)
	require.Len(t, res.Functions, 1)
	require.Equal(t, "add", res.Functions[0].Name)
	require.Equal(t, []string{"a", "b"}, res.Functions[0].Params)
	_, ok := ctx.UserFunctions["add"]
	require.True(t, ok)
}

func TestCompoundAssignDesugarsToPlainAssign(t *testing.T) {
	root := parse(t, "x += 1")
	ctx := registry.NewContext(16)
	res := Analyze(ctx, root)
	top := res.Root.DropMeta()
	require.Equal(t, node.Key, top.Variant)
	require.Equal(t, op.Assign, top.Op)
	rhs := top.Right.DropMeta()
	require.Equal(t, node.Key, rhs.Variant)
	require.Equal(t, op.Add, rhs.Op)
}

func TestFreeIdentifierInfersAsSymbol(t *testing.T) {
	root := parse(t, "unbound_name")
	ctx := registry.NewContext(16)
	res := Analyze(ctx, root)
	require.Equal(t, kindtype.Symbol, res.Annotations.Get(res.Root))
}

func TestIfBranchesAgreeingKindPropagates(t *testing.T) {
	root := parse(t, "if true then 1 else 2")
	ctx := registry.NewContext(16)
	res := Analyze(ctx, root)
	require.Equal(t, kindtype.Int, res.Annotations.Get(res.Root))
}
