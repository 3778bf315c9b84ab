// internal/parser/parser_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
	"warpc/internal/node"
	"warpc/internal/op"
)

func TestArithmeticPrecedence(t *testing.T) {
	got := Parse("2+3*4", "t.wr")
	want := node.NewKey(node.NewInt(2), op.Add, node.NewKey(node.NewInt(3), op.Mul, node.NewInt(4)))
	require.True(t, got.Equal(want), "got %s", node.Dump(got))
}

func TestPowerIsRightAssociative(t *testing.T) {
	got := Parse("2^3^4", "t.wr")
	want := node.NewKey(node.NewInt(2), op.Pow, node.NewKey(node.NewInt(3), op.Pow, node.NewInt(4)))
	require.True(t, got.Equal(want))
}

func TestComparisonBindsLooserThanArithmetic(t *testing.T) {
	got := Parse("a+b<c", "t.wr")
	want := node.NewKey(
		node.NewKey(node.NewSymbol("a"), op.Add, node.NewSymbol("b")),
		op.Lt,
		node.NewSymbol("c"),
	)
	require.True(t, got.Equal(want))
}

func TestTernaryParsesIntoCondAndColon(t *testing.T) {
	got := Parse("a ? b : c", "t.wr").DropMeta()
	require.Equal(t, node.Key, got.Variant)
	require.Equal(t, op.Cond, got.Op)
	thenElse := got.Right.DropMeta()
	require.Equal(t, op.Colon, thenElse.Op)
}

func TestStringConcat(t *testing.T) {
	got := Parse(`'hello ' + 'world'`, "t.wr")
	want := node.NewKey(node.NewText("hello "), op.Add, node.NewText("world"))
	require.True(t, got.Equal(want))
}

func TestFunctionDefShape(t *testing.T) {
	got := Parse("def add(a,b): a+b", "t.wr").DropMeta()
	require.Equal(t, node.Key, got.Variant)
	require.Equal(t, op.Define, got.Op)
	sig := got.Left.DropMeta()
	require.Equal(t, node.List, sig.Variant)
	require.Equal(t, node.Round, sig.Bracket)
	require.Equal(t, "add", sig.Items[0].DropMeta().Str)
}

func TestFunctionCallSugarMatchesDefShape(t *testing.T) {
	assignForm := Parse("add(a) = a+1", "t.wr").DropMeta()
	require.Equal(t, op.Assign, assignForm.Op)

	defineSugar := Parse("add(a) := a+1", "t.wr").DropMeta()
	require.Equal(t, op.Define, defineSugar.Op)
}

func TestIfThenElseVariants(t *testing.T) {
	for _, src := range []string{
		"if x then 1 else 2",
		"if x: 1 else 2",
		"if(x){1} else {2}",
	} {
		got := Parse(src, "t.wr").DropMeta()
		require.Equal(t, node.List, got.Variant, "source: %s", src)
		require.Equal(t, "if", got.Items[0].DropMeta().Str, "source: %s", src)
	}
}

func TestIfWithoutElseYieldsEmpty(t *testing.T) {
	got := Parse("if x then 1", "t.wr").DropMeta()
	require.True(t, got.Items[3].Equal(node.NewEmpty()))
}

func TestIndexingRoundTrip(t *testing.T) {
	got := Parse("pixel[2]", "t.wr").DropMeta()
	require.Equal(t, node.Key, got.Variant)
	require.Equal(t, op.Index, got.Op)
}

func TestUnterminatedBracketIsError(t *testing.T) {
	got := Parse("(1+2", "t.wr").DropMeta()
	require.Equal(t, node.Error, got.Variant)
}

func TestParserTerminatesOnGarbageInput(t *testing.T) {
	got := Parse(")))", "t.wr").DropMeta()
	require.Equal(t, node.Error, got.Variant)
}
