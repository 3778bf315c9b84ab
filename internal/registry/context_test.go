// internal/registry/context_test.go
package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"warpc/internal/ffi"
	"warpc/internal/kindtype"
)

func TestContextRequiredRuntimeIsOrderedAndDeduped(t *testing.T) {
	ctx := NewContext(16)
	ctx.Require(RequireNewList)
	ctx.Require(RequireNewInt)
	ctx.Require(RequireNewInt)
	require.Equal(t, []RequiredRuntime{
		RequireNewEmpty, RequireNewInt, RequireNewFloat, RequireNewText,
		RequireNewSymbol, RequireNewCodepoint, RequireNewKey, RequireNewList,
	}, ctx.RequiredList())
}

func TestContextMarkUsedTracksCallNames(t *testing.T) {
	ctx := NewContext(16)
	require.False(t, ctx.IsUsed("sqrt"))
	ctx.MarkUsed("sqrt")
	require.True(t, ctx.IsUsed("sqrt"))
}

func TestContextDeclareFFIImportIsIdempotent(t *testing.T) {
	ctx := NewContext(16)
	sig := ffi.Signature{Library: "libm", Name: "sqrt"}
	ctx.DeclareFFIImport(sig)
	ctx.DeclareFFIImport(ffi.Signature{Library: "other", Name: "sqrt"})
	require.Equal(t, "libm", ctx.FFIImports["sqrt"].Library)
}

func TestContextAssignKindGlobalIsIdempotent(t *testing.T) {
	ctx := NewContext(16)
	ctx.AssignKindGlobal(kindtype.Int, 3)
	ctx.AssignKindGlobal(kindtype.Int, 99)
	require.Equal(t, 3, ctx.KindGlobalIndices[kindtype.Int])
}

func TestContextUserFunctionRoundTrip(t *testing.T) {
	ctx := NewContext(16)
	fn := NewFunction("fib", Signature{})
	ctx.DeclareUserFunction("fib", fn)
	require.Same(t, fn, ctx.UserFunctions["fib"])
}
