// internal/ffi/ffi_test.go
package ffi

import (
	"testing"

	"github.com/stretchr/testify/require"
	"warpc/internal/kindtype"
)

func TestParseHeaderBasicDecl(t *testing.T) {
	sigs, err := ParseHeader("math", "double sqrt(double x);\n")
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	require.Equal(t, "sqrt", sigs[0].Name)
	require.Equal(t, []kindtype.Ref{{Val: kindtype.F64}}, sigs[0].Params)
	require.Equal(t, []kindtype.Ref{{Val: kindtype.F64}}, sigs[0].Results)
}

func TestParseHeaderVoidReturnHasNoResults(t *testing.T) {
	sigs, err := ParseHeader("libc", "void free(void *ptr);\n")
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	require.Nil(t, sigs[0].Results)
}

func TestParseHeaderStringParams(t *testing.T) {
	sigs, err := ParseHeader("libc", "int strcmp(const char *a, const char *b);\n")
	require.NoError(t, err)
	require.Len(t, sigs[0].Params, 2)
}

func TestParseHeaderRejectsUnsupportedType(t *testing.T) {
	_, err := ParseHeader("bad", "short weird(int x);\n")
	require.Error(t, err)
}

func TestLookupFindsLibmAndLibc(t *testing.T) {
	_, ok := Lookup("sin")
	require.True(t, ok)
	_, ok = Lookup("strlen")
	require.True(t, ok)
	_, ok = Lookup("not_a_real_function")
	require.False(t, ok)
}
