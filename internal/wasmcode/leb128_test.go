// internal/wasmcode/leb128_test.go
package wasmcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUleb128KnownValues(t *testing.T) {
	require.Equal(t, []byte{0x00}, PutUleb128(nil, 0))
	require.Equal(t, []byte{0x7f}, PutUleb128(nil, 127))
	require.Equal(t, []byte{0x80, 0x01}, PutUleb128(nil, 128))
	require.Equal(t, []byte{0xe5, 0x8e, 0x26}, PutUleb128(nil, 624485))
}

func TestSleb128KnownValues(t *testing.T) {
	require.Equal(t, []byte{0x00}, PutSleb128(nil, 0))
	require.Equal(t, []byte{0x7f}, PutSleb128(nil, -1))
	require.Equal(t, []byte{0xc0, 0xbb, 0x78}, PutSleb128(nil, -123456))
}

func TestModuleMagicBytes(t *testing.T) {
	require.Equal(t, [4]byte{0x00, 0x61, 0x73, 0x6D}, Magic)
}
