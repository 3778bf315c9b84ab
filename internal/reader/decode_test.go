package reader

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/op"
	"warpc/internal/wasmcode"
)

// buildMemoryModule assembles the smallest possible module that exports
// its linear memory pre-populated with data — enough to exercise
// decodeNode against a real wazero-backed api.Memory without needing
// the GC struct types the rest of the toolchain emits.
func buildMemoryModule(data []byte) []byte {
	mem := wasmcode.NewSection(wasmcode.SecMemory)
	mem.WriteU32(1)
	mem.WriteByte(0x00)
	mem.WriteU32(1)

	exp := wasmcode.NewSection(wasmcode.SecExport)
	exp.WriteU32(1)
	name := "memory"
	exp.WriteU32(uint32(len(name)))
	exp.Write([]byte(name))
	exp.WriteByte(0x02)
	exp.WriteU32(0)

	dat := wasmcode.NewSection(wasmcode.SecData)
	dat.WriteU32(1)
	dat.WriteU32(0)
	dat.WriteByte(byte(wasmcode.OpI32Const))
	dat.Write(wasmcode.PutSleb128(nil, 0))
	dat.WriteByte(byte(wasmcode.OpEnd))
	dat.WriteU32(uint32(len(data)))
	dat.Write(data)

	out := append([]byte{}, wasmcode.Magic[:]...)
	out = append(out, wasmcode.Version[:]...)
	out = append(out, mem.Encode()...)
	out = append(out, exp.Encode()...)
	out = append(out, dat.Encode()...)
	return out
}

// record is a test-only builder for one 40-byte __dump_node header, so
// each test can describe a tree as nested Go values instead of raw
// byte offsets.
type record struct {
	tag               kindtype.Kind
	packed            int32
	ival              int64
	fval              float64
	strPtr, strLen    uint32
	left, right       *record
}

// layout flattens a record tree into the dump.go byte format, returning
// the encoded bytes and the offset the root record was written at
// (always 0 here).
func layout(r *record) []byte {
	var buf []byte
	var walk func(r *record)
	walk = func(r *record) {
		hdr := make([]byte, headerSize)
		binary.LittleEndian.PutUint32(hdr[offTag:], uint32(r.tag))
		binary.LittleEndian.PutUint32(hdr[offPacked:], uint32(r.packed))
		binary.LittleEndian.PutUint64(hdr[offIval:], uint64(r.ival))
		binary.LittleEndian.PutUint64(hdr[offFval:], math.Float64bits(r.fval))
		binary.LittleEndian.PutUint32(hdr[offStrPtr:], r.strPtr)
		binary.LittleEndian.PutUint32(hdr[offStrLen:], r.strLen)
		hasLeft, hasRight := uint32(0), uint32(0)
		if r.left != nil {
			hasLeft = 1
		}
		if r.right != nil {
			hasRight = 1
		}
		binary.LittleEndian.PutUint32(hdr[offHasLeft:], hasLeft)
		binary.LittleEndian.PutUint32(hdr[offHasRight:], hasRight)
		buf = append(buf, hdr...)
		if r.left != nil {
			walk(r.left)
		}
		if r.right != nil {
			walk(r.right)
		}
	}
	walk(r)
	return buf
}

// withMemory instantiates a memory-only module preloaded with data and
// hands the test fn the resulting api.Memory.
func withMemory(t *testing.T, data []byte, fn func(mem api.Memory)) {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, buildMemoryModule(data))
	require.NoError(t, err)
	defer compiled.Close(ctx)

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	require.NoError(t, err)
	defer mod.Close(ctx)

	fn(mod.Memory())
}

func TestDecodeLeafKinds(t *testing.T) {
	withMemory(t, layout(&record{tag: kindtype.Empty}), func(mem api.Memory) {
		n, _, err := decodeNode(mem, 0)
		require.NoError(t, err)
		require.Equal(t, node.Empty, n.Variant)
	})

	withMemory(t, layout(&record{tag: kindtype.Int, ival: 42}), func(mem api.Memory) {
		n, _, err := decodeNode(mem, 0)
		require.NoError(t, err)
		require.Equal(t, node.Number, n.Variant)
		require.Equal(t, node.IntForm, n.NumForm)
		require.Equal(t, int64(42), n.IntVal)
	})

	withMemory(t, layout(&record{tag: kindtype.Float, fval: 3.5}), func(mem api.Memory) {
		n, _, err := decodeNode(mem, 0)
		require.NoError(t, err)
		require.Equal(t, node.FloatForm, n.NumForm)
		require.Equal(t, 3.5, n.FloatVal)
	})

	withMemory(t, layout(&record{tag: kindtype.Codepoint, packed: 'Q'}), func(mem api.Memory) {
		n, _, err := decodeNode(mem, 0)
		require.NoError(t, err)
		require.Equal(t, node.Char, n.Variant)
		require.Equal(t, rune('Q'), n.Rune)
	})
}

func TestDecodeTextReadsStringPayload(t *testing.T) {
	data := layout(&record{tag: kindtype.Text, strPtr: headerSize, strLen: 5})
	data = append(data, []byte("hello")...)
	withMemory(t, data, func(mem api.Memory) {
		n, _, err := decodeNode(mem, 0)
		require.NoError(t, err)
		require.Equal(t, node.Text, n.Variant)
		require.Equal(t, "hello", n.Str)
	})
}

func TestDecodeTextNullSentinelIsEmptyString(t *testing.T) {
	withMemory(t, layout(&record{tag: kindtype.Symbol, strPtr: 0, strLen: noStringLen}), func(mem api.Memory) {
		n, _, err := decodeNode(mem, 0)
		require.NoError(t, err)
		require.Equal(t, node.Symbol, n.Variant)
		require.Equal(t, "", n.Str)
	})
}

func TestDecodeKeyRecoversOperands(t *testing.T) {
	tree := &record{
		tag:    kindtype.Key,
		packed: int32(op.Add),
		left:   &record{tag: kindtype.Int, ival: 1},
		right:  &record{tag: kindtype.Int, ival: 2},
	}
	withMemory(t, layout(tree), func(mem api.Memory) {
		n, _, err := decodeNode(mem, 0)
		require.NoError(t, err)
		require.Equal(t, node.Key, n.Variant)
		require.Equal(t, op.Add, n.Op)
		require.Equal(t, int64(1), n.Left.IntVal)
		require.Equal(t, int64(2), n.Right.IntVal)
	})
}

func TestDecodeListFlattensChain(t *testing.T) {
	// [1, 2, 3] as the tail-first chain emitListChain builds: the
	// outermost record's left is 1, its right is the link for [2, 3].
	tree := &record{
		tag:    kindtype.List,
		packed: int32(int64(node.Round)<<8 | int64(node.CommaSep)),
		left:   &record{tag: kindtype.Int, ival: 1},
		right: &record{
			tag:    kindtype.List,
			packed: int32(int64(node.Round)<<8 | int64(node.CommaSep)),
			left:   &record{tag: kindtype.Int, ival: 2},
			right: &record{
				tag:    kindtype.List,
				packed: int32(int64(node.Round)<<8 | int64(node.CommaSep)),
				left:   &record{tag: kindtype.Int, ival: 3},
			},
		},
	}
	withMemory(t, layout(tree), func(mem api.Memory) {
		n, _, err := decodeNode(mem, 0)
		require.NoError(t, err)
		require.Equal(t, node.List, n.Variant)
		require.Equal(t, node.Round, n.Bracket)
		require.Equal(t, node.CommaSep, n.Separator)
		require.Len(t, n.Items, 3)
		require.Equal(t, int64(1), n.Items[0].IntVal)
		require.Equal(t, int64(2), n.Items[1].IntVal)
		require.Equal(t, int64(3), n.Items[2].IntVal)
	})
}

func TestDecodeUnknownTagErrors(t *testing.T) {
	withMemory(t, layout(&record{tag: kindtype.Kind(200)}), func(mem api.Memory) {
		_, _, err := decodeNode(mem, 0)
		require.Error(t, err)
	})
}
