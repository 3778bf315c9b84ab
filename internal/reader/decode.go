package reader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/api"

	"warpc/internal/errors"
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/op"
)

// The on-the-wire layout __dump_node writes (internal/emitter/dump.go):
// a fixed 40-byte header per node, little-endian, followed immediately
// by the serialized left subtree (if present) and then the right
// subtree (if present) — the exact recursive, cursor-threaded order
// buildDumpNode emits in.
const (
	headerSize = 40

	offTag      = 0
	offPacked   = 4
	offIval     = 8
	offFval     = 16
	offStrPtr   = 24
	offStrLen   = 28
	offHasLeft  = 32
	offHasRight = 36
)

// noStringLen is the sentinel __dump_node writes in the length field
// when a node's str slot was null (see dumpOffStrLen's dump.go comment).
const noStringLen = 0xFFFFFFFF

// rawNode is the generic shape every serialized record decodes to
// before decodeValue interprets it according to its Kind tag — mirrors
// $Node's own uniform left/right encoding (internal/typemanager),
// so this single struct can represent a Key's operands, a TypeDef's
// name/body, or one link of a List's chain.
type rawNode struct {
	tag    kindtype.Kind
	packed int32
	ival   int64
	fval   float64
	strPtr uint32
	strLen uint32
	left   *rawNode
	right  *rawNode
}

// decodeRaw reads one header at pos and recursively decodes whichever
// of left/right it flags present, threading the cursor forward exactly
// the way buildDumpNode threads it writing — left's subtree starts
// immediately after this header, and right's subtree starts wherever
// left's decode left off.
func decodeRaw(mem api.Memory, pos uint32) (*rawNode, uint32, error) {
	header, ok := mem.Read(pos, headerSize)
	if !ok {
		return nil, 0, errors.NewReaderError(fmt.Sprintf("node header out of bounds at offset %d", pos))
	}

	r := &rawNode{
		tag:    kindtype.Kind(binary.LittleEndian.Uint32(header[offTag:])),
		packed: int32(binary.LittleEndian.Uint32(header[offPacked:])),
		ival:   int64(binary.LittleEndian.Uint64(header[offIval:])),
		fval:   math.Float64frombits(binary.LittleEndian.Uint64(header[offFval:])),
		strPtr: binary.LittleEndian.Uint32(header[offStrPtr:]),
		strLen: binary.LittleEndian.Uint32(header[offStrLen:]),
	}
	hasLeft := binary.LittleEndian.Uint32(header[offHasLeft:]) != 0
	hasRight := binary.LittleEndian.Uint32(header[offHasRight:]) != 0

	cursor := pos + headerSize
	var err error
	if hasLeft {
		r.left, cursor, err = decodeRaw(mem, cursor)
		if err != nil {
			return nil, 0, err
		}
	}
	if hasRight {
		r.right, cursor, err = decodeRaw(mem, cursor)
		if err != nil {
			return nil, 0, err
		}
	}
	return r, cursor, nil
}

// decodeNode is the public entry point: it decodes the raw record tree
// rooted at pos and converts it into the *node.Node shape the rest of
// the compiler already understands.
func decodeNode(mem api.Memory, pos uint32) (*node.Node, uint32, error) {
	raw, next, err := decodeRaw(mem, pos)
	if err != nil {
		return nil, 0, err
	}
	n, err := toNode(mem, raw)
	if err != nil {
		return nil, 0, err
	}
	return n, next, nil
}

// toNode interprets one rawNode according to its Kind tag. List is the
// only shape that doesn't map one rawNode to one *node.Node: a List's
// chain is flattened here into node.NewList's Items slice, following
// exactly the left=element/right=rest-of-chain convention
// emitListChain builds (internal/emitter/call.go).
func toNode(mem api.Memory, r *rawNode) (*node.Node, error) {
	switch r.tag {
	case kindtype.Empty:
		return node.NewEmpty(), nil
	case kindtype.Int:
		return node.NewInt(r.ival), nil
	case kindtype.Float:
		return node.NewFloat(r.fval), nil
	case kindtype.Codepoint:
		return node.NewChar(rune(r.packed)), nil
	case kindtype.Text:
		s, err := readString(mem, r)
		if err != nil {
			return nil, err
		}
		return node.NewText(s), nil
	case kindtype.Symbol:
		s, err := readString(mem, r)
		if err != nil {
			return nil, err
		}
		return node.NewSymbol(s), nil
	case kindtype.Key:
		left, err := requireChild(mem, r.left, "key left operand")
		if err != nil {
			return nil, err
		}
		right, err := requireChild(mem, r.right, "key right operand")
		if err != nil {
			return nil, err
		}
		return node.NewKey(left, op.Op(r.packed), right), nil
	case kindtype.TypeDef:
		name, err := requireChild(mem, r.left, "type name")
		if err != nil {
			return nil, err
		}
		body, err := requireChild(mem, r.right, "type body")
		if err != nil {
			return nil, err
		}
		return node.NewTypeDef(name, body), nil
	case kindtype.List:
		return toList(mem, r)
	default:
		return nil, errors.NewReaderError(fmt.Sprintf("unrecognized node tag %d", r.tag))
	}
}

func requireChild(mem api.Memory, r *rawNode, what string) (*node.Node, error) {
	if r == nil {
		return nil, errors.NewReaderError("missing " + what)
	}
	return toNode(mem, r)
}

// unpackBracketSep inverts packBracketSep (internal/emitter/call.go):
// bracket in the high byte, separator in the low byte.
func unpackBracketSep(packed int32) (node.Bracket, node.Separator) {
	return node.Bracket((packed >> 8) & 0xFF), node.Separator(packed & 0xFF)
}

// toList walks the new_list chain: each link's left is one element,
// each link's right is either the next link (also tagged List) or nil
// at the tail.
func toList(mem api.Memory, r *rawNode) (*node.Node, error) {
	bracket, sep := unpackBracketSep(r.packed)
	var items []*node.Node
	for cur := r; cur != nil; cur = cur.right {
		item, err := requireChild(mem, cur.left, "list element")
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return node.NewList(items, bracket, sep), nil
}

// readString reads the raw bytes a Text/Symbol node's $String field
// points at. A null str slot (the dump.go sentinel: strLen ==
// noStringLen) decodes to the empty string.
func readString(mem api.Memory, r *rawNode) (string, error) {
	if r.strLen == noStringLen {
		return "", nil
	}
	if r.strLen == 0 {
		return "", nil
	}
	b, ok := mem.Read(r.strPtr, r.strLen)
	if !ok {
		return "", errors.NewReaderError(fmt.Sprintf("string payload out of bounds at offset %d len %d", r.strPtr, r.strLen))
	}
	return string(b), nil
}
