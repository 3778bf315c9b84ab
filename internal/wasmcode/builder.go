// internal/wasmcode/builder.go
package wasmcode

import "math"

// Builder accumulates a function body's raw instruction bytes, mirroring
// the write-append-grow shape of the teacher's bytecode.Chunk (see
// internal/bytecode/chunk.go) but emitting real WASM opcodes instead of
// a private stack-machine ISA.
type Builder struct {
	Code []byte
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Op(o Op) *Builder {
	b.Code = append(b.Code, byte(o))
	return b
}

func (b *Builder) GC(sub byte) *Builder {
	b.Code = append(b.Code, byte(OpGCPrefix))
	b.Code = PutUleb128(b.Code, uint64(sub))
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	b.Code = PutUleb128(b.Code, uint64(v))
	return b
}

func (b *Builder) S64(v int64) *Builder {
	b.Code = PutSleb128(b.Code, v)
	return b
}

// Byte appends a single raw byte — used for blocktype immediates
// (if/block/loop) that aren't themselves LEB128 values.
func (b *Builder) Byte(v byte) *Builder {
	b.Code = append(b.Code, v)
	return b
}

func (b *Builder) F64(v float64) *Builder {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		b.Code = append(b.Code, byte(bits>>(8*uint(i))))
	}
	return b
}

// MemArg appends a memory instruction's (align, offset) immediate pair,
// used after an i32.load/i32.store opcode.
func (b *Builder) MemArg(align, offset uint32) *Builder {
	b.U32(align)
	b.U32(offset)
	return b
}

func (b *Builder) Bytes() []byte { return b.Code }

// Len reports the current instruction-stream length in bytes.
func (b *Builder) Len() int { return len(b.Code) }

// Section accumulates one WASM module section: id byte, LEB128 size
// prefix computed from the buffered payload, then the payload itself.
type Section struct {
	ID      byte
	Payload []byte
}

func NewSection(id byte) *Section { return &Section{ID: id} }

func (s *Section) Write(p []byte) *Section {
	s.Payload = append(s.Payload, p...)
	return s
}

func (s *Section) WriteU32(v uint32) *Section {
	s.Payload = PutUleb128(s.Payload, uint64(v))
	return s
}

func (s *Section) WriteByte(b byte) *Section {
	s.Payload = append(s.Payload, b)
	return s
}

// Encode renders the section with its id and length prefix, ready to be
// appended to the module buffer.
func (s *Section) Encode() []byte {
	out := []byte{s.ID}
	out = PutUleb128(out, uint64(len(s.Payload)))
	out = append(out, s.Payload...)
	return out
}

// Module section ids, per the WASM binary format.
const (
	SecType     = 1
	SecImport   = 2
	SecFunction = 3
	SecTable    = 4
	SecMemory   = 5
	SecGlobal   = 6
	SecExport   = 7
	SecStart    = 8
	SecElement  = 9
	SecCode     = 10
	SecData     = 11
)

// Magic and Version are the fixed 8-byte module header.
var Magic = [4]byte{0x00, 0x61, 0x73, 0x6D}
var Version = [4]byte{0x01, 0x00, 0x00, 0x00}
