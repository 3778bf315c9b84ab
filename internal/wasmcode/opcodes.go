// internal/wasmcode/opcodes.go
package wasmcode

// Op is a raw WASM instruction opcode byte. Unlike internal/bytecode's
// teacher-era OpCode (which numbered a private stack-machine ISA), these
// values are fixed by the WASM spec itself — this table only names the
// subset the emitter actually uses.
type Op byte

const (
	OpUnreachable Op = 0x00
	OpNop         Op = 0x01
	OpBlock       Op = 0x02
	OpLoop        Op = 0x03
	OpIf          Op = 0x04
	OpElse        Op = 0x05
	OpEnd         Op = 0x0B
	OpBr          Op = 0x0C
	OpBrIf        Op = 0x0D
	OpReturn      Op = 0x0F
	OpCall        Op = 0x10
	OpCallRef     Op = 0x14
	OpDrop        Op = 0x1A
	OpSelect      Op = 0x1B

	OpI32Load   Op = 0x28
	OpI64Load   Op = 0x29
	OpF64Load   Op = 0x2B
	OpI32Load8U Op = 0x2D
	OpI32Store  Op = 0x36
	OpI64Store  Op = 0x37
	OpF64Store  Op = 0x39

	OpLocalGet  Op = 0x20
	OpLocalSet  Op = 0x21
	OpLocalTee  Op = 0x22
	OpGlobalGet Op = 0x23
	OpGlobalSet Op = 0x24

	OpI32Const Op = 0x41
	OpI64Const Op = 0x42
	OpF32Const Op = 0x43
	OpF64Const Op = 0x44

	OpI32Eqz  Op = 0x45
	OpI32Eq   Op = 0x46
	OpI32Ne   Op = 0x47
	OpI32LtS  Op = 0x48
	OpI32GtS  Op = 0x4A
	OpI32LeS  Op = 0x4C
	OpI32GeS  Op = 0x4E

	OpI64Eqz Op = 0x50
	OpI64Eq  Op = 0x51
	OpI64Ne  Op = 0x52
	OpI64LtS Op = 0x53
	OpI64GtS Op = 0x55
	OpI64LeS Op = 0x57
	OpI64GeS Op = 0x59

	OpF64Eq Op = 0x61
	OpF64Ne Op = 0x62
	OpF64Lt Op = 0x63
	OpF64Gt Op = 0x64
	OpF64Le Op = 0x65
	OpF64Ge Op = 0x66

	OpI32Add Op = 0x6A
	OpI32Sub Op = 0x6B
	OpI32Mul Op = 0x6C

	OpI64Add   Op = 0x7C
	OpI64Sub   Op = 0x7D
	OpI64Mul   Op = 0x7E
	OpI64DivS  Op = 0x7F
	OpI64RemS  Op = 0x81

	OpF64Ceil    Op = 0x9B
	OpF64Floor   Op = 0x9C
	OpF64Trunc   Op = 0x9D
	OpF64Nearest Op = 0x9E

	OpF64Add Op = 0xA0
	OpF64Sub Op = 0xA1
	OpF64Mul Op = 0xA2
	OpF64Div Op = 0xA3

	OpI32WrapI64      Op = 0xA7
	OpI64ExtendI32S   Op = 0xAC
	OpI64TruncF64S    Op = 0xB0
	OpF32DemoteF64    Op = 0xB6
	OpF64ConvertI64S  Op = 0xB9
	OpF64PromoteF32   Op = 0xBB

	// GC / reference-types instruction prefix 0xFB; Index selects the
	// specific GC op (struct.new, struct.get, ref.cast, ...) via a
	// trailing LEB128 immediate, per the function-references/GC proposal.
	OpGCPrefix Op = 0xFB

	OpRefNull    Op = 0xD0
	OpRefIsNull  Op = 0xD1
	OpRefFunc    Op = 0xD2
	OpRefAsNonNull Op = 0xD4
)

// Block type immediates for if/block/loop headers, reusing the core
// value-type encoding; BlockEmpty marks a block with no result.
const (
	BlockEmpty  byte = 0x40
	BlockI32    byte = 0x7F
	BlockI64    byte = 0x7E
	BlockAnyRef byte = 0x6E
)

// GC sub-opcodes, selected via the 0xFB prefix byte.
const (
	GCStructNew      = 0x00
	GCStructNewDefault = 0x01
	GCStructGet      = 0x02
	GCStructGetS     = 0x03
	GCStructGetU     = 0x04
	GCStructSet      = 0x05
	GCI31New         = 0x1C
	GCI31GetS        = 0x1D
	GCI31GetU        = 0x1E
)
