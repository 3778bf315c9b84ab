// internal/emitter/module.go
package emitter

import (
	"strings"

	"warpc/internal/kindtype"
	"warpc/internal/registry"
	"warpc/internal/wasmcode"
)

// Binary-format constant bytes the module assembly needs beyond what
// wasmcode.Op already names — import/export descriptor kinds and limits
// flags, straight from the core binary format spec.
const (
	descFunc = 0x00
	descMem  = 0x02

	limitsMinOnly = 0x00
	// Four 64KiB pages: the low region holds the WASI iovec staging area
	// and the string pool (see internal/stringtable), the upper half is
	// reserved for __dump_node's scratch writes (see dumpScratchBase in
	// dump.go) so the two never collide for realistically sized programs.
	memoryPages = 4
)

// buildModule assembles every section in the order the binary format
// requires and returns the finished module, ready for Encode.
func (e *Emitter) buildModule() *Module {
	mod := &Module{Types: e.types.EncodeSection()}
	mod.Import = e.encodeImportSection()
	mod.Function = e.encodeFunctionSection()
	mod.Memory = e.encodeMemorySection()
	mod.Global = e.encodeGlobalSection()
	mod.Export = e.encodeExportSection()
	mod.Code = e.encodeCodeSection()
	mod.Data = e.encodeDataSection()
	return mod
}

// Module holds one encoded section per WASM section kind, in emission
// order, so Encode can lay out the final byte stream without the rest of
// the emitter needing to know about header/section framing.
type Module struct {
	Types    *wasmcode.Section
	Import   *wasmcode.Section
	Function *wasmcode.Section
	Memory   *wasmcode.Section
	Global   *wasmcode.Section
	Export   *wasmcode.Section
	Code     *wasmcode.Section
	Data     *wasmcode.Section
}

func (m *Module) Encode() []byte {
	out := append([]byte{}, wasmcode.Magic[:]...)
	out = append(out, wasmcode.Version[:]...)
	for _, sec := range []*wasmcode.Section{m.Types, m.Import, m.Function, m.Memory, m.Global, m.Export, m.Code, m.Data} {
		if sec == nil {
			continue
		}
		out = append(out, sec.Encode()...)
	}
	return out
}

// encodeImportSection writes one import entry per registered import
// function, in registration (host/wasi/ffi-alphabetical) order, so its
// position matches the call_index each Function already carries.
func (e *Emitter) encodeImportSection() *wasmcode.Section {
	imports := e.ctx.Functions.Imports()
	if len(imports) == 0 {
		return nil
	}
	sec := wasmcode.NewSection(wasmcode.SecImport)
	sec.WriteU32(uint32(len(imports)))
	for _, fn := range imports {
		module, field := importModuleField(fn)
		writeName(sec, module)
		writeName(sec, field)
		sec.WriteByte(descFunc)
		sec.WriteU32(uint32(fn.TypeIndex))
	}
	return sec
}

// importModuleField derives an import's (module, field) pair from how it
// was declared: an FFI import carries its C library name directly; a
// host/WASI import's Name is "module.field" (e.g. "host.fetch",
// "wasi_snapshot_preview1.fd_write").
func importModuleField(fn *registry.Function) (module, field string) {
	if fn.IsFFI {
		return fn.FFILibrary, fn.Name
	}
	if i := strings.LastIndex(fn.Name, "."); i >= 0 {
		return fn.Name[:i], fn.Name[i+1:]
	}
	return "host", fn.Name
}

func writeName(sec *wasmcode.Section, s string) {
	sec.WriteU32(uint32(len(s)))
	sec.Write([]byte(s))
}

// encodeFunctionSection writes one type-index entry per code (non-import)
// function, in registration order — the order their bodies appear in the
// code section.
func (e *Emitter) encodeFunctionSection() *wasmcode.Section {
	fns := e.ctx.Functions.CodeFunctions()
	if len(fns) == 0 {
		return nil
	}
	sec := wasmcode.NewSection(wasmcode.SecFunction)
	sec.WriteU32(uint32(len(fns)))
	for _, fn := range fns {
		sec.WriteU32(uint32(fn.TypeIndex))
	}
	return sec
}

func (e *Emitter) encodeMemorySection() *wasmcode.Section {
	sec := wasmcode.NewSection(wasmcode.SecMemory)
	sec.WriteU32(1)
	sec.WriteByte(limitsMinOnly)
	sec.WriteU32(memoryPages)
	return sec
}

// builtinKindTotal returns every Kind tag that got a global slot (empty
// when EmitKindGlobals is off), mirroring declareKindGlobals' own order.
func builtinKindTotal(e *Emitter) []kindtype.Kind {
	if !e.cfg.EmitKindGlobals {
		return nil
	}
	out := append([]kindtype.Kind{}, builtinKindOrder...)
	for _, name := range e.ctx.Types.Names() {
		tag, _, _ := e.ctx.Types.Lookup(name)
		out = append(out, tag)
	}
	return out
}

// encodeGlobalSection writes the fixed Kind-tag constants (immutable
// i32) followed by every user-level global (mutable, nullable $Node ref,
// initialized to ref.null) — spec.md §4.6/§4.7.
func (e *Emitter) encodeGlobalSection() *wasmcode.Section {
	kindGlobals := builtinKindTotal(e)
	total := len(kindGlobals) + len(e.ctx.UserGlobals)
	if total == 0 {
		return nil
	}
	sec := wasmcode.NewSection(wasmcode.SecGlobal)
	sec.WriteU32(uint32(total))
	for _, k := range kindGlobals {
		sec.WriteByte(0x7F) // i32
		sec.WriteByte(0)    // immutable
		sec.WriteByte(byte(wasmcode.OpI32Const))
		sec.Write(wasmcode.PutSleb128(nil, int64(k)))
		sec.WriteByte(byte(wasmcode.OpEnd))
	}
	for range e.ctx.UserGlobals {
		sec.WriteByte(0x6E) // anyref
		sec.WriteByte(1)    // mutable
		sec.WriteByte(byte(wasmcode.OpRefNull))
		sec.WriteU32(uint32(typeManagerNodeIndex))
		sec.WriteByte(byte(wasmcode.OpEnd))
	}
	return sec
}

const typeManagerNodeIndex = 1 // matches typemanager.NodeTypeIndex

// encodeExportSection exports every function carrying an ExportName plus
// linear memory as "memory", so a host (or internal/reader) can call
// `main` and every runtime constructor directly.
func (e *Emitter) encodeExportSection() *wasmcode.Section {
	var exported []*registry.Function
	for _, fn := range e.ctx.Functions.All() {
		if fn.ExportName != "" {
			exported = append(exported, fn)
		}
	}
	sec := wasmcode.NewSection(wasmcode.SecExport)
	sec.WriteU32(uint32(len(exported) + 1))
	writeName(sec, "memory")
	sec.WriteByte(descMem)
	sec.WriteU32(0)
	for _, fn := range exported {
		writeName(sec, fn.ExportName)
		sec.WriteByte(descFunc)
		sec.WriteU32(uint32(fn.CallIndex))
	}
	return sec
}

// encodeCodeSection wraps every code function's lowered instruction
// stream with its locals-declaration vector (one run per declared,
// non-parameter local — each already carries its promoted Kind) and a
// byte-length prefix.
func (e *Emitter) encodeCodeSection() *wasmcode.Section {
	fns := e.ctx.Functions.CodeFunctions()
	sec := wasmcode.NewSection(wasmcode.SecCode)
	sec.WriteU32(uint32(len(fns)))
	for _, fn := range fns {
		body := encodeFunctionBody(fn)
		sec.WriteU32(uint32(len(body)))
		sec.Write(body)
	}
	return sec
}

// encodeFunctionBody renders the locals-declaration vector followed by
// fn.CodeBytes. Parameters are declared by the function's own type and
// never repeated here; every other local gets a one-local run (no
// attempt to coalesce runs of the same valtype — most functions declare
// only a handful of locals).
func encodeFunctionBody(fn *registry.Function) []byte {
	var localRuns [][2]byte // [valtype, count=1] pairs, emitted as individual runs
	for _, name := range fn.LocalNames() {
		l, _ := fn.Local(name)
		if l.IsParam {
			continue
		}
		localRuns = append(localRuns, [2]byte{valTypeByte(kindtype.Promote(l.Kind)), 1})
	}
	out := wasmcode.PutUleb128(nil, uint64(len(localRuns)))
	for _, run := range localRuns {
		out = wasmcode.PutUleb128(out, uint64(run[1]))
		out = append(out, run[0])
	}
	out = append(out, fn.CodeBytes...)
	return out
}

func valTypeByte(r kindtype.Ref) byte {
	switch r.Val {
	case kindtype.I32:
		return 0x7F
	case kindtype.I64:
		return 0x7E
	case kindtype.F32:
		return 0x7D
	case kindtype.F64:
		return 0x7C
	case kindtype.I31Ref:
		return 0x6C
	default:
		return 0x6E // anyref
	}
}

func (e *Emitter) encodeDataSection() *wasmcode.Section {
	entries := e.ctx.Strings.Entries()
	if len(entries) == 0 {
		return nil
	}
	sec := wasmcode.NewSection(wasmcode.SecData)
	sec.WriteU32(uint32(len(entries)))
	for _, ent := range entries {
		sec.WriteU32(0) // active segment, memory 0
		sec.WriteByte(byte(wasmcode.OpI32Const))
		sec.Write(wasmcode.PutSleb128(nil, int64(ent.Offset)))
		sec.WriteByte(byte(wasmcode.OpEnd))
		sec.WriteU32(uint32(len(ent.Bytes)))
		sec.Write(ent.Bytes)
	}
	return sec
}
