// internal/emitter/wasi.go
package emitter

import (
	"strconv"

	"warpc/internal/errors"
	"warpc/internal/node"
	"warpc/internal/registry"
	"warpc/internal/typemanager"
	"warpc/internal/wasmcode"
)

func missingRuntimeFormatterError(name string) *errors.CompileError {
	return errors.NewEmitError(name + " of a runtime value has no formatter yet; only compile-time numeric constants are supported")
}

// WASI iovec staging addresses, reserved below the string table's base
// offset (see registry.NewContext's base argument).
const (
	iovecPtrAddr      = 0
	iovecNwrittenAddr = 8
)

// emitPuts stages a single iovec (str_ptr, str_len) at address 0,
// reserves the nwritten slot at address 8, and calls fd_write(1, 0, 1, 8)
// — spec.md §4.10. The argument's (ptr, len) is read from the target
// Local's cached string offset when available (the string-table
// collection pass records one for `symbol := "literal"` bindings),
// falling back to reading the $Node's str field at runtime.
func (e *Emitter) emitPuts(args []*node.Node) {
	if len(args) == 0 {
		e.emitEmpty()
		return
	}
	ptr, length, ok := e.constantStringArg(args[0])
	if ok {
		e.code.Op(wasmcode.OpI32Const).U32(0)
		e.code.Op(wasmcode.OpI32Const).U32(uint32(ptr))
		e.code.Op(wasmcode.OpI32Store).MemArg(2, iovecPtrAddr)
		e.code.Op(wasmcode.OpI32Const).U32(0)
		e.code.Op(wasmcode.OpI32Const).U32(uint32(length))
		e.code.Op(wasmcode.OpI32Store).MemArg(2, iovecPtrAddr+4)
	} else {
		e.emitExpr(args[0])
		e.structGetNode(fieldStr)
		e.code.Op(wasmcode.OpLocalSet).U32(e.scratchStrLocal())
		e.code.Op(wasmcode.OpI32Const).U32(0)
		e.code.Op(wasmcode.OpLocalGet).U32(e.scratchStrLocal())
		e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(0) // $String.ptr
		e.code.Op(wasmcode.OpI32Store).MemArg(2, iovecPtrAddr)
		e.code.Op(wasmcode.OpI32Const).U32(0)
		e.code.Op(wasmcode.OpLocalGet).U32(e.scratchStrLocal())
		e.code.GC(wasmcode.GCStructGet).U32(uint32(typemanager.StringTypeIndex)).U32(1) // $String.len
		e.code.Op(wasmcode.OpI32Store).MemArg(2, iovecPtrAddr+4)
	}
	e.emitFdWrite()
	e.emitEmpty()
}

// constantStringArg resolves a literal Text argument, or a Symbol whose
// Local carries a cached (DataPointer, DataLength) from a prior
// `symbol := "literal"` binding, to its interned string-table offset.
func (e *Emitter) constantStringArg(n *node.Node) (ptr, length int32, ok bool) {
	n = n.DropMeta()
	if n.Variant == node.Text {
		p, l := e.ctx.Strings.Intern(n.Str)
		return p, l, true
	}
	if n.Variant == node.Symbol && e.fn != nil {
		if l, found := e.fn.Local(n.Str); found && l.HasCachedString() {
			return l.DataPointer, l.DataLength, true
		}
	}
	return 0, 0, false
}

func (e *Emitter) emitFdWrite() {
	e.code.Op(wasmcode.OpI32Const).U32(1) // fd 1 = stdout
	e.code.Op(wasmcode.OpI32Const).U32(iovecPtrAddr)
	e.code.Op(wasmcode.OpI32Const).U32(1) // iovs_len
	e.code.Op(wasmcode.OpI32Const).U32(iovecNwrittenAddr)
	e.callHostImport("wasi_snapshot_preview1.fd_write")
	e.code.Op(wasmcode.OpDrop)
}

func (e *Emitter) emitRawFdWrite(args []*node.Node) {
	for _, a := range args {
		e.emitAsI64(a)
		e.code.Op(wasmcode.OpI32WrapI64)
	}
	e.callHostImport("wasi_snapshot_preview1.fd_write")
	e.code.Op(wasmcode.OpI64ExtendI32S)
	e.ensureRequired(registry.RequireNewInt)
	e.call("new_int")
}

// emitPrintNumeric formats compile-time numeric constants ahead of time;
// a runtime value reaching puti/putl/putf is a future concern (no
// runtime itoa exists yet), so it surfaces as an emit error rather than
// silently producing nothing (spec.md §4.10, §7).
func (e *Emitter) emitPrintNumeric(name string, args []*node.Node) {
	if len(args) == 0 {
		e.emitEmpty()
		return
	}
	lit := args[0].DropMeta()
	if lit.Variant != node.Number {
		panic(missingRuntimeFormatterError(name))
	}
	text := formatConstant(name, lit)
	ptr, length := e.ctx.Strings.Intern(text)
	e.code.Op(wasmcode.OpI32Const).U32(0)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(ptr))
	e.code.Op(wasmcode.OpI32Store).MemArg(2, iovecPtrAddr)
	e.code.Op(wasmcode.OpI32Const).U32(0)
	e.code.Op(wasmcode.OpI32Const).U32(uint32(length))
	e.code.Op(wasmcode.OpI32Store).MemArg(2, iovecPtrAddr+4)
	e.emitFdWrite()
	e.emitEmpty()
}

func formatConstant(name string, lit *node.Node) string {
	switch {
	case lit.NumForm == node.FloatForm:
		return strconv.FormatFloat(lit.FloatVal, 'g', -1, 64)
	default:
		return strconv.FormatInt(lit.IntVal, 10)
	}
}
