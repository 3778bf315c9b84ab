package reader

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"warpc/internal/errors"
)

// instantiateHostModule backs the two `host.*` imports internal/emitter
// declares for `fetch`/`run` (spec.md §4.10). Neither has anything real
// to reach out to from inside this reader — there is no sandboxed
// execution environment or network fetcher wired up here — so both are
// best-effort stand-ins: fetch echoes its argument back as if it were
// its own response, run always reports a zero exit/result. A real
// embedder is expected to replace this module with its own before
// reusing internal/reader as a library, which is exactly why host
// imports live in their own named module rather than folded into wasi.
func (e *Engine) instantiateHostModule(ctx context.Context) error {
	_, err := e.runtime.NewHostModuleBuilder("host").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, urlPtr, urlLen uint32) (uint32, uint32) {
			return urlPtr, urlLen
		}).
		Export("fetch").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr, length uint32) uint64 {
			return 0
		}).
		Export("run").
		Instantiate(ctx)
	if err != nil {
		return errors.NewReaderError("instantiate host module: " + err.Error())
	}
	return nil
}

// instantiateLibm backs `use math` / FFI declarations resolved against
// internal/ffi.LIBM — real math.* implementations, since every libm
// signature spec.md §4.11 lists is a plain scalar in and out, with
// nothing to marshal through linear memory.
func (e *Engine) instantiateLibm(ctx context.Context) error {
	unary := func(f func(float64) float64) func(context.Context, api.Module, float64) float64 {
		return func(ctx context.Context, mod api.Module, x float64) float64 { return f(x) }
	}
	_, err := e.runtime.NewHostModuleBuilder("m").
		NewFunctionBuilder().WithFunc(unary(math.Sin)).Export("sin").
		NewFunctionBuilder().WithFunc(unary(math.Cos)).Export("cos").
		NewFunctionBuilder().WithFunc(unary(math.Tan)).Export("tan").
		NewFunctionBuilder().WithFunc(unary(math.Sqrt)).Export("sqrt").
		NewFunctionBuilder().WithFunc(unary(math.Floor)).Export("floor").
		NewFunctionBuilder().WithFunc(unary(math.Ceil)).Export("ceil").
		NewFunctionBuilder().WithFunc(unary(math.Abs)).Export("fabs").
		NewFunctionBuilder().WithFunc(unary(math.Log)).Export("log").
		NewFunctionBuilder().WithFunc(unary(math.Exp)).Export("exp").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, base, exp float64) float64 { return math.Pow(base, exp) }).
		Export("pow").
		Instantiate(ctx)
	if err != nil {
		return errors.NewReaderError("instantiate libm: " + err.Error())
	}
	return nil
}

// instantiateLibc backs `use libc` against internal/ffi.LIBC. Every
// char* parameter here is the raw null-terminated pointer convention
// internal/emitter/ffi.go's marshalArg uses for string arguments — a
// single $String.ptr i32, not a (ptr, len) pair — so these all read
// through mod.Memory() until the first NUL byte.
func (e *Engine) instantiateLibc(ctx context.Context) error {
	_, err := e.runtime.NewHostModuleBuilder("c").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, a, b uint32) int32 {
			sa, _ := readCString(mod.Memory(), a)
			sb, _ := readCString(mod.Memory(), b)
			return int32(strings.Compare(sa, sb))
		}).
		Export("strcmp").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, a, b, n uint32) int32 {
			sa, _ := readCStringN(mod.Memory(), a, n)
			sb, _ := readCStringN(mod.Memory(), b, n)
			return int32(strings.Compare(sa, sb))
		}).
		Export("strncmp").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr uint32) uint32 {
			s, _ := readCString(mod.Memory(), ptr)
			return uint32(len(s))
		}).
		Export("strlen").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, size uint32) uint32 {
			return bumpAlloc(mod.Memory(), size)
		}).
		Export("malloc").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr uint32) {}).
		Export("free").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr uint32) int32 {
			s, _ := readCString(mod.Memory(), ptr)
			v, _ := strconv.Atoi(strings.TrimSpace(s))
			return int32(v)
		}).
		Export("atoi").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr uint32) float64 {
			s, _ := readCString(mod.Memory(), ptr)
			v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			return v
		}).
		Export("atof").
		Instantiate(ctx)
	if err != nil {
		return errors.NewReaderError("instantiate libc: " + err.Error())
	}
	return nil
}

// readCString reads bytes starting at ptr up to (not including) the
// first NUL, the C string convention every libc FFI signature assumes.
func readCString(mem api.Memory, ptr uint32) (string, bool) {
	return readCStringN(mem, ptr, mem.Size())
}

// readCStringN is the strncmp-flavoured variant: stop at NUL or after
// at most n bytes, whichever comes first.
func readCStringN(mem api.Memory, ptr, n uint32) (string, bool) {
	var sb strings.Builder
	for i := uint32(0); i < n; i++ {
		b, ok := mem.ReadByte(ptr + i)
		if !ok {
			return sb.String(), false
		}
		if b == 0 {
			break
		}
		sb.WriteByte(b)
	}
	return sb.String(), true
}

// bumpAlloc is the only allocator strategy available from the host
// side: grow linear memory by however many pages size needs and hand
// back the offset memory used to start at, mirroring what a real
// malloc's first call against a freshly instantiated module would look
// like. There is no free list — free is a no-op (see instantiateLibc)
// since nothing in this reader ever reuses a freed block.
func bumpAlloc(mem api.Memory, size uint32) uint32 {
	const pageSize = 65536
	base := mem.Size()
	if size == 0 {
		return base
	}
	pages := (size + pageSize - 1) / pageSize
	if _, ok := mem.Grow(pages); !ok {
		return 0
	}
	return base
}
