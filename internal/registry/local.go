// internal/registry/local.go
package registry

import "warpc/internal/kindtype"

// Local is a per-function slot: its WASM local index, the Kind it was
// declared or inferred as, and — for string-typed locals — a cached
// (pointer,length) pair into linear memory so the WASI print glue can
// avoid indirecting through the $Node struct (spec.md §3 Local).
type Local struct {
	Position    int
	Kind        kindtype.Kind
	IsParam     bool
	DataPointer int32
	DataLength  int32
}

// HasCachedString reports whether a literal string assignment recorded
// this local's backing bytes already (see internal/stringtable).
func (l Local) HasCachedString() bool {
	return l.DataLength > 0
}
