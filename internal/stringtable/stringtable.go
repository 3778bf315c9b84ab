// internal/stringtable/stringtable.go
package stringtable

// Entry is one deduplicated string's placement in linear memory.
type Entry struct {
	Offset int32
	Length int32
	Bytes  []byte
}

// Table is the deduplicating pool mapping a string to its (offset,
// length) in linear memory (spec.md §4.7). Allocating the same string
// twice returns the same offset; allocation otherwise appends at the
// current write cursor and records a data-section segment to emit.
type Table struct {
	offsets map[string]int32
	order   []Entry
	cursor  int32
	base    int32
}

// New creates a string table whose first allocation starts at base —
// the emitter reserves the low bytes of linear memory (addresses 0 and
// 8) for the WASI iovec/nwritten staging area (spec.md §4.10), so base
// is normally 16.
func New(base int32) *Table {
	return &Table{offsets: map[string]int32{}, cursor: base, base: base}
}

// Intern returns the (offset, length) for s, allocating new space only
// the first time s is seen.
func (t *Table) Intern(s string) (offset, length int32) {
	if off, ok := t.offsets[s]; ok {
		return off, int32(len(s))
	}
	bytes := []byte(s)
	off := t.cursor
	t.offsets[s] = off
	t.order = append(t.order, Entry{Offset: off, Length: int32(len(bytes)), Bytes: bytes})
	t.cursor += int32(len(bytes))
	return off, int32(len(bytes))
}

// Entries returns every allocated string in allocation order — the
// order the data section's segments must be emitted in.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.order))
	copy(out, t.order)
	return out
}

// Size is the number of bytes of linear memory consumed by the pool,
// past Table's base offset.
func (t *Table) Size() int32 { return t.cursor - t.base }
