// internal/analyzer/scope.go
package analyzer

import "warpc/internal/kindtype"

// frame is one lexical level: module, function body, or block. Scope is a
// singly-linked stack of frames, mirroring the teacher's compiler locals
// stack (see internal/compiler/compiler.go's scope depth tracking) but
// keyed by name -> inferred Kind instead of by stack slot.
type frame struct {
	vars   map[string]kindtype.Kind
	parent *frame
}

// Scope tracks which names are visible and what Kind they were last bound
// with, across nested function/block scopes (spec.md §5).
type Scope struct {
	current *frame
}

// NewScope opens the outermost module-level frame.
func NewScope() *Scope {
	return &Scope{current: &frame{vars: map[string]kindtype.Kind{}}}
}

// Push opens a new nested frame (entering a function body or a block).
func (s *Scope) Push() {
	s.current = &frame{vars: map[string]kindtype.Kind{}, parent: s.current}
}

// Pop closes the innermost frame, returning to its parent. Popping the
// outermost frame is not checked: it leaves no current frame, after which
// Lookup finds nothing and Declare panics with a nil dereference, matching
// the teacher's unchecked scope-depth arithmetic.
func (s *Scope) Pop() {
	s.current = s.current.parent
}

// Declare binds name to k in the innermost frame, shadowing any outer
// binding of the same name.
func (s *Scope) Declare(name string, k kindtype.Kind) {
	s.current.vars[name] = k
}

// Lookup searches from the innermost frame outward. A name never bound in
// any enclosing frame is "free" — the analyzer treats a free identifier
// as a Symbol (spec.md §5 kind-inference rule for unbound names).
func (s *Scope) Lookup(name string) (kindtype.Kind, bool) {
	for f := s.current; f != nil; f = f.parent {
		if k, ok := f.vars[name]; ok {
			return k, true
		}
	}
	return 0, false
}

// Depth reports how many nested frames are currently open, 1 at module
// level.
func (s *Scope) Depth() int {
	n := 0
	for f := s.current; f != nil; f = f.parent {
		n++
	}
	return n
}
