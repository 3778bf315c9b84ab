// internal/analyzer/declarations.go
package analyzer

import (
	"warpc/internal/ffi"
	"warpc/internal/node"
	"warpc/internal/registry"
)

// CollectDeclarations walks root for `use NAME` and `import NAME from LIB`
// forms (spec.md §4.1/§4.8) and resolves each import against the builtin
// libm/libc signature tables, registering a hit into ctx.FFIImports so the
// emitter's declareFFIImports (internal/emitter/imports.go) has something
// to emit — without this pass ctx.FFIImports would stay empty regardless
// of what a program actually imports, since imports must be known before
// any code function is registered (spec.md §4.3), earlier than the
// emitter's own per-node walk ever runs. Returns the `use`d module names,
// in source order, for Emit to map onto its host/WASI import toggles.
func CollectDeclarations(ctx *registry.Context, root *node.Node) []string {
	var used []string
	var walk func(n *node.Node)
	walk = func(n *node.Node) {
		n = n.DropMeta()
		if n == nil {
			return
		}
		switch n.Variant {
		case node.List:
			if decl, ok := asDeclaration(n); ok {
				switch decl.keyword {
				case "use":
					used = append(used, decl.name)
				case "import":
					if sig, ok := resolveFFISignature(decl.name, decl.library); ok {
						ctx.DeclareFFIImport(sig)
					}
				}
				return
			}
			for _, item := range n.Items {
				walk(item)
			}
		case node.Key:
			walk(n.Left)
			walk(n.Right)
		case node.Pair:
			walk(n.Left)
			walk(n.Right)
		case node.TypeDef:
			walk(n.TypeBody)
		}
	}
	walk(root)
	return used
}

type declaration struct {
	keyword string
	name    string
	library string
}

// asDeclaration recognises List(NoBracket)[Symbol("use"|"import"), Symbol(name), ...]
// — the shapes parser.parseUse/parseImport produce.
func asDeclaration(n *node.Node) (declaration, bool) {
	if n.Bracket != node.NoBracket || len(n.Items) < 2 {
		return declaration{}, false
	}
	head := n.Items[0].DropMeta()
	if head == nil || head.Variant != node.Symbol {
		return declaration{}, false
	}
	if head.Str != "use" && head.Str != "import" {
		return declaration{}, false
	}
	nameNode := n.Items[1].DropMeta()
	if nameNode == nil || nameNode.Variant != node.Symbol {
		return declaration{}, false
	}
	d := declaration{keyword: head.Str, name: nameNode.Str}
	if head.Str == "import" && len(n.Items) >= 4 {
		if from := n.Items[2].DropMeta(); from != nil && from.Variant == node.Symbol && from.Str == "from" {
			if lib := n.Items[3].DropMeta(); lib != nil && (lib.Variant == node.Text || lib.Variant == node.Symbol) {
				d.library = lib.Str
			}
		}
	}
	return d, true
}

// resolveFFISignature looks up name against the library alias used in the
// source's `from` clause first, falling back to a search across both
// builtin tables (spec.md §4.11's "libraries seen so far").
func resolveFFISignature(name, library string) (ffi.Signature, bool) {
	switch library {
	case "m", "libm", "math":
		if s, ok := ffi.LIBM[name]; ok {
			return s, true
		}
	case "c", "libc":
		if s, ok := ffi.LIBC[name]; ok {
			return s, true
		}
	}
	return ffi.Lookup(name)
}
