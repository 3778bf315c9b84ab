// internal/analyzer/analyzer.go
package analyzer

import (
	"warpc/internal/kindtype"
	"warpc/internal/node"
	"warpc/internal/registry"
)

// Result is everything the emitter needs from analysis: the desugared
// tree, the function definitions collected out of it, the Kind
// annotation table built while walking it, and the module names any
// `use` declaration named.
type Result struct {
	Root        *node.Node
	Functions   []FunctionDef
	Annotations Annotations
	UsedModules []string
}

// Analyze runs the full front-end pass over a parsed program: desugaring
// compound assignment, collecting function definitions and FFI/module
// declarations into ctx, and inferring a Kind for every node — in that
// order, since inference needs the function table populated to resolve
// calls and recursive references before it walks their bodies, and
// ctx.FFIImports must be populated before the emitter registers any
// import (spec.md §4.3).
func Analyze(ctx *registry.Context, root *node.Node) *Result {
	root = Desugar(root)
	defs := CollectFunctions(ctx, root)
	used := CollectDeclarations(ctx, root)

	scope := NewScope()
	for _, def := range defs {
		scope.Declare(def.Name, kindtype.Symbol)
	}
	ann := Annotations{}
	Infer(scope, ctx, ann, root)

	return &Result{Root: root, Functions: defs, Annotations: ann, UsedModules: used}
}
