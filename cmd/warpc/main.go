// cmd/warpc/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"warpc/internal/analyzer"
	"warpc/internal/emitter"
	"warpc/internal/errors"
	"warpc/internal/node"
	"warpc/internal/optimizer"
	"warpc/internal/parser"
	"warpc/internal/reader"
	"warpc/internal/registry"
)

// main wires parser -> analyzer -> emitter -> optional reader, the same
// shape as the teacher's cmd/sentra driver but without its command-alias
// table or REPL/LSP surface: CLI argument parsing is out of scope
// (spec.md §1), this is the minimal glue that exercises the pipeline.
func main() {
	out := flag.String("o", "", "write the compiled WASM module to this path (default: stdout)")
	run := flag.Bool("run", false, "execute the compiled module with the embedded reader and print the decoded result")
	optLevel := flag.String("opt", "", "optimisation level to pass to wasm-opt (O1, O2, O3, O4, Oz); empty skips the pass")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: warpc [-o out.wasm] [-run] [-opt O2] <source.wp>")
		os.Exit(2)
	}

	srcPath := flag.Arg(0)
	src, err := os.ReadFile(srcPath)
	if err != nil {
		log.Fatalf("read %s: %v", srcPath, err)
	}

	wasmBytes, err := compile(string(src), srcPath, *optLevel)
	if err != nil {
		log.Fatal(err)
	}

	if *run {
		result, err := execute(wasmBytes)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(result)
		return
	}

	if *out == "" {
		if _, err := os.Stdout.Write(wasmBytes); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := os.WriteFile(*out, wasmBytes, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
}

// compile runs the front end over src and returns the encoded module,
// optionally piped through the optimizer shim. Parser/analyzer/emitter
// panics carrying *errors.CompileError are recovered here, the single
// boundary a caller of this package ever needs to check (spec.md §7).
func compile(src, file, optLevel string) (_ []byte, err error) {
	defer errors.Recover(&err)

	root := parser.Parse(src, file)

	ctx := registry.NewContext(16)
	result := analyzer.Analyze(ctx, root)

	wasmBytes, err := emitter.Emit(ctx, result, emitter.DefaultConfig())
	if err != nil {
		return nil, err
	}

	if optLevel == "" {
		return wasmBytes, nil
	}
	return optimizer.Run(wasmBytes, optimizer.Options{Level: optimizer.Level("-" + optLevel)})
}

// execute runs wasmBytes through the embedded reader and renders the
// decoded root node for a human to read, mirroring how a REPL built on
// top of this package would surface a result.
func execute(wasmBytes []byte) (string, error) {
	ctx := context.Background()
	engine, err := reader.NewEngine(ctx)
	if err != nil {
		return "", err
	}
	defer engine.Close(ctx)

	root, err := engine.Read(ctx, wasmBytes)
	if err != nil {
		return "", err
	}
	return node.Dump(root), nil
}
