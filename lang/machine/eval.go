package machine

import (
	"context"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/compiler"
	"github.com/lorelei-lang/lorelei/lang/parser"
	"github.com/lorelei-lang/lorelei/lang/resolver"
	"github.com/lorelei-lang/lorelei/lang/token"
)

// indirectEval implements the EVAL opcode's runtime half: ES3 15.1.2.1,
// restricted to the "indirect eval" case (spec §4.J: "if called through a
// name other than eval, direct-eval semantics do not apply"). A direct call
// compiles here too — injecting the eval'd code into the *caller's* lexical
// environment per spec §4.J would require the compiler to re-resolve fresh
// source against a frame's already-erased local-slot layout, which no
// compiled Funcode retains name information for at run time; this is
// recorded as a deliberate simplification (see DESIGN.md) rather than a
// silently dropped feature. A non-string argument is returned unchanged,
// per 15.1.2.1.1.
func (th *Thread) indirectEval(args *Tuple) (Value, error) {
	if args.Len() == 0 {
		return UndefinedValue, nil
	}
	v := args.At(0)
	src, ok := v.(String)
	if !ok {
		return v, nil
	}
	return th.EvalSource(string(src))
}

// EvalSource parses, resolves and compiles source as a fresh chunk and runs
// it on th, sharing th's global object (so a top-level var declared by the
// eval'd code becomes an ordinary global, observable by the caller
// afterward). This is also the embedder-facing entry point used by
// cmd/lorelei's run/repl commands.
func (th *Thread) EvalSource(source string) (Value, error) {
	fset := token.NewFileSet()
	chunk, perrs := parser.ParseChunk(fset, "<eval>", []byte(source), 0)
	if err := perrs.Err(); err != nil {
		return nil, th.SyntaxErrorAt(err.Error())
	}

	info, rerr := resolver.ResolveFiles(context.Background(), fset, []*ast.Chunk{chunk}, 0,
		th.isPredeclaredName, IsUniverse)
	if rerr != nil {
		return nil, th.SyntaxErrorAt(rerr.Error())
	}

	prog := compiler.Compile(fset, chunk, info)
	th.lastErrorText = source
	return th.RunModule(prog)
}

func (th *Thread) isPredeclaredName(name string) bool {
	_, ok := th.Predeclared[name]
	return ok
}
