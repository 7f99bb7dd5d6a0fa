package compiler

import (
	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/resolver"
)

// fixupFreeVars augments resolver.Info's per-function FreeVars lists with
// pass-through entries for closures that capture a variable from an
// ancestor beyond their immediately enclosing function.
//
// The resolver (like the teacher's) only records a FreeVars entry in the
// function that directly contains the identifier reference; it does not
// thread the capture through an intermediate function that never mentions
// the name itself. NEWFUNC, though, can only push cell values the
// immediately enclosing function already holds (one of its own Locals or
// FreeVars) — so every intermediate function on the nesting path needs its
// own pass-through FreeVars entry for the same binding, e.g.
//
//	function outer() {
//	    var x;
//	    function mid() {                  // never mentions x
//	        function inner() { return x; } // captures it from outer
//	        return inner;
//	    }
//	}
//
// inner's capture of x is only useful to the compiler if mid also carries a
// FreeVars entry for it, so mid's own NEWFUNC (emitted by outer) knows to
// push it through. This walks the function-nesting tree post-order
// (innermost first) and adds those entries before compilation starts.
func fixupFreeVars(info *resolver.Info, chunk *ast.Chunk) map[*resolver.Binding]*resolver.Function {
	parent := map[*resolver.Function]*resolver.Function{}
	owner := map[*resolver.Binding]*resolver.Function{}

	for _, fn := range info.Funcs {
		for _, b := range fn.Locals {
			owner[b] = fn
		}
	}

	var stack []*resolver.Function
	var order []*resolver.Function
	var v ast.VisitorFunc
	v = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		fn, isFn := info.Funcs[n]
		if dir == ast.VisitEnter {
			if isFn {
				if len(stack) > 0 {
					parent[fn] = stack[len(stack)-1]
				}
				stack = append(stack, fn)
			}
			return v
		}
		if isFn {
			order = append(order, fn)
			stack = stack[:len(stack)-1]
		}
		return v
	}
	ast.Walk(v, chunk)

	// order is post-order: a function's own FreeVars, including any
	// pass-throughs contributed by its own nested functions, are complete
	// by the time it is propagated up to its own ancestors.
	for _, fn := range order {
		for _, b := range fn.FreeVars {
			cur := parent[fn]
			for cur != nil && cur != owner[b] {
				if !hasBinding(cur.FreeVars, b) {
					cur.FreeVars = append(cur.FreeVars, b)
				}
				cur = parent[cur]
			}
		}
	}

	return owner
}

func hasBinding(list []*resolver.Binding, b *resolver.Binding) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}
