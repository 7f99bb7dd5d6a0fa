package machine

import "runtime"

// Pool tracks object allocation, leaving actual reclamation to Go's own
// garbage collector: Go already traces and reclaims every Object reachable
// from the Thread's roots (Global, Universe, Predeclared, the active Frame
// chain) the moment nothing references it, which is exactly what a
// tracing mark/sweep collector would otherwise have to be hand-rolled to
// do. What's left for this type to own is the one thing Go's GC does NOT
// expose to script: an explicit, host-triggerable collection point for a
// predeclared `gc()` built-in, plus a running count of allocated objects
// so a host can report pool pressure without needing its own tracking.
type Pool struct {
	allocated uint64
	collections uint64
}

// NewPool creates an empty pool.
func NewPool() *Pool { return &Pool{} }

// Track records that o was just allocated, for Stats' allocation counter.
// Passing o itself is unnecessary for reclamation (Go's GC doesn't need a
// registry). It is called at the allocation sites inside this package; an
// object created with NewObject alone (as lang/builtins' newArray does) is
// not counted.
func (p *Pool) Track(o *Object) {
	p.allocated++
}

// Collect forces a garbage-collection cycle, the primitive a predeclared
// `gc()` or `CollectGarbage()` built-in (lang/builtins/global.go) calls.
// th is unused directly (nothing here needs to walk Thread-rooted state,
// since Go's collector already has the real root set from the stack/heap
// scan) but is accepted for symmetry with every other Thread-scoped
// operation and in case a future finalizer hook needs it.
//
// There is deliberately no scoped counterpart collecting only objects
// reachable from a single expression's evaluation: Go's collector has no
// notion of scope narrower than "everything unreachable", so that
// operation would have nothing real to delegate to.
func (p *Pool) Collect(th *Thread) {
	p.collections++
	runtime.GC()
}

// Stats reports pool pressure for diagnostics: total objects ever
// allocated through Track, and how many explicit Collect cycles have run.
func (p *Pool) Stats() (allocated, collections uint64) {
	return p.allocated, p.collections
}
