package aggregate

import (
	"github.com/solverkit/pcengine/internal/trail"
	"github.com/solverkit/pcengine/internal/watch"
	"github.com/solverkit/pcengine/pkg/lit"
	"github.com/solverkit/pcengine/pkg/weight"
)

// pwWatchCount is how many set literals PW keeps under active dynamic
// watch at once; the rest sit unwatched until one of the active watches
// resolves and PW needs a replacement (spec §4.2's partially-watched
// scheme, for sets too large to watch every literal of statically).
const pwWatchCount = 2

// PWPropagator reuses Propagator's evaluation logic but only keeps a
// bounded number of set literals under active watch at a time, swapping in
// a fresh unknown literal via the watch registry's dynamic-watch log
// whenever a watched one resolves (spec §4.2). This trades a slightly
// later trigger for O(1) amortized watch-list maintenance on large sets,
// the same tradeoff original_source's LazyResidual machinery makes for its
// own two-phase watch lifecycle.
type PWPropagator struct {
	*Propagator
	handles map[int]int // set-literal index -> dynamic watch handle id
}

// NewPW builds a partially-watched propagator over set.
func NewPW(set *TypedSet, aggs []*Agg, backend weight.Backend, tr *trail.Trail, wr *watch.Registry) *PWPropagator {
	base := &Propagator{set: set, aggs: aggs, backend: backend, tr: tr, wr: wr}
	pw := &PWPropagator{Propagator: base, handles: make(map[int]int)}

	for _, a := range aggs {
		wr.AddHead(a.Head, pw)
		wr.AddHead(a.Head.Not(), pw)
	}
	tr.RegisterHook(pw)

	watched := 0
	for idx := range set.Lits {
		if watched >= pwWatchCount {
			break
		}
		pw.watchIndex(idx)
		watched++
	}
	return pw
}

func (pw *PWPropagator) watchIndex(idx int) {
	l := pw.set.Lits[idx]
	id := pw.wr.AddDynamic(l, pw)
	pw.handles[idx] = id
}

// Notify implements watch.Watcher for both the dynamic set-literal watches
// and the static head watches PW installs.
func (pw *PWPropagator) Notify(l lit.Literal) {
	if idx, ok := pw.indexOf(l); ok {
		pw.rewatch(idx, l)
	}
	_ = pw.Propagate()
}

func (pw *PWPropagator) indexOf(l lit.Literal) (int, bool) {
	for idx, id := range pw.handles {
		if pw.set.Lits[idx] == l && id >= 0 {
			return idx, true
		}
	}
	return 0, false
}

// rewatch relocates the watch that just fired on idx to the next
// still-unknown literal in the set, if any remain unwatched.
func (pw *PWPropagator) rewatch(idx int, firedOn lit.Literal) {
	id, ok := pw.handles[idx]
	if !ok {
		return
	}
	for cand := range pw.set.Lits {
		if _, already := pw.handles[cand]; already {
			continue
		}
		if pw.tr.Value(pw.set.Lits[cand]) != trail.Unknown {
			continue
		}
		pw.wr.Move(id, firedOn, pw.set.Lits[cand], pw)
		delete(pw.handles, idx)
		pw.handles[cand] = id
		return
	}
	// No unwatched unknown literal remains: leave the watch where it is,
	// Propagate's full rescan (via reach) remains the source of truth.
}
