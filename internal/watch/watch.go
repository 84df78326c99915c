// Package watch implements the per-literal watch lists that dispatch
// theory work when an assignment is made (spec §4.2).
package watch

import "github.com/solverkit/pcengine/pkg/lit"

// Watcher is notified when a literal it watches becomes true.
type Watcher interface {
	Notify(l lit.Literal)
}

type dynamicEntry struct {
	id int
	w  Watcher
}

type swapRecord struct {
	level int
	id    int
	from  lit.Literal
	to    lit.Literal
	w     Watcher
}

// Registry owns static, dynamic and head watch lists. Static watches are
// checked for every assignment of a literal and never moved. Dynamic
// watches (partially-watched aggregates) are a small active subset that
// can be swapped for a replacement; every swap is logged so backtrack
// reverts it in O(#swaps since the target level) instead of rescanning
// (spec §4.2).
type Registry struct {
	static  map[lit.Literal][]Watcher
	dynamic map[lit.Literal][]dynamicEntry
	head    map[lit.Literal][]Watcher

	nextID  int
	swapLog []swapRecord
	level   int
}

func New() *Registry {
	return &Registry{
		static:  make(map[lit.Literal][]Watcher),
		dynamic: make(map[lit.Literal][]dynamicEntry),
		head:    make(map[lit.Literal][]Watcher),
	}
}

// AddStatic registers w to be notified every time l is assigned true.
func (r *Registry) AddStatic(l lit.Literal, w Watcher) {
	r.static[l] = append(r.static[l], w)
}

// AddHead registers w against a head literal.
func (r *Registry) AddHead(l lit.Literal, w Watcher) {
	r.head[l] = append(r.head[l], w)
}

// AddDynamic installs w as an active watch on l and returns a handle that
// Move uses to relocate it later.
func (r *Registry) AddDynamic(l lit.Literal, w Watcher) int {
	id := r.nextID
	r.nextID++
	r.dynamic[l] = append(r.dynamic[l], dynamicEntry{id: id, w: w})
	return id
}

// Move relocates the dynamic watch identified by id from 'from' to 'to',
// logging the swap at the current level so BacktrackTo can undo it
// without scanning every set's watch list.
func (r *Registry) Move(id int, from, to lit.Literal, w Watcher) {
	list := r.dynamic[from]
	for i, e := range list {
		if e.id == id {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	r.dynamic[from] = list
	r.dynamic[to] = append(r.dynamic[to], dynamicEntry{id: id, w: w})
	r.swapLog = append(r.swapLog, swapRecord{level: r.level, id: id, from: from, to: to, w: w})
}

// NewDecisionLevel marks the start of a new level for swap-log bookkeeping.
func (r *Registry) NewDecisionLevel() { r.level++ }

// BacktrackTo reverts every dynamic watch swap made above level, in
// reverse order, without touching watches that were never swapped.
func (r *Registry) BacktrackTo(level int) {
	i := len(r.swapLog)
	for i > 0 && r.swapLog[i-1].level > level {
		i--
		s := r.swapLog[i]
		list := r.dynamic[s.to]
		for j, e := range list {
			if e.id == s.id {
				list = append(list[:j], list[j+1:]...)
				break
			}
		}
		r.dynamic[s.to] = list
		r.dynamic[s.from] = append(r.dynamic[s.from], dynamicEntry{id: s.id, w: s.w})
	}
	r.swapLog = r.swapLog[:i]
	r.level = level
}

// FireStatic notifies every static watcher of l.
func (r *Registry) FireStatic(l lit.Literal) {
	for _, w := range r.static[l] {
		w.Notify(l)
	}
}

// FireDynamic notifies every active dynamic watcher of l. Handlers call
// Move if they want to relocate their watch instead of propagating.
func (r *Registry) FireDynamic(l lit.Literal) {
	// Snapshot: handlers may call Move, which mutates r.dynamic[l].
	list := append([]dynamicEntry(nil), r.dynamic[l]...)
	for _, e := range list {
		e.w.Notify(l)
	}
}

// FireHead notifies every head watcher of l.
func (r *Registry) FireHead(l lit.Literal) {
	for _, w := range r.head[l] {
		w.Notify(l)
	}
}
