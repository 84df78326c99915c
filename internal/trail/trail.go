// Package trail implements the ordered assignment log every propagator
// reads from and the PC-engine coordinator writes to (spec §4.1).
package trail

import (
	"fmt"

	"github.com/solverkit/pcengine/pkg/lit"
)

// Value is the three-valued truth an atom can hold.
type Value int8

const (
	Unknown Value = 0
	True    Value = 1
	False   Value = -1
)

func (v Value) String() string {
	switch v {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// ReasonKind tags the producer of a propagated literal, following
// original_source's AggType-style closed tag dispatch instead of an open
// interface (spec Design Notes: "virtual dispatch ... replace with a
// tagged-variant and dispatch via match").
type ReasonKind int8

const (
	// ReasonDecision marks a literal chosen by the search heuristic; it
	// has no antecedent.
	ReasonDecision ReasonKind = iota
	// ReasonClause marks a literal unit-propagated by the clause
	// database collaborator.
	ReasonClause
	// ReasonAggregate marks a literal propagated by the aggregate
	// propagator.
	ReasonAggregate
	// ReasonDefinition marks a literal propagated by the definition
	// propagator (completion or a loop formula).
	ReasonDefinition
)

// AggRole distinguishes why an aggregate propagation fired, mirroring
// PropInfo's role tag from the data model table.
type AggRole int8

const (
	NoRole AggRole = iota
	HeadProp
	PosInSet
	NegInSet
)

// Reason records, generically, what justifies a trail entry. Owned by the
// producing propagator until conflict analysis consumes it (data model
// table). Packages downstream of trail (aggregate, definition) interpret
// SetID/RuleID themselves; trail never imports them, avoiding the cyclic
// back-pointers the Design Notes call out.
type Reason struct {
	Kind ReasonKind

	// ReasonClause
	ClauseLits []lit.Literal

	// ReasonAggregate
	AggSetID int
	AggID    int
	AggRole  AggRole

	// ReasonDefinition
	DefRuleID int
	DefLoop   bool
}

// Entry is one record in the trail.
type Entry struct {
	Lit    lit.Literal
	Level  int
	Time   int64
	Reason Reason
}

// BacktrackHook lets a propagator observe undone assignments in the
// reverse (most-recent-first) order they are unwound, so it can restore
// whatever incremental state it keeps per level.
type BacktrackHook interface {
	Backtrack(undone []Entry)
}

// Trail is the ordered log of literal assignments (spec §4.1).
type Trail struct {
	entries  []Entry
	value    map[lit.Atom]Value
	timeOf   map[lit.Atom]int64
	levelOf  map[lit.Atom]int
	reasonOf map[lit.Atom]Reason
	levelIdx []int // trail index where each decision level begins
	clock    int64
	level    int
	hooks    []BacktrackHook
}

// New returns an empty Trail at decision level 0.
func New() *Trail {
	return &Trail{
		value:    make(map[lit.Atom]Value),
		timeOf:   make(map[lit.Atom]int64),
		levelOf:  make(map[lit.Atom]int),
		reasonOf: make(map[lit.Atom]Reason),
		levelIdx: []int{0},
	}
}

// RegisterHook adds a propagator that must be told about undone
// assignments on backtrack. Hooks fire in registration order.
func (t *Trail) RegisterHook(h BacktrackHook) { t.hooks = append(t.hooks, h) }

// Level returns the current decision level.
func (t *Trail) Level() int { return t.level }

// NewDecisionLevel opens a new decision level.
func (t *Trail) NewDecisionLevel() {
	t.level++
	t.levelIdx = append(t.levelIdx, len(t.entries))
}

// Assign records lit as true at the current decision level. It returns an
// error if the opposite literal is already assigned — the caller (the
// engine) is responsible for never attempting a contradictory assignment;
// this check exists to fail loudly rather than silently corrupt state.
func (t *Trail) Assign(l lit.Literal, r Reason) error {
	a := l.Atom()
	if cur, ok := t.value[a]; ok && cur != Unknown {
		wantTrue := !l.Negated()
		haveTrue := cur == True
		if wantTrue != haveTrue {
			return fmt.Errorf("trail: conflicting assignment of atom %d", a)
		}
		return nil // already assigned consistently; idempotent re-assert
	}
	v := True
	if l.Negated() {
		v = False
	}
	t.value[a] = v
	t.timeOf[a] = t.clock
	t.clock++
	t.levelOf[a] = t.level
	t.reasonOf[a] = r
	t.entries = append(t.entries, Entry{Lit: l, Level: t.level, Time: t.timeOf[a], Reason: r})
	return nil
}

// Value returns the current truth value of l (accounting for its sign).
func (t *Trail) Value(l lit.Literal) Value {
	v, ok := t.value[l.Atom()]
	if !ok {
		return Unknown
	}
	if l.Negated() {
		return -v
	}
	return v
}

// Time returns the monotonic assignment age of l's atom, used by
// explanation generation to order culprits (spec §4.1).
func (t *Trail) Time(l lit.Literal) (int64, bool) {
	v, ok := t.timeOf[l.Atom()]
	return v, ok
}

// LevelOf returns the decision level at which l's atom was assigned.
func (t *Trail) LevelOf(l lit.Literal) (int, bool) {
	v, ok := t.levelOf[l.Atom()]
	return v, ok
}

// ReasonOf returns the reason recorded for atom a, if assigned.
func (t *Trail) ReasonOf(a lit.Atom) (Reason, bool) {
	r, ok := t.reasonOf[a]
	return r, ok
}

// Entries returns the full trail in assignment (time) order. Callers must
// not mutate the returned slice.
func (t *Trail) Entries() []Entry { return t.entries }

// BacktrackTo drops every assignment made strictly above level, in
// reverse (most-recent-first) order, and notifies registered hooks with
// the undone slice before returning. It is a no-op if level >= current
// level.
func (t *Trail) BacktrackTo(level int) {
	if level >= t.level {
		return
	}
	cut := t.levelIdx[level+1]
	undone := make([]Entry, len(t.entries)-cut)
	for i := len(t.entries) - 1; i >= cut; i-- {
		e := t.entries[i]
		undone[len(t.entries)-1-i] = e
		a := e.Lit.Atom()
		delete(t.value, a)
		delete(t.timeOf, a)
		delete(t.levelOf, a)
		delete(t.reasonOf, a)
	}
	t.entries = t.entries[:cut]
	t.levelIdx = t.levelIdx[:level+1]
	t.level = level

	for _, h := range t.hooks {
		h.Backtrack(undone)
	}
}
