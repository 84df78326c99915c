// Package clausedb adapts github.com/go-air/gini into the "bare CDCL
// clause database" collaborator spec §1 assumes is available: it stores
// clauses, performs unit propagation, runs conflict-driven learning, and
// is driven by the PC-engine coordinator at defined hooks (spec §4.5).
//
// The decision-level / backtrack bookkeeping generalizes the teacher's
// depthTrackingGini/Unwind pair from
// pkg/controller/registry/resolver/solver/solve.go: each sealed decision
// level corresponds to exactly one gini Test() scope, and BacktrackTo
// unwinds the matching number of Untest() calls instead of replaying
// assumptions from scratch. Database is built against a narrow Engine
// interface rather than the concrete *gini.Gini, the same seam the
// teacher's search_test.go exercises with a counterfeiter-generated fake
// of gini/inter.S; clausedb_test.go uses a small hand-written fake instead
// of a generated one, to avoid a go:generate step this module never runs.
package clausedb

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/solverkit/pcengine/pkg/lit"
)

// Outcome mirrors gini's tri-state result code (satisfiable=1,
// unsatisfiable=-1, unknown=0), named per spec §4.5's decision/propagate/
// conflict/backtrack cycle.
type Outcome int8

const (
	Unknown Outcome = 0
	Sat     Outcome = 1
	Unsat   Outcome = -1
)

func outcomeOf(n int) Outcome {
	switch {
	case n > 0:
		return Sat
	case n < 0:
		return Unsat
	default:
		return Unknown
	}
}

func toZ(l lit.Literal) z.Lit   { return z.Lit(l) }
func fromZ(m z.Lit) lit.Literal { return lit.Literal(m) }

// Engine is the subset of gini/inter.S (plus variable creation and clause
// addition, which live on the concrete *gini.Gini) that Database drives.
type Engine interface {
	Lit() z.Lit
	Add(m z.Lit)
	Assume(ms ...z.Lit)
	Test(dst []z.Lit) (int, []z.Lit)
	Untest() int
	Solve() int
	Value(m z.Lit) bool
	Why(dst []z.Lit) []z.Lit
}

// Database is an Engine-backed clause store with incremental
// decision-level scoping.
type Database struct {
	sat          Engine
	pushedLevels int
	pending      []z.Lit
}

// New returns an empty Database backed by a real gini instance.
func New() *Database {
	return &Database{sat: gini.New()}
}

// NewWithEngine returns a Database backed by an arbitrary Engine
// implementation (used by tests, and by anyone substituting a different
// gini-compatible incremental SAT engine).
func NewWithEngine(e Engine) *Database {
	return &Database{sat: e}
}

// NewAtom allocates a fresh atom/variable in the underlying solver.
func (d *Database) NewAtom() lit.Atom {
	m := d.sat.Lit()
	return lit.Atom(m.Var())
}

// AddClause teaches the database a clause (a disjunction of literals),
// the low-level primitive behind the external add_clause operation (spec
// §6) and behind every auxiliary clause theory propagators synthesize
// (completion clauses, loop formulas, aggregate explanations).
func (d *Database) AddClause(lits []lit.Literal) {
	for _, l := range lits {
		d.sat.Add(toZ(l))
	}
	d.sat.Add(z.LitNull)
}

// Decide queues l as an assumption for the level currently being built.
// It does not take effect until the next NewDecisionLevel or Propagate
// call flushes the pending assumptions into one incremental solver scope
// — this keeps every literal assigned within a single PC-engine decision
// level (the initial decision plus whatever unit propagation and theory
// propagation derive from it) inside one Test()/Untest() pair, so
// BacktrackTo(level) makes exactly Level()-level Untest() calls, one per
// sealed level above the target, never more.
func (d *Database) Decide(l lit.Literal) {
	d.pending = append(d.pending, toZ(l))
}

// NewDecisionLevel seals whatever assumptions are pending into the
// current level's solver scope and opens a new, empty pending set.
func (d *Database) NewDecisionLevel() Outcome {
	return d.flush()
}

// Propagate flushes any assumptions queued via Decide since the last seal
// and reports whether the clause database still considers the partial
// assignment consistent. It seals exactly as NewDecisionLevel does: a
// non-empty flush opens one more Test() scope and increments Level(), so
// it is undone by BacktrackTo like any other sealed level.
func (d *Database) Propagate() Outcome {
	return d.flush()
}

func (d *Database) flush() Outcome {
	if len(d.pending) == 0 {
		return Unknown
	}
	d.sat.Assume(d.pending...)
	res, _ := d.sat.Test(nil)
	d.pushedLevels++
	d.pending = d.pending[:0]
	return outcomeOf(res)
}

// Level reports how many decision levels have been sealed so far.
func (d *Database) Level() int { return d.pushedLevels }

// BacktrackTo unwinds sealed levels until Level() == level, discarding any
// not-yet-sealed pending assumptions.
func (d *Database) BacktrackTo(level int) {
	d.pending = d.pending[:0]
	for d.pushedLevels > level {
		d.sat.Untest()
		d.pushedLevels--
	}
}

// Solve runs full search (decisions included) over whatever has been
// sealed plus any pending assumptions, which are flushed first.
func (d *Database) Solve() Outcome {
	d.flush()
	return outcomeOf(d.sat.Solve())
}

// Value reports the current truth value of l under the active scope.
func (d *Database) Value(l lit.Literal) bool {
	return d.sat.Value(toZ(l))
}

// Why returns the assumptions responsible for the most recent
// unsatisfiable Test()/Solve() result — the clause-side half of conflict
// explanation.
func (d *Database) Why() []lit.Literal {
	zs := d.sat.Why(nil)
	out := make([]lit.Literal, len(zs))
	for i, m := range zs {
		out[i] = fromZ(m)
	}
	return out
}
