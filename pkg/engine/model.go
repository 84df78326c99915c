package engine

import (
	"context"

	"github.com/solverkit/pcengine/internal/trail"
	"github.com/solverkit/pcengine/pkg/lit"
)

// Outcome is the result of a Solve/NextModel call (spec §6).
type Outcome int8

const (
	Unknown Outcome = iota
	Sat
	Unsat
)

func (o Outcome) String() string {
	switch o {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Model is a complete assignment over every atom the engine created.
type Model map[lit.Atom]bool

// CurrentModel reads off the trail's current assignment for every created
// atom. After Solve returns Sat every atom has been assigned (Solve decides
// each atom the propagators leave unknown, so an atom free in the problem,
// like atom 1 in scenario S1, still gets a value). An atom that is still
// unassigned, e.g. when CurrentModel is called before Solve, reports false;
// callers that need to distinguish "never assigned" from "assigned false"
// should check Value directly.
func (e *Engine) CurrentModel() Model {
	m := make(Model, len(e.atoms))
	for _, a := range e.atoms {
		m[a] = e.tr.Value(lit.Pos(a)) == trail.True
	}
	return m
}

// Value reports the current trail value of l.
func (e *Engine) Value(l lit.Literal) trail.Value { return e.tr.Value(l) }

// blockingClause negates the model restricted to atoms that were actually
// decided (spec §4.5's model-enumeration rule), so NextModel's search
// cannot repeat the same assignment over the decided atoms.
func (e *Engine) blockingClause() []lit.Literal {
	lits := make([]lit.Literal, 0, len(e.decisions))
	for _, d := range e.decisions {
		lits = append(lits, d.l.Not())
	}
	return lits
}

// NextModel resumes search for a further model after Solve returned Sat,
// adding a blocking clause over the previous model's decisions first
// (spec §6's next_model, §4.5's enumeration rule).
func (e *Engine) NextModel(ctx context.Context) (Outcome, error) {
	e.db.AddClause(e.blockingClause())
	e.backtrackToRoot()
	outcome, err := e.Solve(ctx)
	if outcome == Sat {
		e.metrics.ModelsFound.Inc()
	}
	return outcome, err
}

// backtrackToRoot unwinds every decision level, used between
// enumeration rounds so search restarts from the top with the new
// blocking clause in effect.
func (e *Engine) backtrackToRoot() {
	e.tr.BacktrackTo(0)
	e.wr.BacktrackTo(0)
	e.db.BacktrackTo(0)
	e.decisions = nil
}
