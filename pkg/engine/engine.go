// Package engine implements the PC-engine coordinator (spec §4.5): it owns
// the trail, watch registry and clause database, wires the aggregate and
// definition theory propagators to them, and drives the decision/
// propagate/conflict/backtrack search cycle described by spec §6's
// external interface.
package engine

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solverkit/pcengine/internal/clausedb"
	"github.com/solverkit/pcengine/internal/telemetry"
	"github.com/solverkit/pcengine/internal/trail"
	"github.com/solverkit/pcengine/internal/watch"
	"github.com/solverkit/pcengine/pcerr"
	"github.com/solverkit/pcengine/pkg/aggregate"
	"github.com/solverkit/pcengine/pkg/definition"
	"github.com/solverkit/pcengine/pkg/lit"
	"github.com/solverkit/pcengine/pkg/weight"
)

// propagator is the shape every theory propagator (FW/PW aggregate,
// definition) exposes to the coordinator.
type propagator interface {
	Propagate() error
}

// Engine is a single solving session: the handle spec §6's create_engine
// returns.
type Engine struct {
	opts    Options
	metrics *telemetry.Metrics

	tr *trail.Trail
	wr *watch.Registry
	db *clausedb.Database

	atoms    []lit.Atom
	finished bool

	sets       map[int]*aggregate.TypedSet
	aggsBySet  map[int][]*aggregate.Agg
	nextAggID  int
	rules      []*definition.Rule
	propagators []propagator
	defProp    *definition.Propagator

	minimizers []minimizer
	residuals  []*residual

	decisions []decisionFrame

	// firedCount is a high-water mark into tr.Entries(): every entry at
	// an index below it has already had its literal fired through wr's
	// Fire* methods (and, if not a decision, mirrored into the clause
	// database). processTrail advances it; BacktrackTo-style truncation
	// is handled by clamping it back down, never by unfiring.
	firedCount int
}

type decisionFrame struct {
	l          lit.Literal
	triedOther bool
}

// logger returns the configured logger, falling back to logrus's standard
// logger if the caller explicitly installed a nil one via WithLogger.
func (e *Engine) logger() *logrus.Logger {
	if e.opts.Logger == nil {
		return logrus.StandardLogger()
	}
	return e.opts.Logger
}

// New creates an Engine per spec §6's create_engine(options).
func New(opts ...Option) (*Engine, error) {
	o, err := buildOptions(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "engine: building options")
	}
	e := &Engine{
		opts:      o,
		metrics:   telemetry.New(o.Registerer),
		tr:        trail.New(),
		wr:        watch.New(),
		db:        clausedb.New(),
		sets:      make(map[int]*aggregate.TypedSet),
		aggsBySet: make(map[int][]*aggregate.Agg),
	}
	return e, nil
}

// CreateVar allocates a fresh atom (spec §6's create_var).
func (e *Engine) CreateVar() lit.Atom {
	a := e.db.NewAtom()
	e.atoms = append(e.atoms, a)
	return a
}

// AddClause teaches a clause to the underlying clause database (spec §6's
// add_clause).
func (e *Engine) AddClause(lits []lit.Literal) error {
	if e.finished {
		return pcerr.NewParseError("add_clause called after finish_parsing")
	}
	e.db.AddClause(lits)
	return nil
}

// AddRule registers an inductive-definition rule (spec §6's add_rule). The
// definition propagator itself is only built once FinishParsing runs,
// since SCC computation needs the complete rule set.
func (e *Engine) AddRule(head lit.Atom, body []lit.Literal, kind definition.BodyKind) error {
	if e.finished {
		return pcerr.NewParseError("add_rule called after finish_parsing")
	}
	e.rules = append(e.rules, &definition.Rule{
		ID:   len(e.rules) + 1,
		Head: head,
		Body: body,
		Kind: kind,
	})
	return nil
}

// AddSet registers a weighted-literal set (spec §6's add_set). Weights
// must already be non-negative for Min/Max/Prod callers; Sum/Card are
// normalized by aggregate.NewTypedSet.
func (e *Engine) AddSet(id int, kind aggregate.Kind, lits []lit.Literal, weights []weight.Weight) error {
	if e.finished {
		return pcerr.NewParseError("add_set called after finish_parsing")
	}
	if len(lits) == 0 {
		return pcerr.NewParseError("set %d: empty sets are rejected", id)
	}
	if _, exists := e.sets[id]; exists {
		return pcerr.NewParseError("add_set: duplicate set id %d", id)
	}
	set, err := aggregate.NewTypedSet(id, kind, e.opts.WeightBackend, lits, weights)
	if err != nil {
		return err
	}
	e.sets[id] = set
	return nil
}

// AddAggregate reifies a bound over a previously added set into head
// (spec §6's add_aggregate).
func (e *Engine) AddAggregate(head lit.Literal, setID int, bound weight.Weight, sense aggregate.Sense, semantics aggregate.Semantics) error {
	if e.finished {
		return pcerr.NewParseError("add_aggregate called after finish_parsing")
	}
	if _, ok := e.sets[setID]; !ok {
		return pcerr.NewParseError("add_aggregate: unknown set %d", setID)
	}
	e.nextAggID++
	a := &aggregate.Agg{ID: e.nextAggID, SetID: setID, Bound: bound, Sense: sense, Semantics: semantics, Head: head}
	e.aggsBySet[setID] = append(e.aggsBySet[setID], a)
	return nil
}

// FinishParsing closes the construction phase (spec §6's finish_parsing):
// it builds one propagator per registered set that has at least one
// aggregate (sets with none are skipped), builds the definition
// propagator over the complete rule set (so SCC computation sees every
// rule), and wires every BacktrackHook/Watcher into the trail and watch
// registry.
func (e *Engine) FinishParsing() error {
	if e.finished {
		return pcerr.NewParseError("finish_parsing called twice")
	}
	for id, set := range e.sets {
		aggs := e.aggsBySet[id]
		if len(aggs) == 0 {
			continue
		}
		p := aggregate.NewFor(set, aggs, e.opts.WeightBackend, e.tr, e.wr)
		e.propagators = append(e.propagators, p)
	}
	if len(e.rules) > 0 {
		e.defProp = definition.New(e.rules, e.opts.DefinitionMode, e.opts.UnfoundedStrategy, e.tr, e.wr, clauseLearner{e}, nil, e.logger(), e.metrics)
		e.propagators = append(e.propagators, e.defProp)
	}
	e.finished = true
	return nil
}

// clauseLearner adapts Engine to definition.ClauseLearner, letting the
// definition propagator assert stable-semantics loop formulas straight
// into the clause database without colliding with Engine's own
// error-returning AddClause (spec §6's add_clause).
type clauseLearner struct{ e *Engine }

func (c clauseLearner) AddClause(lits []lit.Literal) { c.e.db.AddClause(lits) }

// Solve runs the decision/propagate/conflict/backtrack cycle until a model
// is found or the problem is shown unsatisfiable (spec §6's solve,
// §4.5's loop). ctx cancellation is polled at each decision boundary and
// surfaces as pcerr.Interrupted, never leaving the trail inconsistent.
func (e *Engine) Solve(ctx context.Context) (Outcome, error) {
	if !e.finished {
		if err := e.FinishParsing(); err != nil {
			return Unknown, err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return Unknown, pcerr.Interrupted{}
		default:
		}

		idx := e.firstUnassigned()
		if idx < 0 {
			if err := e.runTheoryFixpoint(); err != nil {
				var ov *pcerr.Overflow
				if errors.As(err, &ov) {
					return Unknown, err
				}
				if !e.backtrack() {
					return Unsat, nil
				}
				continue
			}
			if e.firstUnassigned() < 0 {
				return Sat, nil
			}
			continue
		}

		e.decide(e.atoms[idx], true)
		outcome, err := e.syncAndPropagate()
		if err != nil || outcome == clausedb.Unsat {
			if !e.backtrack() {
				return Unsat, nil
			}
			continue
		}
		if err := e.runTheoryFixpoint(); err != nil {
			var ov *pcerr.Overflow
			if errors.As(err, &ov) {
				return Unknown, err
			}
			if !e.backtrack() {
				return Unsat, nil
			}
		}
	}
}

func (e *Engine) firstUnassigned() int {
	for i, a := range e.atoms {
		if e.tr.Value(lit.Pos(a)) == trail.Unknown {
			return i
		}
	}
	return -1
}

func (e *Engine) decide(a lit.Atom, positive bool) {
	l := lit.Pos(a)
	if !positive {
		l = lit.Neg(a)
	}
	e.tr.NewDecisionLevel()
	e.wr.NewDecisionLevel()
	_ = e.tr.Assign(l, trail.Reason{Kind: trail.ReasonDecision})
	e.db.Decide(l)
	e.decisions = append(e.decisions, decisionFrame{l: l})
	e.metrics.Decisions.Inc()
}

// syncAndPropagate seals the most recent decision into the clause
// database and reports its outcome.
func (e *Engine) syncAndPropagate() (clausedb.Outcome, error) {
	outcome := e.db.NewDecisionLevel()
	if outcome == clausedb.Unsat {
		e.metrics.Conflicts.Inc()
		e.logger().WithField("level", e.tr.Level()).Debug("conflict detected sealing decision level")
	}
	return outcome, nil
}

// runTheoryFixpoint runs every registered propagator to a fixpoint. Each
// round it hands whatever the trail grew by to processTrail, which fires
// every watcher (static, dynamic and head — this is the only production
// path that ever calls watch.Registry's Fire* methods, so residuals and
// PW rewatch actually see assignments instead of only the hand-written
// unit tests exercising Fire* directly) and mirrors non-decision entries
// into the clause database as real learned clauses, so gini's own
// conflict analysis benefits from every theory explanation on the next
// decision.
func (e *Engine) runTheoryFixpoint() error {
	for {
		before := len(e.tr.Entries())
		for _, p := range e.propagators {
			if err := p.Propagate(); err != nil {
				return err
			}
		}
		e.processTrail()
		if err := e.runResidualCallbacks(); err != nil {
			return err
		}
		if len(e.tr.Entries()) == before {
			return nil
		}
	}
}

// processTrail fires watch.Registry's Fire* methods for, then mirrors into
// the clause database, every trail entry appended since the last call,
// regardless of which code path produced it (a decision, a propagator's
// own tr.Assign, or a flipped backtrack re-decision). firedCount is a
// monotonic high-water mark into tr.Entries(); a backtrack that truncates
// the trail below it is handled by clamping it down, not by "unfiring" —
// Notify has no meaningful undo, and the next forward assignment simply
// fires again from the new baseline.
func (e *Engine) processTrail() {
	for {
		entries := e.tr.Entries()
		if e.firedCount > len(entries) {
			e.firedCount = len(entries)
		}
		if e.firedCount >= len(entries) {
			return
		}
		entry := entries[e.firedCount]
		e.firedCount++
		e.fireWatches(entry.Lit)
		if entry.Reason.Kind != trail.ReasonDecision {
			e.mirrorToClauseDB(entry)
		}
	}
}

// fireWatches notifies every static, dynamic and head watcher registered
// against l — the real Notify dispatch spec §4.2 describes, driving
// residual.Notify (pkg/engine/residual.go) and PWPropagator's dynamic
// rewatch (pkg/aggregate/pw.go) for real instead of leaving them reachable
// only from watch_test.go.
func (e *Engine) fireWatches(l lit.Literal) {
	e.wr.FireStatic(l)
	e.wr.FireDynamic(l)
	e.wr.FireHead(l)
}

func (e *Engine) mirrorToClauseDB(entry trail.Entry) {
	clause := append(append([]lit.Literal(nil), negateAll(entry.Reason.ClauseLits)...), entry.Lit)
	e.db.AddClause(clause)
	e.db.Decide(entry.Lit)
	if entry.Reason.Kind == trail.ReasonAggregate {
		e.metrics.AggregatePropagations.Inc()
	}
}

func negateAll(lits []lit.Literal) []lit.Literal {
	out := make([]lit.Literal, len(lits))
	for i, l := range lits {
		out[i] = l.Not()
	}
	return out
}

// backtrack undoes the most recent decision level, retrying the opposite
// polarity once before popping further (plain chronological DPLL
// backtracking; spec's Non-goals explicitly leave the branching/backtrack
// policy unconstrained).
func (e *Engine) backtrack() bool {
	e.metrics.Backtracks.Inc()
	for len(e.decisions) > 0 {
		top := e.decisions[len(e.decisions)-1]
		level := e.tr.Level() - 1
		e.logger().WithField("level", level).WithField("undoing", top.l).Trace("backtracking decision level")
		e.tr.BacktrackTo(level)
		e.wr.BacktrackTo(level)
		e.db.BacktrackTo(level)
		e.decisions = e.decisions[:len(e.decisions)-1]

		if !top.triedOther {
			e.tr.NewDecisionLevel()
			e.wr.NewDecisionLevel()
			flipped := top.l.Not()
			_ = e.tr.Assign(flipped, trail.Reason{Kind: trail.ReasonDecision})
			e.db.Decide(flipped)
			e.decisions = append(e.decisions, decisionFrame{l: flipped, triedOther: true})
			out := e.db.NewDecisionLevel()
			if out != clausedb.Unsat {
				return true
			}
			continue
		}
	}
	return false
}
