package definition

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/solverkit/pcengine/internal/telemetry"
	"github.com/solverkit/pcengine/internal/trail"
	"github.com/solverkit/pcengine/internal/watch"
	"github.com/solverkit/pcengine/pkg/lit"
)

// Propagator is the definition theory propagator (spec §4.4): it tracks
// justification state per defined atom and, when a cyclic component can no
// longer support any of its members, computes the greatest unfounded set
// and asserts the corresponding loop formula.
type Propagator struct {
	rules     []*Rule
	graph     *DependencyGraph
	scc       *SCC
	semantics Semantics
	strategy  Strategy
	tr        *trail.Trail
	wr        *watch.Registry
	learner   ClauseLearner
	justifier AggregateJustifier
	logger    *logrus.Logger
	metrics   *telemetry.Metrics

	state map[lit.Atom]Justification
	atoms []lit.Atom // deterministic iteration order
}

// New builds a Propagator for rules, whose dependency graph and SCC
// partition are computed once (spec §3: "SCC partition ... rebuilt after
// theory is finalized"). learner may be nil under WellFounded semantics
// (no clause is ever asserted); justifier may be nil, and is stored but
// never consulted by Propagate. logger and metrics may be nil, in
// which case a standard logger and an unregistered Metrics are used.
func New(rules []*Rule, semantics Semantics, strategy Strategy, tr *trail.Trail, wr *watch.Registry, learner ClauseLearner, justifier AggregateJustifier, logger *logrus.Logger, metrics *telemetry.Metrics) *Propagator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if metrics == nil {
		metrics = telemetry.Noop()
	}
	graph := BuildDependencyGraph(rules)
	p := &Propagator{
		rules:     rules,
		graph:     graph,
		scc:       ComputeSCC(graph),
		semantics: semantics,
		strategy:  strategy,
		tr:        tr,
		wr:        wr,
		learner:   learner,
		justifier: justifier,
		logger:    logger,
		metrics:   metrics,
		state:     make(map[lit.Atom]Justification),
	}
	seen := make(map[lit.Atom]bool)
	for _, r := range rules {
		if !seen[r.Head] {
			seen[r.Head] = true
			p.atoms = append(p.atoms, r.Head)
			p.state[r.Head] = JustUnknown
		}
		for _, l := range r.Body {
			wr.AddStatic(l, p)
			wr.AddStatic(l.Not(), p)
		}
	}
	sort.Slice(p.atoms, func(i, j int) bool { return p.atoms[i] < p.atoms[j] })
	tr.RegisterHook(p)
	return p
}

// Notify implements watch.Watcher.
func (p *Propagator) Notify(lit.Literal) { _ = p.Propagate() }

// Backtrack implements trail.BacktrackHook: every defined atom whose own
// assignment was undone has its justification state reset to JustUnknown;
// the next Propagate call re-derives the state of every defined atom.
func (p *Propagator) Backtrack(undone []trail.Entry) {
	for _, e := range undone {
		if _, ok := p.state[e.Lit.Atom()]; ok {
			p.state[e.Lit.Atom()] = JustUnknown
		}
	}
}

// Propagate re-derives justification state for every defined atom and, for
// any cyclic component that can no longer support its members, asserts the
// resulting unfounded set (spec §4.4).
func (p *Propagator) Propagate() error {
	checked := make(map[int]bool) // component id -> already attempted this pass
	for _, a := range p.atoms {
		if p.tr.Value(lit.Pos(a)) == trail.False {
			p.state[a] = JustUnfounded
			continue
		}

		// Cycle members can look "live" under a plain, U-less liveness
		// check merely because their recursive partner is still unknown;
		// only the unfounded-set fixpoint (which treats a positive
		// literal inside the candidate set as non-support) can tell
		// whether the cycle has any real external backing. Acyclic atoms
		// need nothing heavier than the plain check.
		if id, inDefGraph := p.scc.ComponentOf(a); inDefGraph && p.scc.InCycle(a, p.graph) {
			if checked[id] {
				continue
			}
			checked[id] = true
			if err := p.resolveUnfoundedComponent(id, a); err != nil {
				return err
			}
			continue
		}

		if p.hasLiveRule(a, nil) {
			p.state[a] = JustSupported
		} else if err := p.assertUnfoundedSet(map[lit.Atom]bool{a: true}); err != nil {
			return err
		}
	}
	return nil
}

// hasLiveRule reports whether a has at least one rule not trapped by the
// current trail and (if non-nil) the candidate unfounded set U.
func (p *Propagator) hasLiveRule(a lit.Atom, U map[lit.Atom]bool) bool {
	for _, r := range p.graph.RulesFor(a) {
		if !p.ruleTrapped(r, U) {
			return true
		}
	}
	return len(p.graph.RulesFor(a)) == 0
}

// ruleTrapped reports whether r can never again fire: a conjunctive body
// is trapped by any false literal, or any positive literal whose atom is a
// member of the candidate set U (spec §4.4: "every rule either has a false
// body literal or a body literal inside U").
func (p *Propagator) ruleTrapped(r *Rule, U map[lit.Atom]bool) bool {
	for _, l := range r.Body {
		if p.tr.Value(l) == trail.False {
			return true
		}
		if !l.Negated() && U != nil && U[l.Atom()] {
			return true
		}
	}
	return false
}

// resolveUnfoundedComponent computes the greatest unfounded subset of the
// SCC containing seed and, if non-empty, asserts the corresponding loop
// formula. Strategy only changes the order candidates are (re-)examined
// in, not the fixpoint reached. Both strategies examine seed (the atom
// that triggered this pass) first. BFS then takes the other members in
// ascending atom order; it does not follow dependency edges. Adaptive
// takes the other members in the SCC's member order.
func (p *Propagator) resolveUnfoundedComponent(id int, seed lit.Atom) error {
	p.metrics.UnfoundedSetSearches.Inc()
	p.logger.WithField("component", id).WithField("seed", seed).Debug("searching for unfounded set")
	members := p.scc.Members(id)
	U := make(map[lit.Atom]bool, len(members))
	for _, a := range members {
		if p.tr.Value(lit.Pos(a)) != trail.False {
			U[a] = true
		}
	}
	if len(U) == 0 {
		return nil
	}

	order := p.orderCandidates(members, seed)
	for {
		changed := false
		for _, a := range order {
			if !U[a] {
				continue
			}
			if p.hasLiveRule(a, U) {
				delete(U, a)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	if len(U) == 0 {
		return nil
	}
	return p.assertUnfoundedSet(U)
}

func (p *Propagator) orderCandidates(members []lit.Atom, seed lit.Atom) []lit.Atom {
	out := make([]lit.Atom, 0, len(members))
	out = append(out, seed)
	rest := make([]lit.Atom, 0, len(members))
	for _, a := range members {
		if a != seed {
			rest = append(rest, a)
		}
	}
	if p.strategy == BFS {
		sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	}
	return append(out, rest...)
}

// assertUnfoundedSet forces every atom in U false (WellFounded) or learns
// its loop-formula clause (Stable): {not a} union ExternalLits(a), which
// degenerates to the unit clause {not a} when a has no rule with a body
// literal outside U.
func (p *Propagator) assertUnfoundedSet(U map[lit.Atom]bool) error {
	atoms := make([]lit.Atom, 0, len(U))
	for a := range U {
		atoms = append(atoms, a)
	}
	sort.Slice(atoms, func(i, j int) bool { return atoms[i] < atoms[j] })

	for _, a := range atoms {
		external := p.externalLits(a, U)
		switch p.semantics {
		case WellFounded:
			// ClauseLits carries only the antecedents (spec's
			// ReasonDefinition convention matches ReasonAggregate/
			// ReasonClause: the derived literal itself is never part of
			// its own reason), so mirroring this entry into the clause
			// database later teaches the real implication external -> a,
			// not a tautology.
			if err := p.tr.Assign(lit.Neg(a), trail.Reason{
				Kind:       trail.ReasonDefinition,
				DefLoop:    true,
				ClauseLits: external,
			}); err != nil {
				return err
			}
		case Stable:
			if p.learner != nil {
				clause := append([]lit.Literal{lit.Neg(a)}, external...)
				p.learner.AddClause(clause)
			}
		}
		p.state[a] = JustUnfounded
	}
	return nil
}

// externalLits collects, over every rule defining a, the body literals
// that are not already false and are not a positive literal pointing back
// into U: the witnesses that would have to hold for some rule of a to ever
// fire despite U's removal (the standard ASP loop-formula construction,
// specialized per-atom).
func (p *Propagator) externalLits(a lit.Atom, U map[lit.Atom]bool) []lit.Literal {
	seen := make(map[lit.Literal]bool)
	var out []lit.Literal
	for _, r := range p.graph.RulesFor(a) {
		for _, l := range r.Body {
			if p.tr.Value(l) == trail.False {
				continue
			}
			if !l.Negated() && U[l.Atom()] {
				continue
			}
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}
