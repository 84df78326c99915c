package aggregate

import (
	"fmt"
	"sort"

	"github.com/solverkit/pcengine/internal/trail"
	"github.com/solverkit/pcengine/internal/watch"
	"github.com/solverkit/pcengine/pcerr"
	"github.com/solverkit/pcengine/pkg/lit"
	"github.com/solverkit/pcengine/pkg/weight"
)

// reach returns (lowerReach, upperReach): the interval the aggregate's
// eventual value is guaranteed to fall within given the current trail, with
// the fold's direction (see fold.go) already accounted for so callers never
// need to branch on Kind.
func reach(s *TypedSet, tr *trail.Trail, backend weight.Backend) (weight.Weight, weight.Weight) {
	cbc, cbp := cbcCbp(s, tr, backend)
	if foldFor(s.Kind).increasing {
		return cbc, cbp
	}
	return cbp, cbc
}

// Propagator drives one TypedSet's Agg constraints off trail assignments.
// FW registers a static watch on every literal in the set (spec §4.2's
// fully-watched scheme, original_source's FullyWatched.hpp); construction
// cost is O(1) per literal and each propagation pass rescans the whole set,
// which is cheap enough below the FW/PW size threshold (NewFor).
type Propagator struct {
	set     *TypedSet
	aggs    []*Agg
	backend weight.Backend
	tr      *trail.Trail
	wr      *watch.Registry
}

// NewFW returns a Propagator that watches every literal in set statically.
func NewFW(set *TypedSet, aggs []*Agg, backend weight.Backend, tr *trail.Trail, wr *watch.Registry) *Propagator {
	p := &Propagator{set: set, aggs: aggs, backend: backend, tr: tr, wr: wr}
	for _, l := range set.Lits {
		wr.AddStatic(l, p)
		wr.AddStatic(l.Not(), p)
	}
	for _, a := range aggs {
		wr.AddHead(a.Head, p)
		wr.AddHead(a.Head.Not(), p)
	}
	tr.RegisterHook(p)
	return p
}

// FWThreshold is the set-size boundary NewFor uses to choose between the
// fully-watched and partially-watched schemes (spec §4.2).
const FWThreshold = 16

// NewFor builds whichever propagator scheme fits set's size: NewFW below
// FWThreshold literals, NewPW at or above it.
func NewFor(set *TypedSet, aggs []*Agg, backend weight.Backend, tr *trail.Trail, wr *watch.Registry) interface {
	Propagate() error
} {
	if len(set.Lits) < FWThreshold {
		return NewFW(set, aggs, backend, tr, wr)
	}
	return NewPW(set, aggs, backend, tr, wr)
}

// Notify implements watch.Watcher: any relevant literal changing truth
// value re-triggers a full propagation pass.
func (p *Propagator) Notify(lit.Literal) { _ = p.Propagate() }

// Backtrack implements trail.BacktrackHook. A full rescan on the next
// Notify/Propagate call is always correct since Propagate never trusts
// stale state; there is nothing to undo here.
func (p *Propagator) Backtrack([]trail.Entry) {}

// Propagate re-evaluates every Agg sharing this set against the current
// trail once, assigning heads and (under Implication/Equivalence
// semantics) forcing set literals. It makes a single pass; the engine's
// runTheoryFixpoint calls it again until the trail stops growing.
func (p *Propagator) Propagate() error {
	for _, a := range p.aggs {
		if err := p.propagateAgg(a); err != nil {
			return err
		}
	}
	return nil
}

func (p *Propagator) propagateAgg(a *Agg) error {
	if a.Semantics.aggToHeadAllowed() {
		if err := p.propagateValueToHead(a); err != nil {
			return err
		}
	}
	if a.Semantics.headToAggAllowed() {
		if err := p.propagateHeadToValue(a); err != nil {
			return err
		}
	}
	return nil
}

func (p *Propagator) propagateValueToHead(a *Agg) error {
	lower, upper := reach(p.set, p.tr, p.backend)
	if lower.Overflowed() || upper.Overflowed() {
		return pcerr.NewOverflow(fmt.Errorf("set %d aggregate %d: bound check overflowed under the %s backend", p.set.ID, a.ID, p.backend.Kind()))
	}
	switch a.Sense {
	case LE:
		if lower.Cmp(a.Bound) > 0 {
			return p.assignHead(a, false, p.explainExceedsBound(a))
		}
		if upper.Cmp(a.Bound) <= 0 {
			return p.assignHead(a, true, p.explainWithinBound(a))
		}
	case GE:
		if upper.Cmp(a.Bound) < 0 {
			return p.assignHead(a, false, p.explainBelowBound(a))
		}
		if lower.Cmp(a.Bound) >= 0 {
			return p.assignHead(a, true, p.explainReachesBound(a))
		}
	}
	return nil
}

// propagateHeadToValue is only meaningful once Head is assigned; it forces
// individual still-unknown set literals when leaving them free could
// contradict what Head asserts.
func (p *Propagator) propagateHeadToValue(a *Agg) error {
	hv := p.tr.Value(a.Head)
	if hv == trail.Unknown {
		return nil
	}
	if lower, upper := reach(p.set, p.tr, p.backend); lower.Overflowed() || upper.Overflowed() {
		return pcerr.NewOverflow(fmt.Errorf("set %d aggregate %d: bound check overflowed under the %s backend", p.set.ID, a.ID, p.backend.Kind()))
	}
	holds := hv == trail.True
	increasing := foldFor(p.set.Kind).increasing

	for idx, l := range p.set.Lits {
		if p.tr.Value(l) != trail.Unknown {
			continue
		}
		// Would forcing l true break the asserted relation?
		if wouldForcingTrueViolate(p.set, p.tr, p.backend, idx, a, holds, increasing) {
			if err := p.assignSetLit(a, l.Not(), headReason(a)); err != nil {
				return err
			}
			continue
		}
		// Would forcing l false (leaving it out for good) break the
		// asserted relation?
		if wouldForcingFalseViolate(p.set, p.tr, p.backend, idx, a, holds, increasing) {
			if err := p.assignSetLit(a, l, headReason(a)); err != nil {
				return err
			}
		}
	}
	return nil
}

func wouldForcingTrueViolate(s *TypedSet, tr *trail.Trail, backend weight.Backend, idx int, a *Agg, holds, increasing bool) bool {
	cbc, _ := cbcCbp(s, tr, backend)
	extended := extendWithTrue(s, idx, cbc)
	lower := extended
	if !increasing {
		// Forcing true can only move a decreasing fold down, never up;
		// it cannot break an upper-style relation.
		return false
	}
	switch a.Sense {
	case LE:
		return holds && lower.Cmp(a.Bound) > 0
	case GE:
		return !holds && lower.Cmp(a.Bound) >= 0
	}
	return false
}

func wouldForcingFalseViolate(s *TypedSet, tr *trail.Trail, backend weight.Backend, idx int, a *Agg, holds, increasing bool) bool {
	if !increasing {
		return false
	}
	// Only the GE+holds case has a sound generic rule here: if head
	// asserts value >= bound and excluding this literal would already
	// drop CBP below bound, it is the last thing propping the bound up
	// and must be forced true. The symmetric LE case would need to prove
	// a *lower* bound from exclusion, which cbpExcluding does not track.
	if a.Sense != GE || !holds {
		return false
	}
	excluded := cbpExcluding(s, tr, backend, idx)
	return excluded.Cmp(a.Bound) < 0
}

// cbpExcluding recomputes CBP as if set literal idx were already known
// false, used by the head -> value direction to test whether a single
// remaining literal is the last thing propping the bound up.
func cbpExcluding(s *TypedSet, tr *trail.Trail, backend weight.Backend, excludeIdx int) weight.Weight {
	f := foldFor(s.Kind)
	cbp := f.zero(backend)
	for i, l := range s.Lits {
		if i == excludeIdx {
			continue
		}
		if tr.Value(l) != trail.False {
			cbp = f.combine(cbp, s.Weights[i])
		}
	}
	return cbp.Add(s.offset)
}

func (p *Propagator) assignHead(a *Agg, value bool, explanation []lit.Literal) error {
	l := a.Head
	if !value {
		l = l.Not()
	}
	return p.tr.Assign(l, trail.Reason{
		Kind:    trail.ReasonAggregate,
		AggSetID: p.set.ID,
		AggID:   a.ID,
		AggRole: trail.HeadProp,
		ClauseLits: explanation,
	})
}

func (p *Propagator) assignSetLit(a *Agg, l lit.Literal, explanation []lit.Literal) error {
	role := trail.PosInSet
	if l.Negated() {
		role = trail.NegInSet
	}
	return p.tr.Assign(l, trail.Reason{
		Kind:       trail.ReasonAggregate,
		AggSetID:   p.set.ID,
		AggID:      a.ID,
		AggRole:    role,
		ClauseLits: explanation,
	})
}

func headReason(a *Agg) []lit.Literal {
	hv := a.Head
	return []lit.Literal{hv}
}

// explainExceedsBound synthesizes a minimal antecedent for "head is false
// because the value already exceeds its upper bound": a time-ordered walk
// over the set's true literals, stopping as soon as the running fold
// crosses the bound (spec §4.3's minimal-explanation requirement).
func (p *Propagator) explainExceedsBound(a *Agg) []lit.Literal {
	return p.walkTrueUntil(a, func(acc weight.Weight) bool { return acc.Cmp(a.Bound) > 0 })
}

func (p *Propagator) explainReachesBound(a *Agg) []lit.Literal {
	return p.walkTrueUntil(a, func(acc weight.Weight) bool { return acc.Cmp(a.Bound) >= 0 })
}

// walkTrueUntil orders the set's currently-true literals by trail
// assignment time and returns the shortest time-ordered prefix whose fold
// satisfies stop.
func (p *Propagator) walkTrueUntil(a *Agg, stop func(weight.Weight) bool) []lit.Literal {
	type entry struct {
		l    lit.Literal
		w    weight.Weight
		time int64
	}
	var entries []entry
	for i, l := range p.set.Lits {
		if p.tr.Value(l) == trail.True {
			t, _ := p.tr.Time(l)
			entries = append(entries, entry{l: l, w: p.set.Weights[i], time: t})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].time < entries[j].time })

	f := foldFor(p.set.Kind)
	acc := f.zero(p.backend).Add(p.set.offset)
	out := make([]lit.Literal, 0, len(entries))
	for _, e := range entries {
		acc = f.combine(acc, e.w)
		out = append(out, e.l)
		if stop(acc) {
			break
		}
	}
	return out
}

// explainWithinBound and explainBelowBound synthesize the antecedent for a
// head assignment derived from the CBP/lower-reach side: the time-ordered
// set of false literals whose exclusion is what keeps the value inside
// bound, found the symmetric way to walkTrueUntil but walking false
// literals and checking the running exclusion via cbpExcluding-style
// rescans (kept O(n) per step since scenario-scale sets are small).
func (p *Propagator) explainWithinBound(a *Agg) []lit.Literal {
	return p.walkFalseUntil(func(cbp weight.Weight) bool { return cbp.Cmp(a.Bound) <= 0 })
}

func (p *Propagator) explainBelowBound(a *Agg) []lit.Literal {
	return p.walkFalseUntil(func(cbp weight.Weight) bool { return cbp.Cmp(a.Bound) < 0 })
}

func (p *Propagator) walkFalseUntil(stop func(weight.Weight) bool) []lit.Literal {
	type entry struct {
		idx  int
		l    lit.Literal
		time int64
	}
	var entries []entry
	for i, l := range p.set.Lits {
		if p.tr.Value(l) == trail.False {
			t, _ := p.tr.Time(l.Not())
			entries = append(entries, entry{idx: i, l: l.Not(), time: t})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].time < entries[j].time })

	excluded := make(map[int]bool, len(entries))
	out := make([]lit.Literal, 0, len(entries))
	for _, e := range entries {
		excluded[e.idx] = true
		out = append(out, e.l)
		if stop(cbpExcludingSet(p.set, p.backend, excluded)) {
			break
		}
	}
	return out
}

// cbpExcludingSet folds every set literal except those in excluded, i.e.
// CBP as if only the excluded literals were known false.
func cbpExcludingSet(s *TypedSet, backend weight.Backend, excluded map[int]bool) weight.Weight {
	f := foldFor(s.Kind)
	cbp := f.zero(backend)
	for i := range s.Lits {
		if excluded[i] {
			continue
		}
		cbp = f.combine(cbp, s.Weights[i])
	}
	return cbp.Add(s.offset)
}
