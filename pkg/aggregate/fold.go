package aggregate

import (
	"github.com/solverkit/pcengine/internal/trail"
	"github.com/solverkit/pcengine/pkg/weight"
)

// fold describes how a Kind accumulates weights into a value, naming the
// running quantities CBC (current best certain) and CBP (current best
// possible) after FullyWatched.hpp/AggSolver.hpp in original_source: CBC
// folds only the literals already true, CBP extends that fold with every
// literal not yet known false.
//
// For Sum, Card, Prod and Max the fold is monotonically increasing as more
// literals turn true, so the eventual value lies in [CBC, CBP]. Min runs
// the opposite direction (more true literals can only pull the minimum
// down), so its eventual value lies in [CBP, CBC]; increasing is false for
// Min and every comparison below is read with that flip in mind.
type fold struct {
	zero       func(weight.Backend) weight.Weight
	combine    func(acc, w weight.Weight) weight.Weight
	increasing bool
}

func foldFor(k Kind) fold {
	switch k {
	case Prod:
		return fold{
			zero:       weight.Backend.One,
			combine:    func(acc, w weight.Weight) weight.Weight { return acc.Mul(w) },
			increasing: true,
		}
	case Max:
		return fold{
			zero:       weight.Backend.NegInf,
			combine:    func(acc, w weight.Weight) weight.Weight { return maxOf(acc, w) },
			increasing: true,
		}
	case Min:
		return fold{
			zero:       weight.Backend.PosInf,
			combine:    func(acc, w weight.Weight) weight.Weight { return minOf(acc, w) },
			increasing: false,
		}
	default: // Sum, Card
		return fold{
			zero:       weight.Backend.Zero,
			combine:    func(acc, w weight.Weight) weight.Weight { return acc.Add(w) },
			increasing: true,
		}
	}
}

func maxOf(a, b weight.Weight) weight.Weight {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func minOf(a, b weight.Weight) weight.Weight {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// cbcCbp folds s's literals against tr, returning (CBC, CBP): CBC includes
// only literals currently true, CBP additionally includes literals whose
// atom is not yet assigned (i.e. not currently false).
func cbcCbp(s *TypedSet, tr *trail.Trail, backend weight.Backend) (weight.Weight, weight.Weight) {
	f := foldFor(s.Kind)
	cbc := f.zero(backend)
	cbp := f.zero(backend)
	for i, l := range s.Lits {
		w := s.Weights[i]
		switch tr.Value(l) {
		case trail.True:
			cbc = f.combine(cbc, w)
			cbp = f.combine(cbp, w)
		case trail.Unknown:
			cbp = f.combine(cbp, w)
		}
	}
	cbc = cbc.Add(s.offset)
	cbp = cbp.Add(s.offset)
	return cbc, cbp
}

// CBCCBP exposes cbcCbp for callers outside the package (the engine
// coordinator's minimize-objective tightening reads a set's current
// possible value between models without duplicating the fold).
func CBCCBP(s *TypedSet, tr *trail.Trail, backend weight.Backend) (weight.Weight, weight.Weight) {
	return cbcCbp(s, tr, backend)
}

// extendWithTrue computes the CBC/CBP extension that would result from
// additionally counting l as true, used to test whether forcing l true
// would already violate the bound (the head -> aggregate propagation
// direction).
func extendWithTrue(s *TypedSet, idx int, base weight.Weight) weight.Weight {
	f := foldFor(s.Kind)
	return f.combine(base, s.Weights[idx])
}
