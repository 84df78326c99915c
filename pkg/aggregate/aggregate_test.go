package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverkit/pcengine/internal/trail"
	"github.com/solverkit/pcengine/internal/watch"
	"github.com/solverkit/pcengine/pkg/lit"
	"github.com/solverkit/pcengine/pkg/weight"
)

func w(v int64) weight.Weight { return weight.Int64Backend.FromInt64(v) }

// TestCardinalityForcesRemainingLiterals exercises spec scenario S2: a
// CARD(S) >= 3 aggregate whose head is already forced true, and two of its
// five set literals forced false, must force the remaining three true.
func TestCardinalityForcesRemainingLiterals(t *testing.T) {
	tr := trail.New()
	wr := watch.New()
	backend := weight.Int64Backend

	lits := []lit.Literal{lit.Pos(1), lit.Pos(2), lit.Pos(3), lit.Pos(4), lit.Pos(5)}
	weights := []weight.Weight{w(1), w(1), w(1), w(1), w(1)}
	set, err := NewTypedSet(1, Card, backend, lits, weights)
	require.NoError(t, err)

	head := lit.Pos(100)
	agg := &Agg{ID: 1, SetID: 1, Bound: w(3), Sense: GE, Semantics: Equivalence, Head: head}

	p := NewFW(set, []*Agg{agg}, backend, tr, wr)

	require.NoError(t, tr.Assign(head, trail.Reason{Kind: trail.ReasonClause}))
	require.NoError(t, tr.Assign(lit.Neg(1), trail.Reason{Kind: trail.ReasonClause}))
	require.NoError(t, tr.Assign(lit.Neg(2), trail.Reason{Kind: trail.ReasonClause}))

	require.NoError(t, p.Propagate())

	assert.Equal(t, trail.True, tr.Value(lit.Pos(3)))
	assert.Equal(t, trail.True, tr.Value(lit.Pos(4)))
	assert.Equal(t, trail.True, tr.Value(lit.Pos(5)))
}

// TestSumUpperBoundPropagatesFalseHeadWithMinimalExplanation exercises
// spec scenario S4.
func TestSumUpperBoundPropagatesFalseHeadWithMinimalExplanation(t *testing.T) {
	tr := trail.New()
	wr := watch.New()
	backend := weight.Int64Backend

	lits := []lit.Literal{lit.Pos(1), lit.Pos(2), lit.Pos(3)}
	weights := []weight.Weight{w(3), w(5), w(7)}
	set, err := NewTypedSet(1, Sum, backend, lits, weights)
	require.NoError(t, err)

	head := lit.Pos(100)
	agg := &Agg{ID: 1, SetID: 1, Bound: w(8), Sense: LE, Semantics: Equivalence, Head: head}

	p := NewFW(set, []*Agg{agg}, backend, tr, wr)

	require.NoError(t, tr.Assign(lit.Pos(3), trail.Reason{Kind: trail.ReasonDecision}))
	require.NoError(t, p.Propagate())
	assert.Equal(t, trail.Unknown, tr.Value(head))

	require.NoError(t, tr.Assign(lit.Pos(2), trail.Reason{Kind: trail.ReasonDecision}))
	require.NoError(t, p.Propagate())

	assert.Equal(t, trail.False, tr.Value(head))
	reason, ok := tr.ReasonOf(head.Atom())
	require.True(t, ok)
	assert.ElementsMatch(t, []lit.Literal{lit.Pos(2), lit.Pos(3)}, reason.ClauseLits)
}

// TestProductRejectsZeroWeight exercises spec scenario S5.
func TestProductRejectsZeroWeight(t *testing.T) {
	backend := weight.Int64Backend
	_, err := NewTypedSet(1, Prod, backend,
		[]lit.Literal{lit.Pos(1), lit.Pos(2)},
		[]weight.Weight{w(2), w(0)},
	)
	require.Error(t, err)
}

func TestSumReducesNegativeWeights(t *testing.T) {
	backend := weight.Int64Backend
	set, err := NewTypedSet(1, Sum, backend,
		[]lit.Literal{lit.Pos(1), lit.Pos(2)},
		[]weight.Weight{w(-3), w(4)},
	)
	require.NoError(t, err)
	assert.Equal(t, lit.Neg(1), set.Lits[0])
	assert.Equal(t, 0, set.Weights[0].Cmp(w(3)))
	assert.Equal(t, 0, set.offset.Cmp(w(-3)))
}

func TestPartiallyWatchedSelectedAboveThreshold(t *testing.T) {
	tr := trail.New()
	wr := watch.New()
	backend := weight.Int64Backend

	lits := make([]lit.Literal, FWThreshold+1)
	weights := make([]weight.Weight, FWThreshold+1)
	for i := range lits {
		lits[i] = lit.Pos(lit.Atom(i + 1))
		weights[i] = w(1)
	}
	set, err := NewTypedSet(1, Card, backend, lits, weights)
	require.NoError(t, err)

	agg := &Agg{ID: 1, SetID: 1, Bound: w(1), Sense: GE, Semantics: Definitional, Head: lit.Pos(1000)}
	p := NewFor(set, []*Agg{agg}, backend, tr, wr)
	_, isPW := p.(*PWPropagator)
	assert.True(t, isPW)
}
