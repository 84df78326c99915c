package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverkit/pcengine/internal/trail"
	"github.com/solverkit/pcengine/internal/watch"
	"github.com/solverkit/pcengine/pkg/lit"
)

func loopRules() []*Rule {
	a, b := lit.Atom(1), lit.Atom(2)
	return []*Rule{
		{ID: 1, Head: a, Body: []lit.Literal{lit.Pos(b)}},
		{ID: 2, Head: b, Body: []lit.Literal{lit.Pos(a)}},
	}
}

// TestUnfoundedLoopWellFoundedForcesBothFalse exercises spec scenario S3
// under well-founded semantics.
func TestUnfoundedLoopWellFoundedForcesBothFalse(t *testing.T) {
	tr := trail.New()
	wr := watch.New()
	p := New(loopRules(), WellFounded, BFS, tr, wr, nil, nil, nil, nil)

	require.NoError(t, p.Propagate())

	assert.Equal(t, trail.False, tr.Value(lit.Pos(1)))
	assert.Equal(t, trail.False, tr.Value(lit.Pos(2)))
}

type fakeLearner struct {
	clauses [][]lit.Literal
}

func (f *fakeLearner) AddClause(lits []lit.Literal) {
	f.clauses = append(f.clauses, lits)
}

// TestUnfoundedLoopStableAssertsLoopFormula exercises spec scenario S3
// under stable semantics: rather than a direct assignment, the loop
// formula is learned as two unit clauses (no external support literals),
// matching "a ∨ b -> ⊥".
func TestUnfoundedLoopStableAssertsLoopFormula(t *testing.T) {
	tr := trail.New()
	wr := watch.New()
	learner := &fakeLearner{}
	p := New(loopRules(), Stable, BFS, tr, wr, learner, nil, nil, nil)

	require.NoError(t, p.Propagate())

	assert.Equal(t, trail.Unknown, tr.Value(lit.Pos(1)))
	require.Len(t, learner.clauses, 2)
	assert.ElementsMatch(t, []lit.Literal{lit.Neg(1)}, learner.clauses[0])
	assert.ElementsMatch(t, []lit.Literal{lit.Neg(2)}, learner.clauses[1])
}

func TestDependencyGraphAndSCC(t *testing.T) {
	g := BuildDependencyGraph(loopRules())
	scc := ComputeSCC(g)
	id1, ok := scc.ComponentOf(lit.Atom(1))
	require.True(t, ok)
	id2, ok := scc.ComponentOf(lit.Atom(2))
	require.True(t, ok)
	assert.Equal(t, id1, id2)
	assert.True(t, scc.InCycle(lit.Atom(1), g))
}

// TestAcyclicUnsupportedAtomForcedFalse covers the plain (non-cyclic)
// completion path: a rule whose only body literal is false leaves the
// head with no way to ever be justified.
func TestAcyclicUnsupportedAtomForcedFalse(t *testing.T) {
	tr := trail.New()
	wr := watch.New()
	c := lit.Atom(3)
	rules := []*Rule{{ID: 1, Head: c, Body: []lit.Literal{lit.Pos(lit.Atom(4))}}}
	require.NoError(t, tr.Assign(lit.Neg(4), trail.Reason{Kind: trail.ReasonDecision}))

	p := New(rules, WellFounded, BFS, tr, wr, nil, nil, nil, nil)
	require.NoError(t, p.Propagate())

	assert.Equal(t, trail.False, tr.Value(lit.Pos(c)))
}
