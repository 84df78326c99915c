package clausedb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solverkit/pcengine/pkg/lit"
)

func TestNewAtomAllocatesDistinctAtoms(t *testing.T) {
	f := newFakeEngine()
	d := NewWithEngine(f)

	a1 := d.NewAtom()
	a2 := d.NewAtom()
	assert.NotEqual(t, a1, a2)
}

func TestDecideSealsOnNewDecisionLevel(t *testing.T) {
	f := newFakeEngine()
	f.testResults = []int{0, 0}
	d := NewWithEngine(f)

	a, b := lit.Atom(1), lit.Atom(2)
	d.Decide(lit.Pos(a))
	d.Decide(lit.Pos(b))
	assert.Equal(t, 0, d.Level())

	outcome := d.NewDecisionLevel()
	assert.Equal(t, Unknown, outcome)
	assert.Equal(t, 1, d.Level())
	assert.Len(t, f.assumed, 1)
	assert.Len(t, f.assumed[0], 2)
}

func TestBacktrackUnwindsExactlyThatManyLevels(t *testing.T) {
	f := newFakeEngine()
	f.testResults = []int{0, 0, 0}
	d := NewWithEngine(f)

	d.Decide(lit.Pos(1))
	d.NewDecisionLevel()
	d.Decide(lit.Pos(2))
	d.NewDecisionLevel()
	d.Decide(lit.Pos(3))
	d.NewDecisionLevel()
	assert.Equal(t, 3, d.Level())

	d.BacktrackTo(1)
	assert.Equal(t, 1, d.Level())
	assert.Equal(t, 2, f.untestCalls)

	d.BacktrackTo(0)
	assert.Equal(t, 0, d.Level())
	assert.Equal(t, 3, f.untestCalls)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, Sat, outcomeOf(1))
	assert.Equal(t, Unsat, outcomeOf(-1))
	assert.Equal(t, Unknown, outcomeOf(0))
}

func TestAddClauseTerminatesWithNullLiteral(t *testing.T) {
	f := newFakeEngine()
	d := NewWithEngine(f)
	d.AddClause([]lit.Literal{lit.Pos(1), lit.Neg(2)})
	assert.Len(t, f.clauses, 1)
	assert.Len(t, f.clauses[0], 2)
}
