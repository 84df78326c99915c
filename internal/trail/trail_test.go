package trail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solverkit/pcengine/pkg/lit"
)

type recordingHook struct {
	calls [][]Entry
}

func (h *recordingHook) Backtrack(undone []Entry) {
	h.calls = append(h.calls, undone)
}

func TestAssignAndValue(t *testing.T) {
	tr := New()
	a := lit.Atom(1)
	assert.Equal(t, Unknown, tr.Value(lit.Pos(a)))

	assert.NoError(t, tr.Assign(lit.Pos(a), Reason{Kind: ReasonDecision}))
	assert.Equal(t, True, tr.Value(lit.Pos(a)))
	assert.Equal(t, False, tr.Value(lit.Neg(a)))
}

func TestAssignConflictRejected(t *testing.T) {
	tr := New()
	a := lit.Atom(1)
	assert.NoError(t, tr.Assign(lit.Pos(a), Reason{Kind: ReasonDecision}))
	err := tr.Assign(lit.Neg(a), Reason{Kind: ReasonDecision})
	assert.Error(t, err)
}

func TestTimeMonotonicity(t *testing.T) {
	tr := New()
	var times []int64
	for i := lit.Atom(1); i <= 5; i++ {
		assert.NoError(t, tr.Assign(lit.Pos(i), Reason{Kind: ReasonDecision}))
		ts, ok := tr.Time(lit.Pos(i))
		assert.True(t, ok)
		times = append(times, ts)
	}
	for i := 1; i < len(times); i++ {
		assert.Greater(t, times[i], times[i-1])
	}
}

func TestBacktrackDropsAboveLevelAndNotifiesHooks(t *testing.T) {
	tr := New()
	hook := &recordingHook{}
	tr.RegisterHook(hook)

	assert.NoError(t, tr.Assign(lit.Pos(1), Reason{Kind: ReasonDecision})) // level 0

	tr.NewDecisionLevel() // level 1
	assert.NoError(t, tr.Assign(lit.Pos(2), Reason{Kind: ReasonDecision}))
	assert.NoError(t, tr.Assign(lit.Pos(3), Reason{Kind: ReasonClause}))

	tr.NewDecisionLevel() // level 2
	assert.NoError(t, tr.Assign(lit.Pos(4), Reason{Kind: ReasonDecision}))

	tr.BacktrackTo(1)

	assert.Equal(t, 1, tr.Level())
	assert.Equal(t, True, tr.Value(lit.Pos(1)))
	assert.Equal(t, True, tr.Value(lit.Pos(2)))
	assert.Equal(t, True, tr.Value(lit.Pos(3)))
	assert.Equal(t, Unknown, tr.Value(lit.Pos(4)))

	lv, ok := tr.LevelOf(lit.Pos(2))
	assert.True(t, ok)
	assert.LessOrEqual(t, lv, 1)

	assert.Len(t, hook.calls, 1)
	assert.Len(t, hook.calls[0], 1)
	assert.Equal(t, lit.Pos(4), hook.calls[0][0].Lit)
}

func TestBacktrackThenReassignReusesLevel(t *testing.T) {
	tr := New()
	assert.NoError(t, tr.Assign(lit.Pos(1), Reason{Kind: ReasonDecision}))
	tr.NewDecisionLevel()
	assert.NoError(t, tr.Assign(lit.Pos(2), Reason{Kind: ReasonDecision}))
	tr.BacktrackTo(0)
	assert.Equal(t, Unknown, tr.Value(lit.Pos(2)))

	tr.NewDecisionLevel()
	assert.NoError(t, tr.Assign(lit.Pos(3), Reason{Kind: ReasonDecision}))
	assert.Equal(t, True, tr.Value(lit.Pos(3)))
	assert.Equal(t, 1, tr.Level())
}
