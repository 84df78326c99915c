package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solverkit/pcengine/pkg/lit"
)

type countingWatcher struct {
	n int
}

func (c *countingWatcher) Notify(lit.Literal) { c.n++ }

func TestStaticFires(t *testing.T) {
	r := New()
	w := &countingWatcher{}
	r.AddStatic(lit.Pos(1), w)
	r.FireStatic(lit.Pos(1))
	r.FireStatic(lit.Pos(1))
	assert.Equal(t, 2, w.n)
}

func TestDynamicMoveAndBacktrack(t *testing.T) {
	r := New()
	w := &countingWatcher{}
	id := r.AddDynamic(lit.Pos(1), w)

	r.NewDecisionLevel() // level 1
	r.Move(id, lit.Pos(1), lit.Pos(2), w)

	r.FireDynamic(lit.Pos(2))
	assert.Equal(t, 1, w.n)
	r.FireDynamic(lit.Pos(1))
	assert.Equal(t, 1, w.n) // not watching lit 1 anymore

	r.BacktrackTo(0)
	r.FireDynamic(lit.Pos(1))
	assert.Equal(t, 2, w.n) // watch restored to lit 1
	r.FireDynamic(lit.Pos(2))
	assert.Equal(t, 2, w.n) // no longer watching lit 2
}

func TestHeadFires(t *testing.T) {
	r := New()
	w := &countingWatcher{}
	r.AddHead(lit.Pos(7), w)
	r.FireHead(lit.Pos(7))
	assert.Equal(t, 1, w.n)
}
