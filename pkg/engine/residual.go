package engine

import (
	"github.com/solverkit/pcengine/pcerr"
	"github.com/solverkit/pcengine/pkg/lit"
)

// ResidualTrigger selects which assignment event fires a lazy residual
// (spec §4.6).
type ResidualTrigger int8

const (
	BecomesDecidable ResidualTrigger = iota
	ValueTrue
	ValueFalse
)

// LazyResidualFunc extends the theory on demand once its trigger fires; it
// receives the engine so it can call AddClause/AddSet/AddAggregate/AddRule
// before the next propagation round (spec §4.6's "added constraints must
// be safe").
type LazyResidualFunc func(e *Engine) error

// residual is one registered lazy-grounding hook. It is two-phase: watch
// until the trigger fires, invoke the callback exactly once, then
// unregister (grounded on original_source's LazyResidual.cpp/hpp
// lifecycle).
type residual struct {
	atom    lit.Atom
	trigger ResidualTrigger
	fn      LazyResidualFunc
	fired   bool
}

func (r *residual) Notify(l lit.Literal) {
	if r.fired {
		return
	}
	r.fired = true
}

// RegisterLazyResidual installs fn to run once atom satisfies trigger
// (spec §6's register_lazy_residual). Registering the same atom+trigger
// pair twice is rejected as a ParseError, mirroring LazyResidual's
// same-atom-same-value double-registration guard.
func (e *Engine) RegisterLazyResidual(atom lit.Atom, trigger ResidualTrigger, fn LazyResidualFunc) error {
	for _, r := range e.residuals {
		if r.atom == atom && r.trigger == trigger {
			return pcerr.NewParseError("lazy residual already registered for atom %d trigger %d", atom, trigger)
		}
	}
	r := &residual{atom: atom, trigger: trigger, fn: fn}
	e.residuals = append(e.residuals, r)

	// ExpandLazyImmediately (spec §6's expand-lazy-immediately flag)
	// overrides any configured polarity: the residual fires the instant
	// its atom is decided at all, rather than waiting for the specific
	// value the caller asked for.
	effectiveTrigger := trigger
	if e.opts.ExpandLazyImmediately {
		effectiveTrigger = BecomesDecidable
	}

	switch effectiveTrigger {
	case ValueTrue:
		e.wr.AddStatic(lit.Pos(atom), r)
	case ValueFalse:
		e.wr.AddStatic(lit.Neg(atom), r)
	case BecomesDecidable:
		e.wr.AddStatic(lit.Pos(atom), r)
		e.wr.AddStatic(lit.Neg(atom), r)
	}
	return nil
}

// runResidualCallbacks invokes and unregisters any residual whose watch
// fired since the last call, called once per theory-fixpoint round so a
// freshly added constraint is seen by the very next propagation pass.
func (e *Engine) runResidualCallbacks() error {
	live := e.residuals[:0]
	for i, r := range e.residuals {
		if !r.fired {
			live = append(live, r)
			continue
		}
		if err := r.fn(e); err != nil {
			e.residuals = append(live, e.residuals[i+1:]...)
			return err
		}
	}
	e.residuals = live
	return nil
}
