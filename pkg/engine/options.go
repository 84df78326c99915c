package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/solverkit/pcengine/pkg/definition"
	"github.com/solverkit/pcengine/pkg/weight"
)

// Options configures a new Engine (spec §6's create_engine options),
// generalizing the teacher's functional-options solver.Option pattern: a
// value type built up by applying Option funcs over a struct of defaults,
// rather than a constructor with a long positional parameter list.
type Options struct {
	WeightBackend     weight.Backend
	DefinitionMode    definition.Semantics
	UnfoundedStrategy definition.Strategy
	ExpandLazyImmediately bool
	Logger            *logrus.Logger
	Registerer        prometheus.Registerer
}

// Option mutates Options during construction.
type Option func(*Options) error

func defaults() []Option {
	return []Option{
		WithWeightBackend(weight.Int64Backend),
		WithDefinitionSemantics(definition.WellFounded),
		WithUnfoundedStrategy(definition.BFS),
		WithLogger(logrus.StandardLogger()),
	}
}

// WithWeightBackend selects the arithmetic backend aggregate propagation
// uses (Int64 saturating or BigInt).
func WithWeightBackend(b weight.Backend) Option {
	return func(o *Options) error {
		o.WeightBackend = b
		return nil
	}
}

// WithDefinitionSemantics selects well-founded or stable handling of
// inductive definitions.
func WithDefinitionSemantics(s definition.Semantics) Option {
	return func(o *Options) error {
		o.DefinitionMode = s
		return nil
	}
}

// WithUnfoundedStrategy selects the unfounded-set search order.
func WithUnfoundedStrategy(s definition.Strategy) Option {
	return func(o *Options) error {
		o.UnfoundedStrategy = s
		return nil
	}
}

// WithExpandLazyImmediately makes lazy residuals fire as soon as their
// atom is decidable rather than waiting for the configured trigger value.
func WithExpandLazyImmediately(v bool) Option {
	return func(o *Options) error {
		o.ExpandLazyImmediately = v
		return nil
	}
}

// WithLogger installs a structured logger. Caller options are applied after
// defaults, so WithLogger(nil) leaves Options.Logger nil; the Engine then
// falls back to logrus's standard logger when it logs.
func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) error {
		o.Logger = l
		return nil
	}
}

// WithRegisterer enables Prometheus metrics, registering every counter
// against reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) error {
		o.Registerer = reg
		return nil
	}
}

func buildOptions(opts ...Option) (Options, error) {
	var o Options
	for _, apply := range append(defaults(), opts...) {
		if err := apply(&o); err != nil {
			return Options{}, err
		}
	}
	return o, nil
}
