// Package telemetry exposes the engine's Prometheus metrics, following the
// teacher's pkg/metrics convention of one package-level variable per
// concern (csvCount, installPlanCount, ...) updated by a thin method on
// whatever owns that concern, rather than a generic metrics bag threaded
// through every call.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters and gauges the PC-engine coordinator and
// both theory propagators update. Every field is created by New; a
// zero-value Metrics has nil counters and must not be used. An engine that
// never supplies a prometheus.Registerer still gets counters from New(nil)
// that are simply never scraped.
type Metrics struct {
	Decisions         prometheus.Counter
	Conflicts         prometheus.Counter
	Backtracks        prometheus.Counter
	AggregatePropagations prometheus.Counter
	UnfoundedSetSearches  prometheus.Counter
	ModelsFound       prometheus.Counter
}

// New builds a Metrics set and, if reg is non-nil, registers every metric
// against it (mirroring metrics.go's registration-at-construction style).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcengine_decisions_total",
			Help: "Total number of branching decisions made by the PC-engine coordinator.",
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcengine_conflicts_total",
			Help: "Total number of conflicts encountered during search.",
		}),
		Backtracks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcengine_backtracks_total",
			Help: "Total number of decision-level backtracks performed.",
		}),
		AggregatePropagations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcengine_aggregate_propagations_total",
			Help: "Total number of literals propagated by the aggregate propagator.",
		}),
		UnfoundedSetSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcengine_unfounded_set_searches_total",
			Help: "Total number of unfounded-set searches run by the definition propagator.",
		}),
		ModelsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pcengine_models_found_total",
			Help: "Total number of models produced during model enumeration.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Decisions, m.Conflicts, m.Backtracks,
			m.AggregatePropagations, m.UnfoundedSetSearches, m.ModelsFound,
		)
	}
	return m
}

// Noop returns a Metrics whose counters are never registered, used as the
// default when engine.Options.Registerer is nil.
func Noop() *Metrics { return New(nil) }
