// Package definition implements the inductive-definition theory
// propagator (spec §4.4): rules `head <- body` under well-founded or
// stable semantics, positive-dependency SCC detection, and unfounded-set
// search with loop-formula assertion.
package definition

import "github.com/solverkit/pcengine/pkg/lit"

// BodyKind distinguishes how a rule's body literals combine.
type BodyKind int8

const (
	Conjunctive BodyKind = iota
	Disjunctive
)

// Rule is one Horn-like definition `Head <- Body` (spec §4.4). Head is
// always a positive atom; Body may reference other defined atoms
// (recursive rules) or ordinary/aggregate-reified literals.
type Rule struct {
	ID   int
	Head lit.Atom
	Body []lit.Literal
	Kind BodyKind
}

// Semantics selects which inductive-definition reading the propagator
// enforces (spec §4.4's mode flag).
type Semantics int8

const (
	// WellFounded atoms that lose all support are conclusively false: the
	// propagator assigns them directly, the three-valued reading spec
	// §4.4 describes.
	WellFounded Semantics = iota
	// Stable requires every true defined atom to have an external
	// justification; unsupported atoms are ruled out by asserting the
	// loop formula as a learned clause rather than assigning directly.
	Stable
)

func (s Semantics) String() string {
	if s == Stable {
		return "stable"
	}
	return "well-founded"
}

// Strategy selects the unfounded-set search order (spec's Open Question:
// "implementer should pick by set size ... and expose as an option" is
// answered for FW/PW; the symmetric choice here is BFS vs a heuristic that
// starts from the rule most likely to be the cycle's source).
type Strategy int8

const (
	BFS Strategy = iota
	Adaptive
)

// Justification is the per-atom state machine spec §4.4 names:
// unknown -> supported -> justified | unfounded.
type Justification int8

const (
	JustUnknown Justification = iota
	JustSupported
	JustJustified
	JustUnfounded
)

func (j Justification) String() string {
	switch j {
	case JustSupported:
		return "supported"
	case JustJustified:
		return "justified"
	case JustUnfounded:
		return "unfounded"
	default:
		return "unknown"
	}
}

// AggregateJustifier is the seam through which an aggregate propagator
// could report whether it can justify a given head (CanJustifyHead) and
// with which antecedent literals (FindJustification). Propagator accepts
// and stores one, but never calls either method: an aggregate-reified
// literal in a rule body is judged by its trail value alone.
type AggregateJustifier interface {
	CanJustifyHead(a lit.Atom) bool
	FindJustification(a lit.Atom) []lit.Literal
}

// ClauseLearner receives loop-formula clauses under Stable semantics.
type ClauseLearner interface {
	AddClause(lits []lit.Literal)
}
