// Package aggregate implements the Sum/Card/Prod/Min/Max pseudo-Boolean
// aggregate theory propagator (spec §4.3): a TypedSet of weighted literals
// feeds one or more Agg constraints, each reifying "aggregate SENSE bound"
// into a head literal under a chosen Semantics.
package aggregate

import (
	"fmt"

	"github.com/solverkit/pcengine/pkg/lit"
	"github.com/solverkit/pcengine/pkg/weight"
)

// Kind selects the fold applied over the set's weighted literals.
type Kind int8

const (
	Sum Kind = iota
	Card
	Prod
	Min
	Max
)

func (k Kind) String() string {
	switch k {
	case Sum:
		return "sum"
	case Card:
		return "card"
	case Prod:
		return "prod"
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return fmt.Sprintf("aggregate.Kind(%d)", int8(k))
	}
}

// Sense is which side of the bound the aggregate's head asserts.
type Sense int8

const (
	// LE reifies "aggregate-value <= bound".
	LE Sense = iota
	// GE reifies "aggregate-value >= bound".
	GE
)

// Semantics gates which propagation directions between the aggregate's
// value and its head are enabled. The spec's prose about "head must be
// true iff ..." only fully applies under Equivalence; Definitional and
// Implication each enable one direction, mirroring original_source's
// Agg.h distinction between a rule-defined head (one direction only, so
// the definition propagator can still treat it as a rule body) and a
// genuinely reified constraint (both directions).
type Semantics int8

const (
	// Definitional allows only aggregate-value -> head propagation: the
	// head is the consequence of the aggregate, never its cause. Used
	// when the head is also a defined atom under pkg/definition.
	Definitional Semantics = iota
	// Equivalence allows propagation in both directions.
	Equivalence
	// Implication allows only head -> aggregate-value propagation.
	Implication
)

func (s Semantics) aggToHeadAllowed() bool { return s == Definitional || s == Equivalence }
func (s Semantics) headToAggAllowed() bool { return s == Implication || s == Equivalence }

// TypedSet is the id'd, weighted-literal collection one or more Agg
// constraints fold over (spec §4.3's AggSet / data model table).
type TypedSet struct {
	ID      int
	Kind    Kind
	Lits    []lit.Literal
	Weights []weight.Weight

	// offset absorbs the constant term introduced by rewriting negative
	// Sum/Card weights into positive ones over the negated literal (see
	// reduceSum): the true aggregate value is offset + fold(Lits, Weights).
	offset weight.Weight
}

// NewTypedSet builds a TypedSet, normalizing it per Kind so the fold
// functions in fold.go can assume well-formed input: Sum and Card weights
// are rewritten non-negative (reduceSum); Prod rejects a zero weight or a
// literal occurring with both polarities, since both make the product's
// contribution ill-defined as a monotone fold (original_source's AggTypes.h
// documents the same restriction for PROD-type sets).
func NewTypedSet(id int, kind Kind, backend weight.Backend, lits []lit.Literal, weights []weight.Weight) (*TypedSet, error) {
	if len(lits) != len(weights) {
		return nil, fmt.Errorf("aggregate: set %d has %d literals but %d weights", id, len(lits), len(weights))
	}
	s := &TypedSet{ID: id, Kind: kind, offset: backend.Zero()}

	switch kind {
	case Sum, Card:
		ls, ws, off := reduceSum(backend, lits, weights, kind == Card)
		s.Lits, s.Weights, s.offset = ls, ws, off
	case Prod:
		if err := validateProd(backend, lits, weights); err != nil {
			return nil, err
		}
		s.Lits = append([]lit.Literal(nil), lits...)
		s.Weights = append([]weight.Weight(nil), weights...)
	default: // Min, Max
		s.Lits = append([]lit.Literal(nil), lits...)
		s.Weights = append([]weight.Weight(nil), weights...)
	}
	return s, nil
}

// reduceSum rewrites every negative-weight (lit, w) pair to (¬lit, -w),
// folding the constant term w into the returned offset, so the fold in
// fold.go only ever adds non-negative weights. Card sets get a uniform
// weight of One() first. Repeated occurrences of the same literal, or of a
// literal and its negation, are kept as separate entries; they are not
// merged into one weight.
func reduceSum(backend weight.Backend, lits []lit.Literal, weights []weight.Weight, card bool) ([]lit.Literal, []weight.Weight, weight.Weight) {
	outLits := make([]lit.Literal, len(lits))
	outWeights := make([]weight.Weight, len(lits))
	offset := backend.Zero()
	one := backend.One()
	for i, l := range lits {
		w := weights[i]
		if card {
			w = one
		}
		if w.Cmp(backend.Zero()) < 0 {
			outLits[i] = l.Not()
			outWeights[i] = w.Neg()
			offset = offset.Add(w)
		} else {
			outLits[i] = l
			outWeights[i] = w
		}
	}
	return outLits, outWeights, offset
}

// validateProd rejects weight-0 literals and atoms appearing with both
// polarities in a Prod set.
func validateProd(backend weight.Backend, lits []lit.Literal, weights []weight.Weight) error {
	seen := make(map[lit.Atom]lit.Literal, len(lits))
	zero := backend.Zero()
	for i, l := range lits {
		if weights[i].Cmp(zero) == 0 {
			return fmt.Errorf("aggregate: product set cannot contain a zero-weight literal (%v)", l)
		}
		if prev, ok := seen[l.Atom()]; ok && prev != l {
			return fmt.Errorf("aggregate: product set cannot contain both polarities of atom %d", l.Atom())
		}
		seen[l.Atom()] = l
	}
	return nil
}

// Agg is one reified aggregate constraint "aggregate-value SENSE bound",
// with Head as the Boolean it propagates to and from.
type Agg struct {
	ID        int
	SetID     int
	Bound     weight.Weight
	Sense     Sense
	Semantics Semantics
	Head      lit.Literal
}
