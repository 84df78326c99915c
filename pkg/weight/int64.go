package weight

import (
	"fmt"
	"math"
)

// int64Backend is the default, fast weight backend. Overflow in Add/Mul
// saturates at math.MaxInt64/math.MinInt64 and flags the result so the
// engine can surface pcerr.Overflow instead of silently returning a wrong
// bound (spec §7: "Overflow: weight arithmetic saturated; when Int64
// backend is in use, abort with a suggestion to enable BigInt").
type int64Backend struct{}

// Int64Backend is the Int64 weight backend named in the engine Options.
var Int64Backend Backend = int64Backend{}

func (int64Backend) Kind() Kind             { return Int64Kind }
func (int64Backend) FromInt64(v int64) Weight { return int64Weight{v: v} }
func (int64Backend) Zero() Weight             { return int64Weight{v: 0} }
func (int64Backend) One() Weight              { return int64Weight{v: 1} }
func (int64Backend) PosInf() Weight           { return int64Weight{v: math.MaxInt64, inf: 1} }
func (int64Backend) NegInf() Weight           { return int64Weight{v: math.MinInt64, inf: -1} }

type int64Weight struct {
	v          int64
	overflowed bool
	inf        int8
}

func (w int64Weight) Inf() int8        { return w.inf }
func (w int64Weight) Overflowed() bool { return w.overflowed }

func (w int64Weight) Add(o Weight) Weight {
	ow := o.(int64Weight)
	if w.inf != 0 || ow.inf != 0 {
		return infCombine(w, ow)
	}
	sum := w.v + ow.v
	overflow := w.overflowed || ow.overflowed
	// Overflow detection for signed addition.
	if (ow.v > 0 && sum < w.v) || (ow.v < 0 && sum > w.v) {
		overflow = true
		if ow.v > 0 {
			sum = math.MaxInt64
		} else {
			sum = math.MinInt64
		}
	}
	return int64Weight{v: sum, overflowed: overflow}
}

func (w int64Weight) Sub(o Weight) Weight {
	return w.Add(o.Neg())
}

func (w int64Weight) Neg() Weight {
	if w.inf == 1 {
		return int64Weight{v: math.MinInt64, inf: -1}
	}
	if w.inf == -1 {
		return int64Weight{v: math.MaxInt64, inf: 1}
	}
	if w.v == math.MinInt64 {
		return int64Weight{v: math.MaxInt64, overflowed: true}
	}
	return int64Weight{v: -w.v, overflowed: w.overflowed}
}

func (w int64Weight) Mul(o Weight) Weight {
	ow := o.(int64Weight)
	if w.inf != 0 || ow.inf != 0 {
		return infCombine(w, ow)
	}
	if w.v == 0 || ow.v == 0 {
		return int64Weight{v: 0}
	}
	prod := w.v * ow.v
	overflow := w.overflowed || ow.overflowed
	if prod/ow.v != w.v {
		overflow = true
		if (w.v > 0) == (ow.v > 0) {
			prod = math.MaxInt64
		} else {
			prod = math.MinInt64
		}
	}
	return int64Weight{v: prod, overflowed: overflow}
}

func (w int64Weight) Cmp(o Weight) int {
	ow := o.(int64Weight)
	if w.inf != ow.inf {
		switch {
		case w.inf < ow.inf:
			return -1
		default:
			return 1
		}
	}
	switch {
	case w.v < ow.v:
		return -1
	case w.v > ow.v:
		return 1
	default:
		return 0
	}
}

func (w int64Weight) String() string {
	switch w.inf {
	case 1:
		return "+inf"
	case -1:
		return "-inf"
	default:
		return fmt.Sprintf("%d", w.v)
	}
}

// infCombine handles arithmetic where at least one operand is a Min/Max
// empty-set sentinel. The combinations that arise in this module are
// extremal-value comparisons (Cmp), Neg, and adding a set's zero offset to
// a sentinel fold start (which keeps the sentinel); Add/Mul of two sentinel
// weights is never evaluated by the Max/Min fold (it only ever combines a
// sentinel with a finite weight when the running extremum is still at its
// initial, empty-set value), so this conservatively keeps the dominating
// infinity.
func infCombine(a, b int64Weight) Weight {
	if a.inf != 0 {
		return a
	}
	return b
}
