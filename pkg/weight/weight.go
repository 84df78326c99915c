// Package weight abstracts the arithmetic used by aggregate propagation
// behind a small interface, generalizing the design notes' "template-based
// weight type" concern: a Backend is selected once per engine (Int64 or
// BigInt) and every TypedSet/Agg computation goes through it so the
// propagation code is never specialized to a particular integer width.
package weight

// Kind names the concrete arithmetic backend in use.
type Kind int8

const (
	Int64Kind Kind = iota
	BigKind
)

func (k Kind) String() string {
	if k == BigKind {
		return "bigint"
	}
	return "int64"
}

// Weight is an arbitrary-precision-or-not signed integer value. Every
// operation is closed over the same Backend that produced the receiver;
// mixing weights from two backends is a programming error, not a runtime
// case this package tries to detect cheaply.
type Weight interface {
	Add(Weight) Weight
	Sub(Weight) Weight
	Mul(Weight) Weight
	Neg() Weight
	Cmp(Weight) int
	// Overflowed reports whether this value is the result of a saturated
	// computation (always false for the BigInt backend).
	Overflowed() bool
	// Inf reports whether this is a +/-infinity sentinel used as the
	// empty-set value for Min/Max (0 = not infinite, 1 = +inf, -1 = -inf).
	Inf() int8
	String() string
}

// Backend constructs Weight values and supplies the identity elements
// each aggregate kind folds from.
type Backend interface {
	Kind() Kind
	FromInt64(int64) Weight
	// Zero is the empty_set_value for Sum and Card.
	Zero() Weight
	// One is the empty_set_value for Prod.
	One() Weight
	// NegInf/PosInf are the empty_set_value sentinels for Max and Min
	// respectively (spec Design Notes: "exact representation ... left to
	// the implementer"; this module chooses sentinels over rejecting
	// empty sets at parse time, so TypedSet construction never needs a
	// special case for an empty weighted-literal list).
	PosInf() Weight
	NegInf() Weight
}

// CmpTotalOrder orders two weights ascending. Nothing in this module calls
// it: NewTypedSet keeps a set's literals in the order they are given and
// does not sort them by weight.
func CmpTotalOrder(a, b Weight) int { return a.Cmp(b) }
