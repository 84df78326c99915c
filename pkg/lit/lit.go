// Package lit defines the atom and literal value types shared by every
// propagator, the trail and the clause database.
package lit

import "fmt"

// Atom is an integer identifier >= 0. Atom 0 is reserved and never handed
// out by an engine (it lines up with z.LitNull in the underlying clause
// database, which uses 0 as the null/invalid literal).
type Atom uint32

// Literal encodes an (atom, sign) pair as 2*atom + sign bit, matching the
// encoding used by the gini SAT library this module's clause database is
// built on (github.com/go-air/gini/z.Lit) so that conversion between the
// two is a bit-identical, zero-cost cast.
type Literal uint32

// Null is the invalid/sentinel literal.
const Null Literal = 0

// New returns the literal for atom with the given sign. negated == true
// produces the negative literal.
func New(a Atom, negated bool) Literal {
	m := Literal(a) << 1
	if negated {
		m |= 1
	}
	return m
}

// Pos returns the positive literal of a.
func Pos(a Atom) Literal { return New(a, false) }

// Neg returns the negative literal of a.
func Neg(a Atom) Literal { return New(a, true) }

// Atom returns the underlying atom of m.
func (m Literal) Atom() Atom { return Atom(m >> 1) }

// Negated reports whether m is the negative literal of its atom.
func (m Literal) Negated() bool { return m&1 != 0 }

// Not returns the complementary literal.
func (m Literal) Not() Literal { return m ^ 1 }

// Sign returns 1 for a positive literal, -1 for a negative one.
func (m Literal) Sign() int8 {
	if m.Negated() {
		return -1
	}
	return 1
}

func (m Literal) String() string {
	if m.Negated() {
		return fmt.Sprintf("-%d", m.Atom())
	}
	return fmt.Sprintf("%d", m.Atom())
}

// Set is a small unordered collection of literals, used where callers need
// set semantics without pulling in a generic container dependency.
type Set map[Literal]struct{}

func NewSet(ls ...Literal) Set {
	s := make(Set, len(ls))
	for _, l := range ls {
		s[l] = struct{}{}
	}
	return s
}

func (s Set) Add(l Literal)      { s[l] = struct{}{} }
func (s Set) Contains(l Literal) bool {
	_, ok := s[l]
	return ok
}

func (s Set) Slice() []Literal {
	out := make([]Literal, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	return out
}
