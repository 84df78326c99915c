package weight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt64Arithmetic(t *testing.T) {
	b := Int64Backend
	five := b.FromInt64(5)
	three := b.FromInt64(3)

	assert.Equal(t, 0, five.Add(three).Cmp(b.FromInt64(8)))
	assert.Equal(t, 0, five.Sub(three).Cmp(b.FromInt64(2)))
	assert.Equal(t, 0, five.Mul(three).Cmp(b.FromInt64(15)))
	assert.True(t, three.Cmp(five) < 0)
	assert.True(t, five.Cmp(three) > 0)
}

func TestInt64Overflow(t *testing.T) {
	b := Int64Backend
	max := b.FromInt64(math.MaxInt64)
	one := b.FromInt64(1)

	sum := max.Add(one)
	assert.True(t, sum.Overflowed())

	prod := b.FromInt64(math.MaxInt64 / 2).Mul(b.FromInt64(3))
	assert.True(t, prod.Overflowed())
}

func TestInt64NoFalseOverflow(t *testing.T) {
	b := Int64Backend
	assert.False(t, b.FromInt64(100).Add(b.FromInt64(-50)).Overflowed())
	assert.False(t, b.FromInt64(0).Mul(b.FromInt64(math.MaxInt64)).Overflowed())
}

func TestBigArithmeticMatchesInt64(t *testing.T) {
	bb := BigBackend
	five := bb.FromInt64(5)
	three := bb.FromInt64(3)

	assert.Equal(t, 0, five.Add(three).Cmp(bb.FromInt64(8)))
	assert.Equal(t, 0, five.Sub(three).Cmp(bb.FromInt64(2)))
	assert.Equal(t, 0, five.Mul(three).Cmp(bb.FromInt64(15)))
	assert.False(t, five.Overflowed())
}

func TestBigBeyondInt64Range(t *testing.T) {
	bb := BigBackend
	huge := bb.FromInt64(math.MaxInt64)
	sum := huge.Add(huge)
	assert.True(t, sum.Cmp(huge) > 0)
	assert.False(t, sum.Overflowed())
}

func TestInfinitySentinels(t *testing.T) {
	for _, b := range []Backend{Int64Backend, BigBackend} {
		pos, neg := b.PosInf(), b.NegInf()
		assert.True(t, pos.Cmp(neg) > 0)
		assert.True(t, neg.Cmp(b.Zero()) < 0)
		assert.True(t, pos.Cmp(b.Zero()) > 0)
	}
}
