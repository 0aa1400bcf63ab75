package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedFromIntRoundTrips(t *testing.T) {
	assert.Equal(t, 5, FixedFromInt(5).Int())
	assert.Equal(t, -3, FixedFromInt(-3).Int())
}

func TestFixedMul(t *testing.T) {
	got := FixedFromInt(2).Mul(FixedFromInt(3))
	assert.Equal(t, FixedFromInt(6), got)
}

func TestFixedDiv(t *testing.T) {
	got := FixedFromInt(6).Div(FixedFromInt(2))
	assert.Equal(t, FixedFromInt(3), got)
}

func TestFixedDivByZeroReturnsZero(t *testing.T) {
	assert.Equal(t, Fixed(0), FixedFromInt(6).Div(0))
}

func TestFixedAbs(t *testing.T) {
	assert.Equal(t, FixedFromInt(4), FixedFromInt(-4).Abs())
	assert.Equal(t, FixedFromInt(4), FixedFromInt(4).Abs())
}
