package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConverter_ZeroDecimalRounding(t *testing.T) {
	c := Converter{Rate: 1333.33}
	assert.Equal(t, 1333.0, c.Convert(1))
	assert.Equal(t, 13333.0, c.Convert(10)) // 13333.3 rounds down
}

func TestConverter_HalfAwayFromZero(t *testing.T) {
	c := Converter{Rate: 0.5}
	assert.Equal(t, 2.0, c.Convert(3))    // 1.5 → 2
	assert.Equal(t, -2.0, c.Convert(-3))  // -1.5 → -2
}

func TestConverter_Decimals(t *testing.T) {
	c := Converter{Rate: 1, Decimals: 2}
	assert.Equal(t, 0.13, c.Convert(0.125)) // exact in binary, rounds away from zero
	assert.Equal(t, 1.2, c.Convert(1.2))
}

func TestRoundTo_HalfUp(t *testing.T) {
	assert.Equal(t, 8.33, round2(8.3333))
	assert.Equal(t, -83.33, round2(-83.3333))
	// 0.125 is exact in binary: half-up rounds toward positive infinity.
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, -0.12, round2(-0.125))
	assert.Equal(t, 2.5, round1(2.5))
}
