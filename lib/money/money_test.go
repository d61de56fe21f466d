package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyIsZero(t *testing.T) {
	for _, s := range []string{"", "  ", "\t"} {
		d, err := Parse(s)
		require.NoError(t, err)
		assert.True(t, d.IsZero(), "input %q", s)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("12.3.4")
	assert.Error(t, err)
	_, err = Parse("abc")
	assert.Error(t, err)
}

func TestFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "100", "33.33", "-12.5", "0.001", "1234567.89"} {
		d, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, Format(d))
	}
}

func TestArithmeticStaysExact(t *testing.T) {
	// 0.1 + 0.2 drifts as a float, never as a decimal
	a := ParseOrZero("0.1")
	b := ParseOrZero("0.2")
	assert.Equal(t, "0.3", Format(a.Add(b)))
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "2.35", Format(Round2(ParseOrZero("2.345"))))
	assert.Equal(t, "-2.35", Format(Round2(ParseOrZero("-2.345"))))
	assert.Equal(t, "2.34", Format(Round2(ParseOrZero("2.344"))))
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(800), decimal.RequireFromString("3.5"))
	assert.Equal(t, "28", Format(got))

	got = Percent(decimal.NewFromInt(1000), decimal.NewFromInt(80))
	assert.Equal(t, "800", Format(got))
}
