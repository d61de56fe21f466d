package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMonthsHeld(t *testing.T) {
	from := date("2026-01-01")

	assert.Equal(t, 0, MonthsHeld(from, from))
	assert.Equal(t, 0, MonthsHeld(from, from.AddDate(0, 0, 29)))
	assert.Equal(t, 1, MonthsHeld(from, from.AddDate(0, 0, 30)))
	// exactly 180 days counts as six months
	assert.Equal(t, 6, MonthsHeld(from, from.AddDate(0, 0, 180)))
	assert.Equal(t, 0, MonthsHeld(from, from.AddDate(0, 0, -5)))
}

func TestInWindowInclusiveBounds(t *testing.T) {
	end := date("2026-01-20")

	assert.True(t, InWindow(date("2026-01-13"), end, 7))
	assert.True(t, InWindow(date("2026-01-20"), end, 7))
	assert.False(t, InWindow(date("2026-01-12"), end, 7))
	assert.False(t, InWindow(date("2026-01-21"), end, 7))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 10, DaysBetween(date("2026-01-01"), date("2026-01-11")))
	assert.Equal(t, -10, DaysBetween(date("2026-01-11"), date("2026-01-01")))
}
