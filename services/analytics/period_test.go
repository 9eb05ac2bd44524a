package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want Range
	}{
		{"week", RangeWeek},
		{"year", RangeYear},
		{"YEAR", RangeMonth},
		{"Week", RangeMonth},
		{" week ", RangeMonth},
		{"month", RangeMonth},
		{"", RangeMonth},
		{"quarter", RangeMonth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRange(tt.in), tt.in)
	}
}

func TestWindowFor(t *testing.T) {
	loc := time.FixedZone("WAT", 0)
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, loc)

	t.Run("week", func(t *testing.T) {
		w := WindowFor(RangeWeek, now)
		assert.Equal(t, time.Date(2024, time.March, 8, 10, 30, 0, 0, loc), w.Start)
		assert.Equal(t, w.Start, w.PrevEnd)
		assert.Equal(t, time.Date(2024, time.March, 1, 10, 30, 0, 0, loc), w.PrevStart)
		assert.Equal(t, 7*24*time.Hour, w.PrevEnd.Sub(w.PrevStart))
	})

	t.Run("month", func(t *testing.T) {
		w := WindowFor(RangeMonth, now)
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, loc), w.Start)
		assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, loc), w.PrevStart)
		assert.Equal(t, w.Start, w.PrevEnd)
	})

	t.Run("january rolls back to december", func(t *testing.T) {
		w := WindowFor(RangeMonth, time.Date(2024, time.January, 20, 8, 0, 0, 0, loc))
		assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, loc), w.PrevStart)
		assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, loc), w.PrevEnd)
	})

	t.Run("year", func(t *testing.T) {
		w := WindowFor(RangeYear, now)
		assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, loc), w.Start)
		assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, loc), w.PrevStart)
		assert.Equal(t, w.Start, w.PrevEnd)
	})
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "janv.", MonthLabel("fr", time.January))
	assert.Equal(t, "août", MonthLabel("fr", time.August))
	assert.Equal(t, "Dec", MonthLabel("en", time.December))
	assert.Equal(t, "mai", MonthLabel("de", time.May))
}
