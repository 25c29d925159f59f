package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-03", MonthKey(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01", MonthKey(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-12", MonthKey(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2024, time.March, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthBoundsDecemberRollsToNextYear(t *testing.T) {
	start, end := MonthBounds(2024, time.December, time.UTC)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestPluralizePoints(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "баллов"},
		{1, "балл"},
		{2, "балла"},
		{4, "балла"},
		{5, "баллов"},
		{11, "баллов"},
		{12, "баллов"},
		{14, "баллов"},
		{21, "балл"},
		{22, "балла"},
		{25, "баллов"},
		{100, "баллов"},
		{101, "балл"},
		{111, "баллов"},
		{-1, "балл"},
		{-3, "балла"},
		{-11, "баллов"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PluralizePoints(c.n), "n=%d", c.n)
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "5 баллов", FormatScore(5))
	assert.Equal(t, "1 балл", FormatScore(1))
	assert.Equal(t, "-2 балла", FormatScore(-2))
}
