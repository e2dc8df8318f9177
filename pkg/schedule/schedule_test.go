package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvery(t *testing.T) {
	s := Every(15 * time.Minute)
	from := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, from.Add(15*time.Minute), s.Next(from))
}

func TestDaily(t *testing.T) {
	s := Daily(2, 30)

	// Before today's run time.
	from := time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 2, 30, 0, 0, time.UTC), s.Next(from))

	// After today's run time, rolls to tomorrow.
	from = time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 2, 30, 0, 0, time.UTC), s.Next(from))

	// Exactly at the run time, still rolls forward.
	from = time.Date(2025, 6, 1, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 2, 30, 0, 0, time.UTC), s.Next(from))
}

func TestWeekly(t *testing.T) {
	s := Weekly(time.Monday, 9, 0)

	// 2025-06-01 is a Sunday.
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), s.Next(from))

	// Monday after the run time rolls a full week.
	from = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC), s.Next(from))
}

func TestCron(t *testing.T) {
	s := Cron("0 3 * * *")

	from := time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC), s.Next(from))
}

func TestCron_InvalidPanics(t *testing.T) {
	assert.Panics(t, func() { Cron("not a cron expr") })
}
