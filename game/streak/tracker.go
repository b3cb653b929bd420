package streak

import (
	"time"

	"github.com/habitquest/server/model"
)

// DateOf truncates a timestamp to its calendar day in UTC. Streaks are
// compared at day granularity only.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Record updates a streak for a completion at the given time.
//
// First-ever completion starts a streak of 1. A repeat on the same day
// is a no-op, so double completions never double-count. The next
// calendar day extends the streak; any other gap (including a
// backward-dated completion) resets it to 1 and restarts the window.
func Record(ds *model.DailyStreak, completedAt time.Time) {
	day := DateOf(completedAt)

	switch {
	case ds.LastCompletionDate == nil:
		ds.CurrentStreak = 1
		if ds.LongestStreak < 1 {
			ds.LongestStreak = 1
		}
		ds.StreakStartDate = &day

	case day.Equal(DateOf(*ds.LastCompletionDate)):
		return

	case day.Equal(DateOf(*ds.LastCompletionDate).AddDate(0, 0, 1)):
		ds.CurrentStreak++
		if ds.CurrentStreak > ds.LongestStreak {
			ds.LongestStreak = ds.CurrentStreak
		}

	default:
		ds.CurrentStreak = 1
		ds.StreakStartDate = &day
	}

	ds.LastCompletionDate = &day
}
