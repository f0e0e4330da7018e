package domain

import "time"

// ActivityLogEntry records that a user was active on a calendar day
type ActivityLogEntry struct {
	Email        string    `db:"email"`
	ActivityDate time.Time `db:"activity_date"`
}

// StreakRecord holds the consecutive-day activity counter of a user
type StreakRecord struct {
	Email          string    `db:"email"`
	CurrentStreak  int       `db:"current_streak"`
	LastActiveDate time.Time `db:"last_active_date"`
}

// CalendarDay truncates t to midnight UTC of its calendar date in t's own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextStreak computes the streak after activity on day. prev is nil when the user has no
// record yet. changed is false when nothing must be written.
//
// Activity dated before the last active day leaves the record untouched.
func NextStreak(prev *StreakRecord, email string, day time.Time) (next StreakRecord, changed bool) {
	day = CalendarDay(day)

	if prev == nil {
		return StreakRecord{Email: email, CurrentStreak: 1, LastActiveDate: day}, true
	}

	last := CalendarDay(prev.LastActiveDate)
	switch gap := daysBetween(last, day); {
	case gap <= 0:
		return *prev, false
	case gap == 1:
		return StreakRecord{Email: email, CurrentStreak: prev.CurrentStreak + 1, LastActiveDate: day}, true
	default:
		return StreakRecord{Email: email, CurrentStreak: 1, LastActiveDate: day}, true
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Round(time.Hour).Hours() / 24)
}
