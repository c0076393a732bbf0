package core

import "time"

// DefaultRunHour is the fixed local time-of-day a freshly created schedule
// anchors its first run to.
const DefaultRunHour = 9

// AddDays shifts t by exactly n calendar days, preserving time-of-day.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddWeeks shifts t by 7*n days.
func AddWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

// AddMonthClamped advances the month component by n and sets the day to
// min(targetDay, last day of the resulting month), preserving time-of-day.
// Every call re-clamps from targetDay, so a day-31 schedule passing through
// February lands back on the 31st in March instead of compounding drift.
func AddMonthClamped(t time.Time, n, targetDay int) time.Time {
	year, month, _ := t.Date()
	month += time.Month(n)
	day := targetDay
	if last := LastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// LastDayOfMonth returns the number of days in the given month. The month
// may be outside 1..12; time.Date normalizes it.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// InitialNextRun computes the first due instant for a new or re-keyed
// schedule: the next occurrence of the day pattern at DefaultRunHour, at or
// after now. The comparison uses the real instant, so a daily schedule
// created at 14:00 anchors to tomorrow 09:00 while one created at 08:00
// still fires today.
func InitialNextRun(now time.Time, freq Frequency, dayOfMonth, dayOfWeek int) time.Time {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), DefaultRunHour, 0, 0, 0, now.Location())

	switch freq {
	case Monthly:
		anchor = AddMonthClamped(anchor, 0, dayOfMonth)
		if anchor.Before(now) {
			anchor = AddMonthClamped(anchor, 1, dayOfMonth)
		}
	case Weekly:
		diff := (dayOfWeek - int(now.Weekday()) + 7) % 7
		anchor = AddDays(anchor, diff)
		if anchor.Before(now) {
			anchor = AddDays(anchor, 7)
		}
	case Daily:
		if anchor.Before(now) {
			anchor = AddDays(anchor, 1)
		}
	}
	return anchor
}
