// Package timetable resolves the college's six-day rotation and extracts the
// matching schedule from the document corpus.
package timetable

import "time"

// DaysInRotation is the length of the day-order cycle.
const DaysInRotation = 6

// RestDay is the weekday on which no day order applies.
const RestDay = time.Sunday

// dayOrderOffset aligns Monday-based weekday indexes with the rotation.
const dayOrderOffset = -1

// DayOrderFor returns the day order (1..6) for t. ok is false on the rest day.
func DayOrderFor(t time.Time) (order int, ok bool) {
	wd := t.Weekday()
	if wd == RestDay {
		return 0, false
	}
	// time.Weekday counts from Sunday; the rotation counts from Monday.
	idx := (int(wd) + 6) % 7
	m := (idx + dayOrderOffset) % DaysInRotation
	if m < 0 {
		m += DaysInRotation
	}
	return m + 1, true
}
