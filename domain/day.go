package domain

import "time"

// DayWindow is the half-open interval [Start, End) covering one calendar day.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// DayOf returns the calendar day containing now, as seen in loc.
func DayOf(now time.Time, loc *time.Location) DayWindow {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return DayWindow{
		Start: start,
		End:   time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc),
	}
}

// Contains reports whether t falls inside the window.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
