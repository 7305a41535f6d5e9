package gamification

import "time"

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns midnight of the Monday on or before t, in loc.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	offset := (int(local.Weekday()) + 6) % 7 // Monday = 0
	return time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
}

// SameWeek reports whether a and b fall in the same Monday-based week in loc.
func SameWeek(a, b time.Time, loc *time.Location) bool {
	return StartOfWeek(a, loc).Equal(StartOfWeek(b, loc))
}

// DayDiff counts calendar days from a to b in loc, ignoring the time of
// day. It is negative when b is on an earlier day than a.
func DayDiff(a, b time.Time, loc *time.Location) int {
	// Civil dates compared in UTC so DST shifts never produce a 23h "day".
	da, db := a.In(loc), b.In(loc)
	ua := time.Date(da.Year(), da.Month(), da.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(db.Year(), db.Month(), db.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
