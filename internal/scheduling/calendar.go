package scheduling

import "time"

// Calendar derives the day and week buckets shared by quota counting and
// follow-up pairing. All boundaries are taken in the location of the value
// being bucketed; no timezone conversion happens here.
type Calendar struct {
	WeekStart time.Weekday
}

// DefaultCalendar starts weeks on Sunday.
var DefaultCalendar = Calendar{WeekStart: time.Sunday}

func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (c Calendar) StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) - int(c.WeekStart) + 7) % 7
	return c.StartOfDay(t).AddDate(0, 0, -offset)
}

func (c Calendar) DayKey(t time.Time) string {
	return c.StartOfDay(t).Format(time.DateOnly)
}

func (c Calendar) WeekKey(t time.Time) string {
	return c.StartOfWeek(t).Format(time.DateOnly)
}

// DaysBetween returns the signed number of calendar days from a to b,
// ignoring the time of day.
func (c Calendar) DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}
