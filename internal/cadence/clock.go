// internal/cadence/clock.go
//
// Injectable clock and Tuesday arithmetic.
//
// Context
// -------
// Every due-ness decision in the engine is a pure function of "now" plus
// persisted dates, so the clock is an interface and tests drive the engine
// through arbitrary weeks without sleeping.  The two Tuesday helpers define
// the week anchor used everywhere: lunches happen on Tuesdays, and a Tuesday
// counts as its own "next Tuesday" so same-day jobs target today's lunch.
package cadence

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// NextTuesday returns the date of the upcoming Tuesday, midnight in from's
// location.  When from is itself a Tuesday, it returns that same day.
func NextTuesday(from time.Time) time.Time {
	d := dateOnly(from)
	offset := (int(time.Tuesday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// ThisTuesday returns the most recent Tuesday on or before from.  Used by
// the evening rating job, which runs after that day's lunch.
func ThisTuesday(from time.Time) time.Time {
	d := dateOnly(from)
	back := (int(d.Weekday()) - int(time.Tuesday) + 7) % 7
	return d.AddDate(0, 0, -back)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
