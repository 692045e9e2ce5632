package clock

import "time"

// Clock abstracts "now" so slot generation and booking checks can be
// exercised against a fixed point in time. All doctor-facing date math
// must go through a doctor's own location, never the process timezone.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by time.Now.
func System() Clock { return systemClock{} }

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time { return f.t }

// LocalDate truncates now to midnight in loc.
func LocalDate(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
