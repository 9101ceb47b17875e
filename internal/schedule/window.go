package schedule

import "time"

// RestBuffer is the padding applied to both ends of an existing commitment
// before checking it against a new window.
const RestBuffer = 30 * time.Minute

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns [start, start+d) normalized to UTC minute precision.
func NewWindow(start time.Time, d time.Duration) Window {
	s := Normalize(start)
	return Window{Start: s, End: s.Add(d)}
}

// Normalize converts t to UTC and drops anything below the minute.
// Every persisted instant goes through here so stored values compare consistently.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether the two half-open windows share any instant.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

// Pad widens the window by d on both sides.
func (w Window) Pad(d time.Duration) Window {
	return Window{Start: w.Start.Add(-d), End: w.End.Add(d)}
}

// Contains reports whether o lies entirely inside w.
func (w Window) Contains(o Window) bool {
	return !o.Start.Before(w.Start) && !o.End.After(w.End)
}

// ConflictsWith applies the rest buffer to a committed window and checks it against w.
func (w Window) ConflictsWith(committed Window) bool {
	return w.Overlaps(committed.Pad(RestBuffer))
}
