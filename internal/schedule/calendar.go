package schedule

import (
	"fmt"
	"strings"
	"time"

	"crew-booking-backend/config"
	"crew-booking-backend/internal/parse"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04"
)

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Calendar holds the operating day and weekly rest day used to evaluate windows.
type Calendar struct {
	Location *time.Location
	Opening  time.Duration
	Closing  time.Duration
	RestDay  time.Weekday
}

// DefaultCalendar is 08:00-22:00 UTC with Friday as the rest day.
func DefaultCalendar() Calendar {
	return Calendar{
		Location: time.UTC,
		Opening:  8 * time.Hour,
		Closing:  22 * time.Hour,
		RestDay:  time.Friday,
	}
}

// NewCalendar builds a Calendar from the schedule section of the config.
func NewCalendar(cfg config.ScheduleConfig) (Calendar, error) {
	cal := DefaultCalendar()
	if cfg.Location != nil {
		cal.Location = cfg.Location
	}
	if cfg.Opening != "" || cfg.Closing != "" {
		wh, err := parse.ParseWorkingHours(cfg.Opening + "-" + cfg.Closing)
		if err != nil {
			return Calendar{}, fmt.Errorf("invalid operating hours: %w", err)
		}
		cal.Opening, cal.Closing = wh.Start, wh.End
	}
	if cfg.RestDay != "" {
		d, err := parse.ParseWeekday(cfg.RestDay)
		if err != nil {
			return Calendar{}, err
		}
		cal.RestDay = d
	}
	return cal, nil
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// StartOfDay returns local midnight of the day t falls on.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc())
}

// at places a wall-clock offset on the local day of day. An offset of 24h is
// the next day's midnight.
func (c Calendar) at(day time.Time, offset time.Duration) time.Time {
	y, m, d := day.In(c.loc()).Date()
	h := int(offset / time.Hour)
	mm := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, h, mm, 0, 0, c.loc())
}

// DayWindow covers the canonical operating hours of the given date.
func (c Calendar) DayWindow(date time.Time) Window {
	return Window{
		Start: Normalize(c.at(date, c.Opening)),
		End:   Normalize(c.at(date, c.Closing)),
	}
}

// SlotWindow covers [start, start+hours).
func (c Calendar) SlotWindow(start time.Time, hours int) Window {
	return NewWindow(start, time.Duration(hours)*time.Hour)
}

// ShiftWindow places a worker's daily range on the day the window starts.
func (c Calendar) ShiftWindow(w Window, wh parse.WorkingHours) Window {
	return Window{
		Start: Normalize(c.at(w.Start, wh.Start)),
		End:   Normalize(c.at(w.Start, wh.End)),
	}
}

// IsRestDay reports whether t falls on the weekly rest day.
func (c Calendar) IsRestDay(t time.Time) bool {
	return t.In(c.loc()).Weekday() == c.RestDay
}

// SearchRange is the superset range scanned for commitments that could touch w:
// from the start of w's first day to the end of its last day, widened by the rest buffer.
func (c Calendar) SearchRange(w Window) Window {
	last := w.End
	if w.End.After(w.Start) {
		last = w.End.Add(-time.Nanosecond)
	}
	return Window{
		Start: Normalize(c.StartOfDay(w.Start)).Add(-RestBuffer),
		End:   Normalize(c.StartOfDay(last).AddDate(0, 0, 1)).Add(RestBuffer),
	}
}

// ParseDate parses "YYYY-MM-DD" as a local date.
func (c Calendar) ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), c.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want %s", raw, DateLayout)
	}
	return t, nil
}

// ParseLocalDateTime parses a local date-time without zone, or RFC 3339 with one.
func (c Calendar) ParseLocalDateTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q: want %s", raw, DateTimeLayout)
}

// FormatLocal renders t in the calendar's location using DateTimeLayout.
func (c Calendar) FormatLocal(t time.Time) string {
	return t.In(c.loc()).Format(DateTimeLayout)
}
