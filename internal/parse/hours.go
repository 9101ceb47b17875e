package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	rangeRe = regexp.MustCompile(`^\s*(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})\s*$`)
)

// DefaultWorkingHours is applied to workers created without an explicit range.
const DefaultWorkingHours = "08:00-22:00"

// WorkingHours is a daily range expressed as offsets from local midnight.
type WorkingHours struct {
	Start time.Duration
	End   time.Duration
}

func (w WorkingHours) String() string {
	return FormatClock(w.Start) + "-" + FormatClock(w.End)
}

// ParseClock converts "HH:MM" into an offset from midnight. "24:00" is accepted.
func ParseClock(raw string) (time.Duration, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", raw)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if mm > 59 || h > 24 || (h == 24 && mm != 0) {
		return 0, fmt.Errorf("invalid clock %q: out of range", raw)
	}
	return time.Duration(h)*time.Hour + time.Duration(mm)*time.Minute, nil
}

// FormatClock is the inverse of ParseClock.
func FormatClock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%02d:%02d", h, m)
}

// ParseWorkingHours parses "HH:MM-HH:MM". The start must be strictly before the end.
func ParseWorkingHours(raw string) (WorkingHours, error) {
	m := rangeRe.FindStringSubmatch(raw)
	if m == nil {
		return WorkingHours{}, fmt.Errorf("invalid working hours %q: want HH:MM-HH:MM", raw)
	}
	start, err := ParseClock(m[1])
	if err != nil {
		return WorkingHours{}, fmt.Errorf("invalid working hours %q: %w", raw, err)
	}
	end, err := ParseClock(m[2])
	if err != nil {
		return WorkingHours{}, fmt.Errorf("invalid working hours %q: %w", raw, err)
	}
	if start >= end {
		return WorkingHours{}, fmt.Errorf("invalid working hours %q: start must be before end", raw)
	}
	return WorkingHours{Start: start, End: end}, nil
}

// ParseWeekday accepts English weekday names, full or three-letter, in any case.
func ParseWeekday(raw string) (time.Weekday, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) >= 3 {
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if s == name || s == name[:3] {
				return d, nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", raw)
}
