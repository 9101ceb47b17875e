package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-booking-backend/config"
	"crew-booking-backend/internal/parse"
)

func utc(h, m int) time.Time {
	// 2026-10-19 is a Monday.
	return time.Date(2026, 10, 19, h, m, 0, 0, time.UTC)
}

func TestWindowConflictsWith(t *testing.T) {
	committed := Window{Start: utc(10, 0), End: utc(12, 0)}

	testCases := []struct {
		name     string
		start    time.Time
		conflict bool
	}{
		{name: "inside buffer after", start: utc(12, 15), conflict: true},
		{name: "exactly at buffer end", start: utc(12, 30), conflict: false},
		{name: "past buffer", start: utc(12, 31), conflict: false},
		{name: "ends inside buffer before", start: utc(7, 45), conflict: true},
		{name: "ends exactly at buffer start", start: utc(7, 30), conflict: false},
		{name: "same window", start: utc(10, 0), conflict: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWindow(tc.start, 2*time.Hour)
			assert.Equal(t, tc.conflict, w.ConflictsWith(committed))
		})
	}
}

func TestWindowContains(t *testing.T) {
	shift := Window{Start: utc(8, 0), End: utc(22, 0)}
	assert.True(t, shift.Contains(Window{Start: utc(8, 0), End: utc(10, 0)}))
	assert.True(t, shift.Contains(Window{Start: utc(20, 0), End: utc(22, 0)}))
	assert.False(t, shift.Contains(Window{Start: utc(7, 59), End: utc(9, 59)}))
	assert.False(t, shift.Contains(Window{Start: utc(21, 0), End: utc(23, 0)}))
}

func TestNewWindowNormalizes(t *testing.T) {
	loc := time.FixedZone("GST", 4*3600)
	w := NewWindow(time.Date(2026, 10, 19, 14, 0, 42, 5, loc), 2*time.Hour)
	assert.Equal(t, utc(10, 0), w.Start)
	assert.Equal(t, utc(12, 0), w.End)
	assert.Equal(t, time.UTC, w.Start.Location())
}

func TestCalendarDayWindow(t *testing.T) {
	cal := DefaultCalendar()
	day, err := cal.ParseDate("2026-10-19")
	require.NoError(t, err)

	w := cal.DayWindow(day)
	assert.Equal(t, utc(8, 0), w.Start)
	assert.Equal(t, utc(22, 0), w.End)
}

func TestCalendarWallClockAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	cal := DefaultCalendar()
	cal.Location = berlin

	testCases := []struct {
		name          string
		date          string
		hours         string
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		{
			name:          "spring forward",
			date:          "2026-03-29",
			hours:         "08:00-22:00",
			expectedStart: time.Date(2026, 3, 29, 6, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 3, 29, 20, 0, 0, 0, time.UTC),
		},
		{
			name:          "fall back",
			date:          "2026-10-25",
			hours:         "08:00-22:00",
			expectedStart: time.Date(2026, 10, 25, 7, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 10, 25, 21, 0, 0, 0, time.UTC),
		},
		{
			name:          "midnight end on spring forward",
			date:          "2026-03-29",
			hours:         "18:00-24:00",
			expectedStart: time.Date(2026, 3, 29, 16, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 3, 29, 22, 0, 0, 0, time.UTC),
		},
		{
			name:          "ordinary day",
			date:          "2026-03-30",
			hours:         "08:00-22:00",
			expectedStart: time.Date(2026, 3, 30, 6, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 3, 30, 20, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			day, err := cal.ParseDate(tc.date)
			require.NoError(t, err)
			wh, err := parse.ParseWorkingHours(tc.hours)
			require.NoError(t, err)

			// A short job at local noon anchors the shift on the same day.
			noon := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, berlin)
			shift := cal.ShiftWindow(NewWindow(noon, 2*time.Hour), wh)
			assert.Equal(t, tc.expectedStart, shift.Start)
			assert.Equal(t, tc.expectedEnd, shift.End)

			if wh.Start == cal.Opening && wh.End == cal.Closing {
				dw := cal.DayWindow(day)
				assert.Equal(t, tc.expectedStart, dw.Start)
				assert.Equal(t, tc.expectedEnd, dw.End)
			}
		})
	}
}

func TestCalendarShiftWindow(t *testing.T) {
	cal := DefaultCalendar()
	wh, err := parse.ParseWorkingHours("09:00-17:00")
	require.NoError(t, err)

	shift := cal.ShiftWindow(NewWindow(utc(11, 0), 2*time.Hour), wh)
	assert.Equal(t, utc(9, 0), shift.Start)
	assert.Equal(t, utc(17, 0), shift.End)
}

func TestCalendarSearchRange(t *testing.T) {
	cal := DefaultCalendar()

	r := cal.SearchRange(NewWindow(utc(10, 0), 2*time.Hour))
	assert.Equal(t, utc(0, 0).Add(-RestBuffer), r.Start)
	assert.Equal(t, utc(0, 0).AddDate(0, 0, 1).Add(RestBuffer), r.End)

	// A window ending exactly at midnight does not pull in the next day.
	r = cal.SearchRange(NewWindow(utc(22, 0), 2*time.Hour))
	assert.Equal(t, utc(0, 0).AddDate(0, 0, 1).Add(RestBuffer), r.End)
}

func TestCalendarIsRestDay(t *testing.T) {
	cal := DefaultCalendar()
	assert.True(t, cal.IsRestDay(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsRestDay(utc(9, 0)))

	// Local Friday 02:00 in UTC+4 is still Thursday in UTC.
	cal.Location = time.FixedZone("GST", 4*3600)
	assert.True(t, cal.IsRestDay(time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC)))
}

func TestCalendarParseLocalDateTime(t *testing.T) {
	cal := DefaultCalendar()
	cal.Location = time.FixedZone("GST", 4*3600)

	testCases := []struct {
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{raw: "2026-10-19T14:00", expected: utc(10, 0)},
		{raw: "2026-10-19T14:00:00", expected: utc(10, 0)},
		{raw: "2026-10-19 14:00", expected: utc(10, 0)},
		{raw: "2026-10-19T10:00:00Z", expected: utc(10, 0)},
		{raw: "19/10/2026 14:00", expectErr: true},
		{raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := cal.ParseLocalDateTime(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "got %s", got)
		})
	}
}

func TestNewCalendar(t *testing.T) {
	cal, err := NewCalendar(config.ScheduleConfig{
		Location: time.UTC,
		Opening:  "07:30",
		Closing:  "20:00",
		RestDay:  "sunday",
	})
	require.NoError(t, err)
	assert.Equal(t, 7*time.Hour+30*time.Minute, cal.Opening)
	assert.Equal(t, 20*time.Hour, cal.Closing)
	assert.Equal(t, time.Sunday, cal.RestDay)

	_, err = NewCalendar(config.ScheduleConfig{Opening: "20:00", Closing: "07:30"})
	assert.Error(t, err)
}
