package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWorkingHours(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  WorkingHours
		expectErr bool
	}{
		{
			name:     "Default range",
			raw:      "08:00-22:00",
			expected: WorkingHours{Start: 8 * time.Hour, End: 22 * time.Hour},
		},
		{
			name:     "Single digit hour with spaces",
			raw:      " 9:30 - 17:45 ",
			expected: WorkingHours{Start: 9*time.Hour + 30*time.Minute, End: 17*time.Hour + 45*time.Minute},
		},
		{
			name:     "Until midnight",
			raw:      "12:00-24:00",
			expected: WorkingHours{Start: 12 * time.Hour, End: 24 * time.Hour},
		},
		{
			name:      "Start after end",
			raw:       "22:00-08:00",
			expectErr: true,
		},
		{
			name:      "Empty range",
			raw:       "10:00-10:00",
			expectErr: true,
		},
		{
			name:      "Minutes out of range",
			raw:       "08:60-22:00",
			expectErr: true,
		},
		{
			name:      "Past midnight",
			raw:       "08:00-24:30",
			expectErr: true,
		},
		{
			name:      "Missing separator",
			raw:       "08:00 22:00",
			expectErr: true,
		},
		{
			name:      "Garbage",
			raw:       "all day",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseWorkingHours(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}

func TestWorkingHoursString(t *testing.T) {
	wh, err := ParseWorkingHours("9:05-24:00")
	assert.NoError(t, err)
	assert.Equal(t, "09:05-24:00", wh.String())
}

func TestParseWeekday(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  time.Weekday
		expectErr bool
	}{
		{raw: "friday", expected: time.Friday},
		{raw: "FRIDAY", expected: time.Friday},
		{raw: "Sun", expected: time.Sunday},
		{raw: " saturday ", expected: time.Saturday},
		{raw: "fr", expectErr: true},
		{raw: "holiday", expectErr: true},
		{raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			d, err := ParseWeekday(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, d)
			}
		})
	}
}
