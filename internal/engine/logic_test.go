package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-natal/internal/natal"
)

func TestCalculateNextOccurrence(t *testing.T) {
	// June 15th, 2025 (common year)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		birthDate    time.Time
		yearKnown    bool
		expectedDate time.Time
		expectedAge  int
		desc         string
	}{
		{
			name:         "Birthday already passed",
			birthDate:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			yearKnown:    true,
			expectedDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedAge:  36,
			desc:         "Jan 1 is before June 15, so next occurrence is 2026",
		},
		{
			name:         "Birthday later this year",
			birthDate:    time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC),
			yearKnown:    true,
			expectedDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			expectedAge:  35,
			desc:         "Dec 31 is after June 15",
		},
		{
			name:         "Birthday is today",
			birthDate:    time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
			yearKnown:    true,
			expectedDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			expectedAge:  35,
			desc:         "Today counts as the next occurrence",
		},
		{
			name:         "Year unknown",
			birthDate:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			yearKnown:    false,
			expectedDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedAge:  0,
			desc:         "Date is computed, age stays 0",
		},
		{
			name:         "Leapling in a common year",
			birthDate:    time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
			yearKnown:    true,
			expectedDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			expectedAge:  26,
			desc:         "Feb 29 normalizes to Mar 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, age := calculateNextOccurrence(now, tt.birthDate, tt.yearKnown)
			assert.Equal(t, tt.expectedDate, next, tt.desc)
			assert.Equal(t, tt.expectedAge, age, "Age calculation mismatch")
		})
	}
}

func TestCalculateNextOccurrence_LeapYearContext(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	birthDate := time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC)

	next, _ := calculateNextOccurrence(now, birthDate, true)

	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), next, "In a leap year the birthday stays on Feb 29")
}

func TestParseBirthday(t *testing.T) {
	tests := []struct {
		value     string
		wantDate  time.Time
		wantClock *natal.ClockTime
		yearKnown bool
	}{
		{"1990-10-25", time.Date(1990, 10, 25, 0, 0, 0, 0, time.UTC), nil, true},
		{"19901025", time.Date(1990, 10, 25, 0, 0, 0, 0, time.UTC), nil, true},
		{"1990-10-25T08:30:00Z", time.Date(1990, 10, 25, 0, 0, 0, 0, time.UTC), &natal.ClockTime{Hour: 8, Minute: 30}, true},
		{"1990-10-25T23:15:00+07:00", time.Date(1990, 10, 25, 0, 0, 0, 0, time.UTC), &natal.ClockTime{Hour: 23, Minute: 15}, true},
		{"1990-10-25T08:30", time.Date(1990, 10, 25, 0, 0, 0, 0, time.UTC), &natal.ClockTime{Hour: 8, Minute: 30}, true},
		{"19901025T0830", time.Date(1990, 10, 25, 0, 0, 0, 0, time.UTC), &natal.ClockTime{Hour: 8, Minute: 30}, true},
		{"19901025T083000Z", time.Date(1990, 10, 25, 0, 0, 0, 0, time.UTC), &natal.ClockTime{Hour: 8, Minute: 30}, true},
		{"--10-25", time.Date(2000, 10, 25, 0, 0, 0, 0, time.UTC), nil, false},
		{"--0229", time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			b, err := parseBirthday(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, b.date)
			assert.Equal(t, tt.wantClock, b.clock)
			assert.Equal(t, tt.yearKnown, b.yearKnown)
		})
	}
}

func TestParseBirthday_Invalid(t *testing.T) {
	for _, v := range []string{"not-a-date", "1990-13-01", "1990-02-30", "--13-01", ""} {
		_, err := parseBirthday(v)
		assert.Error(t, err, "value %q", v)
	}
}

func TestWetonanEvents_SkipsBirthDay(t *testing.T) {
	g := &Generator{}
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	p := natal.Compute(natal.BirthInput{Date: natal.NewCivilDate(2024, time.December, 20)})

	c := contactEvents{
		uid:     "u",
		name:    "Bayi",
		bday:    birthday{date: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), yearKnown: true},
		profile: &p,
	}

	events, today := g.wetonanEvents(c, "", 105, now)
	assert.False(t, today)
	require.Len(t, events, 3, "2025-01-24, 2025-02-28 and 2025-04-04")

	start, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 24, 0, 0, 0, 0, time.UTC), start)
}

func TestWetonanEvents_DisabledWithoutProfile(t *testing.T) {
	g := &Generator{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := contactEvents{bday: birthday{date: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}}

	events, _ := g.wetonanEvents(c, "", 105, now)
	assert.Empty(t, events)

	p := natal.Compute(natal.BirthInput{Date: natal.NewCivilDate(2000, time.January, 1)})
	c.profile = &p
	events, _ = g.wetonanEvents(c, "", 0, now)
	assert.Empty(t, events, "zero horizon disables wetonan events")
}
