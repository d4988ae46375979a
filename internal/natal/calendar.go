// Package natal turns a birth date, and optionally a birth time, into a
// NatalProfile drawn from five calendrical systems: the Javanese pasaran
// calendar, the Western zodiac, the Chinese zodiac (shio), Pythagorean
// numerology and a lunar-phase approximation.
//
// Every function in this package is pure. Callers validate input at the
// boundary (ParseDate, ParseClock, ComputeNatalProfile); the lower-level
// functions assume a valid Gregorian date and do not check it again.
package natal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Input layouts accepted at the boundary.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	// ErrInvalidDate is returned when a birth date cannot be resolved to a Gregorian day.
	ErrInvalidDate = errors.New("invalid birth date")
	// ErrInvalidTime is returned when a birth time is not a 24-hour HH:MM value.
	ErrInvalidTime = errors.New("invalid birth time")
)

// CivilDate is a proleptic Gregorian calendar date without time or zone.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCivilDate builds a CivilDate. It does not validate its arguments.
func NewCivilDate(year int, month time.Month, day int) CivilDate {
	return CivilDate{Year: year, Month: month, Day: day}
}

// CivilDateOf extracts the calendar date of t in its own location.
func CivilDateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// ParseDate validates a "YYYY-MM-DD" string and returns the matching CivilDate.
// Out-of-range days such as 1990-02-30 are rejected.
func ParseDate(value string) (CivilDate, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return CivilDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return CivilDateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d CivilDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the Gregorian day of the week.
func (d CivilDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days later (or earlier when n is negative).
func (d CivilDate) AddDays(n int) CivilDate {
	return CivilDateOf(d.Time().AddDate(0, 0, n))
}

// JDN returns the Julian Day Number of the date.
func (d CivilDate) JDN() int {
	return JulianDayNumber(d.Year, d.Month, d.Day)
}

// Before reports whether d is strictly earlier than other.
func (d CivilDate) Before(other CivilDate) bool {
	return d.JDN() < other.JDN()
}

// String formats the date as YYYY-MM-DD.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ClockTime is a 24-hour wall clock reading with no timezone.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock validates an "HH:MM" string.
func ParseClock(value string) (ClockTime, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(value))
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String formats the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// BirthInput is the validated input of the profile computation.
// A nil Time means the birth time is unknown.
type BirthInput struct {
	Date CivilDate
	Time *ClockTime
}

// JulianDayNumber converts a Gregorian civil date to its Julian Day Number.
func JulianDayNumber(year int, month time.Month, day int) int {
	m0 := int(month)
	a := floorDiv(14-m0, 12)
	y := year + 4800 - a
	m := m0 + 12*a - 3
	return day + floorDiv(153*m+2, 5) + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045
}

// floorDiv divides rounding toward negative infinity. Go's / truncates toward zero.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod returns the non-negative remainder of a by a positive b.
func floorMod(a, b int) int {
	return ((a % b) + b) % b
}
