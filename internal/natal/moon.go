package natal

import "math"

// MoonPhases are the eight named phases, indexed from New Moon.
var MoonPhases = [8]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

const (
	synodicMonth = 29.5305882
	// moonEpochOffset aligns the day count to a known new moon.
	moonEpochOffset = 694039.09
)

// MoonPhaseIndex approximates the lunar phase of d as an index 0..7.
// It is a closed-form estimate, not an ephemeris.
func MoonPhaseIndex(d CivilDate) int {
	year, month := d.Year, int(d.Month)
	if month < 3 {
		year--
		month += 12
	}
	month++

	c := 365.25 * float64(year)
	e := 30.6 * float64(month)
	jd := (c + e + float64(d.Day) - moonEpochOffset) / synodicMonth

	frac := jd - math.Floor(jd)
	idx := int(math.Round(frac * 8))
	if idx >= len(MoonPhases) {
		idx = 0
	}
	return idx
}

// MoonPhaseOf names the approximate lunar phase of d.
func MoonPhaseOf(d CivilDate) string {
	return MoonPhases[MoonPhaseIndex(d)]
}
