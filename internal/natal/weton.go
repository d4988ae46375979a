package natal

import (
	"fmt"
	"strings"
	"time"
)

// Pasaran names in cycle order.
const (
	Legi   = "Legi"
	Paing  = "Paing"
	Pon    = "Pon"
	Wage   = "Wage"
	Kliwon = "Kliwon"
)

// PasaranCycle is the 5-day Javanese market week.
var PasaranCycle = [5]string{Legi, Paing, Pon, Wage, Kliwon}

// dayNames maps time.Weekday (Sunday = 0) to the Indonesian day name.
var dayNames = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

var dayValue = map[string]int{
	"Minggu": 5,
	"Senin":  4,
	"Selasa": 3,
	"Rabu":   7,
	"Kamis":  8,
	"Jumat":  6,
	"Sabtu":  9,
}

var pasaranValue = map[string]int{
	Legi:   5,
	Paing:  9,
	Pon:    7,
	Wage:   4,
	Kliwon: 8,
}

// legacyFallbackNeptu is reported for pre-epoch dates by the legacy convention.
const legacyFallbackNeptu = 15

// wetonCycleDays is lcm(7, 5): a weton repeats every 35 days.
const wetonCycleDays = 35

// baseJDN is the pasaran epoch, 1900-01-01.
var baseJDN = JulianDayNumber(1900, time.January, 1)

// PasaranConvention selects how the pasaran is aligned to the epoch.
type PasaranConvention string

const (
	// ConventionJDN is the canonical Julian-Day-Number alignment.
	ConventionJDN PasaranConvention = "jdn"
	// ConventionLegacy reproduces the simple day-difference variant, including its
	// Kliwon/15 fallback for dates before 1900-01-01.
	ConventionLegacy PasaranConvention = "legacy"
)

// ParseConvention maps a setting value to a PasaranConvention. Empty means ConventionJDN.
func ParseConvention(value string) (PasaranConvention, error) {
	switch PasaranConvention(strings.ToLower(strings.TrimSpace(value))) {
	case "", ConventionJDN:
		return ConventionJDN, nil
	case ConventionLegacy:
		return ConventionLegacy, nil
	default:
		return "", fmt.Errorf("unknown pasaran convention %q", value)
	}
}

// Weton is the Javanese day name, pasaran and their combined neptu weight.
type Weton struct {
	DayName string `json:"dayName" yaml:"dayName"`
	Pasaran string `json:"pasaran" yaml:"pasaran"`
	Neptu   int    `json:"neptu" yaml:"neptu"`
}

// String renders the weton as "<DayName> <Pasaran>".
func (w Weton) String() string {
	return w.DayName + " " + w.Pasaran
}

// DayName returns the Indonesian name of the Gregorian weekday of d.
func DayName(d CivilDate) string {
	return dayNames[d.Weekday()]
}

// PasaranOf resolves the pasaran of d with the canonical convention.
func PasaranOf(d CivilDate) string {
	diff := d.JDN() - baseJDN
	idx := floorMod(diff, len(PasaranCycle))
	return PasaranCycle[(idx+1)%len(PasaranCycle)]
}

// WetonOf computes the weton of d with the canonical convention.
func WetonOf(d CivilDate) Weton {
	return WetonWith(d, ConventionJDN)
}

// WetonWith computes the weton of d under the given convention.
func WetonWith(d CivilDate, c PasaranConvention) Weton {
	day := DayName(d)

	if c == ConventionLegacy {
		diff := d.JDN() - baseJDN
		if diff < 0 {
			return Weton{DayName: day, Pasaran: Kliwon, Neptu: legacyFallbackNeptu}
		}
		p := PasaranCycle[diff%len(PasaranCycle)]
		return Weton{DayName: day, Pasaran: p, Neptu: dayValue[day] + pasaranValue[p]}
	}

	p := PasaranOf(d)
	return Weton{DayName: day, Pasaran: p, Neptu: dayValue[day] + pasaranValue[p]}
}

// NextWetonan returns the first date on or after from that falls on the same
// weton as birth. Births after from yield the birth date itself.
func NextWetonan(birth, from CivilDate) CivilDate {
	diff := from.JDN() - birth.JDN()
	if diff <= 0 {
		return birth
	}
	return from.AddDays(floorMod(-diff, wetonCycleDays))
}
