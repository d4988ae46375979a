package natal

import "time"

// ZodiacSigns lists the Western zodiac signs in order, starting at Aries.
var ZodiacSigns = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// signRange is an inclusive (start, end) month/day window.
type signRange struct {
	sign       string
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
}

// contains matches either edge month; Capricorn wraps from December into January.
func (r signRange) contains(month time.Month, day int) bool {
	return (month == r.startMonth && day >= r.startDay) || (month == r.endMonth && day <= r.endDay)
}

var signRanges = []signRange{
	{"Aries", time.March, 21, time.April, 19},
	{"Taurus", time.April, 20, time.May, 20},
	{"Gemini", time.May, 21, time.June, 20},
	{"Cancer", time.June, 21, time.July, 22},
	{"Leo", time.July, 23, time.August, 22},
	{"Virgo", time.August, 23, time.September, 22},
	{"Libra", time.September, 23, time.October, 22},
	{"Scorpio", time.October, 23, time.November, 21},
	{"Sagittarius", time.November, 22, time.December, 21},
	{"Capricorn", time.December, 22, time.January, 19},
	{"Aquarius", time.January, 20, time.February, 18},
	{"Pisces", time.February, 19, time.March, 20},
}

// ZodiacOf classifies d into its Western sun sign. Pisces is the fallback.
func ZodiacOf(d CivilDate) string {
	for _, r := range signRanges {
		if r.contains(d.Month, d.Day) {
			return r.sign
		}
	}
	return "Pisces"
}

// ZodiacIndex returns the position of sign in ZodiacSigns, or -1.
func ZodiacIndex(sign string) int {
	for i, s := range ZodiacSigns {
		if s == sign {
			return i
		}
	}
	return -1
}

// ShioAnimals is indexed by year mod 12. The cycle starts at Monyet because
// year 0 mod 12 is a Monkey year.
var ShioAnimals = [12]string{
	"Monyet", "Ayam", "Anjing", "Babi", "Tikus", "Kerbau",
	"Macan", "Kelinci", "Naga", "Ular", "Kuda", "Kambing",
}

// ShioOf returns the Chinese zodiac animal of a Gregorian year.
func ShioOf(year int) string {
	return ShioAnimals[floorMod(year, len(ShioAnimals))]
}
