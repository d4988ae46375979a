package natal

var elements = map[string]string{
	"Aries":       "Fire",
	"Leo":         "Fire",
	"Sagittarius": "Fire",
	"Taurus":      "Earth",
	"Virgo":       "Earth",
	"Capricorn":   "Earth",
	"Gemini":      "Air",
	"Libra":       "Air",
	"Aquarius":    "Air",
	"Cancer":      "Water",
	"Scorpio":     "Water",
	"Pisces":      "Water",
}

var rulingPlanets = map[string]string{
	"Aries":       "Mars",
	"Taurus":      "Venus",
	"Gemini":      "Mercury",
	"Cancer":      "Moon",
	"Leo":         "Sun",
	"Virgo":       "Mercury",
	"Libra":       "Venus",
	"Scorpio":     "Pluto",
	"Sagittarius": "Jupiter",
	"Capricorn":   "Saturn",
	"Aquarius":    "Uranus",
	"Pisces":      "Neptune",
}

// ElementOf returns the classical element of a sun sign, or "" for an unknown sign.
func ElementOf(sign string) string {
	return elements[sign]
}

// RulingPlanetOf returns the ruling planet of a sun sign, or "" for an unknown sign.
func RulingPlanetOf(sign string) string {
	return rulingPlanets[sign]
}

// AscendantOf estimates the rising sign from the sun sign and the birth hour.
// Each two hours past 06:00 advance the sign by one. Minutes are ignored.
// It returns nil when the birth time is unknown.
func AscendantOf(sunSign string, t *ClockTime) *string {
	if t == nil {
		return nil
	}
	sunIdx := ZodiacIndex(sunSign)
	if sunIdx < 0 {
		return nil
	}

	offset := floorDiv(t.Hour-6, 2)
	if offset < 0 {
		offset += 12
	}

	asc := ZodiacSigns[(sunIdx+offset)%len(ZodiacSigns)]
	return &asc
}
