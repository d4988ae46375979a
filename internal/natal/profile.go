package natal

import "strings"

// NatalProfile is the bundle of symbolic attributes derived from a birth input.
// Ascendant is nil when the birth time is unknown.
type NatalProfile struct {
	Weton        Weton   `json:"weton" yaml:"weton"`
	Zodiac       string  `json:"zodiac" yaml:"zodiac"`
	Shio         string  `json:"shio" yaml:"shio"`
	LifePath     int     `json:"lifePath" yaml:"lifePath"`
	Element      string  `json:"element" yaml:"element"`
	RulingPlanet string  `json:"rulingPlanet" yaml:"rulingPlanet"`
	Ascendant    *string `json:"ascendant" yaml:"ascendant"`
	MoonPhase    string  `json:"moonPhase" yaml:"moonPhase"`
}

// Compute builds the profile of a validated birth input with the canonical
// pasaran convention.
func Compute(in BirthInput) NatalProfile {
	return ComputeWith(in, ConventionJDN)
}

// ComputeWith builds the profile of a validated birth input.
func ComputeWith(in BirthInput, c PasaranConvention) NatalProfile {
	sign := ZodiacOf(in.Date)
	return NatalProfile{
		Weton:        WetonWith(in.Date, c),
		Zodiac:       sign,
		Shio:         ShioOf(in.Date.Year),
		LifePath:     LifePathOf(in.Date),
		Element:      ElementOf(sign),
		RulingPlanet: RulingPlanetOf(sign),
		Ascendant:    AscendantOf(sign, in.Time),
		MoonPhase:    MoonPhaseOf(in.Date),
	}
}

// ParseBirthInput validates a "YYYY-MM-DD" date and an optional "HH:MM" time.
// An empty clock leaves Time nil.
func ParseBirthInput(date, clock string) (BirthInput, error) {
	d, err := ParseDate(date)
	if err != nil {
		return BirthInput{}, err
	}
	in := BirthInput{Date: d}
	if strings.TrimSpace(clock) != "" {
		t, err := ParseClock(clock)
		if err != nil {
			return BirthInput{}, err
		}
		in.Time = &t
	}
	return in, nil
}

// ComputeNatalProfile is the string entry point used by the CLI and HTTP layers.
// An empty date yields a nil profile and no error: the profile is absent, not
// invalid. Malformed dates or times fail with ErrInvalidDate or ErrInvalidTime.
func ComputeNatalProfile(date, clock string) (*NatalProfile, error) {
	return ComputeNatalProfileWith(date, clock, ConventionJDN)
}

// ComputeNatalProfileWith is ComputeNatalProfile with an explicit pasaran convention.
func ComputeNatalProfileWith(date, clock string, c PasaranConvention) (*NatalProfile, error) {
	if strings.TrimSpace(date) == "" {
		return nil, nil
	}
	in, err := ParseBirthInput(date, clock)
	if err != nil {
		return nil, err
	}
	p := ComputeWith(in, c)
	return &p, nil
}
