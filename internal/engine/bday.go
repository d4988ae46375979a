package engine

import (
	"errors"
	"time"

	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/natal"
)

// birthday is a parsed vCard BDAY value.
type birthday struct {
	date      time.Time        // UTC midnight
	clock     *natal.ClockTime // nil when BDAY carries no time of day
	yearKnown bool
}

var (
	dateOnlyLayouts = []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
	}

	// The wall clock is taken as written; offsets are not converted.
	dateTimeLayouts = []string{
		config.DateFormatRFC3339,
		config.DateFormatDashHM,
		config.DateFormatBasicHMS,
		config.DateFormatBasicHM,
	}

	noYearLayouts = []string{
		config.DateFormatNoYearD,
		config.DateFormatNoYearB,
	}
)

// parseBirthday accepts the BDAY shapes found in the wild: full dates, dates
// with a time of day, and truncated --MM-DD dates without a year.
func parseBirthday(value string) (birthday, error) {
	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return birthday{date: midnight(t.Year(), t.Month(), t.Day()), yearKnown: true}, nil
		}
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return birthday{
				date:      midnight(t.Year(), t.Month(), t.Day()),
				clock:     &natal.ClockTime{Hour: t.Hour(), Minute: t.Minute()},
				yearKnown: true,
			}, nil
		}
	}

	for _, layout := range noYearLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return birthday{date: midnight(config.DefaultLeapYear, t.Month(), t.Day())}, nil
		}
	}

	return birthday{}, errors.New(config.ErrDateParse)
}

func midnight(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
