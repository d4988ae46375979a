package engine

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/natal"
)

// contactEvents carries one contact through event generation.
type contactEvents struct {
	uid     string
	name    string
	bday    birthday
	profile *natal.NatalProfile
}

// birthdayEvents generates the birthday for the previous, current and next
// year, skipping years before the birth. It reports whether one is today.
func (g *Generator) birthdayEvents(c contactEvents, trigger string, now time.Time) ([]*ical.Event, bool) {
	currentYear := now.Year()
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()

	var (
		events  []*ical.Event
		isToday bool
	)

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if c.bday.yearKnown && y < c.bday.date.Year() {
			continue
		}

		age := 0
		if c.bday.yearKnown {
			age = y - c.bday.date.Year()
		}
		summary := g.birthdaySummary(c.name, age, c.bday.yearKnown)

		// time.Date normalizes Feb 29 to Mar 1 in common years.
		eventDate := time.Date(y, c.bday.date.Month(), c.bday.date.Day(), 0, 0, 0, 0, loc)
		if eventDate.Year() == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		event := newDayEvent(fmt.Sprintf(config.FormatUID, c.uid, y, config.ICalDomain), summary, eventDate, config.CategoryBirthday)
		if c.profile != nil {
			event.Props.SetText(config.PropDescription, g.profileDescription(*c.profile))
		}
		if trigger != "" {
			addAlarm(event, trigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

// wetonanEvents generates every weton recurrence inside
// [today-35d, today+horizonDays]. The birth day itself is not a recurrence.
func (g *Generator) wetonanEvents(c contactEvents, trigger string, horizonDays int, now time.Time) ([]*ical.Event, bool) {
	if c.profile == nil || horizonDays <= 0 {
		return nil, false
	}

	loc := now.Location()
	today := natal.CivilDateOf(now)
	birth := natal.CivilDateOf(c.bday.date)
	end := today.AddDays(horizonDays)
	summary := g.wetonanSummary(c.name, c.profile.Weton)
	description := g.profileDescription(*c.profile)

	var (
		events  []*ical.Event
		isToday bool
	)

	for occ := natal.NextWetonan(birth, today.AddDays(-config.WetonCycleDays)); !end.Before(occ); occ = occ.AddDays(config.WetonCycleDays) {
		if occ == birth {
			continue
		}
		if occ == today {
			isToday = true
		}

		uid := fmt.Sprintf(config.FormatUIDWetonan, c.uid, occ.Time().Format(config.UIDDateCompact), config.ICalDomain)
		event := newDayEvent(uid, summary, time.Date(occ.Year, occ.Month, occ.Day, 0, 0, 0, 0, loc), config.CategoryWetonan)
		event.Props.SetText(config.PropDescription, description)
		if trigger != "" {
			addAlarm(event, trigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

// newDayEvent builds an all-day VEVENT.
func newDayEvent(uid, summary string, day time.Time, category string) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid)
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropCategories, category)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDate(day)
	event.Props.Set(dtStart)
	return event
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value: SetText would add VALUE=TEXT, which clients reject on TRIGGER.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

func (g *Generator) birthdaySummary(name string, age int, yearKnown bool) string {
	if g.Formatter != nil {
		return g.Formatter.BirthdaySummary(name, age, yearKnown)
	}
	switch {
	case yearKnown && age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	case yearKnown:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	default:
		return fmt.Sprintf(config.FallbackSummary, name)
	}
}

func (g *Generator) wetonanSummary(name string, w natal.Weton) string {
	if g.Formatter != nil {
		return g.Formatter.WetonanSummary(name, w)
	}
	return fmt.Sprintf(config.FallbackWetonan, name, w.String())
}

func (g *Generator) profileDescription(p natal.NatalProfile) string {
	if g.Formatter != nil {
		return g.Formatter.ProfileDescription(p)
	}
	return fmt.Sprintf(config.FallbackProfileLine,
		p.Weton.String(), p.Weton.Neptu, p.Zodiac, p.Shio, p.LifePath, p.Element, p.RulingPlanet, p.MoonPhase)
}
