// Package engine turns a vCard address book into contact natal profiles and
// an iCalendar feed of birthdays and wetonan.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/natal"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // Path to the .vcf file
	WebURL          string // CardDAV or WebDAV URL
	WebUser         string // HTTP Basic Auth Username
	WebPass         string // HTTP Basic Auth Password
	ReminderTrigger string // ISO8601 duration (e.g. "-P1D"), empty for no alarm

	Convention natal.PasaranConvention

	// WetonHorizonDays bounds wetonan events ahead of today. Zero disables them.
	WetonHorizonDays int
}

// EventFormatter renders the localized text of generated events.
// *lexicon.Lexicon satisfies it.
type EventFormatter interface {
	BirthdaySummary(name string, age int, yearKnown bool) string
	WetonanSummary(name string, w natal.Weton) string
	ProfileDescription(p natal.NatalProfile) string
}

// Generator fetches an address book and converts it into a calendar.
type Generator struct {
	Clock   Clock
	Fetcher VCardFetcher

	// Formatter is optional; the Indonesian fallback strings are used when nil.
	Formatter EventFormatter
}

type syncStats struct {
	processed int
	withBday  int
	profiles  int
	today     int
}

// RunSync executes the fetch, parse and generate pipeline.
// It returns the ICS data, the contact entries, the number of celebrations
// (birthdays and wetonan) falling today, and any error.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) ([]byte, []ContactEntry, int, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	ics, contacts, count, err := g.Generate(ctx, reader, cfg)
	if err == nil {
		log.DebugContext(ctx, config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return ics, contacts, count, err
}

// acquireStream opens the data source selected by cfg.Mode.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// Generate decodes a vCard stream and builds the calendar and contact entries.
// Malformed cards and unparseable BDAY values are logged and skipped.
func (g *Generator) Generate(ctx context.Context, r io.Reader, cfg SyncConfig) ([]byte, []ContactEntry, int, error) {
	cal := newCalendar()

	// Local wall clock decides "today"; DTSTAMP is UTC.
	now := g.Clock.Now()
	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(now.UTC())

	decoder := vcard.NewDecoder(r)
	var (
		stats    syncStats
		contacts []ContactEntry
	)

	for {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		field := card.Get(config.VCardBDAY)
		if field == nil || field.Value == "" {
			continue
		}

		bday, err := parseBirthday(field.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, field.Value)
			continue
		}
		stats.withBday++

		c := contactEvents{
			name: contactName(card),
			bday: bday,
		}
		c.uid = uuid.NewSHA1(config.UIDNamespace,
			[]byte(fmt.Sprintf(config.FormatHashInput, c.name, bday.date.Format(config.UIDDateCompact)))).String()

		if bday.yearKnown {
			p := natal.ComputeWith(natal.BirthInput{Date: natal.CivilDateOf(bday.date), Time: bday.clock}, cfg.Convention)
			c.profile = &p
			stats.profiles++
		}

		contacts = append(contacts, newContactEntry(c, now))

		bdayEvents, bdayToday := g.birthdayEvents(c, cfg.ReminderTrigger, now)
		wetonEvents, wetonToday := g.wetonanEvents(c, cfg.ReminderTrigger, cfg.WetonHorizonDays, now)

		if bdayToday {
			stats.today++
			logCelebration(c, config.KindBirthday)
		}
		if wetonToday {
			stats.today++
			logCelebration(c, config.KindWetonan)
		}

		for _, e := range append(bdayEvents, wetonEvents...) {
			e.Props.Set(dtStamp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	g.logSuccess(stats)

	// An empty VCALENDAR from the encoder is rejected by clients; serve the stub.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), contacts, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), contacts, stats.today, nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986
	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)
	return cal
}

// contactName prefers FN, then N, then the fallback name.
func contactName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

func newContactEntry(c contactEvents, now time.Time) ContactEntry {
	next, ageNext := calculateNextOccurrence(now, c.bday.date, c.bday.yearKnown)
	entry := ContactEntry{
		UID:            c.uid,
		Name:           c.name,
		DateOfBirth:    c.bday.date,
		YearKnown:      c.bday.yearKnown,
		NextOccurrence: next,
		AgeNext:        ageNext,
		Profile:        c.profile,
	}
	if c.bday.clock != nil {
		entry.BirthTime = c.bday.clock.String()
	}
	if c.profile != nil {
		occ := natal.NextWetonan(natal.CivilDateOf(c.bday.date), natal.CivilDateOf(now))
		t := time.Date(occ.Year, occ.Month, occ.Day, 0, 0, 0, 0, now.Location())
		entry.NextWetonan = &t
	}
	return entry
}

func logCelebration(c contactEvents, kind string) {
	slog.Info(config.MsgCelebration,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyKind, kind,
		config.LogKeyName, c.name,
		config.LogKeyDOB, c.bday.date.Format(config.DateFormatFullDash))
}

func (g *Generator) logSuccess(stats syncStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeyProfiles, stats.profiles),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// calculateNextOccurrence returns the next birthday on or after today, in
// now's location, and the age reached on it.
func calculateNextOccurrence(now time.Time, birthDate time.Time, yearKnown bool) (time.Time, int) {
	loc := now.Location()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	candidate := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	if candidate.Before(todayStart) {
		candidate = time.Date(now.Year()+1, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	}

	ageNext := 0
	if yearKnown {
		ageNext = candidate.Year() - birthDate.Year()
	}
	return candidate, ageNext
}
