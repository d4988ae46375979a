// Package lexicon renders user-facing text from the fixed Indonesian lexicon
// embedded in the binary.
package lexicon

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/natal"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Lexicon localizes event summaries, profile descriptions and greetings.
// A nil *Lexicon is usable and renders the built-in fallbacks.
type Lexicon struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer

	// Languages lists the lexicon files found in the embedded FS.
	Languages []string
}

// New loads every embedded lexicon file and selects the Indonesian localizer.
func New() (*Lexicon, error) {
	bundle := i18n.NewBundle(language.Indonesian)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(config.LexiconDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLexiconAccess, err)
	}

	var detected []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, config.LexiconPrefix) || !strings.HasSuffix(name, config.LexiconExt) {
			slog.Debug(config.MsgLexiconSkip,
				config.LogKeyComponent, config.CompLexicon,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, config.LexiconPrefix), config.LexiconExt)
		if langCode == "" {
			slog.Warn(config.MsgLexiconBad,
				config.LogKeyComponent, config.CompLexicon,
				config.LogKeyFile, name,
			)
			continue
		}

		path := config.LexiconDir + "/" + name
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			slog.Error(config.ErrLexiconLoad,
				config.LogKeyComponent, config.CompLexicon,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		detected = append(detected, langCode)
		slog.Debug(config.MsgLexiconLoaded,
			config.LogKeyComponent, config.CompLexicon,
			config.LogKeyLang, langCode,
		)
	}

	if len(detected) == 0 {
		return nil, errors.New(config.ErrLexiconEmpty)
	}

	return &Lexicon{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, config.LexiconLang),
		Languages: detected,
	}, nil
}

// localize translates a key with template data.
func (l *Lexicon) localize(key string, data map[string]any) (string, error) {
	if l == nil || l.localizer == nil {
		return "", errors.New(config.ErrLexiconNotInit)
	}
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompLexicon,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", err
	}
	return msg, nil
}

// Msg translates a key without template data. Missing keys return the key itself.
func (l *Lexicon) Msg(key string) string {
	msg, err := l.localize(key, nil)
	if err != nil || msg == "" {
		return key
	}
	return msg
}

// BirthdaySummary renders the calendar summary of a birthday event.
// Age 0 with a known year is the birth itself.
func (l *Lexicon) BirthdaySummary(name string, age int, yearKnown bool) string {
	var (
		msg string
		err error
	)

	switch {
	case yearKnown && age == 0:
		msg, err = l.localize(config.TKeyEvtBirthdayBirth, map[string]any{"Name": name})
	case yearKnown:
		msg, err = l.localize(config.TKeyEvtBirthdayAge, map[string]any{"Name": name, "Age": age})
	default:
		msg, err = l.localize(config.TKeyEvtBirthday, map[string]any{"Name": name})
	}

	if err != nil || msg == "" {
		if yearKnown {
			if age == 0 {
				return fmt.Sprintf(config.FallbackSummaryBirth, name)
			}
			return fmt.Sprintf(config.FallbackSummaryAge, name, age)
		}
		return fmt.Sprintf(config.FallbackSummary, name)
	}
	return msg
}

// WetonanSummary renders the calendar summary of a wetonan event.
func (l *Lexicon) WetonanSummary(name string, w natal.Weton) string {
	msg, err := l.localize(config.TKeyEvtWetonan, map[string]any{"Name": name, "Weton": w.String()})
	if err != nil || msg == "" {
		return fmt.Sprintf(config.FallbackWetonan, name, w.String())
	}
	return msg
}

// ProfileDescription renders a profile as one sentence, used for event descriptions.
func (l *Lexicon) ProfileDescription(p natal.NatalProfile) string {
	msg, err := l.localize(config.TKeyProfileLine, map[string]any{
		"Weton":    p.Weton.String(),
		"Neptu":    p.Weton.Neptu,
		"Zodiac":   p.Zodiac,
		"Shio":     p.Shio,
		"LifePath": p.LifePath,
		"Element":  p.Element,
		"Planet":   p.RulingPlanet,
		"Moon":     p.MoonPhase,
	})
	if err != nil || msg == "" {
		msg = fmt.Sprintf(config.FallbackProfileLine,
			p.Weton.String(), p.Weton.Neptu, p.Zodiac, p.Shio, p.LifePath, p.Element, p.RulingPlanet, p.MoonPhase)
	}

	if p.Ascendant != nil {
		if asc, err := l.localize(config.TKeyAscendantLine, map[string]any{"Ascendant": *p.Ascendant}); err == nil && asc != "" {
			msg += ". " + asc
		}
	}
	return msg
}

// ProfileText renders a profile as labelled lines for terminal output.
func (l *Lexicon) ProfileText(p natal.NatalProfile) string {
	ascendant := l.Msg(config.TKeyAscendantUnknown)
	if p.Ascendant != nil {
		ascendant = *p.Ascendant
	}

	rows := []struct {
		key   string
		value string
	}{
		{config.TKeyLblWeton, p.Weton.String()},
		{config.TKeyLblNeptu, fmt.Sprint(p.Weton.Neptu)},
		{config.TKeyLblZodiac, p.Zodiac},
		{config.TKeyLblShio, p.Shio},
		{config.TKeyLblLifePath, fmt.Sprint(p.LifePath)},
		{config.TKeyLblElement, p.Element},
		{config.TKeyLblPlanet, p.RulingPlanet},
		{config.TKeyLblAscendant, ascendant},
		{config.TKeyLblMoon, p.MoonPhase},
	}

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%-16s %s\n", l.Msg(r.key)+":", r.value)
	}
	return b.String()
}

// Greeting returns the Indonesian time-of-day greeting for now.
// The clock is explicit so that callers stay deterministic.
func (l *Lexicon) Greeting(now time.Time) string {
	h := now.Hour()
	switch {
	case h >= config.GreetMorningHour && h < config.GreetMiddayHour:
		return l.Msg(config.TKeyGreetMorning)
	case h >= config.GreetMiddayHour && h < config.GreetAfternoonHour:
		return l.Msg(config.TKeyGreetMidday)
	case h >= config.GreetAfternoonHour && h < config.GreetEveningHour:
		return l.Msg(config.TKeyGreetAfternoon)
	default:
		return l.Msg(config.TKeyGreetEvening)
	}
}
