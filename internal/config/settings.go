package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the runtime configuration of a go-natal process.
// Values are populated from .go-natal.yaml, GONATAL_* env vars and CLI flags.
type Settings struct {
	ServerPort       string `mapstructure:"server_port"`
	BindAddr         string `mapstructure:"bind_addr"`
	SourceMode       string `mapstructure:"source_mode"`
	LocalPath        string `mapstructure:"local_path"`
	WebURL           string `mapstructure:"web_url"`
	WebUser          string `mapstructure:"web_user"`
	RefreshMin       int    `mapstructure:"refresh_interval_min"`
	WatchLocal       bool   `mapstructure:"watch_local"`
	ReminderEnabled  bool   `mapstructure:"reminder_enabled"`
	ReminderValue    int    `mapstructure:"reminder_value"`
	ReminderUnit     string `mapstructure:"reminder_unit"`
	ReminderDir      string `mapstructure:"reminder_direction"`
	WetonHorizonDays int    `mapstructure:"weton_horizon_days"`
	Convention       string `mapstructure:"pasaran_convention"`
	LogLevel         string `mapstructure:"log_level"`
	RateLimitPerMin  int    `mapstructure:"rate_limit_per_min"`
	RateLimitBurst   int    `mapstructure:"rate_limit_burst"`
}

// SetDefaults registers the built-in defaults on the global viper instance.
func SetDefaults() {
	viper.SetDefault(KeyServerPort, DefaultPort)
	viper.SetDefault(KeyBindAddr, DefaultBindAddr)
	viper.SetDefault(KeySourceMode, SourceModeLocal)
	viper.SetDefault(KeyLocalPath, "")
	viper.SetDefault(KeyWebURL, "")
	viper.SetDefault(KeyWebUser, "")
	viper.SetDefault(KeyRefreshInterval, DefaultRefreshMin)
	viper.SetDefault(KeyWatchLocal, true)
	viper.SetDefault(KeyReminderEnabled, false)
	viper.SetDefault(KeyReminderValue, DefaultReminderValue)
	viper.SetDefault(KeyReminderUnit, UnitDays)
	viper.SetDefault(KeyReminderDir, DirBefore)
	viper.SetDefault(KeyWetonHorizonDays, DefaultWetonHorizon)
	viper.SetDefault(KeyConvention, DefaultConvention)
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)
	viper.SetDefault(KeyRateLimitPerMin, DefaultRateLimitPerMin)
	viper.SetDefault(KeyRateLimitBurst, DefaultRateLimitBurst)
}

// Load reads settings from viper, applying built-in defaults for any value not
// set by config file, environment or flags, and validates the result.
func Load() (Settings, error) {
	SetDefaults()

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrConfigDecode, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings that would otherwise fail late, deep inside a sync.
func (s Settings) Validate() error {
	var errs []error

	if err := ValidatePort(s.ServerPort); err != nil {
		errs = append(errs, err)
	}
	switch s.SourceMode {
	case SourceModeLocal, SourceModeWeb:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrModeUnsupport, s.SourceMode))
	}
	switch s.ReminderUnit {
	case UnitDays, UnitHours, UnitMinutes:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrReminderUnit, s.ReminderUnit))
	}
	switch s.ReminderDir {
	case DirBefore, DirAfter:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrReminderDir, s.ReminderDir))
	}
	switch strings.ToLower(s.Convention) {
	case "", "jdn", "legacy":
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrConvention, s.Convention))
	}
	if s.RefreshMin < 0 {
		errs = append(errs, errors.New(ErrRefreshInterval))
	}
	if s.WetonHorizonDays < 0 {
		errs = append(errs, errors.New(ErrWetonHorizon))
	}

	return errors.Join(errs...)
}

// ValidatePort checks that port is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPortNumber, err)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// ReminderTrigger builds the ISO8601 VALARM trigger, or "" when reminders are off.
func (s Settings) ReminderTrigger() string {
	if !s.ReminderEnabled {
		return ""
	}

	val := s.ReminderValue
	if val <= 0 {
		val = DefaultReminderValue
	}

	sign := ISOPeriodPrefix
	if s.ReminderDir != DirAfter {
		sign = ISONegativePrefix
	}

	switch s.ReminderUnit {
	case UnitHours:
		return fmt.Sprintf("%sT%d%s", sign, val, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%sT%d%s", sign, val, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, val, ISODay)
	}
}

// ParseLogLevel maps a textual level to slog. Unknown values fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
