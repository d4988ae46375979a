// Package worker keeps the published calendar current: it synchronizes on a
// ticker, on local file changes and on explicit requests.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/engine"
	"github.com/tartampluch/go-natal/internal/metrics"
	"github.com/tartampluch/go-natal/internal/natal"
	"github.com/zalando/go-keyring"
)

// Runner performs one synchronization. *engine.Generator satisfies it.
type Runner interface {
	RunSync(ctx context.Context, cfg engine.SyncConfig) ([]byte, []engine.ContactEntry, int, error)
}

// Publisher receives the results of a successful synchronization.
// *server.CalendarServer satisfies it.
type Publisher interface {
	Update(data []byte)
	SetContacts(contacts []engine.ContactEntry)
}

// Options configures a Worker.
type Options struct {
	Runner    Runner
	Publisher Publisher
	Metrics   metrics.Recorder
	Config    engine.SyncConfig

	// Interval between periodic syncs. Zero disables the ticker.
	Interval time.Duration

	// WatchPath is the local vCard file to watch. Empty disables watching.
	WatchPath string
}

// Worker runs synchronizations until its context is canceled.
type Worker struct {
	opts    Options
	trigger chan struct{}
}

// New creates a Worker. A nil Metrics records nothing.
func New(opts Options) *Worker {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	return &Worker{
		opts:    opts,
		trigger: make(chan struct{}, config.ChannelBufferSize),
	}
}

// Trigger requests a sync without blocking. Requests made while one is
// already pending are coalesced.
func (w *Worker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run performs an initial sync, then loops until ctx is done.
// It returns an error only when the file watcher cannot be set up.
func (w *Worker) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, w.opts.Interval.String())

	var tick <-chan time.Time
	if w.opts.Interval > 0 {
		ticker := time.NewTicker(w.opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var (
		events   <-chan fsnotify.Event
		errs     <-chan error
		debounce <-chan time.Time
		target   string
	)
	if w.opts.WatchPath != "" {
		fw, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrWatcherCreate, err)
		}
		defer func() { _ = fw.Close() }()

		// Editors replace files by rename; watching the directory survives that.
		target = filepath.Clean(w.opts.WatchPath)
		if err := fw.Add(filepath.Dir(target)); err != nil {
			return fmt.Errorf("%s: %w", config.ErrWatcherAdd, err)
		}
		log.Info(config.MsgWatchStart, config.LogKeyPath, target)
		events, errs = fw.Events, fw.Errors
	}

	w.sync(ctx, config.TriggerStartup)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return nil

		case <-tick:
			w.sync(ctx, config.TriggerTicker)

		case <-w.trigger:
			w.sync(ctx, config.TriggerManual)

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				log.Debug(config.MsgWatchEvent, config.LogKeyEvent, ev.Op.String())
				debounce = time.After(config.WatchDebounce)
			}

		case <-debounce:
			debounce = nil
			w.sync(ctx, config.TriggerWatch)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn(config.MsgWatchError, config.LogKeyError, err)
		}
	}
}

// sync runs one synchronization and publishes the result. Failures keep the
// previously published calendar.
func (w *Worker) sync(ctx context.Context, trigger string) {
	slog.Debug(config.MsgSyncReq,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyTrigger, trigger)

	start := time.Now()
	ics, contacts, today, err := w.opts.Runner.RunSync(ctx, w.opts.Config)
	w.opts.Metrics.RecordSync(err == nil, time.Since(start))
	if err != nil {
		if ctx.Err() == nil {
			slog.Error(config.ErrSyncFailed,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyTrigger, trigger,
				config.LogKeyError, err)
		}
		return
	}

	if w.opts.Publisher != nil {
		w.opts.Publisher.SetContacts(contacts)
		w.opts.Publisher.Update(ics)
	}
	w.opts.Metrics.RecordContacts(len(contacts), today)
}

// SyncConfigFrom assembles the engine configuration from settings. The web
// password is read from the OS keyring; a missing entry means no password.
func SyncConfigFrom(s config.Settings) (engine.SyncConfig, error) {
	conv, err := natal.ParseConvention(s.Convention)
	if err != nil {
		return engine.SyncConfig{}, fmt.Errorf("%s: %w", config.ErrConvention, err)
	}

	cfg := engine.SyncConfig{
		Mode:             s.SourceMode,
		LocalPath:        s.LocalPath,
		WebURL:           s.WebURL,
		WebUser:          s.WebUser,
		ReminderTrigger:  s.ReminderTrigger(),
		Convention:       conv,
		WetonHorizonDays: s.WetonHorizonDays,
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompWorker)
		}
	}
	return cfg, nil
}

// WatchPathFor returns the file to watch for s, or "" when watching does not apply.
func WatchPathFor(s config.Settings) string {
	if s.SourceMode != config.SourceModeLocal || !s.WatchLocal {
		return ""
	}
	return s.LocalPath
}
