// Package server exposes the calendar feed and the natal profile API over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/engine"
	"github.com/tartampluch/go-natal/internal/metrics"
	"github.com/tartampluch/go-natal/internal/natal"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // http.TimeFormat
}

// Syncer schedules an out-of-band synchronization.
type Syncer interface {
	Trigger()
}

// SyncerFunc adapts a function to Syncer.
type SyncerFunc func()

// Trigger calls f.
func (f SyncerFunc) Trigger() { f() }

// Options configures a CalendarServer. Zero values disable the optional parts.
type Options struct {
	BindAddr   string
	Port       string
	Convention natal.PasaranConvention

	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer // serves /metrics when set
	Limiter  *RateLimiter        // guards /api/* when set
	Syncer   Syncer              // enables POST /api/sync when set
}

// CalendarServer serves the last generated calendar and contact list and
// computes natal profiles on demand.
type CalendarServer struct {
	// Written on sync, read on every request: atomic pointers keep reads lock-free.
	cache    atomic.Pointer[cacheItem]
	contacts atomic.Pointer[[]engine.ContactEntry]

	opts Options
}

// NewCalendarServer creates a server. Metrics default to a no-op recorder.
func NewCalendarServer(opts Options) *CalendarServer {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.BindAddr == "" {
		opts.BindAddr = config.DefaultBindAddr
	}
	if opts.Convention == "" {
		opts.Convention = natal.ConventionJDN
	}
	return &CalendarServer{opts: opts}
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *CalendarServer) Start(ctx context.Context) error {
	if err := config.ValidatePort(s.opts.Port); err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(s.opts.BindAddr, s.opts.Port),
		Handler:      s.Routes(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.opts.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// SetContacts atomically replaces the contact list served by /api/contacts.
func (s *CalendarServer) SetContacts(contacts []engine.ContactEntry) {
	sorted := append([]engine.ContactEntry(nil), contacts...)
	engine.SortByNextOccurrence(sorted)
	s.contacts.Store(&sorted)

	slog.Debug(config.MsgContactsSet,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyCount, len(sorted),
	)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		clientTime, err := time.Parse(http.TimeFormat, since)
		if err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil && !serverTime.After(clientTime) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
