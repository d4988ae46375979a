package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/metrics"
)

// Routes builds the chi router.
//
// Middleware order: recovery → request logging → (API only) rate limit.
func (s *CalendarServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware(s.opts.Metrics))

	// The calendar handler answers 405 itself so that Allow is always set.
	r.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	r.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)

	r.Get(config.RouteHealth, s.handleHealth)
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, config.RouteMetrics, metrics.Handler(s.opts.Gatherer))
	}

	r.Route(config.RouteAPIPrefix, func(r chi.Router) {
		if s.opts.Limiter != nil {
			r.Use(s.opts.Limiter.Middleware)
		}
		r.Get(apiPath(config.RouteNatal), s.handleNatal)
		r.Get(apiPath(config.RouteContacts), s.handleContacts)
		if s.opts.Syncer != nil {
			r.Post(apiPath(config.RouteSync), s.handleSync)
		}
	})

	return r
}

func apiPath(route string) string {
	return strings.TrimPrefix(route, config.RouteAPIPrefix)
}
