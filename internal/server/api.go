package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/engine"
	"github.com/tartampluch/go-natal/internal/natal"
)

// APIError is the JSON error body of every /api endpoint.
type APIError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

var (
	errInvalidDate = APIError{
		Code:     config.ErrCodeInvalidDate,
		Message:  config.APIMsgInvalidDate,
		Category: config.ErrCategoryValidation,
		Action:   config.ActionFixDate,
	}
	errInvalidTime = APIError{
		Code:     config.ErrCodeInvalidTime,
		Message:  config.APIMsgInvalidTime,
		Category: config.ErrCategoryValidation,
		Action:   config.ActionFixTime,
	}
	errInvalidConvention = APIError{
		Code:     config.ErrCodeInvalidConvention,
		Message:  config.APIMsgInvalidConvention,
		Category: config.ErrCategoryValidation,
		Action:   config.ActionFixConvention,
	}
	errInternal = APIError{
		Code:     config.ErrCodeInternal,
		Message:  config.APIMsgInternal,
		Category: config.ErrCategorySystem,
		Action:   config.ActionRetryLater,
	}
	errRateLimited = APIError{
		Code:     config.ErrCodeRateLimited,
		Message:  config.APIMsgRateLimited,
		Category: config.ErrCategorySystem,
		Action:   config.ActionRetryLater,
	}
)

// handleNatal computes a profile from the date, time and convention query
// parameters. An empty date is an absent profile: 204 No Content.
func (s *CalendarServer) handleNatal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	convention := s.opts.Convention
	if raw := q.Get(config.QueryConvention); raw != "" {
		c, err := natal.ParseConvention(raw)
		if err != nil {
			s.reject(w, errInvalidConvention)
			return
		}
		convention = c
	}

	profile, err := natal.ComputeNatalProfileWith(q.Get(config.QueryDate), q.Get(config.QueryTime), convention)
	switch {
	case errors.Is(err, natal.ErrInvalidDate):
		s.reject(w, errInvalidDate)
		return
	case errors.Is(err, natal.ErrInvalidTime):
		s.reject(w, errInvalidTime)
		return
	case err != nil:
		slog.Error(config.ErrProfile,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	case profile == nil:
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.opts.Metrics.RecordProfile(string(convention))
	slog.Debug(config.MsgProfileServed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyConvention, string(convention),
	)
	writeJSON(w, http.StatusOK, profile)
}

func (s *CalendarServer) reject(w http.ResponseWriter, apiErr APIError) {
	s.opts.Metrics.RecordProfileRejected(apiErr.Code)
	writeError(w, http.StatusBadRequest, apiErr)
}

// handleContacts returns the contacts of the last sync, soonest birthday first.
func (s *CalendarServer) handleContacts(w http.ResponseWriter, r *http.Request) {
	contacts := []engine.ContactEntry{}
	if p := s.contacts.Load(); p != nil {
		contacts = *p
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *CalendarServer) handleSync(w http.ResponseWriter, r *http.Request) {
	s.opts.Syncer.Trigger()
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyManual, true,
	)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": config.SyncStatusAccepted})
}

func (s *CalendarServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": config.HealthStatusOK})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrEncodeResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func writeError(w http.ResponseWriter, status int, apiErr APIError) {
	writeJSON(w, status, apiErr)
}
