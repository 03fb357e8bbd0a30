// Package httpjson writes the JSON envelope used by every HTTP handler and
// maps domain errors to status codes.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenancy/pkg/logger"
	"github.com/dmitrymomot/tenancy/pkg/scope"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

const maxBodyBytes = 1 << 20

var ErrBadRequest = errors.New("malformed request body")

// Envelope is the body of every JSON response.
type Envelope struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Write renders data with the given status.
func Write(w http.ResponseWriter, status int, data any, meta map[string]any) {
	write(w, status, Envelope{Data: data, Meta: meta})
}

// Error classifies err, logs server-side failures and renders the error
// envelope.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.ErrorContext(r.Context(), "request failed",
			logger.Component("http"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	write(w, status, Envelope{Error: detail})
}

// Decode reads a single JSON object into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

func classify(err error) (int, *ErrorDetail) {
	var verr *tenant.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, &ErrorDetail{
			Code: "validation_error", Message: "validation failed", Details: verr.Fields,
		}
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, detail("bad_request", err)
	case errors.Is(err, tenant.ErrSlugTaken), errors.Is(err, tenant.ErrDomainTaken):
		return http.StatusConflict, detail("conflict", err)
	case errors.Is(err, tenant.ErrTenantNotFound), errors.Is(err, scope.ErrNotFound):
		return http.StatusNotFound, detail("not_found", err)
	case errors.Is(err, tenant.ErrInvalidStatus):
		return http.StatusBadRequest, detail("invalid_status", err)
	case errors.Is(err, scope.ErrInvalidPage):
		return http.StatusBadRequest, detail("invalid_page", err)
	case errors.Is(err, scope.ErrNoTenant), errors.Is(err, tenant.ErrNoTenantInContext):
		return http.StatusUnauthorized, detail("tenant_required", err)
	}
	return http.StatusInternalServerError, &ErrorDetail{
		Code: "internal_error", Message: http.StatusText(http.StatusInternalServerError),
	}
}

func detail(code string, err error) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: err.Error()}
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
