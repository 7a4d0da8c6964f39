package server

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json"
	maxBodyBytes    = 1 << 20
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidRequest),
		apperrors.Is(err, apperrors.ErrMissingCode),
		apperrors.Is(err, apperrors.ErrSessionExpired):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrUnauthorized),
		apperrors.Is(err, apperrors.ErrInvalidToken),
		apperrors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrForbidden),
		apperrors.Is(err, apperrors.ErrInvalidCSRF):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case apperrors.Is(err, apperrors.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine readable "error" field of an error response.
func errorCode(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCSRF):
		return "invalid_csrf_token"
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		return "invalid_request"
	case apperrors.Is(err, apperrors.ErrUnauthorized),
		apperrors.Is(err, apperrors.ErrInvalidToken),
		apperrors.Is(err, apperrors.ErrTokenExpired):
		return "unauthorized"
	case apperrors.Is(err, apperrors.ErrForbidden):
		return "forbidden"
	case apperrors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case apperrors.Is(err, apperrors.ErrConflict):
		return "conflict"
	default:
		return "internal_error"
	}
}

// writeError renders err as {"error", "message"}. Only messages built with
// apperrors.Public reach the caller; anything else is logged and replaced
// by a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message, ok := apperrors.PublicMessage(err)
	if !ok {
		message = http.StatusText(status)
		if apperrors.Is(err, apperrors.ErrInvalidCSRF) {
			message = "Invalid CSRF token"
		}
	}
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: errorCode(err), Message: message})
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Public(apperrors.ErrInvalidRequest, "invalid request body: %s", err.Error())
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperrors.Public(apperrors.ErrInvalidRequest, "invalid request body: unexpected data after JSON object")
	}
	return nil
}
