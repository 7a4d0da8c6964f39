package auth

import (
	"net/http"

	apperrors "github.com/gistree/server/internal/errors"
)

// Failure reasons reported to the frontend after a failed callback. Raw
// error text never leaves the server.
const (
	ReasonMissingCode    = "missing_code"
	ReasonSessionExpired = "session_expired"
	ReasonLoginFailed    = "login_failed"
)

// FailureReason maps a callback error to the reason shown to the user.
func FailureReason(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrMissingCode):
		return ReasonMissingCode
	case apperrors.Is(err, apperrors.ErrSessionExpired):
		return ReasonSessionExpired
	default:
		return ReasonLoginFailed
	}
}

// FailureStatus maps a callback error to the status used when the callback
// answers with JSON instead of a redirect.
func FailureStatus(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrMissingCode), apperrors.Is(err, apperrors.ErrSessionExpired):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
