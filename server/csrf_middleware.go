package server

import (
	"net/http"

	"github.com/gistree/server/auth"
	apperrors "github.com/gistree/server/internal/errors"
	"github.com/rs/zerolog/log"
)

// CSRFMiddleware enforces the double-submit check on state-changing
// requests: the csrf_token cookie must equal the X-CSRF-Token header.
func (s *Server) CSRFMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.IsSafeMethod(r.Method) {
			next(w, r)
			return
		}

		var cookieToken string
		if c, err := r.Cookie(auth.CSRFCookieName); err == nil {
			cookieToken = c.Value
		}
		if !auth.TokensEqual(cookieToken, r.Header.Get(auth.CSRFHeaderName)) {
			s.metrics.CSRFRejected()
			log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("csrf check failed")
			s.writeError(w, r, apperrors.ErrInvalidCSRF)
			return
		}
		next(w, r)
	}
}
