package server

import (
	"net/http"
	"net/url"

	"github.com/gistree/server/auth"
	"github.com/gistree/server/internal/config"
	"github.com/gistree/server/users"
	"github.com/rs/zerolog/log"
)

// LoginHandler starts a login: it stores a fresh PKCE verifier in a cookie
// and sends the browser to the identity provider.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, authURL, err := s.deps.Login.BeginLogin(r.URL.Query().Get("redirect_url"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.SetCodeVerifierCookie(w, r, pending.CodeVerifier)
		log.Debug().Str("redirect_path", pending.RedirectPath).Msg("login started")
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

type callbackUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"studentId"`
}

type callbackResponse struct {
	Message     string       `json:"message"`
	User        callbackUser `json:"user"`
	AccessToken string       `json:"access_token"`
}

// CallbackHandler finishes a login. Depending on configuration it either
// redirects to the frontend or answers with JSON.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		code := query.Get("code")

		var verifier string
		if code != "" {
			if c, err := r.Cookie(codeVerifierCookieName); err == nil {
				verifier = c.Value
				s.ClearCodeVerifierCookie(w, r)
			}
		}

		result, err := s.deps.Login.CompleteLogin(r.Context(), code, verifier, query.Get("state"))
		if err != nil {
			s.loginFailed(w, r, err)
			return
		}

		s.SetSessionCookies(w, r, result.AccessToken, result.CSRFToken)
		s.metrics.LoginSucceeded()
		log.Info().Str("user_id", result.User.ID).Msg("login succeeded")

		if s.config.GetCallbackMode() == config.CallbackModeJSON {
			writeJSON(w, http.StatusOK, callbackResponse{
				Message:     "Login successful",
				User:        newCallbackUser(result.User),
				AccessToken: result.AccessToken,
			})
			return
		}
		http.Redirect(w, r, s.frontendCallbackURL(result), http.StatusFound)
	}
}

func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, err error) {
	reason := auth.FailureReason(err)
	s.metrics.LoginFailed(reason)
	log.Warn().Err(err).Str("reason", reason).Msg("login failed")

	if s.config.GetCallbackMode() == config.CallbackModeJSON {
		writeJSON(w, auth.FailureStatus(err), errorBody{Error: reason, Message: failureMessage(reason)})
		return
	}
	target := s.config.GetFrontendURL() + "/auth/failed?reason=" + url.QueryEscape(reason)
	http.Redirect(w, r, target, http.StatusFound)
}

func failureMessage(reason string) string {
	switch reason {
	case auth.ReasonMissingCode:
		return "Authorization code is missing."
	case auth.ReasonSessionExpired:
		return "Login session expired, please try again."
	default:
		return "Login failed."
	}
}

func (s *Server) frontendCallbackURL(result *auth.LoginResult) string {
	target := s.config.GetFrontendURL() + "/auth/callback?redirect_url=" + url.QueryEscape(result.RedirectPath)
	if s.config.GetTokenInRedirect() {
		target += "&access_token=" + url.QueryEscape(result.AccessToken)
	}
	return target
}

func newCallbackUser(u *users.User) callbackUser {
	return callbackUser{ID: u.ID, Name: u.Name, Email: u.Email, StudentID: u.StudentID}
}

// LogoutHandler clears the session cookies. A valid session token is also
// revoked so a copy of it stops working before it expires.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw := sessionToken(r); raw != "" {
			if claims, err := s.deps.Sessions.Inspect(raw); err == nil {
				if err := s.deps.Revoked.Add(claims.JTI, claims.ExpiresAt); err != nil {
					log.Err(err).Msg("failed to revoke session token")
				}
			}
		}
		s.ClearSessionCookies(w, r)
		writeJSON(w, http.StatusOK, messageBody{Message: "Logged out successfully"})
	}
}
