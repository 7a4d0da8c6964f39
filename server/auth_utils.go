package server

import (
	"net/http"
	"time"

	"github.com/gistree/server/auth"
)

const (
	// codeVerifierCookieName holds the PKCE verifier between login and callback
	codeVerifierCookieName = "code_verifier"
	// accessTokenCookieName holds the session JWT
	accessTokenCookieName = "access_token"
)

// setCookie writes a root-path cookie. SameSiteDefaultMode omits the
// attribute and leaves the browser default in place.
func (s *Server) setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge time.Duration, httpOnly bool, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   s.isSecureRequest(r),
		SameSite: sameSite,
		MaxAge:   int(maxAge.Seconds()),
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, r *http.Request, name string, httpOnly bool, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   s.isSecureRequest(r),
		SameSite: sameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func (s *Server) SetCodeVerifierCookie(w http.ResponseWriter, r *http.Request, verifier string) {
	s.setCookie(w, r, codeVerifierCookieName, verifier, s.config.GetCodeVerifierTTL(), true, http.SameSiteDefaultMode)
}

func (s *Server) ClearCodeVerifierCookie(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w, r, codeVerifierCookieName, true, http.SameSiteDefaultMode)
}

// SetSessionCookies stores the session JWT (HttpOnly) and the CSRF token
// (readable by the frontend) for the lifetime of the session.
func (s *Server) SetSessionCookies(w http.ResponseWriter, r *http.Request, accessToken, csrfToken string) {
	ttl := s.config.GetSessionTTL()
	s.setCookie(w, r, auth.CSRFCookieName, csrfToken, ttl, false, http.SameSiteLaxMode)
	s.setCookie(w, r, accessTokenCookieName, accessToken, ttl, true, http.SameSiteLaxMode)
}

func (s *Server) ClearSessionCookies(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w, r, accessTokenCookieName, true, http.SameSiteLaxMode)
	s.clearCookie(w, r, auth.CSRFCookieName, false, http.SameSiteLaxMode)
}
