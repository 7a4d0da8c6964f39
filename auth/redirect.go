package auth

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// DefaultRedirectPath is used whenever a requested redirect is missing or
// unsafe.
const DefaultRedirectPath = "/"

// SafeRedirectPath turns a caller supplied redirect target into a path on
// the frontend. Relative paths are accepted as-is after percent-decoding.
// Absolute URLs are reduced to path, query and fragment when their origin
// is the frontend origin. Everything else becomes DefaultRedirectPath.
func SafeRedirectPath(raw, frontendURL string) string {
	if strings.TrimSpace(raw) == "" {
		return DefaultRedirectPath
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return DefaultRedirectPath
	}
	if strings.ContainsAny(decoded, "\r\n\t\x00") {
		return DefaultRedirectPath
	}

	// "//host" and "/\host" are protocol-relative to browsers and must go
	// through the origin check below.
	if strings.HasPrefix(decoded, "/") && !strings.HasPrefix(decoded, "//") && !strings.HasPrefix(decoded, `/\`) {
		return decoded
	}
	if strings.HasPrefix(decoded, `/\`) || strings.HasPrefix(decoded, `\`) {
		return DefaultRedirectPath
	}

	base, err := url.Parse(frontendURL)
	if err != nil || base.Host == "" {
		return DefaultRedirectPath
	}
	ref, err := url.Parse(decoded)
	if err != nil {
		return DefaultRedirectPath
	}
	target := base.ResolveReference(ref)
	if origin(target) != origin(base) {
		return DefaultRedirectPath
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	if target.Fragment != "" {
		path += "#" + target.EscapedFragment()
	}
	return path
}

// origin returns scheme://host:port with the default port made explicit.
func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	if port == "" {
		switch scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		}
	}
	return scheme + "://" + strings.ToLower(u.Hostname()) + ":" + port
}

// EncodeState packs a safe redirect path into the OAuth state parameter.
func EncodeState(path string) string {
	return base64.StdEncoding.EncodeToString([]byte(path))
}

// DecodeState recovers the redirect path from the state parameter and
// validates it again, since state comes back from the browser.
func DecodeState(state, frontendURL string) string {
	state = strings.TrimSpace(state)
	if state == "" {
		return DefaultRedirectPath
	}
	// A '+' that was not query-escaped arrives as a space.
	state = strings.ReplaceAll(state, " ", "+")

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(state); err == nil {
			return SafeRedirectPath(string(b), frontendURL)
		}
	}
	return DefaultRedirectPath
}
