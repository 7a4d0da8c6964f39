package auth

import (
	"crypto/subtle"
	"fmt"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// GenerateCSRFToken returns a random token for the double-submit cookie.
func GenerateCSRFToken() (string, error) {
	token, err := randomHex(csrfTokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return token, nil
}

// PadToEqualLength returns copies of a and b right-padded with zero bytes
// to the longer of the two lengths.
func PadToEqualLength(a, b string) ([]byte, []byte) {
	n := max(len(a), len(b))
	pa := make([]byte, n)
	pb := make([]byte, n)
	copy(pa, a)
	copy(pb, b)
	return pa, pb
}

// TokensEqual compares the cookie and header tokens without leaking the
// position of the first difference or the token length through timing.
// Empty tokens never match.
func TokensEqual(cookieToken, headerToken string) bool {
	if cookieToken == "" || headerToken == "" {
		return false
	}
	pa, pb := PadToEqualLength(cookieToken, headerToken)
	sameBytes := subtle.ConstantTimeCompare(pa, pb)
	sameLength := subtle.ConstantTimeEq(int32(len(cookieToken)), int32(len(headerToken)))
	return sameBytes&sameLength == 1
}

// IsSafeMethod reports whether method is exempt from the CSRF check.
func IsSafeMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}
