package jwt

import (
	"fmt"
	"time"

	"github.com/gistree/server/token"
	"github.com/gistree/server/users"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultSessionTTL is the lifetime of a session token.
const DefaultSessionTTL = 24 * time.Hour

// Creator issues the session tokens handed to the browser after login.
type Creator struct {
	signer token.Signer
	ttl    time.Duration
}

// NewCreator creates a new session token creator. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewCreator(signer token.Signer, ttl time.Duration) *Creator {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Creator{
		signer: signer,
		ttl:    ttl,
	}
}

// TTL returns the lifetime given to new tokens.
func (c *Creator) TTL() time.Duration {
	return c.ttl
}

// CreateSessionToken signs a session token for user.
func (c *Creator) CreateSessionToken(user *users.User) (string, error) {
	return c.CreateSessionTokenWithTTL(user, c.ttl)
}

// CreateSessionTokenWithTTL signs a session token with an explicit lifetime.
func (c *Creator) CreateSessionTokenWithTTL(user *users.User, ttl time.Duration) (string, error) {
	if user == nil {
		return "", fmt.Errorf("cannot create a session token without a user")
	}
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"username":  user.Name,           // Display name shown by the frontend
		"sub":       user.ID,             // The user's id
		"studentId": user.StudentID,      // Institutional student number
		"iat":       now.Unix(),          // Issued At
		"exp":       now.Add(ttl).Unix(), // Expiry
		"jti":       uuid.New().String(), // Unique token ID for revocation
	}
	return c.signTokenWithSigner(claims)
}

// signTokenWithSigner signs JWT claims using the configured signer
func (c *Creator) signTokenWithSigner(claims jwtlib.MapClaims) (string, error) {
	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, nil
}
