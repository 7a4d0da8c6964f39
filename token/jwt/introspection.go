package jwt

import (
	"errors"
	"strings"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/token"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the verified content of a session token.
type SessionClaims struct {
	Subject   string    `json:"sub"`       // User id
	Username  string    `json:"username"`  // Display name at the time of login
	StudentID string    `json:"studentId"` // Institutional student number
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	JTI       string    `json:"jti"`
}

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector verifies session tokens
type Inspector struct {
	signer         token.Signer
	revokedChecker RevokedChecker
}

// NewInspector creates a new JWT inspector. revokedChecker may be nil.
func NewInspector(signer token.Signer, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		signer:         signer,
		revokedChecker: revokedChecker,
	}
}

// Inspect verifies the signature and expiry of rawToken and returns its
// claims. Expired tokens yield ErrTokenExpired, anything else that fails
// verification yields ErrInvalidToken.
func (i *Inspector) Inspect(rawToken string) (*SessionClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	parsed, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, i.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, apperrors.Mark(err, apperrors.ErrTokenExpired)
		}
		return nil, apperrors.Mark(err, apperrors.ErrInvalidToken)
	}
	if !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "error extracting claims from token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token missing sub claim")
	}
	username, _ := claims["username"].(string)
	studentID, _ := claims["studentId"].(string)
	jti, _ := claims["jti"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	if jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(jti) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token %s has been revoked", jti)
	}

	return &SessionClaims{
		Subject:   sub,
		Username:  username,
		StudentID: studentID,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
		JTI:       jti,
	}, nil
}
