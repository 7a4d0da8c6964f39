package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	jwtSecretVar           = "JWT_SECRET"
	allowedEmailDomainsVar = "ALLOWED_EMAIL_DOMAINS"
	rateLimitEnabledVar    = "RATE_LIMIT_ENABLED"
	rateLimitRPSVar        = "RATE_LIMIT_RPS"
	rateLimitBurstVar      = "RATE_LIMIT_BURST"

	developmentJWTSecret = "gistree-development-secret"
)

type SecurityConfig interface {
	GetJWTSecret() string
	GetAllowedEmailDomains() []string
	GetEnableRateLimiting() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

type Security struct {
	JWTSecret           string
	AllowedEmailDomains []string
	RateLimitEnabled    bool
	RateLimitRPS        float64
	RateLimitBurst      int
}

var _ SecurityConfig = Security{}

func (s Security) GetJWTSecret() string {
	return s.JWTSecret
}

// GetAllowedEmailDomains returns the institutional domains (without "@")
// whose addresses may sign in.
func (s Security) GetAllowedEmailDomains() []string {
	return s.AllowedEmailDomains
}

func (s Security) GetEnableRateLimiting() bool {
	return s.RateLimitEnabled
}

func (s Security) GetRateLimitRPS() float64 {
	if s.RateLimitRPS <= 0 {
		return 5
	}
	return s.RateLimitRPS
}

func (s Security) GetRateLimitBurst() int {
	if s.RateLimitBurst <= 0 {
		return 10
	}
	return s.RateLimitBurst
}

func (l *loader) security(env EnvVars) Security {
	secret := os.Getenv(jwtSecretVar)
	if secret == "" {
		if env.IsProduction() {
			l.missing = append(l.missing, jwtSecretVar)
		} else {
			log.Warn().Msg("JWT_SECRET not set, using the development signing secret")
			secret = developmentJWTSecret
		}
	}

	var domains []string
	for _, d := range splitList(GetEnv(allowedEmailDomainsVar, "gist.ac.kr")) {
		domains = append(domains, strings.ToLower(strings.TrimPrefix(d, "@")))
	}

	return Security{
		JWTSecret:           secret,
		AllowedEmailDomains: domains,
		RateLimitEnabled:    l.boolean(rateLimitEnabledVar, true),
		RateLimitRPS:        l.float(rateLimitRPSVar, 5),
		RateLimitBurst:      l.integer(rateLimitBurstVar, 10),
	}
}

// SigningSecret resolves JWT_SECRET by the same rules as Load, for tools
// that need nothing else from the configuration.
func SigningSecret() (string, error) {
	l := &loader{}
	s := l.security(EnvVars{Env: normaliseEnv(os.Getenv(envVar))})
	if len(l.missing) > 0 {
		return "", fmt.Errorf("missing required configuration: %s", strings.Join(l.missing, ", "))
	}
	return s.JWTSecret, nil
}
