package config

import (
	"fmt"
	"strings"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetLogLevel() string
	GetFrontendURL() string
	GetBackendURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type StorageConfig interface {
	GetDBPath() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Storage
}

// New assembles a Config from already-resolved values. Tests use it directly;
// the server uses Load.
func New(env EnvVars, cors Cors, oauth OAuth, security Security, storage Storage) Config {
	return mainConfig{
		EnvVars:  env,
		Cors:     cors,
		OAuth:    oauth,
		Security: security,
		Storage:  storage,
	}
}

// Load reads the process environment once. Every missing required variable
// is reported in a single error so a misconfigured deployment fails on start.
func Load() (Config, error) {
	l := &loader{}

	env := l.envVars()
	cors := l.cors()
	oauth := l.oauth(env)
	security := l.security(env)
	storage := Storage{DBPath: GetEnv(dbPathVar, "./data/gistree.db")}

	if len(l.missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(l.missing, ", "))
	}
	if len(l.invalid) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(l.invalid, "; "))
	}
	return New(env, cors, oauth, security, storage), nil
}
