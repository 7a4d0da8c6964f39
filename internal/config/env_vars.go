package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	logLevelVar    = "LOG_LEVEL"
	frontendURLVar = "FRONTEND_URL"
	backendURLVar  = "BACKEND_URL"
	dbPathVar      = "DB_PATH"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

type EnvVars struct {
	Port        string
	AppName     string
	Env         string
	LogLevel    string
	FrontendURL string
	BackendURL  string
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	return e.Port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return EnvDevelopment
	}
	return e.Env
}

func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == EnvProduction
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetFrontendURL returns the frontend origin users land on after login,
// without a trailing slash (e.g. "https://gistree.example.com").
func (e EnvVars) GetFrontendURL() string {
	return e.FrontendURL
}

// GetBackendURL returns the public base URL of this server.
func (e EnvVars) GetBackendURL() string {
	return e.BackendURL
}

type Storage struct {
	DBPath string
}

var _ StorageConfig = Storage{}

func (s Storage) GetDBPath() string {
	return s.DBPath
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// loader collects missing and malformed variables while reading the
// environment so Load can report all of them at once.
type loader struct {
	missing []string
	invalid []string
}

func (l *loader) required(name string) string {
	value := os.Getenv(name)
	if value == "" {
		l.missing = append(l.missing, name)
	}
	return value
}

func (l *loader) duration(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q is not a positive duration", name, raw))
		return def
	}
	return d
}

func (l *loader) boolean(name string, def bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q is not a boolean", name, raw))
		return def
	}
	return b
}

func (l *loader) integer(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q is not a positive integer", name, raw))
		return def
	}
	return n
}

func (l *loader) float(name string, def float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q is not a positive number", name, raw))
		return def
	}
	return f
}

func (l *loader) envVars() EnvVars {
	return EnvVars{
		Port:        normalisePort(GetEnv(portEnvVar, "3000")),
		AppName:     GetEnv(appNameVar, "GISTree"),
		Env:         normaliseEnv(os.Getenv(envVar)),
		LogLevel:    GetEnv(logLevelVar, "info"),
		FrontendURL: strings.TrimRight(l.required(frontendURLVar), "/"),
		BackendURL:  strings.TrimRight(l.required(backendURLVar), "/"),
	}
}

func normalisePort(port string) string {
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func normaliseEnv(env string) string {
	switch strings.ToUpper(strings.TrimSpace(env)) {
	case "PROD", "PRODUCTION":
		return EnvProduction
	case "":
		return EnvDevelopment
	default:
		return strings.ToUpper(env)
	}
}

// splitList splits a comma or whitespace separated list, dropping blanks.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
