package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gistree/server/auth"
	"github.com/gistree/server/internal/config"
	"github.com/gistree/server/internal/metrics"
	"github.com/gistree/server/messages"
	"github.com/gistree/server/notifications"
	"github.com/gistree/server/ornaments"
	"github.com/gistree/server/token"
	"github.com/gistree/server/token/jwt"
	"github.com/gistree/server/trees"
	"github.com/gistree/server/users"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the HTTP layer is wired to. Everything
// except Metrics is required.
type Dependencies struct {
	Login         *auth.LoginService
	Sessions      *jwt.Inspector
	Revoked       token.RevokedTokenCache
	Users         users.Repo
	Messages      *messages.Service
	Ornaments     ornaments.Repo
	Trees         *trees.Service
	Notifications notifications.Repo
	Health        Pinger
	Metrics       *metrics.Metrics
}

func (d Dependencies) validate() error {
	var missing []string
	check := func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check("Login", d.Login != nil)
	check("Sessions", d.Sessions != nil)
	check("Revoked", d.Revoked != nil)
	check("Users", d.Users != nil)
	check("Messages", d.Messages != nil)
	check("Ornaments", d.Ornaments != nil)
	check("Trees", d.Trees != nil)
	check("Notifications", d.Notifications != nil)
	check("Health", d.Health != nil)
	if len(missing) > 0 {
		return fmt.Errorf("missing dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

type Server struct {
	env     string // Environment ("DEV" or "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	deps    Dependencies
	metrics *metrics.Metrics
	limiter *clientLimiter
}

func New(cfg config.Config, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		deps:    deps,
		metrics: deps.Metrics,
	}
	if cfg.GetEnableRateLimiting() {
		s.limiter = newClientLimiter(cfg.GetRateLimitRPS(), cfg.GetRateLimitBurst())
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// RegisterAPIRoute registers handler behind the standard API middleware
// followed by mw.
func (s *Server) RegisterAPIRoute(pattern string, handler http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) {
	s.RegisterRouteHandler(pattern, ChainMiddleware(handler, s.APIMiddleware(pattern, mw...)...))
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDevelopment {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}

// isSecureRequest reports whether cookies must carry the Secure flag.
func (s *Server) isSecureRequest(r *http.Request) bool {
	if s.config.IsProduction() {
		return true
	}
	return getScheme(r) == "https"
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
