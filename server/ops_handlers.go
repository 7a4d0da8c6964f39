package server

import (
	"net/http"

	apperrors "github.com/gistree/server/internal/errors"
)

type healthResponse struct {
	Status string `json:"status"`
}

// HealthHandler reports ok once the database answers a ping.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.deps.Health.Ping(r.Context()); err != nil {
			s.writeError(w, r, apperrors.Mark(err, apperrors.ErrInternal))
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

func (s *Server) MetricsHandler() http.HandlerFunc {
	h := s.metrics.Handler()
	return h.ServeHTTP
}
