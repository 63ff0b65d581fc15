// Package api exposes the progress HTTP interface for a running crawl.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/session"
)

// Server wires HTTP handlers to the live session store.
type Server struct {
	router chi.Router
	store  *session.Store
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store *session.Store, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	s := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/session", s.session)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionResponse struct {
	ID            string    `json:"id"`
	Examined      int       `json:"examined"`
	Accepted      int       `json:"accepted"`
	Errors        int       `json:"errors"`
	Depth         int       `json:"depth"`
	StartedAt     time.Time `json:"started_at"`
	LatestProfile string    `json:"latest_profile,omitempty"`
}

func (s *Server) session(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()
	resp := sessionResponse{
		ID:        snap.ID,
		Examined:  snap.TotalExamined,
		Accepted:  len(snap.Accepted),
		Errors:    snap.ErrorCount,
		Depth:     snap.Depth,
		StartedAt: snap.StartedAt,
	}
	if n := len(snap.Accepted); n > 0 {
		resp.LatestProfile = snap.Accepted[n-1].Username
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("writing response", zap.Error(err))
	}
}
