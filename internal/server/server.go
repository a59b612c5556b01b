package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shubh-37/x-ghostwriter/internal/logging"
)

// SchedulerStatus is the view of the scheduler the health check reports.
type SchedulerStatus interface {
	IsRunning() bool
	NextRunTime() (time.Time, bool)
}

type healthResponse struct {
	Status           string     `json:"status"`
	SchedulerRunning bool       `json:"scheduler_running"`
	NextRun          *time.Time `json:"next_run,omitempty"`
}

// Server exposes /health and /metrics while the scheduler runs.
type Server struct {
	httpServer *http.Server
	status     SchedulerStatus
	logger     logging.Logger
}

func NewServer(addr string, status SchedulerStatus, metrics http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &Server{status: status, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthCheck)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Infof("Status server starting on %s", s.httpServer.Addr)
	s.logger.Infof("Health check: http://%s/health", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.status != nil {
		resp.SchedulerRunning = s.status.IsRunning()
		if next, ok := s.status.NextRunTime(); ok {
			resp.NextRun = &next
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithError(err).Warn("Failed to write health response")
	}
}
