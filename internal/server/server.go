package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"minigolf/internal/config"
	"minigolf/internal/course"
	"minigolf/internal/game"
	"minigolf/internal/network"
	"minigolf/internal/session"
	"minigolf/internal/storage"
	"minigolf/internal/terrain"
)

type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	store    storage.CourseStore
	metrics  *terrain.GenerationMetrics
	httpSrv  *http.Server
	udp      *network.Server
	logger   *log.Logger
}

func New(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := log.New(log.Writer(), "golf-server ", log.LstdFlags|log.Lmicroseconds)
	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open course store: %w", err)
	}
	metrics := &terrain.GenerationMetrics{}
	s := &Server{
		cfg:      cfg,
		store:    store,
		metrics:  metrics,
		sessions: session.NewManager(cfg, store, log.New(log.Writer(), "sessions ", log.LstdFlags|log.Lmicroseconds), metrics),
		logger:   logger,
	}
	s.sessions.SetCourseListener(s.broadcastCourse)
	pruned, err := s.sessions.PruneOrphans()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("prune course store: %w", err)
	}
	if pruned > 0 {
		logger.Printf("pruned %d courses left without a session", pruned)
	}
	return s, nil
}

// Sessions exposes the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metrics/generation", s.handleGenerationMetrics)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleSessionState)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /sessions/{id}/course", s.handleSessionCourse)
	mux.HandleFunc("POST /sessions/{id}/hit", s.handleHit)
	mux.HandleFunc("GET /sessions/{id}/legal", s.handleLegal)
	mux.HandleFunc("POST /sessions/{id}/putter", s.handlePutter)
	mux.HandleFunc("POST /sessions/{id}/roll", s.handleRoll)
	mux.HandleFunc("POST /sessions/{id}/next", s.handleNextCourse)
	mux.HandleFunc("GET /sessions/{id}/strokes", s.handleStrokes)
	mux.HandleFunc("GET /sessions/{id}/scorecard", s.handleScorecard)
	mux.HandleFunc("GET /courses", s.handleListCourses)
	mux.HandleFunc("GET /courses/{id}", s.handleCourse)
	return mux
}

// Run serves until ctx is cancelled or a listener fails. Background work is
// stopped before Run returns in either case.
func (s *Server) Run(ctx context.Context) error {
	defer s.store.Close()

	runCtx, cancel := context.WithCancel(ctx)
	reaper := session.NewReaper(s.sessions, s.cfg.Sessions.ReapInterval.Duration(), s.cfg.Sessions.IdleTimeout.Duration())
	reaper.Start(runCtx)
	defer reaper.Wait()
	defer cancel()

	errCh := make(chan error, 2)
	if s.cfg.Network.ListenUDP != "" {
		udp, err := network.Listen(s.cfg.Network.ListenUDP, s.logger, s.cfg.Network.MaxDatagramSizeBytes)
		if err != nil {
			return err
		}
		defer udp.Close()
		if err := udp.SetSpectators(s.cfg.Network.SpectatorEndpoints); err != nil {
			s.logger.Printf("spectators: %v", err)
		}
		s.udp = udp
		s.registerUDPHandlers()
		go func() {
			s.logger.Printf("UDP listening on %s", udp.LocalAddr())
			if err := udp.Serve(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("udp serve: %w", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.ListenAddress, s.cfg.Server.HTTPPort)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Printf("HTTP server %s listening on %s", s.cfg.Server.ID, addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		timeout := s.cfg.Server.ShutdownTimeout.Duration()
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, stop := context.WithTimeout(context.Background(), timeout)
		defer stop()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		s.logger.Printf("shut down with %d live sessions", s.sessions.Len())
		return nil
	case err := <-errCh:
		_ = s.httpSrv.Close()
		return err
	}
}

func (s *Server) broadcastCourse(sessionID string, c *course.Course) {
	if s.udp == nil {
		return
	}
	s.udp.Broadcast(network.MessageCourseStarted, courseStartedMessage(sessionID, c))
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, course.ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrGenerationExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrHoleComplete), errors.Is(err, session.ErrHoleInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}
