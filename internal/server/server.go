// Package server exposes a search session over HTTP: a gin JSON control API
// and a WebSocket stream of controller events.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdrpinto/gridsearch"
	"github.com/pdrpinto/gridsearch/internal/config"
	"github.com/pdrpinto/gridsearch/internal/ctxlog"
)

const shutdownTimeout = 10 * time.Second

// Session is the application state the HTTP surface drives.
type Session interface {
	Controller() *gridsearch.Controller
	Tool() gridsearch.Role
	SetTool(gridsearch.Role) error
	PaintAt(gridsearch.Position) (bool, error)
	StartSearch() error
	ScatterWalls(s gridsearch.Scatter, seed uint64) error
}

// Server serves the control API and the event stream for one Session.
type Server struct {
	session     Session
	config      config.ServerConfig
	logger      *slog.Logger
	hub         *Hub
	router      *gin.Engine
	unsubscribe func()
}

// New creates a server and subscribes its hub to the session's controller.
func New(session Session, cfg config.ServerConfig, logger *slog.Logger) *Server {
	logger = logger.With("component", "server")
	s := &Server{
		session: session,
		config:  cfg,
		logger:  logger,
		hub:     NewHub(session.Controller().Snapshot, cfg.AllowedOrigin, logger),
	}
	s.unsubscribe = session.Controller().Subscribe(s.hub)
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the event stream hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully: WebSocket clients are closed and in-flight requests are given
// shutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctxlog.WithLogger(context.Background(), s.logger)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()
	s.logger.Info("Server listening.", "api", "http://"+ln.Addr().String()+"/api/grid", "events", "ws://"+ln.Addr().String()+"/ws")

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	s.close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpSrv.Shutdown(shutdownCtx)
	<-errCh
	if err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info("Server stopped.")
	return nil
}

func (s *Server) close() {
	s.unsubscribe()
	s.hub.Close()
}
