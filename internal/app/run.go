package app

import (
	"context"
	"fmt"
	"net"

	"github.com/pdrpinto/gridsearch/internal/ctxlog"
	"github.com/pdrpinto/gridsearch/internal/server"
)

// Run serves the control API and event stream on the configured address until
// ctx is done.
func (a *App) Run(ctx context.Context) error {
	addr := a.config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener. Searches started while serving are
// bound to ctx, so they stop when serving ends.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Serve method started.")

	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	srv := server.New(a, a.config.Server, a.logger)
	if err := srv.Serve(ctx, ln); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	a.logger.Debug("App.Serve method finished.")
	return nil
}
