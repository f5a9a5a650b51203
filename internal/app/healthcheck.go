package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/mlrcs/internal/ctxlog"
)

// healthHandler answers liveness probes while a long exact solve or batch
// run is in progress.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startHealthcheckServer initializes and runs the health check HTTP server.
func (a *App) startHealthcheckServer(ctx context.Context, port int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring health check server.")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	addr := fmt.Sprintf(":%d", port)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := a.httpServer

	go func() {
		logger.Info("Health check server starting.", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly.", "error", err)
		}
	}()
}

func (a *App) closeHealthcheckServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if a.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	// The caller's context may already be cancelled; shutdown still gets
	// its own grace period.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Debug("Shutting down health check server.")
	err := a.httpServer.Shutdown(shutdownCtx)
	a.httpServer = nil
	if err != nil {
		logger.Error("Health check server shutdown failed.", "error", err)
		return err
	}
	logger.Debug("Health check server shut down gracefully.")
	return nil
}
