// cmd/api/server.go
// This file contains the serve() method which starts the HTTP server and
// handles graceful shutdown when an OS signal is received.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 20 * time.Second

// serve builds the HTTP server, starts it in a background goroutine, then
// blocks until it receives a SIGINT or SIGTERM signal. On signal receipt the
// server context is cancelled, which stops the rate limiter's janitor, and
// in-flight requests get shutdownTimeout to complete.
func (app *applicationDependencies) serve() error {
	// ctx lives as long as the server accepts requests. Background work
	// started by the middleware stops when it is cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.port),
		Handler:      app.routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		// Route net/http's own errors (TLS handshakes, panics it recovers)
		// through the structured logger.
		ErrorLog: slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	// shutdownErr carries the result of Shutdown() back to this goroutine.
	shutdownErr := make(chan error)

	go func() {
		// The signal package never blocks on send, so quit must be buffered.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		// Wait for Ctrl+C or a stop from the process manager.
		s := <-quit
		app.logger.Info("shutting down server", "signal", s.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		// Shutdown closes the listeners first, then waits for active
		// requests until shutdownCtx expires.
		shutdownErr <- apiServer.Shutdown(shutdownCtx)
	}()

	app.logger.Info("starting server",
		"address", apiServer.Addr,
		"environment", app.config.environment,
		"store", app.config.db.driver,
		"version", appVersion)

	// ErrServerClosed is the normal result once Shutdown has been called;
	// any other error means the listener never came up or died.
	err := apiServer.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Shutdown may still be draining requests; wait for its verdict.
	err = <-shutdownErr
	if err != nil {
		return err
	}

	app.logger.Info("server stopped", "address", apiServer.Addr)
	return nil
}
