// Package main is the entry point for the catalog API server.
// It wires together configuration, the catalog store, and the HTTP router.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aoideee/catalogs/internal/data"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// appVersion is the current version of the API, shown in logs.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig // Server configuration loaded from flags
	logger *slog.Logger // Structured logger that writes to stdout
	models data.Models  // Both catalogs
}

// main is the application entry point.
// It parses flags, opens the store, wires up dependencies, and starts the HTTP server.
func main() {
	settings, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error(err.Error())
		os.Exit(2)
	}

	logger := newLogger(settings)

	appInstance := &applicationDependencies{
		config: settings,
		logger: logger,
	}

	switch settings.db.driver {
	case "memory":
		appInstance.models = data.NewMemoryModels()
		logger.Warn("using in-memory catalog store, data is lost on exit")
	default:
		db, err := openDB(settings)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		defer db.Close() // Close the pool cleanly when main() returns.

		logger.Info("database connection pool established")
		appInstance.models = data.NewModels(db, logger)
	}

	err = appInstance.serve()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// newLogger creates a structured logger that writes human-readable text to
// stdout. Debug output, which includes executed SQL, is only enabled in
// development.
func newLogger(settings serverConfig) *slog.Logger {
	level := slog.LevelInfo
	if settings.environment == "development" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// openDB opens a PostgreSQL connection pool using the DSN stored in settings,
// then pings the database with a 5-second timeout to confirm it is reachable.
// When bootstrapping is enabled the catalog tables are created if missing.
func openDB(settings serverConfig) (*sqlx.DB, error) {
	// sqlx.Open only validates the DSN format; it does not actually connect yet.
	db, err := sqlx.Open("postgres", settings.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(settings.db.maxOpenConns)
	db.SetMaxIdleConns(settings.db.maxIdleConns)
	db.SetConnMaxIdleTime(settings.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// PingContext performs a real round-trip to verify the database is reachable.
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	if settings.db.bootstrap {
		err = data.EnsureSchema(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
