/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the budget execution engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (environment fallbacks)
  2. Configure zerolog
  3. Initialize store (SQLite or in-process memory)
  4. Create API handler, optionally preload a demo scenario
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: $PORT or 8080)
  -db         SQLite database path (default: $DB_PATH or budget.db)
              Use ":memory:" for in-memory SQLite
  -memory     Use the in-process memory store instead of SQLite
  -page-size  Activity page size for snapshot fetches (default: 1000)
  -scenario   Demo scenario to load at startup (e.g. "qa-split")

ENVIRONMENT:
  PORT                HTTP port when -port is not given
  DB_PATH             Database path when -db is not given
  LOG_LEVEL           zerolog level (debug, info, warn, error), default info
  LOG_FORMAT          "human" for console output, JSON otherwise
  CORS_ALLOW_ORIGINS  Space separated list of allowed origins

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/budget.db"

  # Run in memory with demo data
  ./server -memory -scenario=mixed-modes

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/warp/budget-engine/api"
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/budget/store"
	"github.com/warp/budget-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DB_PATH", "budget.db"), "SQLite database path")
	memory := flag.Bool("memory", false, "Use the in-process memory store")
	pageSize := flag.Int("page-size", budget.DefaultPageSize, "Activity page size")
	scenario := flag.String("scenario", "", "Demo scenario to load at startup")
	flag.Parse()

	setupLogging()

	// Initialize store
	var st budget.Store
	if *memory {
		st = store.NewMemory()
		log.Info().Msg("using in-process memory store")
	} else {
		db, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("db", *dbPath).Msg("failed to initialize database")
		}
		defer db.Close()
		st = db
		log.Info().Str("db", *dbPath).Msg("using SQLite store")
	}

	// Initialize handler
	handler := api.NewHandler(st)
	handler.Engine.PageSize = *pageSize
	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		handler.AllowedOrigins = strings.Fields(origins)
	}

	if *scenario != "" {
		if err := handler.LoadScenarioByID(context.Background(), *scenario); err != nil {
			log.Fatal().Err(err).Str("scenario", *scenario).Msg("failed to load scenario")
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", *port).Msgf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	var output io.Writer = os.Stderr
	if os.Getenv("LOG_FORMAT") == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
