// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware, and
// routes, and it decides how the server starts and stops.
//
// DEPENDENCY INJECTION FLOW:
// The caller opens the database and passes it in:
//   sqlite.DB → UserService / MouseService / LogEntryService / LabService
//             → UserHandler / MouseHandler / LogEntryHandler / LabHandler
//
// The server never opens or closes the database itself; whoever created the
// handle owns its lifecycle.
package server

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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/lab-records/internal/auth"
	"github.com/sakif/lab-records/internal/handler"
	"github.com/sakif/lab-records/internal/middleware"
	sqliteRepo "github.com/sakif/lab-records/internal/repository/sqlite"
	"github.com/sakif/lab-records/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port               int
	RequireLabProtocol bool
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server over an open database.
func New(cfg Config, db *sqliteRepo.DB, passwords *auth.PasswordService, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(passwords)
	return s
}

// Handler returns the root handler; tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// /user/*       → accounts
// /mouse/*      → mouse records
// /log-entry/*  → log entries
// /lab/*        → labs
// /protocol/*   → protocols
// GET /healthz  → database ping
// GET /metrics  → Prometheus scrape
//
// MIDDLEWARE ORDER MATTERS:
// Middleware runs in the order it's added. Logger and Metrics are innermost
// so they see the final status code, including a 500 from Recoverer.
func (s *Server) setupRoutes(passwords *auth.PasswordService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.CORS)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)

	userService := service.NewUserService(s.db, passwords, s.logger)
	mouseService := service.NewMouseService(s.db, service.MouseOptions{
		RequireLabProtocol: s.config.RequireLabProtocol,
	}, s.logger)
	logEntryService := service.NewLogEntryService(s.db, s.logger)
	labService := service.NewLabService(s.db, s.logger)

	labHandler := handler.NewLabHandler(labService, s.logger)

	s.router.Mount("/user", handler.NewUserHandler(userService, s.logger).Routes())
	s.router.Mount("/mouse", handler.NewMouseHandler(mouseService, s.logger).Routes())
	s.router.Mount("/log-entry", handler.NewLogEntryHandler(logEntryService, s.logger).Routes())
	s.router.Mount("/lab", labHandler.LabRoutes())
	s.router.Mount("/protocol", labHandler.ProtocolRoutes())

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"status":"unavailable"}`)
		return
	}
	fmt.Fprint(w, `{"status":"ok"}`)
}

// Start runs the HTTP server until ctx is cancelled or SIGINT/SIGTERM
// arrives, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// The database is closed by the caller after Start returns.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
