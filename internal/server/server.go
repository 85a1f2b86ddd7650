// Package server wires the hikelog HTTP API: router, middleware, handlers
// and graceful shutdown.
//
// DEPENDENCY INJECTION FLOW:
//
//	cli (serve) opens sqlite.DB and loads config.Config
//	server.New: DB → HikeService/ObservationService → handlers → chi routes
//
// Every dependency is assembled here, the composition root, instead of
// being scattered across the handlers.
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

	"github.com/sakif/hikelog/internal/auth"
	"github.com/sakif/hikelog/internal/config"
	"github.com/sakif/hikelog/internal/handler"
	"github.com/sakif/hikelog/internal/middleware"
	sqliteRepo "github.com/sakif/hikelog/internal/repository/sqlite"
	"github.com/sakif/hikelog/internal/service"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 30 * time.Second

// Server is the HTTP front of the hike log. It does not own the database:
// whoever opened the DB closes it after Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
}

// New builds the router for cfg on top of db.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with the
// modernc.org/sqlite driver.
func New(cfg *config.Config, db *sqliteRepo.DB, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	var tokens *auth.TokenService
	if cfg.Auth.Enabled() {
		var err error
		tokens, err = auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("creating token service: %w", err)
		}
	} else {
		logger.Warn("auth.secret not set: the API is open to anyone who can reach the port")
	}

	s.setupRoutes(db, tokens)
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                      liveness, never guarded
//	GET    /api/hikes                    list / ?name= / ?location=&maxDistance=&date=
//	POST   /api/hikes                    create
//	DELETE /api/hikes                    reset database
//	GET    /api/hikes/{id}               get
//	PUT    /api/hikes/{id}               update
//	DELETE /api/hikes/{id}               delete with observations
//	GET    /api/hikes/{id}/observations  list for hike
//	POST   /api/hikes/{id}/observations  create
//	GET    /api/observations/{id}        get
//	PUT    /api/observations/{id}        update
//	DELETE /api/observations/{id}        delete
//
// MIDDLEWARE ORDER MATTERS: RequestID must run before Logger so the log line
// carries the id; Recoverer sits inside Logger so a panic is logged as 500.
func (s *Server) setupRoutes(db *sqliteRepo.DB, tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	// db satisfies both repository interfaces; the services only see those.
	hikeService := service.NewHikeService(db, s.logger)
	observationService := service.NewObservationService(db, db, s.logger)
	hikes := handler.NewHikeHandler(hikeService, s.logger)
	observations := handler.NewObservationHandler(observationService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		if tokens != nil {
			r.Use(auth.RequireToken(tokens, s.logger, handler.WriteError))
		}

		r.Route("/hikes", func(r chi.Router) {
			r.Get("/", hikes.HandleList)
			r.Post("/", hikes.HandleCreate)
			r.Delete("/", hikes.HandleReset)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", hikes.HandleGet)
				r.Put("/", hikes.HandleUpdate)
				r.Delete("/", hikes.HandleDelete)
				r.Get("/observations", observations.HandleList)
				r.Post("/observations", observations.HandleCreate)
			})
		})

		r.Route("/observations/{id}", func(r chi.Router) {
			r.Get("/", observations.HandleGet)
			r.Put("/", observations.HandleUpdate)
			r.Delete("/", observations.HandleDelete)
		})
	})
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully:
//  1. stop accepting connections
//  2. wait up to shutdownTimeout for in-flight requests
//
// The caller closes the database afterwards.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.DB.Path),
			slog.Bool("auth", s.config.Auth.Enabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
