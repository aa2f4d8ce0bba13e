package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/launchpad-amm/curveengine/internal/config"
	"github.com/launchpad-amm/curveengine/internal/handlers"
	custommiddleware "github.com/launchpad-amm/curveengine/internal/middleware"
	"github.com/launchpad-amm/curveengine/internal/trading"
	"github.com/launchpad-amm/curveengine/internal/validators"
)

type Server struct {
	Router      *chi.Mux
	Config      *config.Config
	Trading     *trading.Service
	Handlers    *Handlers
	RateLimiter *custommiddleware.RateLimiter
}

type Handlers struct {
	CurveHandler *handlers.CurveHandler
}

func NewServer(cfg *config.Config, tradingService *trading.Service) *Server {
	validator := validators.New()

	h := &Handlers{
		CurveHandler: handlers.NewCurveHandler(tradingService, validator),
	}

	rateLimitInterval := time.Minute / time.Duration(cfg.RateLimitPerMinute)

	s := &Server{
		Router:      chi.NewRouter(),
		Config:      cfg,
		Trading:     tradingService,
		Handlers:    h,
		RateLimiter: custommiddleware.NewRateLimiter(rateLimitInterval),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.RealIP)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(middleware.CleanPath)
	s.Router.Use(middleware.Timeout(s.Config.RequestTimeout))

	if s.Config.IsDevelopment() {
		s.Router.Use(middleware.Logger)
	}

	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // In production, specify exact origins
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.Router.Use(s.jsonContentType)
}

func (s *Server) setupRoutes() {
	s.Router.Get("/health", handlers.HealthCheck)

	if s.Config.IsDevelopment() {
		s.Router.Get("/api/v1/routes", handlers.ListRoutes(s.Router))
	}

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.With(custommiddleware.RateLimitMiddleware(s.RateLimiter)).Post("/curves", s.Handlers.CurveHandler.CreateCurve)

		r.Route("/curves/{id}", func(r chi.Router) {
			r.Get("/", s.Handlers.CurveHandler.GetState)
			r.With(custommiddleware.RateLimitMiddleware(s.RateLimiter)).Post("/swap", s.Handlers.CurveHandler.Swap)
			r.Post("/preview", s.Handlers.CurveHandler.PreviewSwap)
			r.Post("/withdraw/protocol", s.Handlers.CurveHandler.WithdrawProtocolFees)
			r.Post("/withdraw/creator", s.Handlers.CurveHandler.WithdrawCreatorFees)
			r.Get("/migration", s.Handlers.CurveHandler.IssueMigrationIntent)
			r.Post("/migration/finalize", s.Handlers.CurveHandler.FinalizeMigration)
		})
	})

	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"Route not found"}}`))
	})

	s.Router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":{"code":"METHOD_NOT_ALLOWED","message":"Method not allowed"}}`))
	})
}

// jsonContentType middleware sets Content-Type to application/json for API routes
func (s *Server) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.Config.Port,
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("Server starting on port %s (environment: %s)\n", s.Config.Port, s.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed to start: %v\n", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	fmt.Println("Server exited")
	return nil
}
