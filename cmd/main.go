// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/oakhollow/camp-registration/internal/config"
	"github.com/oakhollow/camp-registration/internal/handler"
	"github.com/oakhollow/camp-registration/internal/seed"
	"github.com/oakhollow/camp-registration/internal/service"
	"github.com/oakhollow/camp-registration/internal/storage"
	"github.com/oakhollow/camp-registration/internal/storage/memory"
	"github.com/oakhollow/camp-registration/internal/storage/postgres"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	ctx := context.Background()

	// ── 1. Open the store ─────────────────────────────────────────────────
	var store storage.Store
	switch cfg.Store {
	case "memory":
		store = memory.New()
		log.Info("using in-memory store")
	default:
		pg, err := postgres.New(ctx, cfg.DSN())
		if err != nil {
			log.Fatal("database", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		store = pg
		log.Info("connected to postgres")
	}

	if cfg.SeedOnStart {
		if err := seed.Run(ctx, store, log); err != nil {
			log.Fatal("seed", zap.Error(err))
		}
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	ids, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatal("snowflake node", zap.Error(err))
	}
	svc := service.New(store, log, ids)
	h := handler.New(svc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.AccessLog(log))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	r.Get("/availability", h.Availability)
	r.Post("/promos/validate", h.ValidatePromo)
	r.Post("/registrations", h.CreateRegistration)
	r.Post("/payments/confirm", h.ConfirmPayment)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/promos", h.CreatePromo)
		r.Post("/promos/{code}/toggle", h.TogglePromo)
		r.Get("/registrations", h.ListRegistrations)
		r.Get("/registrations/stats", h.Stats)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
