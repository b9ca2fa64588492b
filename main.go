package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"camphub-be/internal/config"
	"camphub-be/internal/container"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	c, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer c.Close()

	router := setupRouter(c)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		c.Logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	c.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		c.Logger.Error("forced shutdown", zap.Error(err))
	}
	c.Logger.Info("server stopped")
}

func setupRouter(c *container.Container) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   c.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", c.HealthHandler.Health)

	r.Route("/api", func(api chi.Router) {
		api.Use(c.AuthMiddleware.RequireAuth)

		api.Route("/applications", func(r chi.Router) {
			r.Post("/apply", c.ApplicationHandler.Apply)
			r.Get("/check/{campId}", c.ApplicationHandler.CheckApplied)
			r.Get("/mine", c.ApplicationHandler.ListMine)
			r.Get("/camp/{campId}", c.ApplicationHandler.ListByCamp)
			r.Put("/{id}/status", c.ApplicationHandler.SetStatus)
			r.Post("/{id}/message", c.ApplicationHandler.AppendMessage)
			r.Patch("/reset/{applicantId}/{campId}", c.ApplicationHandler.Reset)
		})

		api.Route("/camps/{campId}", func(r chi.Router) {
			r.Get("/call-slots", c.CallSlotHandler.ListByCamp)
			r.Get("/call-slots/available", c.CallSlotHandler.ListAvailable)
			r.Post("/call-slots", c.CallSlotHandler.Create)
			r.Get("/invites", c.InviteHandler.ListByCamp)
		})
		api.Delete("/call-slots/{id}", c.CallSlotHandler.Delete)

		api.Post("/invites", c.InviteHandler.Issue)

		api.Route("/rosters", func(r chi.Router) {
			r.Get("/", c.RosterHandler.List)
			r.Post("/", c.RosterHandler.Create)
			r.Get("/active", c.RosterHandler.GetActive)
			r.Delete("/members/{memberId}", c.RosterHandler.RemoveMember)
			r.Get("/{id}", c.RosterHandler.Get)
			r.Put("/{id}", c.RosterHandler.Update)
			r.Put("/{id}/archive", c.RosterHandler.Archive)
			r.Get("/{id}/export", c.RosterHandler.Export)
			r.Post("/{id}/members/{memberId}", c.RosterHandler.AddMember)
			r.Put("/{id}/members/{memberId}/overrides", c.RosterHandler.SetOverrides)
			r.Put("/{id}/members/{memberId}/dues", c.RosterHandler.SetDues)
			r.Post("/{id}/members/{memberId}/camp-lead", c.RosterHandler.GrantCampLead)
			r.Delete("/{id}/members/{memberId}/camp-lead", c.RosterHandler.RevokeCampLead)
		})
	})

	return r
}
