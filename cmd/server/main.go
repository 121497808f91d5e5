package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/team-ops/internal/api"
	"courtside/team-ops/internal/app"
	"courtside/team-ops/internal/config"

	"github.com/gin-gonic/gin"
)

// @title Team Operations API
// @version 1.0
// @description Schedule, practice, survey, wellness, game clock and gym plan backend for a basketball team.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Team Ops Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Stores, cache, storage and services ---
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// --- Ensure Indexes ---
	go func() {
		idxCtx, cancel := context.WithTimeout(ctx, 1*time.Minute)
		defer cancel()
		application.Stores.EnsureIndexes(idxCtx)
	}()

	application.Start(ctx)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware
	api.SetupRoutes(router, application.Services)

	// --- Start HTTP Server ---
	// No WriteTimeout: practice event streams stay open.
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	server.RegisterOnShutdown(application.Hub.Close)

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}
	stop()
	if err := application.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Shutdown incomplete: %v", err)
	}

	log.Println("Server exiting.")
}
