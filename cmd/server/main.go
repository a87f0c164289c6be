package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messagely/internal/config"
	"messagely/internal/domain"
	"messagely/internal/httpserver"
	"messagely/internal/security"
	"messagely/internal/store/postgres"
	"messagely/internal/store/sqlite"
	"messagely/internal/ws"
)

// @title           messagely API
// @version         1.0
// @description     Backend API for the messagely application.

// @host            localhost:8000
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize the store
	var (
		users    domain.UserRepository
		messages domain.MessageRepository
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		users = postgres.NewUserRepo(db)
		messages = postgres.NewMessageRepo(db)
	default:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := sqlite.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		users = sqlite.NewUserRepo(db)
		messages = sqlite.NewMessageRepo(db)
	}

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(cfg.BcryptCost)

	// WebSocket hub for new-message pushes
	hub := ws.NewHub()

	// Build HTTP router
	router := httpserver.NewRouter(cfg, users, messages, hub, tokenSvc, passwordHasher)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Starting messagely server on %s\n", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
