// Package main provides the main entry point for the Kushinada image labeling service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirphl/Kushinada-Labeling/app/handlers"
	"github.com/amirphl/Kushinada-Labeling/app/router"
	businessflow "github.com/amirphl/Kushinada-Labeling/business_flow"
	"github.com/amirphl/Kushinada-Labeling/config"
	"github.com/amirphl/Kushinada-Labeling/repository"
	"github.com/gofiber/fiber/v3"
)

// Application represents the main application structure
type Application struct {
	router router.Router
	config *config.AppConfig
	server *fiber.App
}

func main() {
	log.Println("Starting Kushinada labeling service...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app := initializeApplication(cfg)
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")
	log.Println("The in-memory session is discarded on shutdown; export before stopping the service.")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeApplication wires the repository, flow, handler and router together
func initializeApplication(cfg *config.AppConfig) *Application {
	sessionRepo := repository.NewSessionRepository()
	labelingFlow := businessflow.NewLabelingFlow(sessionRepo)
	labelingHandler := handlers.NewLabelingHandler(labelingFlow, cfg)

	appRouter := router.NewFiberRouter(cfg, labelingHandler)

	return &Application{
		router: appRouter,
		config: cfg,
		server: appRouter.GetApp(),
	}
}
