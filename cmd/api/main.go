package main

import (
	"log"
	"os"

	"content-portal-api/internal/config"
	"content-portal-api/internal/server"
)

// @title Content Portal API
// @version 1.0.0
// @description Secret-link media upload portal with blob storage, archive maintenance and scheduled publishing.
// @BasePath /
func main() {
	// Set up logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetPrefix("[ContentPortal] ")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.PrintConfig()

	// Create server
	srv := server.New(cfg)

	// Initialize server
	if err := srv.Initialize(); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
		os.Exit(1)
	}

	// Start server
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
