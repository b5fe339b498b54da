package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/lexara-com/engage-sub006/internal/config"
	"github.com/lexara-com/engage-sub006/internal/repository/postgres"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Database.Driver != "postgres" {
		fmt.Fprintln(os.Stderr, "Migrations only apply to the postgres driver; sqlite stores create their schema on open")
		os.Exit(1)
	}

	sourceURL := os.Getenv("MIGRATIONS_URL")
	if sourceURL == "" {
		sourceURL = "file://migrations"
	}

	fmt.Printf("Applying migrations from %s to %s:%d...\n", sourceURL, cfg.Database.Host, cfg.Database.Port)

	if err := postgres.RunMigrations(cfg.Database.DSN(), sourceURL); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations applied")
}
