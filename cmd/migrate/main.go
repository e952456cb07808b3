// Command migrate syncs the database schema without starting the API
package main

import (
	"os"

	"github.com/gravadigital/santa-api/internal/config"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()
	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log := logger.Get()

	db, err := postgres.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	if err := postgres.AutoMigrate(db); err != nil {
		log.Fatal("Failed to sync schema", "error", err)
	}

	log.Info("Schema is up to date")
}
