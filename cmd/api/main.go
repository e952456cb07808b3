package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	rediscache "github.com/gravadigital/santa-api/internal/cache/redis"
	"github.com/gravadigital/santa-api/internal/config"
	"github.com/gravadigital/santa-api/internal/logger"
	"github.com/gravadigital/santa-api/internal/server"
	"github.com/gravadigital/santa-api/internal/storage/objectstore"
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cache *rediscache.LeaderboardCache
	if cfg.Redis.Addr != "" {
		client, err := rediscache.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis", "error", err)
		}
		cache = rediscache.NewLeaderboardCache(client)
		log.Info("Leaderboard cache enabled", "addr", cfg.Redis.Addr)
	} else {
		log.Info("Leaderboard cache disabled, serving ranking from database")
	}

	var images objectstore.ImageStore
	if cfg.Storage.Endpoint != "" {
		store, err := objectstore.NewMinioStore(ctx, cfg)
		if err != nil {
			log.Fatal("Failed to connect to object storage", "error", err)
		}
		images = store
	} else {
		log.Info("Object storage disabled, image uploads unavailable")
	}

	srv := server.New(cfg, db, cache, images)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}
	log.Info("Server stopped")
}
