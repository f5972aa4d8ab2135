// cmd/historian/main.go is the asynchronous historian service. It pops finished matches
// from the Redis queue and archives them to PostgreSQL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/walejandromt/KicksEmu/internal/cache"
	"github.com/walejandromt/KicksEmu/internal/config"
	"github.com/walejandromt/KicksEmu/internal/database"
	"github.com/walejandromt/KicksEmu/internal/historian"
	"github.com/walejandromt/KicksEmu/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := middleware.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	store := database.NewStore(pool)
	defer store.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	defer rdb.Close()

	queue := cache.NewMatchQueue(rdb, cfg.QueueName)
	h := historian.New(queue, store, historian.Options{
		BatchSize:   cfg.HistorianBatchSize,
		FlushDelay:  cfg.HistorianFlush,
		MaxAttempts: cfg.HistorianMaxAttempts,
	}, logger.WithField("queue", queue.Name()))
	h.DeadLetter = cache.NewMatchQueue(rdb, queue.Name()+":dead")

	h.Run(ctx)
	logger.Info("historian shutdown complete")
}
