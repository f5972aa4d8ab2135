// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/walejandromt/KicksEmu/internal/auth"
	"github.com/walejandromt/KicksEmu/internal/cache"
	"github.com/walejandromt/KicksEmu/internal/config"
	"github.com/walejandromt/KicksEmu/internal/database"
	"github.com/walejandromt/KicksEmu/internal/handlers"
	"github.com/walejandromt/KicksEmu/internal/lobby"
	"github.com/walejandromt/KicksEmu/internal/match"
	"github.com/walejandromt/KicksEmu/internal/middleware"
	"github.com/walejandromt/KicksEmu/internal/room"
	"github.com/walejandromt/KicksEmu/internal/service"
	"github.com/walejandromt/KicksEmu/internal/session"
	"github.com/walejandromt/KicksEmu/internal/tables"
)

func main() {
	issueToken := flag.Int("issue-token", 0, "print a session token for the given player id and exit")
	flag.Parse()

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

	if cfg.PrivateKeyPath != "" {
		err = auth.InitFromPath(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.TokenExpire)
	} else {
		logger.Warn("no auth keys configured, using ephemeral keys")
		err = auth.Init(cfg.TokenExpire)
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise auth")
	}

	if *issueToken > 0 {
		token, err := auth.CreateJWT(*issueToken)
		if err != nil {
			logger.WithError(err).Fatal("failed to issue token")
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	store := database.NewStore(pool)
	defer store.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	t, err := tables.Load(cfg.TablesPath)
	if err != nil {
		return err
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	events := cache.NewEvents(rdb)

	results := match.NewHandler(store, t, cfg.Rewards, logger)
	results.Events = events
	results.Publisher = cache.NewMatchQueue(rdb, cfg.QueueName)

	svc := service.New(service.Deps{
		Config:   cfg,
		Rooms:    room.NewManager(logger),
		Lobby:    lobby.New(),
		Sessions: session.NewRegistry(),
		Players:  store,
		Results:  results,
		Events:   events,
		Log:      logger,
	})
	rs := handlers.NewRoomServer(svc, cfg)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(handlers.RoomWSHandler(logger, rs)))
	mux.Handle("/rooms", middleware.LogMiddleware(logger)(handlers.ListRoomsHandler(rs)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": srv.Addr, "server_type": cfg.ServerType}).Info("room server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
