package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/upsrj/checkin-system/internal/api"
	"github.com/upsrj/checkin-system/internal/core/service"
	"github.com/upsrj/checkin-system/internal/infrastructure/config"
	mongodb "github.com/upsrj/checkin-system/internal/infrastructure/db/mongo"
	redisdb "github.com/upsrj/checkin-system/internal/infrastructure/db/redis"
	"github.com/upsrj/checkin-system/internal/infrastructure/queue"
	"github.com/upsrj/checkin-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	checkins := mongodb.NewCheckInRepository(db)
	students := mongodb.NewStudentRepository(db)

	// The unique (user, day) index is what closes the dedup race; refuse to
	// start without it.
	if err := checkins.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("check-in index creation failed")
	}
	if err := students.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("student index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	loc := cfg.Campus.Location()

	// --- Core services ---
	marker := redisdb.NewDailyMarker(rdb, loc)

	dispatcher := queue.NewDispatcher(cfg.ProfileWorkers, students, log)
	dispatcher.Start(ctx)

	ledger := service.NewLedgerService(checkins, students, marker, dispatcher, loc, log)
	auth := service.NewAuthService(students, cfg.JWTSecret, cfg.TokenTTL)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Ledger: ledger,
		Auth:   auth,
		Mongo:  db,
		Redis:  rdb,
		Config: cfg,
		Logger: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		os.Exit(1)
	}
}
