package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/datamind/datamind-api/internal/api"
	"github.com/datamind/datamind-api/internal/core/ports"
	"github.com/datamind/datamind-api/internal/core/service"
	"github.com/datamind/datamind-api/internal/dbconn"
	"github.com/datamind/datamind-api/internal/infrastructure/config"
	"github.com/datamind/datamind-api/internal/infrastructure/db/memory"
	"github.com/datamind/datamind-api/internal/infrastructure/db/mongo"
	"github.com/datamind/datamind-api/internal/infrastructure/db/redis"
	"github.com/datamind/datamind-api/internal/infrastructure/queue"
	"github.com/datamind/datamind-api/internal/pkg/secret"
	"github.com/datamind/datamind-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: "datamind-auth"})
		log.Fatal().Err(err).Msg("configuration failed")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "datamind-auth",
	})

	// --- Secret codec (fail closed without a key) ---
	var codec *secret.Codec
	if cfg.EncryptionKey == "" {
		log.Warn().Msg("ENCRYPTION_KEY is not set: credential storage is disabled, set-db requests will be rejected")
	} else {
		codec, err = secret.New(cfg.EncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid encryption key")
		}
	}

	// --- MongoDB (users + audit trail) ---
	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	userRepo := mongo.NewUserRepository(mongoDB)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb index setup failed")
	}

	// --- Session store backend ---
	var store ports.SessionStore
	var rdb *goredis.Client
	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		store = redis.NewSessionStore(rdb)
	default:
		memStore := memory.NewSessionStore()
		memStore.StartJanitor(ctx, time.Minute)
		store = memStore
	}
	log.Info().Str("backend", cfg.SessionBackend).Msg("session store ready")

	// --- Audit trail ---
	auditRepo := mongo.NewAuditRepository(mongoDB)
	auditService := service.NewAuditService(auditRepo, log)
	dispatcher := queue.NewDispatcher(0, auditService, log)
	dispatcher.Start(ctx)

	// --- Core services ---
	credService := service.NewCredentialService(userRepo)
	tokenService := service.NewTokenService(cfg.JWTSecret)
	broker := service.NewBroker(credService, tokenService, store, codec, dispatcher, cfg.TokenTTL, log)
	prober := dbconn.NewProber(broker, log)

	e := api.NewRouter(api.Deps{
		Broker: broker,
		Prober: prober,
		Audit:  auditService,
		Mongo:  mongoDB,
		Redis:  rdb,
		Log:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("datamind auth engine listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
