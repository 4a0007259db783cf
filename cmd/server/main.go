package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/search"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.SessionSecret, "SESSION_SECRET")

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Seed(ctx, gdb, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("db_seed_failed", "error", err)
		os.Exit(1)
	}

	opts := httpserver.Options{
		Logger:       logger,
		DB:           gdb,
		CartStore:    cart.NewMemoryStore(),
		Secret:       cfg.SessionSecret,
		CookieSecure: cfg.CookieSecure,
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("redis_init_failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		opts.CartStore = cart.NewRedisStore(rdb, cart.DefaultSessionTTL)
		logger.Info("cart_store", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		logger.Info("cart_store", "backend", "memory")
	}

	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = mykafka.NewProducer(cfg.KafkaBrokers)
		opts.Publisher = prod
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	if cfg.ESURL != "" {
		esClient, err := search.NewClient(search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Error("es_init_failed", "error", err)
			os.Exit(1)
		}
		opts.Search = search.NewIndex(esClient, cfg.ESIndex)
	}

	deps := httpserver.NewDeps(opts)
	if opts.Search != nil {
		syncCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := deps.Catalog.Catalog.SyncSearchIndex(logging.IntoContext(syncCtx, logger)); err != nil {
			logger.Warn("es_sync_failed", "error", err)
		}
		cancel()
	}

	e := httpserver.New(deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
