package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/actuallystonmai/internship-recommender/internal/auth"
	"github.com/actuallystonmai/internship-recommender/internal/cache"
	"github.com/actuallystonmai/internship-recommender/internal/config"
	"github.com/actuallystonmai/internship-recommender/internal/handler"
	"github.com/actuallystonmai/internship-recommender/internal/llm"
	"github.com/actuallystonmai/internship-recommender/internal/logger"
	"github.com/actuallystonmai/internship-recommender/internal/ranking"
	"github.com/actuallystonmai/internship-recommender/internal/repository"
	"github.com/actuallystonmai/internship-recommender/internal/router"
	"github.com/actuallystonmai/internship-recommender/internal/service"
	"github.com/actuallystonmai/internship-recommender/seeds"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, log); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	log.Info("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		return runMigration(ctx, pool, filepath.Join(cfg.MigrationsDir, "create_tables.down.sql"), log)
	}

	if err := runMigration(ctx, pool, filepath.Join(cfg.MigrationsDir, "create_tables.up.sql"), log); err != nil {
		return err
	}

	// ------------ Setup Seed Data ---------------
	repo := repository.New(pool)
	if err := checkSeed(ctx, pool, repo, log); err != nil {
		return fmt.Errorf("check seed: %w", err)
	}

	// ------------ Cache ---------------
	store, closeStore, err := newCacheStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// ------------ Ranking model ---------------
	var generator llm.Generator = llm.Unconfigured{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("create gemini client: %w", err)
		}
		defer gemini.Close()
		generator = gemini
		log.Info("gemini client ready", zap.String("model", cfg.GeminiModel))
	} else {
		log.Warn("GEMINI_API_KEY not set, recommendations will use heuristic ranking")
	}

	// ------------ Services ---------------
	recs := service.NewService(repo, repo, store, ranking.NewAIProvider(generator), service.Options{
		CacheTTL:  cfg.CacheTTL,
		AITimeout: cfg.AITimeout,
	}, log)

	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	accounts := service.NewAccountService(repo, auth.NewPasswordHasher(cfg.BcryptCost), tokens, cfg.IsAdminUsername, log)

	// ---------------- Server --------------------
	h := handler.NewHandler(recs, accounts, log)
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(h, router.Options{
			Tokens:         tokens,
			Admins:         accounts,
			RequestTimeout: cfg.RequestTimeout,
			Logger:         log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newCacheStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store, func(), error) {
	if cfg.CacheBackend == config.CacheBackendMemory {
		log.Info("using in-memory recommendation cache", zap.Duration("ttl", cfg.CacheTTL))
		return cache.NewMemoryStore(cfg.CacheTTL), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	store := cache.NewRedisStore(client, cfg.CacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		// Cache failures degrade to misses, so a down Redis is not fatal.
		log.Warn("redis unreachable at startup", zap.Error(err))
	} else {
		log.Info("connected to Redis", zap.Duration("ttl", cfg.CacheTTL))
	}
	return store, func() { client.Close() }, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Info("waiting for database", zap.Int("attempt", i+1), zap.Int("max_attempts", 30))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string, log *zap.Logger) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration %s: %w", filepath.Base(path), err)
	}
	log.Info("migration applied", zap.String("file", filepath.Base(path)))
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, repo *repository.Repository, log *zap.Logger) error {
	count, err := repo.CountListings(ctx)
	if err != nil {
		return fmt.Errorf("check listings count: %w", err)
	}
	if count > 0 {
		log.Info("database already seeded, skipping", zap.Int("listings", count))
		return nil
	}
	return seeds.Setup(ctx, pool, log)
}
