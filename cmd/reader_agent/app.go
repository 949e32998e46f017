package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/cache"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/config"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/db"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/llm"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/logger"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/rewriting"
)

// defaultSQLitePath is used when neither DATABASE_URL nor SQLITE_PATH is set.
const defaultSQLitePath = "reader_agent.db"

// errNoModel makes every generation fall back to the local transform.
var errNoModel = errors.New("no GEMINI_API_KEY configured")

// app holds the long-lived collaborators built from the configuration.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	model     llm.Client
	generator rewriting.Generator
	closers   []func() error
}

// newApp loads the configuration and builds the logger, model client and
// generator chain. The store is opened separately by commands that need one.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	if err := a.buildGenerator(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) buildGenerator(ctx context.Context) error {
	if a.cfg.GeminiAPIKey == "" {
		a.log.Warn("no model configured, every version uses the local fallback")
		a.generator = rewriting.GeneratorFunc(func(context.Context, rewriting.Request) (string, error) {
			return "", errNoModel
		})
		return nil
	}

	tier, err := llm.ParseTier(a.cfg.ModelTier)
	if err != nil {
		return err
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), a.cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	a.model = client
	a.closers = append(a.closers, client.Close)

	store, err := a.cacheStore(ctx)
	if err != nil {
		return err
	}
	a.generator = cache.NewGenerator(llm.NewStyleGenerator(client, tier), store, time.Duration(a.cfg.CacheTTL), a.log)
	return nil
}

// cacheStore connects to Redis when configured. Without Redis, generated text
// is cached in process.
func (a *app) cacheStore(ctx context.Context) (cache.Store, error) {
	if a.cfg.RedisAddr == "" {
		return cache.NewMemoryStore(), nil
	}
	store, err := cache.NewRedisStore(ctx, a.cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	a.log.Info("generation cache connected", "redis", a.cfg.RedisAddr)
	return store, nil
}

// openStore opens the configured store and applies migrations.
func (a *app) openStore(ctx context.Context) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	if a.cfg.DatabaseURL != "" {
		store, err = db.Connect(ctx, a.cfg.DatabaseURL)
	} else {
		path := a.cfg.SQLitePath
		if path == "" {
			path = defaultSQLitePath
		}
		store, err = db.OpenSQLite(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *app) assemblyConfig() rewriting.Config {
	return rewriting.Config{
		Timeout:     time.Duration(a.cfg.GenerationTimeout),
		Concurrency: a.cfg.GenerationConcurrency,
	}
}

// Close releases everything in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	a.log.Sync()
}
