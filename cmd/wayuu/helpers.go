package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/audio"
	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/cache"
	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/config"
	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/fetcher"
	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/loader"
	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/sources"
)

func loadConfig() (*config.Config, error) {
	cfgLoader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return cfgLoader.Load()
}

// app wires the dataset pipeline together for one command invocation.
type app struct {
	cfg         *config.Config
	db          *sqlx.DB
	client      *fetcher.Client
	repository  *sources.DBSourceRepository
	store       *cache.Store
	coordinator *loader.Coordinator
	manager     *audio.Manager
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loadConfig() > %w", err)
	}

	db, err := sources.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("sources.Open() > %w", err)
	}

	repository := sources.NewDBSourceRepository(db)
	// A fresh install must be able to sync right away, so the default
	// sources are seeded before any command runs.
	if err := repository.Seed(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository.Seed() > %w", err)
	}
	client := fetcher.NewClient(fetcher.Config{
		Endpoint:      cfg.Remote.Endpoint,
		PageSize:      cfg.Remote.PageSize,
		PageDelay:     cfg.Remote.PageDelay,
		RetryAttempts: uint(cfg.Remote.RetryAttempts),
	})
	store := cache.NewStore(cfg.Cache.Directory)
	coordinator := loader.NewCoordinator(client, store, repository, loader.Config{
		CacheMaxAge: cfg.Cache.MaxAge,
		MaxEntries:  cfg.Remote.MaxEntries,
	})
	manager := audio.NewManager(audio.Config{
		AudioDirectory: cfg.Audio.Directory,
		DurationsFile:  cfg.Audio.DurationsFile,
		BatchDelay:     cfg.Audio.BatchDelay,
	})

	return &app{
		cfg:         cfg,
		db:          db,
		client:      client,
		repository:  repository,
		store:       store,
		coordinator: coordinator,
		manager:     manager,
	}, nil
}

func (a *app) close() {
	_ = a.manager.Close()
	_ = a.client.Close()
	_ = a.db.Close()
}
