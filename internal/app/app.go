// Package app wires configuration into the concrete component graph shared
// by the CLI and the server binary.
package app

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"medbuscador/internal"
	"medbuscador/internal/catalog"
	"medbuscador/internal/config"
	"medbuscador/internal/scrape"
	"medbuscador/internal/search"
	"medbuscador/internal/storage"
	"medbuscador/internal/websearch"
)

type App struct {
	Config       config.Config
	Logger       *zap.Logger
	Store        *storage.Store
	Base         catalog.Repository
	Extra        catalog.Repository
	Profiles     []internal.Profile
	Orchestrator *scrape.Orchestrator
	Service      *search.Service
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := catalog.EnsureFile(cfg.BasePath); err != nil {
		return nil, fmt.Errorf("init base catalog: %w", err)
	}

	base := catalog.NewRepository(cfg.BasePath, catalog.ProfileMain)
	extra := catalog.NewRepository(cfg.ExtraPath, catalog.ProfileExtra)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	profiles, err := scrape.LoadProfiles(cfg.ProfilesPath)
	if err != nil {
		store.Close()
		return nil, err
	}

	fetcher := scrape.NewHTTPFetcher(time.Duration(cfg.FetchTimeoutMs)*time.Millisecond, cfg.UserAgent)
	var renderer scrape.Fetcher
	if cfg.RenderEnabled {
		renderer = scrape.NewRenderer(logger,
			time.Duration(cfg.RenderTimeoutMs)*time.Millisecond, cfg.UserAgent)
	}
	engine := websearch.NewDuckDuckGo(logger, fetcher, cfg.SearchEngineURL)

	orch := scrape.NewOrchestrator(logger, scrape.OrchestratorOptions{
		Profiles:      profiles,
		Fetcher:       fetcher,
		Renderer:      renderer,
		Engine:        engine,
		Cache:         base,
		SourceDelay:   time.Duration(cfg.SourceDelayMs) * time.Millisecond,
		MaxResults:    cfg.MaxWebResults,
		MinDirectHits: cfg.MinDirectHits,
	})

	return &App{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Base:         base,
		Extra:        extra,
		Profiles:     profiles,
		Orchestrator: orch,
		Service:      search.NewService(logger, base, extra, orch, store),
	}, nil
}

func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
