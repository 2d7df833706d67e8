// Package app wires the aggregation pipeline: config, logger, cache,
// rate limiter, source client, fetcher, and orchestrator. Everything is
// an explicit object constructed once here, with no package-level state.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Avishkar2004/8byte/internal/cache"
	"github.com/Avishkar2004/8byte/internal/clients/eodhd"
	"github.com/Avishkar2004/8byte/internal/common"
	"github.com/Avishkar2004/8byte/internal/fetcher"
	"github.com/Avishkar2004/8byte/internal/interfaces"
	"github.com/Avishkar2004/8byte/internal/models"
	"github.com/Avishkar2004/8byte/internal/ratelimit"
	"github.com/Avishkar2004/8byte/internal/services/aggregator"
	"github.com/Avishkar2004/8byte/internal/storage"
)

// App holds all initialized components of the aggregation service.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Cache       *cache.TTLCache
	Limiter     *ratelimit.SlidingWindow
	Source      interfaces.Source
	Fetcher     interfaces.Fetcher
	Aggregator  interfaces.AggregatorService
	Holdings    interfaces.HoldingsStore
	StartupTime time.Time

	mu       sync.RWMutex
	lastPass *models.PassResult

	schedulerCancel context.CancelFunc
	sweeperCancel   context.CancelFunc
}

// NewApp initializes all components from config.
// configPath may be empty, in which case EIGHTBYTE_CONFIG and the
// default path are consulted.
func NewApp(configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("EIGHTBYTE_CONFIG")
	}
	if configPath == "" {
		configPath = "config/8byte.toml"
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	agg := config.Aggregator

	ttlCache := cache.New()
	limiter := ratelimit.NewSlidingWindow(agg.MaxRequests, agg.GetWindow())

	// No API key means no source: an explicit degraded mode. Fetches
	// surface typed unavailable errors instead of fabricated values.
	var source interfaces.Source
	if config.Clients.EODHD.APIKey != "" {
		source = eodhd.NewClient(
			config.Clients.EODHD.APIKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
			eodhd.WithLogger(logger),
		)
	} else {
		logger.Warn().Msg("EODHD API key not configured - running in degraded mode, all fetches will report source unavailable")
	}

	f := fetcher.New(source, ttlCache, limiter, logger,
		fetcher.WithCacheTTL(agg.GetCacheTTL()),
		fetcher.WithFetchTimeout(agg.GetFetchTimeout()),
		fetcher.WithRetryCount(agg.RetryCount),
	)

	aggService := aggregator.NewService(f, logger,
		aggregator.WithStaggerDelay(agg.GetStaggerDelay()),
		aggregator.WithPassTimeout(agg.GetPassTimeout()),
	)

	holdings := storage.NewHoldingsStore(config.Holdings.Path, logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Cache:       ttlCache,
		Limiter:     limiter,
		Source:      source,
		Fetcher:     f,
		Aggregator:  aggService,
		Holdings:    holdings,
		StartupTime: time.Now(),
	}

	return a, nil
}

// RefreshNow runs one aggregation pass over the holdings list and
// stores the result as the latest snapshot.
func (a *App) RefreshNow(ctx context.Context) (*models.PassResult, error) {
	instruments, err := a.Holdings.GetHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	result := a.Aggregator.RunPass(ctx, instruments)

	a.mu.Lock()
	a.lastPass = result
	a.mu.Unlock()

	return result, nil
}

// LastPass returns the most recent pass result, or nil before the first
// pass completes. The presentation layer always has something to render
// once a pass has run, stale rows included.
func (a *App) LastPass() *models.PassResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastPass
}

// StartScheduler launches the periodic refresh loop and cache sweeper.
func (a *App) StartScheduler() {
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel
	go startScheduler(ctx, a, a.Config.Aggregator.GetRefreshInterval())

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	a.sweeperCancel = sweepCancel
	a.Cache.StartSweeper(sweepCtx, time.Minute)
}

// Close stops background loops.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	if a.sweeperCancel != nil {
		a.sweeperCancel()
	}
}
