// Package app assembles the review stack from configuration. Both the HTTP
// server and the command line tool start from here.
package app

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/hotelmatch/internal/cache"
	"github.com/stwalsh4118/hotelmatch/internal/config"
	"github.com/stwalsh4118/hotelmatch/internal/database"
	"github.com/stwalsh4118/hotelmatch/internal/geo"
	"github.com/stwalsh4118/hotelmatch/internal/logger"
	"github.com/stwalsh4118/hotelmatch/internal/repository"
	"github.com/stwalsh4118/hotelmatch/internal/services"
	"github.com/stwalsh4118/hotelmatch/internal/subsets"
)

// App holds the long-lived pieces of a running process.
type App struct {
	Warehouse  *database.Warehouse
	Cache      cache.Cache
	Repository repository.MatchRepository
	Review     services.ReviewService

	closers []func()
}

// New connects to the warehouse and cache and builds an unstarted
// ReviewService. Callers must Close the App.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	opts, err := ReviewOptions(cfg.Review)
	if err != nil {
		return nil, err
	}

	warehouse, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{Warehouse: warehouse}
	a.closers = append(a.closers, warehouse.Close)

	log.Info("Warehouse connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	a.Cache = NewCache(cfg.Cache, log, &a.closers)
	if err := a.Cache.Ping(ctx); err != nil {
		// a cold cache only costs warehouse queries
		log.Warn("Cache unreachable, continuing without hits", map[string]interface{}{
			"backend": cfg.Cache.Backend,
			"error":   err.Error(),
		})
	}

	repoLog := log.Component("repository")
	a.Repository = repository.NewCachedMatchRepository(
		repository.NewMatchRepository(warehouse.Pool, cfg.Review),
		a.Cache,
		cache.DefaultTTL,
		repoLog,
	)
	a.Review = services.NewReviewService(a.Repository, opts, log.Component("review"))
	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewCache picks the configured backend. Redis clients are registered on
// closers so they are shut down with the App.
func NewCache(cfg config.CacheConfig, log *logger.Logger, closers *[]func()) cache.Cache {
	if cfg.Backend == config.CacheBackendRedis {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if closers != nil {
			*closers = append(*closers, func() {
				if err := rc.Close(); err != nil {
					log.Warn("Failed to close redis client", map[string]interface{}{"error": err.Error()})
				}
			})
		}
		log.Info("Using redis cache", map[string]interface{}{"addr": cfg.RedisAddr, "db": cfg.RedisDB})
		return rc
	}
	log.Info("Using in-process cache", nil)
	return cache.NewMemory()
}

// ReviewOptions translates the review section of the configuration.
func ReviewOptions(cfg config.ReviewConfig) (services.ReviewOptions, error) {
	catalog, err := Catalog(cfg.Sources)
	if err != nil {
		return services.ReviewOptions{}, err
	}
	calc, err := geo.CalculatorFor(cfg.Formula)
	if err != nil {
		return services.ReviewOptions{}, err
	}
	return services.ReviewOptions{
		Catalog:       catalog,
		Calculator:    calc,
		DistanceSteps: cfg.DistanceSteps,
	}, nil
}

// Catalog builds the site catalog in configured order.
func Catalog(sources []config.SourceConfig) (*subsets.Catalog, error) {
	known := make([]subsets.Source, 0, len(sources))
	for _, s := range sources {
		known = append(known, subsets.Source{Code: s.Code, Name: s.Name})
	}
	catalog, err := subsets.NewCatalog(known)
	if err != nil {
		return nil, fmt.Errorf("failed to build source catalog: %w", err)
	}
	return catalog, nil
}
