package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/zulandar/stagedocs/internal/cache"
	"github.com/zulandar/stagedocs/internal/comments"
	"github.com/zulandar/stagedocs/internal/config"
	"github.com/zulandar/stagedocs/internal/db"
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/docstore/mongostore"
	"github.com/zulandar/stagedocs/internal/docstore/sqlstore"
	"github.com/zulandar/stagedocs/internal/resolve"
	"github.com/zulandar/stagedocs/internal/signedurl"
	"github.com/zulandar/stagedocs/internal/telemetry"
	"github.com/zulandar/stagedocs/internal/tree"
)

// app is the wired process: one store handle shared by every resolver.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	telemetry *telemetry.Provider
	metrics   *telemetry.Metrics
	store     docstore.Store
	cache     *cache.TreeCache
	trees     *tree.Service
	content   *resolve.Content
	comments  *comments.Service
}

type appOpts struct {
	// LogOut receives log output; commands that print JSON send logs to
	// stderr.
	LogOut io.Writer
	// NoCache skips Redis even when configured.
	NoCache bool
}

func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore connects the configured document store.
func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	budget := docstore.Budget{MaxTime: cfg.Query.MaxTime}
	if cfg.Database.Driver == config.DriverMongo {
		s, err := mongostore.Connect(ctx, cfg.Database.URI, cfg.Database.Name, budget)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo %s: %w", cfg.Database.Name, err)
		}
		return s, nil
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Database.Name, err)
	}
	return sqlstore.New(gormDB, budget), nil
}

func newApp(ctx context.Context, cfg *config.Config, opts appOpts) (*app, error) {
	log, err := telemetry.NewLogger(cfg.Log, opts.LogOut)
	if err != nil {
		return nil, err
	}
	prov, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	metrics, err := telemetry.NewMetrics(prov.Meter)
	if err != nil {
		prov.Shutdown(ctx)
		return nil, fmt.Errorf("telemetry: metrics: %w", err)
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		prov.Shutdown(ctx)
		return nil, err
	}

	a := &app{cfg: cfg, log: log, telemetry: prov, metrics: metrics, store: store}

	var treeCache tree.Cache
	if cfg.Cache.Enabled() && !opts.NoCache {
		c, err := cache.NewTreeCache(cfg.Cache.RedisURL, cfg.Cache.TTL, log)
		if err != nil {
			// The cache is optional; run uncached.
			log.WithError(err).Warn("tree cache unavailable")
		} else {
			a.cache = c
			treeCache = c
		}
	}

	limit := cfg.Query.Concurrency
	a.trees = tree.NewService(tree.ServiceOpts{
		Hierarchy:   resolve.NewHierarchy(store),
		Assignments: resolve.NewAssignments(store, limit),
		Builder: tree.NewBuilder(
			resolve.NewChecklists(store, limit),
			resolve.NewFiles(store, cfg.Query.AllowedExts, limit),
			prov.Tracer,
		),
		Cache:   treeCache,
		Logger:  log,
		Tracer:  prov.Tracer,
		Metrics: metrics,
	})

	contentCfg := resolve.ContentConfig{Concurrency: limit}
	if cfg.Storage.ExternalFallback {
		issuer, err := signedurl.New(cfg.Storage)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		contentCfg.ExternalFallback = true
		contentCfg.Signer = issuer
	}
	a.content = resolve.NewContent(store, contentCfg)
	a.comments = comments.NewService(store, log)
	return a, nil
}

// treeOptions returns the default tree options under cfg.
func (a *app) treeOptions() tree.Options {
	opts := tree.DefaultOptions()
	opts.Prune = a.cfg.Query.Prune()
	return opts
}

// Close releases the store, cache and telemetry.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
