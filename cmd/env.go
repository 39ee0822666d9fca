package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/inspect-cli/internal/compare"
	"github.com/sells-group/inspect-cli/internal/config"
	"github.com/sells-group/inspect-cli/internal/dataset"
	"github.com/sells-group/inspect-cli/internal/evaluate"
	"github.com/sells-group/inspect-cli/internal/fetcher"
	"github.com/sells-group/inspect-cli/internal/grade"
	"github.com/sells-group/inspect-cli/internal/report"
	"github.com/sells-group/inspect-cli/internal/store"
)

// inspectEnv holds the loaded dataset and the services built from it.
type inspectEnv struct {
	Dataset   *dataset.Dataset
	Stats     dataset.LoadStats
	Rules     *config.Rules
	Inspector *report.Inspector
	Engine    *compare.Engine
}

// newOpener builds the source opener from fetch settings.
func newOpener(fc config.FetchConfig) *fetcher.Opener {
	timeout := time.Duration(fc.TimeoutSecs) * time.Second
	return &fetcher.Opener{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  fc.UserAgent,
			Timeout:    timeout,
			MaxRetries: fc.MaxRetries,
			RatePerSec: fc.RatePerSec,
		}),
		FTP: fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: timeout}),
	}
}

// initEnv loads the dataset and rules and builds the grade spec, range
// catalog, inspector, and comparison engine.
func initEnv(ctx context.Context) (*inspectEnv, error) {
	if err := cfg.Validate("data"); err != nil {
		return nil, err
	}

	rules, err := config.LoadRules(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}
	spec, err := grade.BuildSpec(rules.Grade.Strategies)
	if err != nil {
		return nil, eris.Wrap(err, "build grade spec")
	}

	ds, stats, err := dataset.NewLoader(newOpener(cfg.Fetch)).Load(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}

	catalog := evaluate.BuildCatalog(ds.Rows(), rules.Process, rules.Parameters)
	zap.L().Info("inspection environment ready",
		zap.Int("rows", ds.Len()),
		zap.Int("parameters", catalog.Len()),
		zap.Strings("grade_strategies", spec.Names()),
	)

	return &inspectEnv{
		Dataset:   ds,
		Stats:     stats,
		Rules:     rules,
		Inspector: report.NewInspector(rules, spec, catalog),
		Engine:    compare.NewEngine(cfg.Compare.Concurrency),
	}, nil
}

// initStore opens the history store named by config and migrates it.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "inspect.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
