// Package app assembles the services shared by the CLI and the web server
// from a loaded configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/agri-atlas/pkg/export"
	"github.com/de-tools/agri-atlas/pkg/server"
	"github.com/de-tools/agri-atlas/pkg/services/analysis"
	"github.com/de-tools/agri-atlas/pkg/services/assistant"
	"github.com/de-tools/agri-atlas/pkg/services/config"
	"github.com/de-tools/agri-atlas/pkg/services/ingest"
	"github.com/de-tools/agri-atlas/pkg/sink"
	"github.com/de-tools/agri-atlas/pkg/store/dataset"
	"github.com/de-tools/agri-atlas/pkg/store/duckdb"
	"github.com/de-tools/agri-atlas/pkg/store/duckdb/snapshot"
	"github.com/de-tools/agri-atlas/pkg/store/fixture"
	sqlstore "github.com/de-tools/agri-atlas/pkg/store/sql"
)

type App struct {
	Config    *config.Config
	Provider  dataset.Provider
	Service   *analysis.Service
	Exporter  *export.Exporter
	Sinks     sink.Registry
	Assistant *assistant.Client // nil when no base url is configured

	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config:   cfg,
		Exporter: export.DefaultExporter(),
		Sinks:    sink.DefaultRegistry(),
	}

	provider, err := a.openProvider(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Provider = provider

	rules, err := analysis.DefaultRules(AlertSettings(cfg.Alerts))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build alert rules: %w", err)
	}
	a.Service = analysis.NewService(provider, analysis.DefaultRegistry(), rules)

	if cfg.Assistant.BaseURL != "" {
		a.Assistant, err = assistant.NewClient(assistant.ClientConfig{
			BaseURL:   cfg.Assistant.BaseURL,
			Timeout:   cfg.Assistant.Timeout,
			RateLimit: cfg.Assistant.RateLimit,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) openProvider(ctx context.Context) (dataset.Provider, error) {
	logger := zerolog.Ctx(ctx)

	switch a.Config.Dataset.Source {
	case "duckdb":
		db, err := a.DB()
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("path", a.Config.DuckDB.Path).Msg("serving dataset from duckdb")
		return sqlstore.NewProvider(db)
	default:
		if a.Config.Dataset.Path == "" {
			logger.Debug().Msg("serving embedded dataset")
			return fixture.Default()
		}
		logger.Debug().Str("path", a.Config.Dataset.Path).Msg("serving dataset file")
		return fixture.Load(a.Config.Dataset.Path)
	}
}

// DB opens the DuckDB database on first use.
func (a *App) DB() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: a.Config.DuckDB.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *App) Importer() (*ingest.Importer, error) {
	db, err := a.DB()
	if err != nil {
		return nil, err
	}
	store, err := snapshot.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}
	return ingest.NewImporter(db, store)
}

// Sink builds the configured export sink. Object-storage sinks read their
// credentials from the storage profile file.
func (a *App) Sink(ctx context.Context) (sink.Sink, error) {
	cfg := a.Config.Export
	opts := sink.Options{Dir: cfg.Dir, Bucket: cfg.Bucket}

	kind := sink.Kind(cfg.Sink)
	if kind != sink.KindLocal && cfg.Profiles != "" {
		registry, err := config.NewRegistry(cfg.Profiles)
		if err != nil {
			return nil, err
		}
		profile, err := registry.GetProfile(ctx, cfg.Profile)
		if err != nil {
			return nil, err
		}
		opts.Profile = profile
	}
	return a.Sinks.Create(ctx, kind, opts)
}

// ServerDependencies exposes the app's services to the web API. A missing
// assistant stays a nil interface so the assistant endpoints answer 503.
func (a *App) ServerDependencies() server.Dependencies {
	deps := server.Dependencies{Reports: a.Service, Exporter: a.Exporter}
	if a.Assistant != nil {
		deps.Assistant = a.Assistant
	}
	return deps
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func AlertSettings(c config.AlertsConfig) analysis.AlertSettings {
	return analysis.AlertSettings{
		GroundwaterDependence: c.GroundwaterDependence,
		CriticalStage:         c.CriticalStage,
		OverExploitation:      c.OverExploitation,
		MarginalShare:         c.MarginalShare,
		DiversityFloor:        c.DiversityFloor,
		FirstMatchOnly:        c.FirstMatchOnly,
	}
}

// NewLogger returns a timestamped logger at the given level.
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
