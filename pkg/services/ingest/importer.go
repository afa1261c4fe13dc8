// Package ingest loads a YAML dataset into the DuckDB store.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/agri-atlas/pkg/adapters"
	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/models/store"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
	"github.com/de-tools/agri-atlas/pkg/store/duckdb"
	"github.com/de-tools/agri-atlas/pkg/store/duckdb/snapshot"
)

// ErrInvalidDataset is returned when the source fails integrity checks.
// Nothing is written in that case.
var ErrInvalidDataset = errors.New("invalid dataset")

// Source is a complete dataset held in memory, such as a parsed fixture.
type Source interface {
	Regions(ctx context.Context) ([]domain.Region, error)
	Snapshots() []domain.MetricSnapshot
}

type Result struct {
	Regions   int
	Snapshots int
	Records   int
}

type Importer struct {
	db    *sql.DB
	store snapshot.Store
}

func NewImporter(db *sql.DB, store snapshot.Store) (*Importer, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("snapshot store is nil")
	}
	return &Importer{db: db, store: store}, nil
}

// Import validates every snapshot, then writes regions and snapshots in a
// single transaction. Snapshots already stored for the same region and year
// are replaced.
func (i *Importer) Import(ctx context.Context, src Source) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	regions, err := src.Regions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	snapshots := src.Snapshots()

	var problems []error
	for _, s := range snapshots {
		problems = append(problems, metrics.CheckSnapshot(s)...)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, errors.Join(problems...))
	}

	regionRecords := make([]store.RegionRecord, 0, len(regions))
	for _, r := range regions {
		regionRecords = append(regionRecords, adapters.MapDomainRegionToStore(r))
	}

	result := &Result{Regions: len(regions)}
	err = duckdb.InTransaction(ctx, i.db, func(ctx context.Context) error {
		if err := i.store.UpsertRegions(ctx, regionRecords); err != nil {
			return err
		}
		for _, s := range snapshots {
			records := adapters.MapDomainSnapshotToStoreRecords(s)
			if err := i.store.ReplaceSnapshot(ctx, s.Region.ID, s.Year, records); err != nil {
				return err
			}
			result.Snapshots++
			result.Records += len(records)
			logger.Debug().
				Str("region", s.Region.ID).
				Int("year", s.Year).
				Int("records", len(records)).
				Msg("snapshot imported")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}

	logger.Info().
		Int("regions", result.Regions).
		Int("snapshots", result.Snapshots).
		Int("records", result.Records).
		Msg("dataset imported")
	return result, nil
}
