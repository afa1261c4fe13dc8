package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/agri-atlas/pkg/models/store"
	"github.com/de-tools/agri-atlas/pkg/store/duckdb"
)

// Store writes regions and flattened snapshots into DuckDB. Writes join the
// transaction carried by ctx when there is one.
type Store interface {
	UpsertRegions(ctx context.Context, regions []store.RegionRecord) error
	ReplaceSnapshot(ctx context.Context, regionID string, year int, records []store.MetricRecord) error
	Stats(ctx context.Context) (*store.DatasetStats, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type snapshotStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{
		db: db,
	}, nil
}

func (s *snapshotStore) conn(ctx context.Context) execer {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *snapshotStore) UpsertRegions(ctx context.Context, regions []store.RegionRecord) error {
	if len(regions) == 0 {
		return nil
	}

	stmt, err := s.conn(ctx).PrepareContext(ctx, `
		INSERT INTO regions (id, name, local_name, lat, lon)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			local_name = excluded.local_name,
			lat = excluded.lat,
			lon = excluded.lon`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range regions {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, r.LocalName, r.Lat, r.Lon); err != nil {
			return fmt.Errorf("upsert region %s: %w", r.ID, err)
		}
	}
	return nil
}

func (s *snapshotStore) ReplaceSnapshot(ctx context.Context, regionID string, year int, records []store.MetricRecord) error {
	conn := s.conn(ctx)
	if _, err := conn.ExecContext(ctx,
		`DELETE FROM snapshot_metrics WHERE region_id = ? AND year = ?`, regionID, year,
	); err != nil {
		return fmt.Errorf("delete snapshot %s/%d: %w", regionID, year, err)
	}
	if len(records) == 0 {
		return nil
	}

	stmt, err := conn.PrepareContext(ctx, `
		INSERT INTO snapshot_metrics (
			region_id, year, family, grp, parent, item, seq,
			count, area, amount, percentage
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.ExecContext(ctx,
			regionID,
			year,
			r.Family,
			r.Group,
			r.Parent,
			r.Item,
			r.Seq,
			r.Count,
			r.Area,
			r.Value,
			r.Percentage,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}
	return nil
}

func (s *snapshotStore) Stats(ctx context.Context) (*store.DatasetStats, error) {
	var stats store.DatasetStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM regions),
			(SELECT COUNT(*) FROM (SELECT DISTINCT region_id, year FROM snapshot_metrics)),
			(SELECT COUNT(*) FROM snapshot_metrics)`,
	).Scan(&stats.Regions, &stats.Snapshots, &stats.Records)
	if err != nil {
		return nil, fmt.Errorf("get dataset stats: %w", err)
	}
	return &stats, nil
}
