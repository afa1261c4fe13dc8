package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/agri-atlas/pkg/adapters"
	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/models/store"
)

// Provider serves snapshots from the regions and snapshot_metrics tables.
// It implements dataset.Provider for any driver using ? placeholders.
type Provider struct {
	db *sql.DB
}

func NewProvider(db *sql.DB) (*Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &Provider{db: db}, nil
}

func (p *Provider) Regions(ctx context.Context) ([]domain.Region, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, local_name, lat, lon
		FROM regions
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("regions query failed: %w", err)
	}
	defer closeRows(ctx, rows)

	var regions []domain.Region
	for rows.Next() {
		r, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("regions query failed: %w", err)
	}
	return regions, nil
}

func (p *Provider) Region(ctx context.Context, id string) (domain.Region, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	row := p.db.QueryRowContext(ctx, `
		SELECT id, name, local_name, lat, lon
		FROM regions
		WHERE id = ?`, id)
	r, err := scanRegion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Region{}, fmt.Errorf("region %q: %w", id, domain.ErrNoData)
	}
	return r, err
}

func (p *Provider) Years(ctx context.Context, regionID string) ([]int, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT DISTINCT year
		FROM snapshot_metrics
		WHERE region_id = ?
		ORDER BY year`, strings.ToLower(strings.TrimSpace(regionID)))
	if err != nil {
		return nil, fmt.Errorf("years query failed: %w", err)
	}
	defer closeRows(ctx, rows)

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (p *Provider) Snapshot(ctx context.Context, regionID string, year int) (domain.MetricSnapshot, error) {
	region, err := p.Region(ctx, regionID)
	if err != nil {
		return domain.MetricSnapshot{}, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT family, grp, parent, item, seq, count, area, amount, percentage
		FROM snapshot_metrics
		WHERE region_id = ? AND year = ?
		ORDER BY seq`, region.ID, year)
	if err != nil {
		return domain.MetricSnapshot{}, fmt.Errorf("snapshot query failed: %w", err)
	}
	defer closeRows(ctx, rows)

	var records []store.MetricRecord
	for rows.Next() {
		var (
			r                        store.MetricRecord
			count                    sql.NullInt64
			area, amount, percentage sql.NullFloat64
		)
		if err := rows.Scan(&r.Family, &r.Group, &r.Parent, &r.Item, &r.Seq, &count, &area, &amount, &percentage); err != nil {
			return domain.MetricSnapshot{}, fmt.Errorf("scan snapshot record: %w", err)
		}
		r.RegionID, r.Year = region.ID, year
		r.Count, r.Area, r.Value, r.Percentage = count.Int64, area.Float64, amount.Float64, percentage.Float64
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return domain.MetricSnapshot{}, fmt.Errorf("snapshot query failed: %w", err)
	}
	if len(records) == 0 {
		return domain.MetricSnapshot{}, fmt.Errorf("%s/%d: %w", region.ID, year, domain.ErrNoData)
	}

	return adapters.MapStoreRecordsToDomainSnapshot(region, year, records)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegion(s scanner) (domain.Region, error) {
	var (
		rec       store.RegionRecord
		localName sql.NullString
		lat, lon  sql.NullFloat64
	)
	if err := s.Scan(&rec.ID, &rec.Name, &localName, &lat, &lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Region{}, err
		}
		return domain.Region{}, fmt.Errorf("scan region: %w", err)
	}
	rec.LocalName, rec.Lat, rec.Lon = localName.String, lat.Float64, lon.Float64
	return adapters.MapStoreRegionToDomain(rec), nil
}

func closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close query rows")
	}
}
