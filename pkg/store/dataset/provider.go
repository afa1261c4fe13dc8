// Package dataset defines the read interface the report core uses to reach
// snapshot data, independent of where the data lives.
package dataset

import (
	"context"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

// Provider returns immutable snapshots. Snapshot and Region return an error
// wrapping domain.ErrNoData when the requested entry does not exist.
type Provider interface {
	Regions(ctx context.Context) ([]domain.Region, error)
	Region(ctx context.Context, id string) (domain.Region, error)
	Years(ctx context.Context, regionID string) ([]int, error)
	Snapshot(ctx context.Context, regionID string, year int) (domain.MetricSnapshot, error)
}
