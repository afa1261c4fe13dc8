package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/agri-atlas/pkg/adapters"
	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/models/store"
	"github.com/de-tools/agri-atlas/pkg/store/duckdb"
	"github.com/de-tools/agri-atlas/pkg/store/fixture"
	sqlstore "github.com/de-tools/agri-atlas/pkg/store/sql"
)

type testFixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *testFixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &testFixture{db: db, store: s}
}

func loadFixture(t *testing.T, f *testFixture) *fixture.Provider {
	ctx := context.Background()
	p, err := fixture.Default()
	require.NoError(t, err)

	regions, err := p.Regions(ctx)
	require.NoError(t, err)
	records := make([]store.RegionRecord, 0, len(regions))
	for _, r := range regions {
		records = append(records, adapters.MapDomainRegionToStore(r))
	}
	require.NoError(t, f.store.UpsertRegions(ctx, records))

	for _, snap := range p.Snapshots() {
		require.NoError(t, f.store.ReplaceSnapshot(ctx, snap.Region.ID, snap.Year, adapters.MapDomainSnapshotToStoreRecords(snap)))
	}
	return p
}

func TestSnapshotStore_RoundTripThroughSQLProvider(t *testing.T) {
	// Given
	f := setupFixture(t)
	want := loadFixture(t, f)
	provider, err := sqlstore.NewProvider(f.db)
	require.NoError(t, err)
	ctx := context.Background()

	// When
	got, err := provider.Snapshot(ctx, "bihar", 2023)

	// Then
	require.NoError(t, err)
	expected, err := want.Snapshot(ctx, "bihar", 2023)
	require.NoError(t, err)
	assert.Equal(t, expected, got)

	years, err := provider.Years(ctx, "bihar")
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2023}, years)

	_, err = provider.Snapshot(ctx, "bihar", 2010)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestSnapshotStore_Stats(t *testing.T) {
	// Given
	f := setupFixture(t)
	p := loadFixture(t, f)
	regions, err := p.Regions(context.Background())
	require.NoError(t, err)

	// When
	stats, err := f.store.Stats(context.Background())

	// Then
	require.NoError(t, err)
	assert.Equal(t, int64(len(regions)), stats.Regions)
	assert.Equal(t, int64(len(p.Snapshots())), stats.Snapshots)
	assert.Greater(t, stats.Records, stats.Snapshots)
}

func TestSnapshotStore_ReplaceSnapshotOverwrites(t *testing.T) {
	// Given
	f := setupFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.UpsertRegions(ctx, []store.RegionRecord{{ID: "bihar", Name: "Bihar"}}))
	first := []store.MetricRecord{
		{Family: store.FamilyGroundwater, Group: store.GroupTotal, Item: "annual_availability", Seq: 0, Value: 100},
		{Family: store.FamilyGroundwater, Group: store.GroupTotal, Item: "annual_extraction", Seq: 1, Value: 50},
	}
	second := []store.MetricRecord{
		{Family: store.FamilyGroundwater, Group: store.GroupTotal, Item: "annual_extraction", Seq: 0, Value: 70},
	}

	// When
	require.NoError(t, f.store.ReplaceSnapshot(ctx, "bihar", 2023, first))
	require.NoError(t, f.store.ReplaceSnapshot(ctx, "bihar", 2023, second))

	// Then
	var count int
	var amount float64
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*), MAX(amount) FROM snapshot_metrics WHERE region_id = 'bihar'`).Scan(&count, &amount))
	assert.Equal(t, 1, count)
	assert.Equal(t, 70.0, amount)
}

func TestSnapshotStore_UpsertRegionsUpdatesNames(t *testing.T) {
	// Given
	f := setupFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.UpsertRegions(ctx, []store.RegionRecord{{ID: "bihar", Name: "Bihar"}}))

	// When
	err := f.store.UpsertRegions(ctx, []store.RegionRecord{{ID: "bihar", Name: "Bihar State", LocalName: "बिहार"}})

	// Then
	require.NoError(t, err)
	var name, local string
	require.NoError(t, f.db.QueryRow(`SELECT name, local_name FROM regions WHERE id = 'bihar'`).Scan(&name, &local))
	assert.Equal(t, "Bihar State", name)
	assert.Equal(t, "बिहार", local)
}

func TestSnapshotStore_WritesJoinContextTransaction(t *testing.T) {
	// Given
	f := setupFixture(t)
	boom := errors.New("validation failed")

	// When
	err := duckdb.InTransaction(context.Background(), f.db, func(ctx context.Context) error {
		if err := f.store.UpsertRegions(ctx, []store.RegionRecord{{ID: "punjab", Name: "Punjab"}}); err != nil {
			return err
		}
		return boom
	})

	// Then
	assert.ErrorIs(t, err, boom)
	var count int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM regions`).Scan(&count))
	assert.Equal(t, 0, count)
}
