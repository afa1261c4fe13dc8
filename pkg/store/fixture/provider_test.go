package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

const miniDataset = `
regions:
  - id: Bihar
    name: Bihar
    lat: 25.1
    lon: 85.3
datasets:
  bihar:
    2023:
      cropping:
        total_cropped_area: 825000
        seasons:
          kharif:
            area: 520000
            crops:
              rice: {percentage: 60}
              maize: {percentage: 15}
              pulses: {percentage: 10}
              others: {percentage: 15}
`

func TestDefaultDatasetIsConsistent(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	snaps := p.Snapshots()
	require.NotEmpty(t, snaps)
	for _, s := range snaps {
		assert.Empty(t, metrics.CheckSnapshot(s), "%s/%d", s.Region.ID, s.Year)
	}
}

func TestDefaultDatasetBihar2023(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	snap, err := p.Snapshot(context.Background(), "bihar", 2023)
	require.NoError(t, err)
	require.NotNil(t, snap.Cropping)

	assert.Equal(t, 825000.0, snap.Cropping.TotalCroppedArea)
	kharif, ok := snap.Cropping.Season(domain.SeasonKharif)
	require.True(t, ok)
	assert.Equal(t, 520000.0, kharif.Area)
	assert.Equal(t, domain.CropShare{Name: "rice", Percentage: 60}, kharif.Crops[0])
}

func TestParseKeepsDocumentOrder(t *testing.T) {
	p, err := Parse([]byte(miniDataset))
	require.NoError(t, err)

	snap, err := p.Snapshot(context.Background(), "BIHAR", 2023)
	require.NoError(t, err)

	var names []string
	for _, c := range snap.Cropping.Seasons[0].Crops {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"rice", "maize", "pulses", "others"}, names)
	assert.Nil(t, snap.Groundwater)
	assert.Equal(t, "bihar", snap.Region.ID)
}

func TestMissingEntriesReturnNoData(t *testing.T) {
	p, err := Parse([]byte(miniDataset))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.Snapshot(ctx, "bihar", 1999)
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = p.Snapshot(ctx, "atlantis", 2023)
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = p.Region(ctx, "atlantis")
	assert.ErrorIs(t, err, domain.ErrNoData)

	years, err := p.Years(ctx, "atlantis")
	require.NoError(t, err)
	assert.Empty(t, years)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown region",
			doc:  "regions: []\ndatasets:\n  bihar:\n    2023: {}\n",
		},
		{
			name: "duplicate region",
			doc:  "regions:\n  - id: bihar\n  - id: Bihar\n",
		},
		{
			name: "unknown season",
			doc: `
regions:
  - id: bihar
datasets:
  bihar:
    2023:
      cropping:
        seasons:
          monsoon: {area: 1}
`,
		},
		{
			name: "crops not a mapping",
			doc: `
regions:
  - id: bihar
datasets:
  bihar:
    2023:
      cropping:
        seasons:
          kharif: {area: 1, crops: [rice]}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(miniDataset), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	years, err := p.Years(context.Background(), "bihar")
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, years)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
