// Package fixture serves the bundled reference dataset, or any dataset file in
// the same YAML layout, as a read-only dataset.Provider.
package fixture

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/store/dataset"
)

//go:embed dataset.yaml
var defaultDataset []byte

var _ dataset.Provider = (*Provider)(nil)

// Provider keeps the whole dataset in memory. It is immutable after
// construction and safe for concurrent use.
type Provider struct {
	regions   []domain.Region
	byID      map[string]domain.Region
	snapshots map[string]map[int]domain.MetricSnapshot
}

// Default returns a provider over the embedded reference dataset.
func Default() (*Provider, error) {
	return Parse(defaultDataset)
}

// Load reads a dataset file from disk.
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML dataset document.
func Parse(data []byte) (*Provider, error) {
	var file datasetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	p := &Provider{
		byID:      make(map[string]domain.Region, len(file.Regions)),
		snapshots: make(map[string]map[int]domain.MetricSnapshot, len(file.Datasets)),
	}
	for _, r := range file.Regions {
		id := normalizeID(r.ID)
		if id == "" {
			return nil, fmt.Errorf("region %q has no id", r.Name)
		}
		if _, dup := p.byID[id]; dup {
			return nil, fmt.Errorf("duplicate region %q", id)
		}
		region := domain.Region{ID: id, Name: r.Name, LocalName: r.LocalName, Lat: r.Lat, Lon: r.Lon}
		p.regions = append(p.regions, region)
		p.byID[id] = region
	}

	for rawID, years := range file.Datasets {
		region, ok := p.byID[normalizeID(rawID)]
		if !ok {
			return nil, fmt.Errorf("dataset references unknown region %q", rawID)
		}
		byYear := make(map[int]domain.MetricSnapshot, len(years))
		for year, entry := range years {
			snap, err := toSnapshot(region, year, entry)
			if err != nil {
				return nil, fmt.Errorf("%s/%d: %w", region.ID, year, err)
			}
			byYear[year] = snap
		}
		p.snapshots[region.ID] = byYear
	}
	return p, nil
}

func (p *Provider) Regions(_ context.Context) ([]domain.Region, error) {
	out := make([]domain.Region, len(p.regions))
	copy(out, p.regions)
	return out, nil
}

func (p *Provider) Region(_ context.Context, id string) (domain.Region, error) {
	r, ok := p.byID[normalizeID(id)]
	if !ok {
		return domain.Region{}, fmt.Errorf("region %q: %w", id, domain.ErrNoData)
	}
	return r, nil
}

func (p *Provider) Years(_ context.Context, regionID string) ([]int, error) {
	byYear := p.snapshots[normalizeID(regionID)]
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

func (p *Provider) Snapshot(_ context.Context, regionID string, year int) (domain.MetricSnapshot, error) {
	snap, ok := p.snapshots[normalizeID(regionID)][year]
	if !ok {
		return domain.MetricSnapshot{}, fmt.Errorf("%s/%d: %w", regionID, year, domain.ErrNoData)
	}
	return snap, nil
}

// Snapshots returns every snapshot in region order, then year order.
func (p *Provider) Snapshots() []domain.MetricSnapshot {
	var out []domain.MetricSnapshot
	for _, r := range p.regions {
		byYear := p.snapshots[r.ID]
		years := make([]int, 0, len(byYear))
		for y := range byYear {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			out = append(out, byYear[y])
		}
	}
	return out
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func toSnapshot(region domain.Region, year int, e snapshotEntry) (domain.MetricSnapshot, error) {
	snap := domain.MetricSnapshot{Region: region, Year: year}

	if lh := e.LandHoldings; lh != nil {
		out := &domain.LandHoldings{TotalHoldings: lh.TotalHoldings, TotalArea: lh.TotalArea}
		for _, c := range lh.Categories {
			out.Categories = append(out.Categories, domain.Breakdown{
				Name:       c.Key,
				Count:      c.Value.Count,
				Area:       c.Value.Area,
				Percentage: c.Value.Percentage,
			})
		}
		snap.LandHoldings = out
	}

	if irr := e.Irrigation; irr != nil {
		out := &domain.Irrigation{NetIrrigatedArea: irr.NetIrrigatedArea, GrossIrrigatedArea: irr.GrossIrrigatedArea}
		for _, s := range irr.Sources {
			out.Sources = append(out.Sources, domain.SourceShare{Source: s.Source, Area: s.Area, Percentage: s.Percentage})
		}
		snap.Irrigation = out
	}

	if cr := e.Cropping; cr != nil {
		out := &domain.Cropping{TotalCroppedArea: cr.TotalCroppedArea}
		for _, s := range cr.Seasons {
			season, err := domain.ParseSeason(s.Key)
			if err != nil || season == domain.SeasonAll {
				return snap, fmt.Errorf("cropping: unknown season %q", s.Key)
			}
			sc := domain.SeasonCropping{Season: season, Area: s.Value.Area}
			for _, c := range s.Value.Crops {
				sc.Crops = append(sc.Crops, domain.CropShare{Name: c.Key, Percentage: c.Value.Percentage})
			}
			out.Seasons = append(out.Seasons, sc)
		}
		snap.Cropping = out
	}

	if gw := e.Groundwater; gw != nil {
		out := &domain.Groundwater{
			AnnualAvailability: gw.AnnualAvailability,
			AnnualExtraction:   gw.AnnualExtraction,
			AverageDepth:       gw.AverageDepth,
		}
		for _, d := range gw.DepthRanges {
			out.DepthRanges = append(out.DepthRanges, domain.DepthRange{Range: d.Range, Count: d.Count, Percentage: d.Percentage})
		}
		snap.Groundwater = out
	}
	return snap, nil
}
