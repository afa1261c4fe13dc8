package analysis

import (
	"fmt"
	"sort"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

var (
	totalCroppedArea = Indicator{Key: "cropping.total_cropped_area", Label: "Total Cropped Area", Unit: "ha"}
	kharifShare      = Indicator{Key: "cropping.kharif_share", Label: "Kharif Share", Unit: "%"}
	rabiShare        = Indicator{Key: "cropping.rabi_share", Label: "Rabi Share", Unit: "%"}
	zaidShare        = Indicator{Key: "cropping.zaid_share", Label: "Zaid Share", Unit: "%"}
	cropDiversity    = Indicator{Key: "cropping.crop_diversity", Label: "Crop Diversity Index"}
)

var seasonShares = map[domain.Season]Indicator{
	domain.SeasonKharif: kharifShare,
	domain.SeasonRabi:   rabiShare,
	domain.SeasonZaid:   zaidShare,
}

type seasonalAnalyzer struct{}

func NewSeasonalAnalyzer() Analyzer { return seasonalAnalyzer{} }

func (seasonalAnalyzer) Type() domain.ReportType { return domain.ReportSeasonal }

func (seasonalAnalyzer) Title() string { return "Seasonal Cropping Pattern" }

func (seasonalAnalyzer) Detail() DetailSpec {
	return DetailSpec{
		Title:   "Seasonal Crop Distribution",
		Columns: []string{"Season", "Season Area (ha)", "Crop", "Crop Area (ha)", "Percentage (%)"},
		Chart:   &domain.ChartSpec{LabelColumn: 2, ValueColumn: 3, ValueLabel: "Crop Area (ha)"},
	}
}

func (seasonalAnalyzer) Indicators() []Indicator {
	return []Indicator{totalCroppedArea, kharifShare, rabiShare, zaidShare, cropDiversity}
}

func (seasonalAnalyzer) KeyMetric() string { return totalCroppedArea.Key }

func (seasonalAnalyzer) Rows(snap domain.MetricSnapshot, season domain.Season) ([][]any, error) {
	c := snap.Cropping
	if c == nil {
		return nil, fmt.Errorf("cropping: %w", domain.ErrNoData)
	}
	var rows [][]any
	for _, sc := range c.Seasons {
		if season != domain.SeasonAll && sc.Season != season {
			continue
		}
		for _, crop := range sc.Crops {
			rows = append(rows, []any{
				sc.Season.Title(),
				sc.Area,
				metrics.Title(crop.Name),
				metrics.PortionOf(sc.Area, crop.Percentage),
				crop.Percentage,
			})
		}
	}
	if len(rows) == 0 && season != domain.SeasonAll {
		return nil, fmt.Errorf("cropping %s: %w", season, domain.ErrNoData)
	}
	return rows, nil
}

func (seasonalAnalyzer) Metrics(snap domain.MetricSnapshot, _ domain.Season) ([]domain.DerivedMetric, error) {
	c := snap.Cropping
	if c == nil {
		return nil, fmt.Errorf("cropping: %w", domain.ErrNoData)
	}
	out := []domain.DerivedMetric{derived(totalCroppedArea, domain.Num(c.TotalCroppedArea))}
	for _, s := range domain.Seasons {
		v := domain.NA
		if sc, ok := c.Season(s); ok {
			v = metrics.PercentageOf(sc.Area, c.TotalCroppedArea)
		}
		out = append(out, derived(seasonShares[s], v))
	}

	areas := cropAreas(c)
	shares := make([]float64, 0, len(areas))
	for _, a := range areas {
		shares = append(shares, a.area)
	}
	out = append(out, classified(cropDiversity, metrics.SimpsonDiversity(shares), metrics.CropDiversity))
	return out, nil
}

func (a seasonalAnalyzer) Summary(snap domain.MetricSnapshot, season domain.Season) []domain.SummaryLine {
	c := snap.Cropping
	if c == nil {
		return nil
	}
	lines := []domain.SummaryLine{{Label: totalCroppedArea.Label, Value: compact(c.TotalCroppedArea, "ha")}}
	for _, sc := range c.Seasons {
		if season != domain.SeasonAll && sc.Season != season {
			continue
		}
		lines = append(lines, domain.SummaryLine{
			Label: sc.Season.Title() + " Area",
			Value: fmt.Sprintf("%s (%s)", compact(sc.Area, "ha"), withUnit(metrics.PercentageOf(sc.Area, c.TotalCroppedArea), "%")),
		})
	}
	if areas := cropAreas(c); len(areas) > 0 {
		lines = append(lines, domain.SummaryLine{
			Label: "Dominant Crop",
			Value: fmt.Sprintf("%s (%s)", metrics.Title(areas[0].name), compact(areas[0].area, "ha")),
		})
	}
	ms, _ := a.Metrics(snap, season)
	if m, ok := findMetric(ms, cropDiversity.Key); ok && m.Value.Valid {
		lines = append(lines, domain.SummaryLine{Label: m.Label, Value: fmt.Sprintf("%s (%s)", m.Value, m.Class)})
	}
	return lines
}

type cropArea struct {
	name string
	area float64
}

// cropAreas sums each crop's area across seasons, largest first.
func cropAreas(c *domain.Cropping) []cropArea {
	var order []string
	byName := make(map[string]float64)
	for _, sc := range c.Seasons {
		for _, crop := range sc.Crops {
			key := normalizeName(crop.Name)
			if _, ok := byName[key]; !ok {
				order = append(order, key)
			}
			byName[key] += metrics.PortionOf(sc.Area, crop.Percentage)
		}
	}
	out := make([]cropArea, 0, len(order))
	for _, name := range order {
		out = append(out, cropArea{name: name, area: byName[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].area > out[j].area })
	return out
}
