package analysis

import (
	"fmt"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

var (
	totalHoldings      = Indicator{Key: "landholding.total_holdings", Label: "Total Holdings", Unit: "holdings"}
	totalOperatedArea  = Indicator{Key: "landholding.total_area", Label: "Operated Area", Unit: "ha"}
	averageHoldingSize = Indicator{Key: "landholding.average_holding_size", Label: "Average Holding Size", Unit: "ha"}
	marginalShare      = Indicator{Key: "landholding.marginal_share", Label: "Marginal Holdings", Unit: "%"}
	fragmentationIndex = Indicator{Key: "landholding.fragmentation_index", Label: "Fragmentation Index", Unit: "%"}
)

type landHoldingAnalyzer struct{}

func NewLandHoldingAnalyzer() Analyzer { return landHoldingAnalyzer{} }

func (landHoldingAnalyzer) Type() domain.ReportType { return domain.ReportLandHolding }

func (landHoldingAnalyzer) Title() string { return "Land Holding Distribution" }

func (landHoldingAnalyzer) Detail() DetailSpec {
	return DetailSpec{
		Title:   "Holdings by Size Class",
		Columns: []string{"Category", "Holdings", "Area (ha)", "Holdings (%)", "Area (%)", "Average Size (ha)"},
		Chart:   &domain.ChartSpec{LabelColumn: 0, ValueColumn: 3, ValueLabel: "Holdings (%)"},
	}
}

func (landHoldingAnalyzer) Indicators() []Indicator {
	return []Indicator{totalHoldings, totalOperatedArea, averageHoldingSize, marginalShare, fragmentationIndex}
}

func (landHoldingAnalyzer) KeyMetric() string { return fragmentationIndex.Key }

func (landHoldingAnalyzer) Rows(snap domain.MetricSnapshot, _ domain.Season) ([][]any, error) {
	lh := snap.LandHoldings
	if lh == nil {
		return nil, fmt.Errorf("land holdings: %w", domain.ErrNoData)
	}
	rows := make([][]any, 0, len(lh.Categories))
	for _, c := range lh.Categories {
		rows = append(rows, []any{
			metrics.Title(c.Name),
			c.Count,
			c.Area,
			c.Percentage,
			metrics.PercentageOf(c.Area, lh.TotalArea),
			metrics.Ratio(c.Area, float64(c.Count)),
		})
	}
	return rows, nil
}

func (landHoldingAnalyzer) Metrics(snap domain.MetricSnapshot, _ domain.Season) ([]domain.DerivedMetric, error) {
	lh := snap.LandHoldings
	if lh == nil {
		return nil, fmt.Errorf("land holdings: %w", domain.ErrNoData)
	}

	marginal, hasMarginal := category(lh, "marginal")
	small, hasSmall := category(lh, "small")
	fragmentation := domain.NA
	if hasMarginal || hasSmall {
		fragmentation = domain.Num(marginal.Percentage + small.Percentage)
	}
	marginalPct := domain.NA
	if hasMarginal {
		marginalPct = domain.Num(marginal.Percentage)
	}

	return []domain.DerivedMetric{
		derived(totalHoldings, domain.Num(float64(lh.TotalHoldings))),
		derived(totalOperatedArea, domain.Num(lh.TotalArea)),
		derived(averageHoldingSize, metrics.Ratio(lh.TotalArea, float64(lh.TotalHoldings))),
		derived(marginalShare, marginalPct),
		classified(fragmentationIndex, fragmentation, metrics.Fragmentation),
	}, nil
}

func (a landHoldingAnalyzer) Summary(snap domain.MetricSnapshot, season domain.Season) []domain.SummaryLine {
	lh := snap.LandHoldings
	if lh == nil {
		return nil
	}
	lines := []domain.SummaryLine{
		{Label: totalHoldings.Label, Value: compact(float64(lh.TotalHoldings), "")},
		{Label: totalOperatedArea.Label, Value: compact(lh.TotalArea, "ha")},
	}
	ms, _ := a.Metrics(snap, season)
	if m, ok := findMetric(ms, averageHoldingSize.Key); ok {
		lines = append(lines, domain.SummaryLine{Label: m.Label, Value: withUnit(m.Value, m.Unit)})
	}
	if m, ok := findMetric(ms, fragmentationIndex.Key); ok && m.Value.Valid {
		lines = append(lines, domain.SummaryLine{Label: m.Label, Value: fmt.Sprintf("%s (%s)", withUnit(m.Value, m.Unit), m.Class)})
	}
	return lines
}

func category(lh *domain.LandHoldings, name string) (domain.Breakdown, bool) {
	for _, c := range lh.Categories {
		if normalizeName(c.Name) == name {
			return c, true
		}
	}
	return domain.Breakdown{}, false
}
