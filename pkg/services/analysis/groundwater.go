package analysis

import (
	"fmt"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

var (
	annualAvailability = Indicator{Key: "groundwater.annual_availability", Label: "Annual Extractable Resource", Unit: "ham"}
	annualExtraction   = Indicator{Key: "groundwater.annual_extraction", Label: "Annual Extraction", Unit: "ham"}
	stageOfExtraction  = Indicator{Key: "groundwater.stage_of_extraction", Label: "Stage of Extraction", Unit: "%"}
	averageDepth       = Indicator{Key: "groundwater.average_depth", Label: "Average Water Level", Unit: "m bgl"}
)

type groundwaterAnalyzer struct{}

func NewGroundwaterAnalyzer() Analyzer { return groundwaterAnalyzer{} }

func (groundwaterAnalyzer) Type() domain.ReportType { return domain.ReportGroundwater }

func (groundwaterAnalyzer) Title() string { return "Groundwater Status" }

func (groundwaterAnalyzer) Detail() DetailSpec {
	return DetailSpec{
		Title:   "Observation Wells by Depth to Water",
		Columns: []string{"Depth Range", "Wells", "Share (%)"},
		Chart:   &domain.ChartSpec{LabelColumn: 0, ValueColumn: 2, ValueLabel: "Share (%)"},
	}
}

func (groundwaterAnalyzer) Indicators() []Indicator {
	return []Indicator{annualAvailability, annualExtraction, stageOfExtraction, averageDepth}
}

func (groundwaterAnalyzer) KeyMetric() string { return stageOfExtraction.Key }

func (groundwaterAnalyzer) Rows(snap domain.MetricSnapshot, _ domain.Season) ([][]any, error) {
	gw := snap.Groundwater
	if gw == nil {
		return nil, fmt.Errorf("groundwater: %w", domain.ErrNoData)
	}
	rows := make([][]any, 0, len(gw.DepthRanges))
	for _, d := range gw.DepthRanges {
		rows = append(rows, []any{d.Range, d.Count, d.Percentage})
	}
	return rows, nil
}

func (groundwaterAnalyzer) Metrics(snap domain.MetricSnapshot, _ domain.Season) ([]domain.DerivedMetric, error) {
	gw := snap.Groundwater
	if gw == nil {
		return nil, fmt.Errorf("groundwater: %w", domain.ErrNoData)
	}
	return []domain.DerivedMetric{
		derived(annualAvailability, domain.Num(gw.AnnualAvailability)),
		derived(annualExtraction, domain.Num(gw.AnnualExtraction)),
		classified(stageOfExtraction, metrics.PercentageOf(gw.AnnualExtraction, gw.AnnualAvailability), metrics.GroundwaterStress),
		derived(averageDepth, domain.Num(gw.AverageDepth)),
	}, nil
}

func (a groundwaterAnalyzer) Summary(snap domain.MetricSnapshot, season domain.Season) []domain.SummaryLine {
	gw := snap.Groundwater
	if gw == nil {
		return nil
	}
	lines := []domain.SummaryLine{
		{Label: annualAvailability.Label, Value: compact(gw.AnnualAvailability, "ham")},
		{Label: annualExtraction.Label, Value: compact(gw.AnnualExtraction, "ham")},
	}
	ms, _ := a.Metrics(snap, season)
	if m, ok := findMetric(ms, stageOfExtraction.Key); ok {
		value := withUnit(m.Value, m.Unit)
		if m.Class != "" {
			value = fmt.Sprintf("%s (%s)", value, m.Class)
		}
		lines = append(lines, domain.SummaryLine{Label: m.Label, Value: value})
	}
	lines = append(lines, domain.SummaryLine{Label: averageDepth.Label, Value: withUnit(domain.Num(gw.AverageDepth), averageDepth.Unit)})
	return lines
}
