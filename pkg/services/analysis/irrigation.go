package analysis

import (
	"fmt"
	"strings"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

var (
	netIrrigatedArea      = Indicator{Key: "irrigation.net_irrigated_area", Label: "Net Irrigated Area", Unit: "ha"}
	grossIrrigatedArea    = Indicator{Key: "irrigation.gross_irrigated_area", Label: "Gross Irrigated Area", Unit: "ha"}
	irrigationIntensity   = Indicator{Key: "irrigation.intensity", Label: "Irrigation Intensity", Unit: "%"}
	groundwaterDependence = Indicator{Key: "irrigation.groundwater_dependence", Label: "Groundwater Dependence", Unit: "%"}
)

type irrigationAnalyzer struct{}

func NewIrrigationAnalyzer() Analyzer { return irrigationAnalyzer{} }

func (irrigationAnalyzer) Type() domain.ReportType { return domain.ReportIrrigation }

func (irrigationAnalyzer) Title() string { return "Irrigation Sources" }

func (irrigationAnalyzer) Detail() DetailSpec {
	return DetailSpec{
		Title:   "Net Irrigated Area by Source",
		Columns: []string{"Source", "Irrigated Area (ha)", "Share (%)"},
		Chart:   &domain.ChartSpec{LabelColumn: 0, ValueColumn: 2, ValueLabel: "Share (%)"},
	}
}

func (irrigationAnalyzer) Indicators() []Indicator {
	return []Indicator{netIrrigatedArea, grossIrrigatedArea, irrigationIntensity, groundwaterDependence}
}

func (irrigationAnalyzer) KeyMetric() string { return groundwaterDependence.Key }

func (irrigationAnalyzer) Rows(snap domain.MetricSnapshot, _ domain.Season) ([][]any, error) {
	irr := snap.Irrigation
	if irr == nil {
		return nil, fmt.Errorf("irrigation: %w", domain.ErrNoData)
	}
	sources := metrics.CollapseSources(irr.Sources)
	rows := make([][]any, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []any{metrics.Title(s.Source), s.Area, s.Percentage})
	}
	return rows, nil
}

func (irrigationAnalyzer) Metrics(snap domain.MetricSnapshot, _ domain.Season) ([]domain.DerivedMetric, error) {
	irr := snap.Irrigation
	if irr == nil {
		return nil, fmt.Errorf("irrigation: %w", domain.ErrNoData)
	}
	dependence := domain.NA
	if len(irr.Sources) > 0 {
		pct := 0.0
		for _, s := range metrics.CollapseSources(irr.Sources) {
			if isGroundwaterSource(s.Source) {
				pct += s.Percentage
			}
		}
		dependence = domain.Num(pct)
	}
	return []domain.DerivedMetric{
		derived(netIrrigatedArea, domain.Num(irr.NetIrrigatedArea)),
		derived(grossIrrigatedArea, domain.Num(irr.GrossIrrigatedArea)),
		derived(irrigationIntensity, metrics.PercentageOf(irr.GrossIrrigatedArea, irr.NetIrrigatedArea)),
		classified(groundwaterDependence, dependence, metrics.GroundwaterDependence),
	}, nil
}

func (a irrigationAnalyzer) Summary(snap domain.MetricSnapshot, season domain.Season) []domain.SummaryLine {
	irr := snap.Irrigation
	if irr == nil {
		return nil
	}
	lines := []domain.SummaryLine{
		{Label: netIrrigatedArea.Label, Value: compact(irr.NetIrrigatedArea, "ha")},
		{Label: grossIrrigatedArea.Label, Value: compact(irr.GrossIrrigatedArea, "ha")},
	}
	ms, _ := a.Metrics(snap, season)
	if m, ok := findMetric(ms, irrigationIntensity.Key); ok {
		lines = append(lines, domain.SummaryLine{Label: m.Label, Value: withUnit(m.Value, m.Unit)})
	}
	if m, ok := findMetric(ms, groundwaterDependence.Key); ok && m.Value.Valid {
		lines = append(lines, domain.SummaryLine{Label: m.Label, Value: fmt.Sprintf("%s (%s)", withUnit(m.Value, m.Unit), m.Class)})
	}
	return lines
}

// isGroundwaterSource reports whether an irrigation source draws on
// groundwater: tubewells, dug wells and other wells.
func isGroundwaterSource(source string) bool {
	name := normalizeName(source)
	return strings.Contains(name, "well") || strings.Contains(name, "tube") || strings.Contains(name, "bore")
}
