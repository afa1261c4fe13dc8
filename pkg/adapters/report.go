package adapters

import (
	"github.com/de-tools/agri-atlas/pkg/models/api"
	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

func MapRegionDomainToApi(r domain.Region) api.Region {
	return api.Region{
		ID:        r.ID,
		Name:      r.Name,
		LocalName: r.LocalName,
		Lat:       r.Lat,
		Lon:       r.Lon,
	}
}

func MapSelectionDomainToApi(s domain.Selection) api.Selection {
	region := s.Region
	if s.IsAllRegions() {
		region = domain.AllRegions
	}
	view := s.ViewMode
	if view == "" {
		view = domain.ViewOverview
	}
	return api.Selection{
		Region: region,
		Year:   s.Year,
		Season: string(s.Season),
		View:   string(view),
	}
}

func MapMetricDomainToApi(m domain.DerivedMetric) api.Metric {
	out := api.Metric{
		Key:     m.Key,
		Label:   m.Label,
		Display: m.Value.String(),
		Unit:    m.Unit,
		Class:   m.Class,
	}
	if m.Value.Valid {
		v := m.Value.Value
		out.Value = &v
	}
	return out
}

func MapReportDomainToApi(r *domain.Report) api.Report {
	out := api.Report{
		ID:          r.ID,
		Type:        string(r.Type),
		Title:       r.Title,
		Selection:   MapSelectionDomainToApi(r.Selection),
		GeneratedAt: r.GeneratedAt,
		Sections:    make([]api.Section, 0, len(r.Sections)),
		Summary:     make([]api.SummaryLine, 0, len(r.Summary)),
		Alerts:      make([]api.Alert, 0, len(r.Alerts)),
		Regions:     make([]api.RegionMetrics, 0, len(r.Regions)),
	}

	for _, s := range r.Sections {
		section := api.Section{Kind: s.Kind.String(), Title: s.Title, Text: s.Text}
		if s.Table != nil {
			table := &api.Table{Columns: s.Table.Columns, Rows: make([][]string, 0, len(s.Table.Rows))}
			for _, row := range s.Table.Rows {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = metrics.FormatValue(v)
				}
				table.Rows = append(table.Rows, cells)
			}
			section.Table = table
		}
		out.Sections = append(out.Sections, section)
	}
	for _, l := range r.Summary {
		out.Summary = append(out.Summary, api.SummaryLine{Label: l.Label, Value: l.Value})
	}
	for _, a := range r.Alerts {
		out.Alerts = append(out.Alerts, api.Alert{
			ID:             a.ID,
			Region:         a.Region.ID,
			Metric:         a.Metric,
			Severity:       a.Severity.String(),
			Message:        a.Message,
			Recommendation: a.Recommendation,
		})
	}
	for _, rm := range r.Regions {
		ms := make([]api.Metric, 0, len(rm.Metrics))
		for _, m := range rm.Metrics {
			ms = append(ms, MapMetricDomainToApi(m))
		}
		out.Regions = append(out.Regions, api.RegionMetrics{
			Region:  MapRegionDomainToApi(rm.Region),
			Rank:    rm.Rank,
			NoData:  rm.NoData,
			Metrics: ms,
		})
	}
	return out
}
