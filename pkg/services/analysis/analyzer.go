// Package analysis turns dataset snapshots into report documents. Each report
// family has an Analyzer; the Service resolves the selection against a
// dataset.Provider and assembles the document.
package analysis

import (
	"errors"
	"strings"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

var (
	ErrUnknownReport    = errors.New("unknown report type")
	ErrInvalidSelection = errors.New("invalid selection")
)

// Indicator describes one derived metric a family produces.
type Indicator struct {
	Key   string
	Label string
	Unit  string
}

// Heading is the indicator label with its unit, used as a column header.
func (i Indicator) Heading() string {
	switch i.Unit {
	case "", "holdings":
		return i.Label
	}
	return i.Label + " (" + i.Unit + ")"
}

// DetailSpec describes the family's breakdown table.
type DetailSpec struct {
	Title   string
	Columns []string
	Chart   *domain.ChartSpec
}

// Analyzer derives one report family from a snapshot. Methods return an
// error wrapping domain.ErrNoData when the snapshot lacks the family block.
type Analyzer interface {
	Type() domain.ReportType
	Title() string
	Detail() DetailSpec
	// Indicators lists the metrics returned by Metrics, in the same order.
	Indicators() []Indicator
	// KeyMetric is the indicator key regions are ranked by.
	KeyMetric() string
	Rows(snap domain.MetricSnapshot, season domain.Season) ([][]any, error)
	Metrics(snap domain.MetricSnapshot, season domain.Season) ([]domain.DerivedMetric, error)
	Summary(snap domain.MetricSnapshot, season domain.Season) []domain.SummaryLine
}

func derived(ind Indicator, v domain.Number) domain.DerivedMetric {
	return domain.DerivedMetric{Key: ind.Key, Label: ind.Label, Value: v, Unit: ind.Unit}
}

func classified(ind Indicator, v domain.Number, t metrics.Table) domain.DerivedMetric {
	m := derived(ind, v)
	if v.Valid {
		c := metrics.Classify(v.Value, t)
		m.Class = c.Label
		m.Rank = c.Rank
	}
	return m
}

// findMetric returns the metric with key, or false.
func findMetric(ms []domain.DerivedMetric, key string) (domain.DerivedMetric, bool) {
	for _, m := range ms {
		if m.Key == key {
			return m, true
		}
	}
	return domain.DerivedMetric{}, false
}

// normalizeName folds dataset category names so "Semi-Medium", "semi medium"
// and "semi_medium" compare equal.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

func withUnit(v domain.Number, unit string) string {
	if !v.Valid {
		return domain.NotAvailable
	}
	switch unit {
	case "":
		return v.String()
	case "%":
		return v.String() + "%"
	}
	return v.String() + " " + unit
}

func compact(v float64, unit string) string {
	s := metrics.FormatCompact(v)
	if unit == "" {
		return s
	}
	return s + " " + unit
}
