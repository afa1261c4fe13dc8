package domain

import "time"

type ReportType string

const (
	ReportSeasonal    ReportType = "seasonal"
	ReportLandHolding ReportType = "landholding"
	ReportIrrigation  ReportType = "irrigation"
	ReportGroundwater ReportType = "groundwater"
)

type SectionKind int

const (
	SectionHeading SectionKind = iota
	SectionTable
	SectionNarrative
)

func (k SectionKind) String() string {
	switch k {
	case SectionHeading:
		return "heading"
	case SectionTable:
		return "table"
	case SectionNarrative:
		return "narrative"
	}
	return "unknown"
}

// ChartSpec marks the table columns a chart encoder plots.
type ChartSpec struct {
	LabelColumn int
	ValueColumn int
	ValueLabel  string
}

// Table holds rows of cells. Cells are string, int, int64, float64 or Number.
type Table struct {
	Columns []string
	Rows    [][]any
	Chart   *ChartSpec
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Kind  SectionKind
	Title string
	Table *Table
	Text  string
}

// SummaryLine is rendered as "Label: Value" in the trailing summary block.
type SummaryLine struct {
	Label string
	Value string
}

// RegionMetrics carries the derived metrics of one region in the selection.
type RegionMetrics struct {
	Region  Region
	Metrics []DerivedMetric
	Rank    int // 1-based position by the report's key metric, 0 when unranked
	NoData  bool
}

// Report is the in-memory document built for one selection before it is
// serialised by an encoder.
type Report struct {
	ID          string
	Type        ReportType
	Title       string
	Selection   Selection
	GeneratedAt time.Time
	Sections    []ReportSection
	Summary     []SummaryLine
	Alerts      []Alert
	Regions     []RegionMetrics
}

// Tables returns the table sections in document order.
func (r *Report) Tables() []ReportSection {
	var tables []ReportSection
	for _, s := range r.Sections {
		if s.Kind == SectionTable && s.Table != nil {
			tables = append(tables, s)
		}
	}
	return tables
}

// RowCount is the number of data rows across all tables.
func (r *Report) RowCount() int {
	n := 0
	for _, s := range r.Tables() {
		n += len(s.Table.Rows)
	}
	return n
}
