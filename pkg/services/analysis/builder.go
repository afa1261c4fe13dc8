package analysis

import (
	"time"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

// TableBuilder accumulates rows for one table section.
type TableBuilder struct {
	table domain.Table
}

func NewTable(columns ...string) *TableBuilder {
	return &TableBuilder{table: domain.Table{Columns: columns}}
}

func (t *TableBuilder) Row(cells ...any) *TableBuilder {
	t.table.Rows = append(t.table.Rows, cells)
	return t
}

func (t *TableBuilder) Rows(rows [][]any) *TableBuilder {
	t.table.Rows = append(t.table.Rows, rows...)
	return t
}

func (t *TableBuilder) Chart(spec *domain.ChartSpec) *TableBuilder {
	t.table.Chart = spec
	return t
}

func (t *TableBuilder) Build() *domain.Table {
	tbl := t.table
	return &tbl
}

// DocumentBuilder assembles a report section by section.
type DocumentBuilder struct {
	doc domain.Report
}

func NewDocument(id string, t domain.ReportType, title string, sel domain.Selection, at time.Time) *DocumentBuilder {
	return &DocumentBuilder{doc: domain.Report{
		ID:          id,
		Type:        t,
		Title:       title,
		Selection:   sel,
		GeneratedAt: at,
	}}
}

func (b *DocumentBuilder) Heading(title, text string) *DocumentBuilder {
	b.doc.Sections = append(b.doc.Sections, domain.ReportSection{Kind: domain.SectionHeading, Title: title, Text: text})
	return b
}

func (b *DocumentBuilder) Table(title string, t *TableBuilder) *DocumentBuilder {
	b.doc.Sections = append(b.doc.Sections, domain.ReportSection{Kind: domain.SectionTable, Title: title, Table: t.Build()})
	return b
}

func (b *DocumentBuilder) Narrative(text string) *DocumentBuilder {
	b.doc.Sections = append(b.doc.Sections, domain.ReportSection{Kind: domain.SectionNarrative, Text: text})
	return b
}

func (b *DocumentBuilder) Summary(lines ...domain.SummaryLine) *DocumentBuilder {
	b.doc.Summary = append(b.doc.Summary, lines...)
	return b
}

func (b *DocumentBuilder) Alerts(alerts ...domain.Alert) *DocumentBuilder {
	b.doc.Alerts = append(b.doc.Alerts, alerts...)
	return b
}

func (b *DocumentBuilder) Region(rm domain.RegionMetrics) *DocumentBuilder {
	b.doc.Regions = append(b.doc.Regions, rm)
	return b
}

func (b *DocumentBuilder) Build() *domain.Report {
	doc := b.doc
	return &doc
}
