package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

type TableConfig struct {
	MinWidth int
	MaxWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MinWidth: 6,
		MaxWidth: 40,
	}
}

// Reporter prints report documents and listings to a terminal as plain-text
// tables.
type Reporter struct {
	writer io.Writer
	config TableConfig
	tmpl   *template.Template
}

type sectionView struct {
	Title  string
	Text   string
	Table  bool
	Widths []int
	Header []string
	Rows   [][]string
}

type reportView struct {
	Title     string
	Selection string
	Generated string
	Sections  []sectionView
	Summary   []domain.SummaryLine
	Alerts    []domain.Alert
}

const reportTemplate = `
{{.Title}}
Selection: {{.Selection}}
Generated: {{.Generated}}
{{range .Sections}}{{if .Table}}
--- {{.Title}} ---
{{template "table" .}}{{else if .Title}}
=== {{.Title}} ===
{{if .Text}}{{.Text}}
{{end}}{{else if .Text}}
{{.Text}}
{{end}}{{end}}{{if .Summary}}
Summary
{{range .Summary}}  {{.Label}}: {{.Value}}
{{end}}{{end}}{{if .Alerts}}
Alerts
{{range .Alerts}}  [{{upper .Severity.String}}] {{.Region}}: {{.Message}}
{{if .Recommendation}}    -> {{.Recommendation}}
{{end}}{{end}}{{end}}`

const tableTemplate = `{{define "table"}}{{$w := .Widths}}{{separator $w}}
{{formatRow $w .Header}}
{{separator $w}}
{{range .Rows}}{{formatRow $w .}}
{{end}}{{separator $w}}
{{end}}`

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	r := &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}

	funcMap := template.FuncMap{
		"formatRow": formatRow,
		"separator": separator,
		"upper":     strings.ToUpper,
	}
	r.tmpl = template.Must(template.New("terminal").Funcs(funcMap).Parse(tableTemplate))
	template.Must(r.tmpl.New("report").Parse(reportTemplate))
	return r
}

// Handle renders a full report: sections in document order, then the
// summary block and any alerts.
func (r *Reporter) Handle(report *domain.Report) error {
	view := reportView{
		Title:     report.Title,
		Selection: report.Selection.String(),
		Generated: report.GeneratedAt.Format("2006-01-02 15:04"),
		Summary:   report.Summary,
		Alerts:    report.Alerts,
	}
	for _, s := range report.Sections {
		sv := sectionView{Title: s.Title, Text: s.Text}
		if s.Kind == domain.SectionTable && s.Table != nil {
			r.fillTable(&sv, s.Table.Columns, cellRows(s.Table.Rows))
		}
		view.Sections = append(view.Sections, sv)
	}

	if err := r.tmpl.ExecuteTemplate(r.writer, "report", view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// Table prints a bare table, used by the listing commands.
func (r *Reporter) Table(columns []string, rows [][]string) error {
	var sv sectionView
	r.fillTable(&sv, columns, rows)
	if err := r.tmpl.ExecuteTemplate(r.writer, "table", sv); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func (r *Reporter) fillTable(sv *sectionView, columns []string, rows [][]string) {
	sv.Table = true
	sv.Header = columns
	sv.Rows = rows
	sv.Widths = make([]int, len(columns))
	for i, c := range columns {
		sv.Widths[i] = max(r.config.MinWidth, utf8.RuneCountInString(c))
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(sv.Widths); i++ {
			sv.Widths[i] = max(sv.Widths[i], utf8.RuneCountInString(row[i]))
		}
	}
	for i := range sv.Widths {
		sv.Widths[i] = min(sv.Widths[i], r.config.MaxWidth)
	}
}

func cellRows(rows [][]any) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = metrics.FormatValue(v)
		}
		out = append(out, cells)
	}
	return out
}

func formatRow(widths []int, cells []string) string {
	var b strings.Builder
	b.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(" ")
		b.WriteString(pad(cell, w))
		b.WriteString(" |")
	}
	return b.String()
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	return b.String()
}

// pad left-aligns s in w runes, truncating with "~" when it does not fit.
func pad(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n > w {
		runes := []rune(s)
		return string(runes[:w-1]) + "~"
	}
	return s + strings.Repeat(" ", w-n)
}
