package export

import (
	"html/template"
	"io"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

const htmlReport = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; margin: 32px; color: #1f2933; }
header { border-bottom: 3px solid #2f855a; margin-bottom: 24px; padding-bottom: 12px; }
h1 { color: #22543d; margin: 0 0 8px; }
h2 { color: #2f855a; margin-top: 28px; }
h3 { color: #276749; }
.meta { color: #52606d; font-size: 14px; margin: 2px 0; }
table { border-collapse: collapse; width: 100%; margin: 12px 0 24px; }
th, td { border: 1px solid #cbd2d9; padding: 8px 10px; text-align: left; }
th { background: #2f855a; color: #ffffff; }
tr:nth-child(even) td { background: #f0fff4; }
.empty { color: #9aa5b1; font-style: italic; }
.summary li { margin: 4px 0; }
.alerts { border: 1px solid #f6ad55; background: #fffaf0; padding: 12px 20px; margin-top: 24px; }
.alert { margin: 10px 0; }
.severity { font-weight: bold; text-transform: uppercase; }
.severity-critical { color: #c53030; }
.severity-high { color: #dd6b20; }
.severity-medium { color: #b7791f; }
.severity-low { color: #2b6cb0; }
.recommendation { color: #52606d; font-size: 14px; }
footer { margin-top: 32px; color: #9aa5b1; font-size: 12px; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p class="meta">Filters: {{.Selection}}</p>
<p class="meta">View: {{if .Selection.ViewMode}}{{.Selection.ViewMode}}{{else}}overview{{end}}</p>
<p class="meta">Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>
</header>
{{range .Sections}}
{{- if isHeading .}}<h2>{{.Title}}</h2>
{{if .Text}}<p class="meta">{{.Text}}</p>
{{end}}
{{- else if isTable .}}{{if .Title}}<h3>{{.Title}}</h3>
{{end}}<table>
<thead><tr>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Table.Rows}}
<tr>{{range .}}<td>{{cell .}}</td>{{end}}</tr>
{{- else}}
<tr><td class="empty" colspan="{{len .Table.Columns}}">No rows</td></tr>
{{- end}}
</tbody>
</table>
{{else}}<p>{{.Text}}</p>
{{end}}
{{- end}}
{{- if .Summary}}
<h2>Summary</h2>
<ul class="summary">
{{- range .Summary}}
<li><strong>{{.Label}}:</strong> {{.Value}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .Alerts}}
<section class="alerts">
<h2>Alerts</h2>
{{- range .Alerts}}
<div class="alert">
<span class="severity severity-{{.Severity}}">{{.Severity}}</span> {{.Message}}
{{- if .Recommendation}}
<div class="recommendation">Recommendation: {{.Recommendation}}</div>
{{- end}}
</div>
{{- end}}
</section>
{{- end}}
<footer>Report ID {{.ID}}</footer>
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"cell":      metrics.FormatValue,
	"isHeading": func(s domain.ReportSection) bool { return s.Kind == domain.SectionHeading },
	"isTable":   func(s domain.ReportSection) bool { return s.Kind == domain.SectionTable && s.Table != nil },
}).Parse(htmlReport))

type htmlEncoder struct{}

// NewHTMLEncoder renders a standalone HTML document with inline styles. The
// alert block is only rendered when the document carries alerts.
func NewHTMLEncoder() Encoder { return htmlEncoder{} }

func (htmlEncoder) Format() Format    { return FormatHTML }
func (htmlEncoder) Extension() string { return "html" }
func (htmlEncoder) MimeType() string  { return "text/html;charset=utf-8" }

func (htmlEncoder) Encode(w io.Writer, doc *domain.Report) error {
	return htmlTemplate.Execute(w, doc)
}
