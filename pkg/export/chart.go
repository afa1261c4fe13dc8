package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

type chartEncoder struct {
	width, height vg.Length
}

// NewChartEncoder draws the first chartable table of the document as a PNG
// bar chart. A document without rows yields an empty, titled chart.
func NewChartEncoder() Encoder {
	return chartEncoder{width: 10 * vg.Inch, height: 6 * vg.Inch}
}

func (chartEncoder) Format() Format    { return FormatPNG }
func (chartEncoder) Extension() string { return "png" }
func (chartEncoder) MimeType() string  { return "image/png" }

func (e chartEncoder) Encode(w io.Writer, doc *domain.Report) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s", doc.Title, doc.Selection)
	p.Title.TextStyle.Font.Size = vg.Points(14)

	section, ok := chartSection(doc)
	if !ok || len(section.Table.Rows) == 0 {
		p.X.Label.Text = "No data available"
		p.Y.Min, p.Y.Max = 0, 1
	} else {
		spec := section.Table.Chart
		values := make(plotter.Values, 0, len(section.Table.Rows))
		labels := make([]string, 0, len(section.Table.Rows))
		for _, row := range section.Table.Rows {
			if spec.LabelColumn >= len(row) || spec.ValueColumn >= len(row) {
				continue
			}
			values = append(values, chartValue(row[spec.ValueColumn]))
			labels = append(labels, metrics.FormatValue(row[spec.LabelColumn]))
		}
		if len(values) == 0 {
			return fmt.Errorf("table %q has no plottable rows", section.Title)
		}

		bars, err := plotter.NewBarChart(values, vg.Points(24))
		if err != nil {
			return fmt.Errorf("failed to build bar chart: %w", err)
		}
		bars.Color = color.RGBA{R: 47, G: 133, B: 90, A: 255}
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars, plotter.NewGrid())

		p.NominalX(labels...)
		p.X.Label.Text = section.Title
		p.Y.Label.Text = spec.ValueLabel
		p.Y.Min = 0
		if len(labels) > 6 {
			p.X.Tick.Label.Rotation = math.Pi / 4
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
		}
	}

	wt, err := p.WriterTo(e.width, e.height, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func chartSection(doc *domain.Report) (domain.ReportSection, bool) {
	for _, s := range doc.Tables() {
		if s.Table.Chart != nil {
			return s, true
		}
	}
	return domain.ReportSection{}, false
}

// chartValue plots N/A and non-numeric cells as zero.
func chartValue(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case domain.Number:
		if val.Valid {
			return val.Value
		}
	}
	return 0
}
