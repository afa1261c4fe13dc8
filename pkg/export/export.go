// Package export serialises report documents into downloadable artifacts.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLS     Format = "xls"
	FormatHTML    Format = "html"
	FormatGeoJSON Format = "geojson"
	FormatXLSX    Format = "xlsx"
	FormatPNG     Format = "png"
)

func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatCSV, FormatXLS, FormatHTML, FormatGeoJSON, FormatXLSX, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Encoder writes a report in one file format. Encoders never mutate the
// document.
type Encoder interface {
	Format() Format
	Extension() string
	MimeType() string
	Encode(w io.Writer, doc *domain.Report) error
}

// Exporter dispatches documents to the encoder registered for a format.
type Exporter struct {
	encoders map[Format]Encoder
}

// NewExporter registers encoders by format. It fails on duplicates.
func NewExporter(encoders ...Encoder) (*Exporter, error) {
	e := &Exporter{encoders: make(map[Format]Encoder)}
	for _, enc := range encoders {
		f := enc.Format()
		if _, exists := e.encoders[f]; exists {
			return nil, fmt.Errorf("duplicate encoder for format: %s", f)
		}
		e.encoders[f] = enc
	}
	if len(e.encoders) == 0 {
		return nil, fmt.Errorf("at least one encoder must be provided")
	}
	return e, nil
}

// DefaultExporter supports every built-in format.
func DefaultExporter() *Exporter {
	e, err := NewExporter(
		NewCSVEncoder(),
		NewXLSEncoder(),
		NewHTMLEncoder(),
		NewGeoJSONEncoder(),
		NewXLSXEncoder(),
		NewChartEncoder(),
	)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Exporter) Formats() []Format {
	out := make([]Format, 0, len(e.encoders))
	for f := range e.encoders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Export encodes doc completely before returning. On error no artifact is
// produced.
func (e *Exporter) Export(doc *domain.Report, format Format) (domain.ExportArtifact, error) {
	enc, ok := e.encoders[format]
	if !ok {
		return domain.ExportArtifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if doc == nil {
		return domain.ExportArtifact{}, fmt.Errorf("cannot export a nil report")
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, doc); err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("failed to encode %s report as %s: %w", doc.Type, format, err)
	}
	return domain.ExportArtifact{
		Filename: Filename(doc.Type, doc.Selection, enc.Extension()),
		MimeType: enc.MimeType(),
		Content:  buf.Bytes(),
	}, nil
}

// Filename returns "<report-type>_<region>_<year>.<ext>"; region is "all"
// when the selection spans every region.
func Filename(t domain.ReportType, sel domain.Selection, ext string) string {
	return fmt.Sprintf("%s_%s_%d.%s", t, sel.RegionLabel(), sel.Year, strings.TrimPrefix(ext, "."))
}
