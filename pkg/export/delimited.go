package export

import (
	"encoding/csv"
	"io"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

// utf8BOM lets spreadsheet applications detect the encoding of .xls text.
const utf8BOM = "\uFEFF"

// delimitedEncoder writes every table as a header row followed by data rows.
// Tables are separated by a blank row and the summary block follows one.
type delimitedEncoder struct {
	format Format
	comma  rune
	bom    bool
	mime   string
}

// NewCSVEncoder writes comma-separated rows. Fields containing the
// delimiter, quotes or newlines are quoted.
func NewCSVEncoder() Encoder {
	return delimitedEncoder{format: FormatCSV, comma: ',', mime: "text/csv;charset=utf-8"}
}

// NewXLSEncoder writes the legacy spreadsheet text: tab-separated rows with
// a UTF-8 byte order mark.
func NewXLSEncoder() Encoder {
	return delimitedEncoder{format: FormatXLS, comma: '\t', bom: true, mime: "application/vnd.ms-excel"}
}

func (e delimitedEncoder) Format() Format    { return e.format }
func (e delimitedEncoder) Extension() string { return string(e.format) }
func (e delimitedEncoder) MimeType() string  { return e.mime }

func (e delimitedEncoder) Encode(w io.Writer, doc *domain.Report) error {
	if e.bom {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
	}
	cw := csv.NewWriter(w)
	cw.Comma = e.comma
	if err := cw.WriteAll(documentRows(doc)); err != nil {
		return err
	}
	return cw.Error()
}

func documentRows(doc *domain.Report) [][]string {
	var rows [][]string
	for i, s := range doc.Tables() {
		if i > 0 {
			rows = append(rows, []string{})
		}
		rows = append(rows, s.Table.Columns)
		for _, r := range s.Table.Rows {
			rows = append(rows, formatRow(r))
		}
	}
	if len(doc.Summary) > 0 {
		rows = append(rows, []string{})
		for _, l := range doc.Summary {
			rows = append(rows, []string{l.Label + ": " + l.Value})
		}
	}
	return rows
}

func formatRow(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = metrics.FormatValue(c)
	}
	return out
}
