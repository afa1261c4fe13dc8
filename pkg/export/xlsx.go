package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
)

const maxSheetName = 31

type xlsxEncoder struct{}

// NewXLSXEncoder writes a workbook with one sheet per table, then a summary
// sheet and, when present, an alerts sheet.
func NewXLSXEncoder() Encoder { return xlsxEncoder{} }

func (xlsxEncoder) Format() Format    { return FormatXLSX }
func (xlsxEncoder) Extension() string { return "xlsx" }
func (xlsxEncoder) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (xlsxEncoder) Encode(w io.Writer, doc *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2F855A"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	wb := &workbook{file: f, headerStyle: headerStyle, used: map[string]bool{}}
	for i, s := range doc.Tables() {
		title := s.Title
		if title == "" {
			title = fmt.Sprintf("Table %d", i+1)
		}
		if err := wb.addSheet(title, s.Table.Columns, s.Table.Rows); err != nil {
			return err
		}
	}

	summary := [][]any{
		{"Report", doc.Title},
		{"Filters", doc.Selection.String()},
		{"Generated", doc.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")},
	}
	for _, l := range doc.Summary {
		summary = append(summary, []any{l.Label, l.Value})
	}
	for _, s := range doc.Sections {
		if s.Kind == domain.SectionNarrative {
			summary = append(summary, []any{"Note", s.Text})
		}
	}
	if err := wb.addSheet("Summary", []string{"Item", "Value"}, summary); err != nil {
		return err
	}

	if len(doc.Alerts) > 0 {
		rows := make([][]any, 0, len(doc.Alerts))
		for _, a := range doc.Alerts {
			rows = append(rows, []any{a.Region.String(), a.Severity.String(), a.Message, a.Recommendation})
		}
		if err := wb.addSheet("Alerts", []string{"Region", "Severity", "Message", "Recommendation"}, rows); err != nil {
			return err
		}
	}

	return f.Write(w)
}

type workbook struct {
	file        *excelize.File
	headerStyle int
	used        map[string]bool
	sheets      int
}

func (wb *workbook) addSheet(title string, columns []string, rows [][]any) error {
	name := wb.sheetName(title)
	if wb.sheets == 0 {
		if err := wb.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := wb.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	wb.sheets++

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.file.SetCellValue(name, cell, col); err != nil {
			return err
		}
	}
	if err := wb.file.SetRowStyle(name, 1, 1, wb.headerStyle); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := wb.file.SetCellValue(name, cell, cellValue(v)); err != nil {
				return err
			}
		}
	}

	if len(columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(columns))
		if err := wb.file.SetColWidth(name, "A", last, 20); err != nil {
			return err
		}
	}
	return nil
}

// sheetName strips characters Excel rejects and keeps names unique within
// the 31 character limit.
func (wb *workbook) sheetName(title string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, title)
	clean = strings.TrimSpace(clean)
	if len([]rune(clean)) > maxSheetName {
		clean = string([]rune(clean)[:maxSheetName])
	}

	name := clean
	for n := 2; wb.used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" %d", n)
		base := []rune(clean)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		name = string(base) + suffix
	}
	wb.used[strings.ToLower(name)] = true
	return name
}

// cellValue keeps numbers numeric in the workbook; N/A becomes text.
func cellValue(v any) any {
	switch val := v.(type) {
	case domain.Number:
		if !val.Valid {
			return domain.NotAvailable
		}
		return val.Value
	case float64, int, int64, string:
		return val
	}
	return metrics.FormatValue(v)
}
