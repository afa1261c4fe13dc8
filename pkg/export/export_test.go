package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/analysis"
	"github.com/de-tools/agri-atlas/pkg/store/fixture"
)

const biharFixture = `
regions:
  - {id: bihar, name: Bihar, lat: 25.0961, lon: 85.3131}
  - {id: punjab, name: Punjab, lat: 31.1471, lon: 75.3412}
datasets:
  bihar:
    2023:
      cropping:
        total_cropped_area: 825000
        seasons:
          kharif:
            area: 520000
            crops:
              rice: {percentage: 60}
      groundwater:
        annual_availability: 100
        annual_extraction: 45
  punjab:
    2023:
      groundwater:
        annual_availability: 100
        annual_extraction: 164.4
`

func generate(t *testing.T, rt domain.ReportType, sel domain.Selection) *domain.Report {
	t.Helper()
	p, err := fixture.Parse([]byte(biharFixture))
	require.NoError(t, err)
	rules, err := analysis.DefaultRules(analysis.DefaultAlertSettings())
	require.NoError(t, err)
	svc := analysis.NewService(p, analysis.DefaultRegistry(), rules,
		analysis.WithClock(func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }),
		analysis.WithIDGenerator(func() string { return "r-1" }),
	)
	doc, err := svc.GenerateReport(context.Background(), rt, sel)
	require.NoError(t, err)
	return doc
}

func sampleDoc() *domain.Report {
	return &domain.Report{
		ID:          "r-2",
		Type:        domain.ReportIrrigation,
		Title:       "Irrigation Sources Report",
		Selection:   domain.Selection{Region: "maharashtra/pune", Year: 2022},
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Sections: []domain.ReportSection{
			{Kind: domain.SectionHeading, Title: "Pune"},
			{Kind: domain.SectionTable, Title: "Sources", Table: &domain.Table{
				Columns: []string{"Source", "Share (%)"},
				Rows: [][]any{
					{"Canals, government", 40.0},
					{`Wells "dug"`, domain.Num(60)},
				},
			}},
			{Kind: domain.SectionTable, Title: "Notes", Table: &domain.Table{
				Columns: []string{"Note"},
				Rows:    [][]any{{"<script>alert(1)</script>"}},
			}},
			{Kind: domain.SectionNarrative, Text: "Figures are provisional."},
		},
		Summary: []domain.SummaryLine{{Label: "Net Irrigated Area", Value: "1.25M ha"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: ".XLS", want: FormatXLS},
		{in: " geojson ", want: FormatGeoJSON},
		{in: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "seasonal_bihar_2023.csv", Filename(domain.ReportSeasonal, domain.Selection{Region: "Bihar", Year: 2023}, "csv"))
	assert.Equal(t, "groundwater_all_2022.geojson", Filename(domain.ReportGroundwater, domain.Selection{Year: 2022}, ".geojson"))
	assert.Equal(t, "irrigation_maharashtra-pune_2022.xls", Filename(domain.ReportIrrigation, domain.Selection{Region: "maharashtra/pune", Year: 2022}, "xls"))
}

func TestBiharSeasonalCSV(t *testing.T) {
	doc := generate(t, domain.ReportSeasonal, domain.Selection{Region: "bihar", Year: 2023})

	art, err := DefaultExporter().Export(doc, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "seasonal_bihar_2023.csv", art.Filename)
	assert.Equal(t, "text/csv;charset=utf-8", art.MimeType)
	content := string(art.Content)
	assert.Contains(t, content, "\nKharif,520000,Rice,312000,60\n")
	assert.Contains(t, content, "\nTotal Cropped Area: 825K ha\n")
	assert.True(t, strings.HasPrefix(content, "Season,Season Area (ha),Crop,Crop Area (ha),Percentage (%)\n"))
}

func TestMissingPairProducesHeaderOnlyArtifacts(t *testing.T) {
	doc := generate(t, domain.ReportSeasonal, domain.Selection{Region: "bihar", Year: 1999})
	exporter := DefaultExporter()

	for _, f := range exporter.Formats() {
		t.Run(string(f), func(t *testing.T) {
			art, err := exporter.Export(doc, f)
			require.NoError(t, err)
			assert.NotEmpty(t, art.Content)
		})
	}

	art, err := exporter.Export(doc, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Season,Season Area (ha),Crop,Crop Area (ha),Percentage (%)\n", string(art.Content))
}

func TestCSVRoundTrip(t *testing.T) {
	doc := generate(t, domain.ReportGroundwater, domain.Selection{Region: "all", Year: 2023})

	art, err := DefaultExporter().Export(doc, FormatCSV)
	require.NoError(t, err)

	// Given data free of embedded delimiters, splitting on newlines and commas
	// reconstructs every table row and column.
	lines := strings.Split(strings.TrimSuffix(string(art.Content), "\n"), "\n")
	overview := doc.Tables()[0].Table
	require.GreaterOrEqual(t, len(lines), len(overview.Rows)+1)
	for i := 0; i <= len(overview.Rows); i++ {
		assert.Len(t, strings.Split(lines[i], ","), len(overview.Columns), "line %d: %s", i, lines[i])
	}
	assert.Equal(t, len(overview.Rows)+1, indexOf(lines, ""))
}

func indexOf(lines []string, s string) int {
	for i, l := range lines {
		if l == s {
			return i
		}
	}
	return -1
}

func TestCSVQuotesEmbeddedDelimiters(t *testing.T) {
	art, err := DefaultExporter().Export(sampleDoc(), FormatCSV)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(art.Content))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Canals, government", "40"}, records[1])
	assert.Equal(t, []string{`Wells "dug"`, "60"}, records[2])
	assert.Equal(t, []string{"Note"}, records[3])
	assert.Equal(t, []string{"Net Irrigated Area: 1.25M ha"}, records[len(records)-1])
}

func TestXLSEncoder(t *testing.T) {
	art, err := DefaultExporter().Export(sampleDoc(), FormatXLS)
	require.NoError(t, err)

	assert.Equal(t, "irrigation_maharashtra-pune_2022.xls", art.Filename)
	assert.Equal(t, "application/vnd.ms-excel", art.MimeType)
	require.True(t, bytes.HasPrefix(art.Content, []byte("\uFEFF")))

	lines := strings.Split(strings.TrimPrefix(string(art.Content), "\uFEFF"), "\n")
	assert.Equal(t, "Source\tShare (%)", lines[0])
	assert.Equal(t, "Canals, government\t40", lines[1])
}

func TestHTMLEncoder(t *testing.T) {
	t.Run("escapes values and omits alerts block without alerts", func(t *testing.T) {
		art, err := DefaultExporter().Export(sampleDoc(), FormatHTML)
		require.NoError(t, err)
		html := string(art.Content)

		assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
		assert.Contains(t, html, "<style>")
		assert.Contains(t, html, "Irrigation Sources Report")
		assert.Contains(t, html, "maharashtra/pune, 2022, All Seasons")
		assert.Contains(t, html, "2024-01-02 03:04:05 UTC")
		assert.Contains(t, html, "&lt;script&gt;")
		assert.NotContains(t, html, "<script>")
		assert.Equal(t, 2, strings.Count(html, "<table>"))
		assert.NotContains(t, html, `class="alerts"`)
		assert.Contains(t, html, "Figures are provisional.")
	})

	t.Run("renders alerts when a rule matched", func(t *testing.T) {
		doc := generate(t, domain.ReportGroundwater, domain.Selection{Region: "punjab", Year: 2023})
		require.NotEmpty(t, doc.Alerts)

		art, err := DefaultExporter().Export(doc, FormatHTML)
		require.NoError(t, err)
		html := string(art.Content)
		assert.Contains(t, html, `class="alerts"`)
		assert.Contains(t, html, "severity-critical")
		assert.Contains(t, html, "164.4%")
	})
}

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Type     string `json:"type"`
		ID       string `json:"id"`
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
	Metadata map[string]any `json:"metadata"`
}

func TestGeoJSONEncoder(t *testing.T) {
	tests := []struct {
		name         string
		sel          domain.Selection
		wantFeatures int
	}{
		{name: "all regions", sel: domain.Selection{Region: "all", Year: 2023}, wantFeatures: 2},
		{name: "single region", sel: domain.Selection{Region: "bihar", Year: 2023}, wantFeatures: 1},
		{name: "missing year", sel: domain.Selection{Region: "all", Year: 1999}, wantFeatures: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := generate(t, domain.ReportGroundwater, tt.sel)
			art, err := DefaultExporter().Export(doc, FormatGeoJSON)
			require.NoError(t, err)
			assert.Equal(t, "application/geo+json", art.MimeType)

			var fc featureCollection
			require.NoError(t, json.Unmarshal(art.Content, &fc))
			assert.Equal(t, "FeatureCollection", fc.Type)
			assert.Len(t, fc.Features, tt.wantFeatures)
			assert.Equal(t, "groundwater", fc.Metadata["report_type"])
			assert.Equal(t, "r-1", fc.Metadata["report_id"])
			for _, f := range fc.Features {
				assert.Equal(t, "Point", f.Geometry.Type)
				assert.Len(t, f.Geometry.Coordinates, 2)
				assert.Contains(t, f.Properties, "stage_of_extraction")
			}
		})
	}

	t.Run("point is lon, lat and metrics are properties", func(t *testing.T) {
		doc := generate(t, domain.ReportGroundwater, domain.Selection{Region: "all", Year: 2023})
		art, err := DefaultExporter().Export(doc, FormatGeoJSON)
		require.NoError(t, err)

		var fc featureCollection
		require.NoError(t, json.Unmarshal(art.Content, &fc))
		punjab := fc.Features[0]
		assert.Equal(t, "punjab", punjab.ID)
		assert.Equal(t, []float64{75.3412, 31.1471}, punjab.Geometry.Coordinates)
		assert.Equal(t, 164.4, punjab.Properties["stage_of_extraction"])
		assert.Equal(t, "over-exploited", punjab.Properties["stage_of_extraction_class"])
		assert.EqualValues(t, 1, punjab.Properties["rank"])
	})
}

func TestXLSXEncoder(t *testing.T) {
	doc := generate(t, domain.ReportGroundwater, domain.Selection{Region: "all", Year: 2023})
	art, err := DefaultExporter().Export(doc, FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(art.Content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Regional Overview", "Summary", "Alerts"}, f.GetSheetList())
	header, err := f.GetCellValue("Regional Overview", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Region", header)
	region, err := f.GetCellValue("Regional Overview", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Punjab", region)
}

func TestSheetNamesAreUniqueAndShort(t *testing.T) {
	wb := &workbook{used: map[string]bool{}}
	long := strings.Repeat("x", 40)

	first := wb.sheetName(long)
	second := wb.sheetName(long)
	assert.Len(t, first, maxSheetName)
	assert.Len(t, second, maxSheetName)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "a-b", wb.sheetName("a/b"))
}

func TestChartEncoder(t *testing.T) {
	tests := []struct {
		name string
		doc  *domain.Report
	}{
		{name: "with rows", doc: generate(t, domain.ReportSeasonal, domain.Selection{Region: "bihar", Year: 2023})},
		{name: "header only", doc: generate(t, domain.ReportSeasonal, domain.Selection{Region: "bihar", Year: 1999})},
		{name: "no chart table", doc: sampleDoc()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art, err := DefaultExporter().Export(tt.doc, FormatPNG)
			require.NoError(t, err)
			assert.Equal(t, "image/png", art.MimeType)

			_, err = png.Decode(bytes.NewReader(art.Content))
			assert.NoError(t, err)
		})
	}
}

func TestExportErrors(t *testing.T) {
	e := DefaultExporter()

	_, err := e.Export(sampleDoc(), "pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = e.Export(nil, FormatCSV)
	assert.Error(t, err)

	_, err = NewExporter(NewCSVEncoder(), NewCSVEncoder())
	assert.Error(t, err)

	_, err = NewExporter()
	assert.Error(t, err)
}
