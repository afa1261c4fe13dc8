package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

func TestReporter_Handle(t *testing.T) {
	// Given
	var buf bytes.Buffer
	reporter := NewReporter(&buf)
	report := &domain.Report{
		Title:       "Groundwater Report",
		Selection:   domain.Selection{Region: "punjab", Year: 2023},
		GeneratedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Sections: []domain.ReportSection{
			{Kind: domain.SectionHeading, Title: "Punjab"},
			{Kind: domain.SectionTable, Title: "Depth Distribution", Table: &domain.Table{
				Columns: []string{"Depth Range", "Wells"},
				Rows:    [][]any{{"0-5 m", 12}, {"above 20 m", domain.NA}},
			}},
			{Kind: domain.SectionNarrative, Text: "Extraction exceeds recharge."},
		},
		Summary: []domain.SummaryLine{{Label: "Stage of Extraction", Value: "165%"}},
		Alerts: []domain.Alert{{
			Region:         domain.Region{ID: "punjab", Name: "Punjab"},
			Severity:       domain.SeverityCritical,
			Message:        "Groundwater is over-exploited",
			Recommendation: "Shift to drip irrigation",
		}},
	}

	// When
	err := reporter.Handle(report)

	// Then
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Groundwater Report")
	assert.Contains(t, out, "Selection: punjab, 2023, All Seasons")
	assert.Contains(t, out, "Generated: 2024-03-01 09:30")
	assert.Contains(t, out, "=== Punjab ===")
	assert.Contains(t, out, "--- Depth Distribution ---")
	assert.Contains(t, out, "| Depth Range | Wells  |")
	assert.Contains(t, out, "| 0-5 m       | 12     |")
	assert.Contains(t, out, "| above 20 m  | N/A    |")
	assert.Contains(t, out, "+-------------+--------+")
	assert.Contains(t, out, "Extraction exceeds recharge.")
	assert.Contains(t, out, "  Stage of Extraction: 165%")
	assert.Contains(t, out, "[CRITICAL] Punjab: Groundwater is over-exploited")
	assert.Contains(t, out, "-> Shift to drip irrigation")
}

func TestReporter_Table(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    [][]string
		want    []string
	}{
		{
			name:    "widths follow the widest cell",
			columns: []string{"ID", "Name"},
			rows:    [][]string{{"bihar", "Bihar"}, {"uttar-pradesh", "Uttar Pradesh"}},
			want: []string{
				"| ID            | Name          |",
				"| uttar-pradesh | Uttar Pradesh |",
			},
		},
		{
			name:    "empty listing prints the header",
			columns: []string{"Type"},
			want:    []string{"| Type   |", "+--------+"},
		},
		{
			name:    "long cells are truncated",
			columns: []string{"Name"},
			rows:    [][]string{{"a region name that is much longer than forty runes"}},
			want:    []string{"| a region name that is much longer than ~ |"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			var buf bytes.Buffer

			// When
			err := NewReporter(&buf).Table(tt.columns, tt.rows)

			// Then
			require.NoError(t, err)
			for _, line := range tt.want {
				assert.Contains(t, buf.String(), line)
			}
		})
	}
}
