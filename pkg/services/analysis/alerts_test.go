package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

func TestDefaultRules(t *testing.T) {
	punjab := domain.Region{ID: "punjab", Name: "Punjab"}
	rules, err := DefaultRules(DefaultAlertSettings())
	require.NoError(t, err)

	tests := []struct {
		name    string
		metrics []domain.DerivedMetric
		wantIDs []string
		wantSev []domain.Severity
	}{
		{
			name:    "over-exploited stage",
			metrics: []domain.DerivedMetric{{Key: stageOfExtraction.Key, Label: "Stage of Extraction", Value: domain.Num(164.4), Class: "over-exploited"}},
			wantIDs: []string{"over_exploitation:punjab"},
			wantSev: []domain.Severity{domain.SeverityCritical},
		},
		{
			name:    "critical stage",
			metrics: []domain.DerivedMetric{{Key: stageOfExtraction.Key, Value: domain.Num(92)}},
			wantIDs: []string{"critical_stage:punjab"},
			wantSev: []domain.Severity{domain.SeverityHigh},
		},
		{
			name:    "dependence at threshold does not fire",
			metrics: []domain.DerivedMetric{{Key: groundwaterDependence.Key, Value: domain.Num(65)}},
		},
		{
			name: "several rules fire in order",
			metrics: []domain.DerivedMetric{
				{Key: groundwaterDependence.Key, Value: domain.Num(71.5)},
				{Key: stageOfExtraction.Key, Value: domain.Num(120)},
			},
			wantIDs: []string{"over_exploitation:punjab", "groundwater_dependence:punjab"},
			wantSev: []domain.Severity{domain.SeverityCritical, domain.SeverityHigh},
		},
		{
			name:    "N/A never matches",
			metrics: []domain.DerivedMetric{{Key: stageOfExtraction.Key, Value: domain.NA}},
		},
		{
			name:    "low diversity",
			metrics: []domain.DerivedMetric{{Key: cropDiversity.Key, Value: domain.Num(0.2)}},
			wantIDs: []string{"low_crop_diversity:punjab"},
			wantSev: []domain.Severity{domain.SeverityLow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts, err := rules.Evaluate(punjab, tt.metrics)
			require.NoError(t, err)

			var ids []string
			var sevs []domain.Severity
			for _, a := range alerts {
				ids = append(ids, a.ID)
				sevs = append(sevs, a.Severity)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantSev, sevs)
		})
	}
}

func TestRuleMessageTemplate(t *testing.T) {
	rules, err := DefaultRules(DefaultAlertSettings())
	require.NoError(t, err)

	// Given a region drawing most of its irrigation from wells
	ms := []domain.DerivedMetric{{Key: groundwaterDependence.Key, Label: "Groundwater Dependence", Value: domain.Num(71.456), Unit: "%"}}

	// When the rules are evaluated
	alerts, err := rules.Evaluate(domain.Region{ID: "punjab", Name: "Punjab"}, ms)

	// Then the message carries the region, the rounded value and the threshold
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Punjab draws 71.46% of its net irrigated area from wells, above the 65% threshold.", alerts[0].Message)
	assert.NotEmpty(t, alerts[0].Recommendation)
	assert.Equal(t, groundwaterDependence.Key, alerts[0].Metric)
}

func TestRuleSetFirstMatch(t *testing.T) {
	settings := DefaultAlertSettings()
	settings.FirstMatchOnly = true
	rules, err := DefaultRules(settings)
	require.NoError(t, err)
	assert.Equal(t, MatchFirst, rules.Mode)

	ms := []domain.DerivedMetric{
		{Key: groundwaterDependence.Key, Value: domain.Num(90)},
		{Key: marginalShare.Key, Value: domain.Num(90)},
	}
	alerts, err := rules.Evaluate(domain.Region{ID: "up"}, ms)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "groundwater_dependence:up", alerts[0].ID)
}

func TestNewRuleRejectsBadTemplate(t *testing.T) {
	_, err := NewRule("broken", "x", domain.SeverityLow, 0, func(float64) bool { return true }, "{{.Region", "")
	assert.Error(t, err)
}

func TestCustomThresholds(t *testing.T) {
	settings := DefaultAlertSettings()
	settings.GroundwaterDependence = 50
	rules, err := DefaultRules(settings)
	require.NoError(t, err)

	alerts, err := rules.Evaluate(domain.Region{ID: "bihar"}, []domain.DerivedMetric{{Key: groundwaterDependence.Key, Value: domain.Num(61)}})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}
