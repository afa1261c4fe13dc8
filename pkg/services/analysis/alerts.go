package analysis

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

// AlertSettings contains the thresholds of the built-in alert rules
type AlertSettings struct {
	// GroundwaterDependence flags irrigation drawing more than this share from wells (default: 65)
	GroundwaterDependence float64
	// CriticalStage flags a stage of extraction at or above this percentage (default: 90)
	CriticalStage float64
	// OverExploitation flags extraction at or above this share of availability (default: 100)
	OverExploitation float64
	// MarginalShare flags regions where marginal holdings exceed this share (default: 70)
	MarginalShare float64
	// DiversityFloor flags a crop diversity index below this value (default: 0.4)
	DiversityFloor float64
	// FirstMatchOnly stops evaluation at the first matching rule per region (default: false)
	FirstMatchOnly bool
}

// DefaultAlertSettings returns the default alert thresholds
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		GroundwaterDependence: 65,
		CriticalStage:         90,
		OverExploitation:      100,
		MarginalShare:         70,
		DiversityFloor:        0.4,
	}
}

// Rule pairs a predicate on one derived metric with the alert it raises.
type Rule struct {
	ID             string
	Metric         string
	Severity       domain.Severity
	Threshold      float64
	Match          func(value float64) bool
	Message        *template.Template
	Recommendation string
}

// NewRule parses message as a text/template. The template sees Region,
// Label, Value, Unit, Class and Threshold.
func NewRule(id, metric string, sev domain.Severity, threshold float64, match func(float64) bool, message, recommendation string) (Rule, error) {
	tmpl, err := template.New(id).Parse(message)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: failed to parse message: %w", id, err)
	}
	return Rule{
		ID:             id,
		Metric:         metric,
		Severity:       sev,
		Threshold:      threshold,
		Match:          match,
		Message:        tmpl,
		Recommendation: recommendation,
	}, nil
}

type MatchMode int

const (
	MatchAll MatchMode = iota
	MatchFirst
)

// RuleSet evaluates rules in order against the metrics of one region.
type RuleSet struct {
	Mode  MatchMode
	Rules []Rule
}

type messageData struct {
	Region    string
	Label     string
	Value     string
	Unit      string
	Class     string
	Threshold string
}

// Evaluate returns an alert for every matching rule, or only the first in
// MatchFirst mode. Metrics that are missing or N/A never match.
func (rs RuleSet) Evaluate(region domain.Region, ms []domain.DerivedMetric) ([]domain.Alert, error) {
	var alerts []domain.Alert
	for _, rule := range rs.Rules {
		m, ok := findMetric(ms, rule.Metric)
		if !ok || !m.Value.Valid || rule.Match == nil || !rule.Match(m.Value.Value) {
			continue
		}

		var buf bytes.Buffer
		data := messageData{
			Region:    region.String(),
			Label:     m.Label,
			Value:     m.Value.String(),
			Unit:      m.Unit,
			Class:     m.Class,
			Threshold: domain.Num(rule.Threshold).String(),
		}
		if err := rule.Message.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("rule %s: failed to render message: %w", rule.ID, err)
		}

		alerts = append(alerts, domain.Alert{
			ID:             rule.ID + ":" + region.ID,
			Region:         region,
			Metric:         rule.Metric,
			Severity:       rule.Severity,
			Message:        buf.String(),
			Recommendation: rule.Recommendation,
		})
		if rs.Mode == MatchFirst {
			break
		}
	}
	return alerts, nil
}

// DefaultRules builds the built-in rule set from settings.
func DefaultRules(s AlertSettings) (RuleSet, error) {
	specs := []struct {
		id, metric     string
		sev            domain.Severity
		threshold      float64
		match          func(float64) bool
		message, recom string
	}{
		{
			id: "over_exploitation", metric: stageOfExtraction.Key, sev: domain.SeverityCritical,
			threshold: s.OverExploitation,
			match:     func(v float64) bool { return v >= s.OverExploitation },
			message:   "Groundwater extraction in {{.Region}} is {{.Value}}% of annual availability ({{.Class}}).",
			recom:     "Restrict new extraction structures and prioritise artificial recharge and water-efficient crops.",
		},
		{
			id: "critical_stage", metric: stageOfExtraction.Key, sev: domain.SeverityHigh,
			threshold: s.CriticalStage,
			match:     func(v float64) bool { return v >= s.CriticalStage && v < s.OverExploitation },
			message:   "Stage of extraction in {{.Region}} is {{.Value}}%, above the {{.Threshold}}% critical mark.",
			recom:     "Monitor water levels closely and promote micro-irrigation in affected blocks.",
		},
		{
			id: "groundwater_dependence", metric: groundwaterDependence.Key, sev: domain.SeverityHigh,
			threshold: s.GroundwaterDependence,
			match:     func(v float64) bool { return v > s.GroundwaterDependence },
			message:   "{{.Region}} draws {{.Value}}% of its net irrigated area from wells, above the {{.Threshold}}% threshold.",
			recom:     "Expand surface irrigation and recharge structures to reduce reliance on groundwater.",
		},
		{
			id: "marginal_holdings", metric: marginalShare.Key, sev: domain.SeverityMedium,
			threshold: s.MarginalShare,
			match:     func(v float64) bool { return v > s.MarginalShare },
			message:   "Marginal holdings make up {{.Value}}% of holdings in {{.Region}}, above {{.Threshold}}%.",
			recom:     "Encourage farmer producer organisations and land-pooling schemes for shared mechanisation.",
		},
		{
			id: "low_crop_diversity", metric: cropDiversity.Key, sev: domain.SeverityLow,
			threshold: s.DiversityFloor,
			match:     func(v float64) bool { return v < s.DiversityFloor },
			message:   "Crop diversity index in {{.Region}} is {{.Value}}, below {{.Threshold}}.",
			recom:     "Promote pulses, oilseeds and millets in crop rotation to spread market and climate risk.",
		},
	}

	rs := RuleSet{Mode: MatchAll}
	if s.FirstMatchOnly {
		rs.Mode = MatchFirst
	}
	for _, sp := range specs {
		r, err := NewRule(sp.id, sp.metric, sp.sev, sp.threshold, sp.match, sp.message, sp.recom)
		if err != nil {
			return RuleSet{}, err
		}
		rs.Rules = append(rs.Rules, r)
	}
	return rs, nil
}
