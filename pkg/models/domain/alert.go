package domain

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

// Alert is raised when a derived metric crosses a rule threshold.
type Alert struct {
	ID             string
	Region         Region
	Metric         string
	Severity       Severity
	Message        string
	Recommendation string
}
