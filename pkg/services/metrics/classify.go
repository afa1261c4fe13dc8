package metrics

// Band is one threshold of a classification table: values strictly below
// Below get Label.
type Band struct {
	Below float64
	Label string
}

// Table is an ascending list of cutoffs. Values at or above the last cutoff
// get Final.
type Table struct {
	Name  string
	Bands []Band
	Final string
}

type Classification struct {
	Label string
	Rank  int
}

// Classify returns the label of the first band value is strictly below.
func Classify(value float64, t Table) Classification {
	for i, b := range t.Bands {
		if value < b.Below {
			return Classification{Label: b.Label, Rank: i}
		}
	}
	return Classification{Label: t.Final, Rank: len(t.Bands)}
}

// Labels lists the table's labels from the first band to Final.
func (t Table) Labels() []string {
	labels := make([]string, 0, len(t.Bands)+1)
	for _, b := range t.Bands {
		labels = append(labels, b.Label)
	}
	return append(labels, t.Final)
}

// GroundwaterStress classifies the stage of groundwater extraction, the
// percentage of annual extractable resource drawn in a year.
var GroundwaterStress = Table{
	Name: "groundwater_stress",
	Bands: []Band{
		{Below: 70, Label: "safe"},
		{Below: 90, Label: "semi-critical"},
		{Below: 100, Label: "critical"},
	},
	Final: "over-exploited",
}

// GroundwaterDependence classifies the share of net irrigated area served by
// tubewells and other wells.
var GroundwaterDependence = Table{
	Name: "groundwater_dependence",
	Bands: []Band{
		{Below: 40, Label: "low"},
		{Below: 65, Label: "moderate"},
	},
	Final: "high",
}

// CropDiversity classifies a Simpson diversity index.
var CropDiversity = Table{
	Name: "crop_diversity",
	Bands: []Band{
		{Below: 0.4, Label: "low"},
		{Below: 0.65, Label: "moderate"},
	},
	Final: "high",
}

// Fragmentation classifies the combined share of marginal and small holdings.
var Fragmentation = Table{
	Name: "fragmentation",
	Bands: []Band{
		{Below: 50, Label: "low"},
		{Below: 70, Label: "moderate"},
		{Below: 85, Label: "high"},
	},
	Final: "severe",
}
