package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type datasetFile struct {
	Regions  []regionEntry                    `yaml:"regions"`
	Datasets map[string]map[int]snapshotEntry `yaml:"datasets"`
}

type regionEntry struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	LocalName string  `yaml:"local_name"`
	Lat       float64 `yaml:"lat"`
	Lon       float64 `yaml:"lon"`
}

type snapshotEntry struct {
	LandHoldings *landHoldingsEntry `yaml:"land_holdings"`
	Irrigation   *irrigationEntry   `yaml:"irrigation"`
	Cropping     *croppingEntry     `yaml:"cropping"`
	Groundwater  *groundwaterEntry  `yaml:"groundwater"`
}

type landHoldingsEntry struct {
	TotalHoldings int64                  `yaml:"total_holdings"`
	TotalArea     float64                `yaml:"total_area"`
	Categories    ordered[categoryEntry] `yaml:"categories"`
}

type categoryEntry struct {
	Count      int64   `yaml:"count"`
	Area       float64 `yaml:"area"`
	Percentage float64 `yaml:"percentage"`
}

type irrigationEntry struct {
	NetIrrigatedArea   float64       `yaml:"net_irrigated_area"`
	GrossIrrigatedArea float64       `yaml:"gross_irrigated_area"`
	Sources            []sourceEntry `yaml:"sources"`
}

type sourceEntry struct {
	Source     string  `yaml:"source"`
	Area       float64 `yaml:"area"`
	Percentage float64 `yaml:"percentage"`
}

type croppingEntry struct {
	TotalCroppedArea float64              `yaml:"total_cropped_area"`
	Seasons          ordered[seasonEntry] `yaml:"seasons"`
}

type seasonEntry struct {
	Area  float64            `yaml:"area"`
	Crops ordered[cropEntry] `yaml:"crops"`
}

type cropEntry struct {
	Percentage float64 `yaml:"percentage"`
}

type groundwaterEntry struct {
	AnnualAvailability float64      `yaml:"annual_availability"`
	AnnualExtraction   float64      `yaml:"annual_extraction"`
	AverageDepth       float64      `yaml:"average_depth"`
	DepthRanges        []depthEntry `yaml:"depth_ranges"`
}

type depthEntry struct {
	Range      string  `yaml:"range"`
	Count      int64   `yaml:"count"`
	Percentage float64 `yaml:"percentage"`
}

type keyed[T any] struct {
	Key   string
	Value T
}

// ordered decodes a YAML mapping while keeping the document order of its keys.
type ordered[T any] []keyed[T]

func (o *ordered[T]) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	out := make(ordered[T], 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var v T
		if err := n.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", n.Content[i].Line, err)
		}
		out = append(out, keyed[T]{Key: n.Content[i].Value, Value: v})
	}
	*o = out
	return nil
}
