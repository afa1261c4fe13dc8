package domain

import "errors"

// ErrNoData is returned when a (region, year) combination, or a dataset family
// within it, is absent from the dataset.
var ErrNoData = errors.New("no data available")

// Breakdown is one category row of a land-holding table.
type Breakdown struct {
	Name       string
	Count      int64
	Area       float64 // hectares
	Percentage float64 // share of holdings by count
}

type LandHoldings struct {
	TotalHoldings int64
	TotalArea     float64
	Categories    []Breakdown // marginal, small, semi-medium, medium, large
}

// SourceShare is one irrigation source row. The same Source may appear more
// than once (e.g. separate rows for government and private canals).
type SourceShare struct {
	Source     string
	Area       float64
	Percentage float64
}

type Irrigation struct {
	NetIrrigatedArea   float64
	GrossIrrigatedArea float64
	Sources            []SourceShare
}

type CropShare struct {
	Name       string
	Percentage float64 // share of the season's area
}

type SeasonCropping struct {
	Season Season
	Area   float64
	Crops  []CropShare
}

type Cropping struct {
	TotalCroppedArea float64
	Seasons          []SeasonCropping
}

// Season returns the cropping block of one season.
func (c *Cropping) Season(s Season) (SeasonCropping, bool) {
	for _, sc := range c.Seasons {
		if sc.Season == s {
			return sc, true
		}
	}
	return SeasonCropping{}, false
}

type DepthRange struct {
	Range      string // "0-5 m"
	Count      int64  // observation wells
	Percentage float64
}

type Groundwater struct {
	AnnualAvailability float64 // ham
	AnnualExtraction   float64 // ham
	AverageDepth       float64 // metres below ground level
	DepthRanges        []DepthRange
}

// MetricSnapshot is one region/year slice of the dataset. Family blocks are
// nil when the dataset has no entry for them.
type MetricSnapshot struct {
	Region       Region
	Year         int
	LandHoldings *LandHoldings
	Irrigation   *Irrigation
	Cropping     *Cropping
	Groundwater  *Groundwater
}

// PercentageGroups returns the percentage columns of every category breakdown
// keyed by a dotted path, for integrity checks.
func (s MetricSnapshot) PercentageGroups() map[string][]float64 {
	groups := make(map[string][]float64)
	if s.LandHoldings != nil && len(s.LandHoldings.Categories) > 0 {
		for _, c := range s.LandHoldings.Categories {
			groups["landholding.categories"] = append(groups["landholding.categories"], c.Percentage)
		}
	}
	if s.Irrigation != nil && len(s.Irrigation.Sources) > 0 {
		for _, src := range s.Irrigation.Sources {
			groups["irrigation.sources"] = append(groups["irrigation.sources"], src.Percentage)
		}
	}
	if s.Cropping != nil {
		for _, sc := range s.Cropping.Seasons {
			if len(sc.Crops) == 0 {
				continue
			}
			key := "cropping." + string(sc.Season) + ".crops"
			for _, c := range sc.Crops {
				groups[key] = append(groups[key], c.Percentage)
			}
		}
	}
	if s.Groundwater != nil && len(s.Groundwater.DepthRanges) > 0 {
		for _, d := range s.Groundwater.DepthRanges {
			groups["groundwater.depth_ranges"] = append(groups["groundwater.depth_ranges"], d.Percentage)
		}
	}
	return groups
}
