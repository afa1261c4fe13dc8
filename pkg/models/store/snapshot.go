package store

// Family names stored in snapshot_metrics.family.
const (
	FamilyLandHoldings = "landholding"
	FamilyIrrigation   = "irrigation"
	FamilyCropping     = "cropping"
	FamilyGroundwater  = "groundwater"
)

// Group names stored in snapshot_metrics.grp.
const (
	GroupTotal      = "total"
	GroupCategory   = "category"
	GroupSource     = "source"
	GroupSeason     = "season"
	GroupCrop       = "crop"
	GroupDepthRange = "depth_range"
)

type RegionRecord struct {
	ID        string
	Name      string
	LocalName string
	Lat       float64
	Lon       float64
}

// MetricRecord is one flattened row of a region/year snapshot. Totals use
// Item as the field name and Value as the figure; breakdown rows use Count,
// Area and Percentage. Crop rows carry their season in Parent.
type MetricRecord struct {
	RegionID   string
	Year       int
	Family     string
	Group      string
	Parent     string
	Item       string
	Seq        int
	Count      int64
	Area       float64
	Value      float64
	Percentage float64
}

type DatasetStats struct {
	Regions   int64
	Snapshots int64
	Records   int64
}
