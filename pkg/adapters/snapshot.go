package adapters

import (
	"fmt"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/models/store"
)

const (
	itemTotalHoldings      = "total_holdings"
	itemTotalArea          = "total_area"
	itemNetIrrigatedArea   = "net_irrigated_area"
	itemGrossIrrigatedArea = "gross_irrigated_area"
	itemTotalCroppedArea   = "total_cropped_area"
	itemAnnualAvailability = "annual_availability"
	itemAnnualExtraction   = "annual_extraction"
	itemAverageDepth       = "average_depth"
)

func MapDomainRegionToStore(r domain.Region) store.RegionRecord {
	return store.RegionRecord{
		ID:        r.ID,
		Name:      r.Name,
		LocalName: r.LocalName,
		Lat:       r.Lat,
		Lon:       r.Lon,
	}
}

func MapStoreRegionToDomain(r store.RegionRecord) domain.Region {
	return domain.Region{
		ID:        r.ID,
		Name:      r.Name,
		LocalName: r.LocalName,
		Lat:       r.Lat,
		Lon:       r.Lon,
	}
}

// MapDomainSnapshotToStoreRecords flattens a snapshot into metric rows. Seq
// keeps the breakdown order of each group.
func MapDomainSnapshotToStoreRecords(s domain.MetricSnapshot) []store.MetricRecord {
	var records []store.MetricRecord
	add := func(r store.MetricRecord) {
		r.RegionID = s.Region.ID
		r.Year = s.Year
		r.Seq = len(records)
		records = append(records, r)
	}
	total := func(family, item string, v float64) {
		add(store.MetricRecord{Family: family, Group: store.GroupTotal, Item: item, Value: v})
	}

	if lh := s.LandHoldings; lh != nil {
		total(store.FamilyLandHoldings, itemTotalHoldings, float64(lh.TotalHoldings))
		total(store.FamilyLandHoldings, itemTotalArea, lh.TotalArea)
		for _, c := range lh.Categories {
			add(store.MetricRecord{
				Family: store.FamilyLandHoldings, Group: store.GroupCategory,
				Item: c.Name, Count: c.Count, Area: c.Area, Percentage: c.Percentage,
			})
		}
	}
	if ir := s.Irrigation; ir != nil {
		total(store.FamilyIrrigation, itemNetIrrigatedArea, ir.NetIrrigatedArea)
		total(store.FamilyIrrigation, itemGrossIrrigatedArea, ir.GrossIrrigatedArea)
		for _, src := range ir.Sources {
			add(store.MetricRecord{
				Family: store.FamilyIrrigation, Group: store.GroupSource,
				Item: src.Source, Area: src.Area, Percentage: src.Percentage,
			})
		}
	}
	if cr := s.Cropping; cr != nil {
		total(store.FamilyCropping, itemTotalCroppedArea, cr.TotalCroppedArea)
		for _, sc := range cr.Seasons {
			add(store.MetricRecord{
				Family: store.FamilyCropping, Group: store.GroupSeason,
				Item: string(sc.Season), Area: sc.Area,
			})
			for _, c := range sc.Crops {
				add(store.MetricRecord{
					Family: store.FamilyCropping, Group: store.GroupCrop, Parent: string(sc.Season),
					Item: c.Name, Percentage: c.Percentage,
				})
			}
		}
	}
	if gw := s.Groundwater; gw != nil {
		total(store.FamilyGroundwater, itemAnnualAvailability, gw.AnnualAvailability)
		total(store.FamilyGroundwater, itemAnnualExtraction, gw.AnnualExtraction)
		total(store.FamilyGroundwater, itemAverageDepth, gw.AverageDepth)
		for _, d := range gw.DepthRanges {
			add(store.MetricRecord{
				Family: store.FamilyGroundwater, Group: store.GroupDepthRange,
				Item: d.Range, Count: d.Count, Percentage: d.Percentage,
			})
		}
	}
	return records
}

// MapStoreRecordsToDomainSnapshot rebuilds a snapshot from rows sorted by Seq.
// A family block is present only when at least one of its rows is.
func MapStoreRecordsToDomainSnapshot(region domain.Region, year int, records []store.MetricRecord) (domain.MetricSnapshot, error) {
	snap := domain.MetricSnapshot{Region: region, Year: year}
	for _, r := range records {
		switch r.Family {
		case store.FamilyLandHoldings:
			if snap.LandHoldings == nil {
				snap.LandHoldings = &domain.LandHoldings{}
			}
			lh := snap.LandHoldings
			switch r.Group {
			case store.GroupTotal:
				switch r.Item {
				case itemTotalHoldings:
					lh.TotalHoldings = int64(r.Value)
				case itemTotalArea:
					lh.TotalArea = r.Value
				}
			case store.GroupCategory:
				lh.Categories = append(lh.Categories, domain.Breakdown{
					Name: r.Item, Count: r.Count, Area: r.Area, Percentage: r.Percentage,
				})
			}
		case store.FamilyIrrigation:
			if snap.Irrigation == nil {
				snap.Irrigation = &domain.Irrigation{}
			}
			ir := snap.Irrigation
			switch r.Group {
			case store.GroupTotal:
				switch r.Item {
				case itemNetIrrigatedArea:
					ir.NetIrrigatedArea = r.Value
				case itemGrossIrrigatedArea:
					ir.GrossIrrigatedArea = r.Value
				}
			case store.GroupSource:
				ir.Sources = append(ir.Sources, domain.SourceShare{
					Source: r.Item, Area: r.Area, Percentage: r.Percentage,
				})
			}
		case store.FamilyCropping:
			if snap.Cropping == nil {
				snap.Cropping = &domain.Cropping{}
			}
			cr := snap.Cropping
			switch r.Group {
			case store.GroupTotal:
				if r.Item == itemTotalCroppedArea {
					cr.TotalCroppedArea = r.Value
				}
			case store.GroupSeason:
				season, err := domain.ParseSeason(r.Item)
				if err != nil || season == domain.SeasonAll {
					return domain.MetricSnapshot{}, fmt.Errorf("%s/%d: invalid season %q", region.ID, year, r.Item)
				}
				cr.Seasons = append(cr.Seasons, domain.SeasonCropping{Season: season, Area: r.Area})
			case store.GroupCrop:
				i := seasonIndex(cr.Seasons, r.Parent)
				if i < 0 {
					return domain.MetricSnapshot{}, fmt.Errorf("%s/%d: crop %q references unknown season %q", region.ID, year, r.Item, r.Parent)
				}
				cr.Seasons[i].Crops = append(cr.Seasons[i].Crops, domain.CropShare{Name: r.Item, Percentage: r.Percentage})
			}
		case store.FamilyGroundwater:
			if snap.Groundwater == nil {
				snap.Groundwater = &domain.Groundwater{}
			}
			gw := snap.Groundwater
			switch r.Group {
			case store.GroupTotal:
				switch r.Item {
				case itemAnnualAvailability:
					gw.AnnualAvailability = r.Value
				case itemAnnualExtraction:
					gw.AnnualExtraction = r.Value
				case itemAverageDepth:
					gw.AverageDepth = r.Value
				}
			case store.GroupDepthRange:
				gw.DepthRanges = append(gw.DepthRanges, domain.DepthRange{
					Range: r.Item, Count: r.Count, Percentage: r.Percentage,
				})
			}
		default:
			return domain.MetricSnapshot{}, fmt.Errorf("%s/%d: unknown family %q", region.ID, year, r.Family)
		}
	}
	return snap, nil
}

func seasonIndex(seasons []domain.SeasonCropping, name string) int {
	for i, sc := range seasons {
		if string(sc.Season) == name {
			return i
		}
	}
	return -1
}
