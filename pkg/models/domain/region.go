package domain

import (
	"fmt"
	"strings"
)

// AllRegions selects every region known to the dataset provider.
const AllRegions = "all"

type Region struct {
	ID        string // bihar, maharashtra/pune
	Name      string
	LocalName string
	Lat       float64
	Lon       float64
}

func (r Region) String() string {
	if r.Name == "" {
		return r.ID
	}
	return r.Name
}

type Season string

const (
	SeasonAll    Season = ""
	SeasonKharif Season = "kharif"
	SeasonRabi   Season = "rabi"
	SeasonZaid   Season = "zaid"
)

// Seasons lists the cropping seasons in agricultural-year order.
var Seasons = []Season{SeasonKharif, SeasonRabi, SeasonZaid}

func ParseSeason(s string) (Season, error) {
	switch Season(strings.ToLower(strings.TrimSpace(s))) {
	case SeasonAll, "all":
		return SeasonAll, nil
	case SeasonKharif:
		return SeasonKharif, nil
	case SeasonRabi:
		return SeasonRabi, nil
	case SeasonZaid:
		return SeasonZaid, nil
	}
	return SeasonAll, fmt.Errorf("unknown season %q", s)
}

// Title returns the display name of the season, e.g. "Kharif".
func (s Season) Title() string {
	if s == SeasonAll {
		return "All Seasons"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

type ViewMode string

const (
	ViewOverview   ViewMode = "overview"
	ViewComparison ViewMode = "comparison"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewOverview:
		return ViewOverview, nil
	case ViewComparison:
		return ViewComparison, nil
	}
	return ViewOverview, fmt.Errorf("unknown view mode %q", s)
}

// Selection is the filter context supplied by the caller for one report.
// It is passed by value and never mutated by the core.
type Selection struct {
	Region   string
	Year     int
	Season   Season
	ViewMode ViewMode
}

func (s Selection) IsAllRegions() bool {
	return s.Region == "" || strings.EqualFold(s.Region, AllRegions)
}

// RegionLabel is the region component used in export filenames.
func (s Selection) RegionLabel() string {
	if s.IsAllRegions() {
		return AllRegions
	}
	return strings.ReplaceAll(strings.ToLower(s.Region), "/", "-")
}

func (s Selection) Validate() error {
	if s.Year <= 0 {
		return fmt.Errorf("year must be positive, got %d", s.Year)
	}
	if _, err := ParseSeason(string(s.Season)); err != nil {
		return err
	}
	if _, err := ParseViewMode(string(s.ViewMode)); err != nil {
		return err
	}
	return nil
}

func (s Selection) String() string {
	region := s.Region
	if s.IsAllRegions() {
		region = "All Regions"
	}
	return fmt.Sprintf("%s, %d, %s", region, s.Year, s.Season.Title())
}
