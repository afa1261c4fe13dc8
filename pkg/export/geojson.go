package export

import (
	"encoding/json"
	"io"
	"math"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

type geoJSONEncoder struct{}

// NewGeoJSONEncoder writes one Point feature per region of the document with
// every derived metric as a property. Report details go to a top-level
// "metadata" member.
func NewGeoJSONEncoder() Encoder { return geoJSONEncoder{} }

func (geoJSONEncoder) Format() Format    { return FormatGeoJSON }
func (geoJSONEncoder) Extension() string { return "geojson" }
func (geoJSONEncoder) MimeType() string  { return "application/geo+json" }

func (geoJSONEncoder) Encode(w io.Writer, doc *domain.Report) error {
	fc := geojson.NewFeatureCollection()
	for _, rm := range doc.Regions {
		f := geojson.NewFeature(orb.Point{rm.Region.Lon, rm.Region.Lat})
		f.ID = rm.Region.ID
		f.Properties["region_id"] = rm.Region.ID
		f.Properties["name"] = rm.Region.String()
		if rm.Region.LocalName != "" {
			f.Properties["local_name"] = rm.Region.LocalName
		}
		f.Properties["no_data"] = rm.NoData
		if rm.Rank > 0 {
			f.Properties["rank"] = rm.Rank
		}
		for _, m := range rm.Metrics {
			name := propertyName(m.Key)
			f.Properties[name] = numberValue(m.Value)
			if m.Class != "" {
				f.Properties[name+"_class"] = m.Class
			}
		}
		fc.Append(f)
	}

	fc.ExtraMembers = geojson.Properties{
		"metadata": map[string]any{
			"report_id":    doc.ID,
			"report_type":  doc.Type,
			"title":        doc.Title,
			"generated_at": doc.GeneratedAt.UTC().Format(time.RFC3339),
			"selection": map[string]any{
				"region":    doc.Selection.RegionLabel(),
				"year":      doc.Selection.Year,
				"season":    string(doc.Selection.Season),
				"view_mode": string(doc.Selection.ViewMode),
			},
			"alerts": len(doc.Alerts),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}

// propertyName drops the family prefix: "groundwater.stage_of_extraction"
// becomes "stage_of_extraction".
func propertyName(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[i+1:]
	}
	return key
}

// numberValue is nil for N/A so it encodes as JSON null.
func numberValue(n domain.Number) any {
	if !n.Valid {
		return nil
	}
	return math.Round(n.Value*100) / 100
}
