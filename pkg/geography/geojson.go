package geography

import (
	"encoding/json"
	"fmt"
	"log"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

// numeric id properties used by common country datasets, in lookup order
var regionIDProperties = []string{"ISO_N3", "iso_n3", "ISO_N3_EH", "iso_n3_eh", "id"}

var nameProperties = []string{"NAME", "name", "ADMIN", "admin"}

// DecodeGeoJSON decodes a FeatureCollection whose features carry an ISO
// numeric id either as the feature id or in one of regionIDProperties.
func DecodeGeoJSON(data []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	var features []Feature
	skipped := 0
	for _, f := range fc.Features {
		if f.Geometry == nil {
			skipped++
			continue
		}
		id, ok := geoJSONRegionID(f)
		if !ok {
			skipped++
			continue
		}

		var mp orb.MultiPolygon
		switch {
		case f.Geometry.IsPolygon():
			mp = orb.MultiPolygon{toOrbPolygon(f.Geometry.Polygon)}
		case f.Geometry.IsMultiPolygon():
			for _, poly := range f.Geometry.MultiPolygon {
				mp = append(mp, toOrbPolygon(poly))
			}
		default:
			skipped++
			continue
		}

		name := ""
		for _, key := range nameProperties {
			if s, ok := f.Properties[key].(string); ok && s != "" {
				name = s
				break
			}
		}
		if feat, ok := newFeature(id, name, mp); ok {
			features = append(features, feat)
		}
	}
	if skipped > 0 {
		log.Printf("[geo] Skipped %d geojson features without a usable id or polygon", skipped)
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	return features, nil
}

func geoJSONRegionID(f *geojson.Feature) (RegionID, bool) {
	candidates := []interface{}{f.ID}
	for _, key := range regionIDProperties {
		candidates = append(candidates, f.Properties[key])
	}
	for _, c := range candidates {
		var raw json.RawMessage
		switch v := c.(type) {
		case nil:
			continue
		case string:
			raw = json.RawMessage(fmt.Sprintf("%q", v))
		case float64:
			raw = json.RawMessage(fmt.Sprintf("%d", int(v)))
		default:
			continue
		}
		if id, err := parseRegionID(raw); err == nil {
			return id, true
		}
	}
	return 0, false
}

func toOrbPolygon(rings [][][]float64) orb.Polygon {
	poly := make(orb.Polygon, 0, len(rings))
	for _, ring := range rings {
		r := make(orb.Ring, 0, len(ring))
		for _, p := range ring {
			if len(p) < 2 {
				continue
			}
			r = append(r, orb.Point{p[0], p[1]})
		}
		poly = append(poly, r)
	}
	return poly
}
