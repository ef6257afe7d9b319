package globeengine

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/sudorandom/travel-globe/pkg/geography"
	"github.com/sudorandom/travel-globe/pkg/travel"
)

// countryAnchor is a country id with the centroid the camera flies to.
type countryAnchor struct {
	ID       string
	Centroid orb.Point
}

// buildAnchors resolves a centroid for every directory country. A missing
// centroid falls back to the area centroid of the country's geometry. With
// diag set, countries left without a valid centroid are reported.
func buildAnchors(dir []travel.CountryRecord, idx *geography.Index, diag *diagnostics) []countryAnchor {
	out := make([]countryAnchor, 0, len(dir))
	for _, c := range dir {
		if c.ID == "" {
			continue
		}
		pt := c.Centroid
		if (pt == orb.Point{} || !validCoordinate(pt)) && idx != nil {
			if e, ok := idx.ByCountry(c.ID); ok {
				if f := idx.Feature(e); f != nil && len(f.Polygons) > 0 {
					pt, _ = planar.CentroidArea(f.Polygons)
				}
			}
		}
		if diag != nil {
			if !diag.check("country", c.ID, pt) {
				continue
			}
		} else if !validCoordinate(pt) {
			continue
		}
		out = append(out, countryAnchor{ID: c.ID, Centroid: pt})
	}
	return out
}

func findAnchor(anchors []countryAnchor, id string) (countryAnchor, bool) {
	for _, a := range anchors {
		if a.ID == id {
			return a, true
		}
	}
	return countryAnchor{}, false
}

// nearestCountry picks the anchor closest to center, or when pointer is set
// the one minimizing pw*d(pointer) + cw*d(center). Distances are
// great-circle degrees. It returns "" when there are no anchors.
func nearestCountry(anchors []countryAnchor, pointer *orb.Point, center orb.Point, pw, cw float64) string {
	best, bestScore := "", 0.0
	for _, a := range anchors {
		score := angularDistance(a.Centroid, center)
		if pointer != nil {
			score = pw*angularDistance(a.Centroid, *pointer) + cw*score
		}
		if best == "" || score < bestScore {
			best, bestScore = a.ID, score
		}
	}
	return best
}
