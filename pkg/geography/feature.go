// Package geography loads world boundary geometry and maps its numeric region
// ids onto ISO country codes and the host's country identifiers.
package geography

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// RegionID is the ISO 3166-1 numeric code carried by boundary datasets.
type RegionID int

// Feature is one region's immutable polygon set.
type Feature struct {
	ID       RegionID
	Name     string
	Polygons orb.MultiPolygon
	Bound    orb.Bound
}

var ErrNoFeatures = errors.New("dataset contains no usable features")

// LoadError reports that a geometry source could not be fetched or decoded.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load geometry from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func newFeature(id RegionID, name string, mp orb.MultiPolygon) (Feature, bool) {
	var clean orb.MultiPolygon
	for _, poly := range mp {
		var rings orb.Polygon
		for _, ring := range poly {
			if r := sanitizeRing(ring); len(r) >= 4 {
				rings = append(rings, r)
			}
		}
		if len(rings) > 0 {
			clean = append(clean, rings)
		}
	}
	if len(clean) == 0 {
		return Feature{}, false
	}
	return Feature{ID: id, Name: name, Polygons: clean, Bound: clean.Bound()}, true
}

// sanitizeRing drops non-finite vertices and closes the ring.
func sanitizeRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(ring)+1)
	for _, p := range ring {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 0 && !out.Closed() {
		out = append(out, out[0])
	}
	return out
}
