package globeengine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/sudorandom/travel-globe/pkg/geography"
)

// placedPin is a pin with its rendered center.
type placedPin struct {
	Pin
	At Point
}

// layoutPins projects pins in draw order, dropping culled and invalid ones.
// Pins landing on the same pixel are fanned out on a small circle so each
// keeps its own hit target.
func layoutPins(proj *Projection, pins []Pin, radius float64, diag *diagnostics) []placedPin {
	placed := make([]placedPin, 0, len(pins))
	groups := make(map[[2]int64][]int)
	var order [][2]int64
	for _, p := range pins {
		if !diag.check(p.Kind.String(), p.ID, p.Coordinate) {
			continue
		}
		x, y, ok := proj.Project(p.Coordinate)
		if !ok {
			continue
		}
		k := [2]int64{int64(math.Round(x)), int64(math.Round(y))}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], len(placed))
		placed = append(placed, placedPin{Pin: p, At: Point{x, y}})
	}
	spread := radius * 1.2
	for _, k := range order {
		members := groups[k]
		if len(members) < 2 {
			continue
		}
		for i, pos := range members {
			a := 2*math.Pi*float64(i)/float64(len(members)) - math.Pi/2
			placed[pos].At.X += spread * math.Cos(a)
			placed[pos].At.Y += spread * math.Sin(a)
		}
	}
	return placed
}

// pickPin returns the pin whose rendered center is nearest to (x, y) within
// radius. Ties go to the pin drawn last.
func pickPin(placed []placedPin, x, y, radius float64) (placedPin, bool) {
	best := -1
	bestDist := radius
	for i := len(placed) - 1; i >= 0; i-- {
		d := math.Hypot(placed[i].At.X-x, placed[i].At.Y-y)
		if d <= radius && (best == -1 || d < bestDist) {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return placedPin{}, false
	}
	return placed[best], true
}

// pickCountry inverts (x, y) and returns the topmost region containing it.
// The focused country is drawn last in map mode, so it is tested first.
func pickCountry(proj *Projection, idx *geography.Index, x, y float64, focus string) (geography.Entry, bool) {
	if idx == nil {
		return geography.Entry{}, false
	}
	pt, ok := proj.Invert(x, y)
	if !ok {
		return geography.Entry{}, false
	}
	contains := func(e geography.Entry) bool {
		f := idx.Feature(e)
		if f == nil || !f.Bound.Contains(pt) {
			return false
		}
		return planar.MultiPolygonContains(f.Polygons, pt)
	}
	if focus != "" {
		if e, ok := idx.ByCountry(focus); ok && contains(e) {
			return e, true
		}
	}
	entries := idx.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if contains(entries[i]) {
			return entries[i], true
		}
	}
	return geography.Entry{}, false
}

// pointerCoordinate is the geographic point under (x, y), nil when the
// pointer is off the globe.
func pointerCoordinate(proj *Projection, x, y float64) *orb.Point {
	pt, ok := proj.Invert(x, y)
	if !ok {
		return nil
	}
	return &pt
}
