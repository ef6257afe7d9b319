package globeengine

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/sudorandom/travel-globe/pkg/geography"
	"github.com/sudorandom/travel-globe/pkg/travel"
)

type drawCall struct {
	op     string
	rings  [][]Point
	pts    []Point
	center Point
	radius float64
	fill   color.RGBA
	stroke color.RGBA
	text   string
}

// recorder is a Renderer that keeps every call for inspection.
type recorder struct {
	calls []drawCall
}

func (r *recorder) DrawPolygon(rings [][]Point, fill, stroke color.RGBA, width float64) {
	r.calls = append(r.calls, drawCall{op: "polygon", rings: rings, fill: fill, stroke: stroke})
}

func (r *recorder) DrawCircle(center Point, radius float64, fill color.RGBA) {
	r.calls = append(r.calls, drawCall{op: "circle", center: center, radius: radius, fill: fill})
}

func (r *recorder) DrawLine(pts []Point, width float64, c color.RGBA) {
	r.calls = append(r.calls, drawCall{op: "line", pts: pts, fill: c})
}

func (r *recorder) DrawText(s string, at Point, size float64, c color.RGBA) {
	r.calls = append(r.calls, drawCall{op: "text", pts: []Point{at}, text: s, fill: c})
}

// firstIndex returns the index of the first call matching fn, -1 if none.
func (r *recorder) firstIndex(fn func(drawCall) bool) int {
	for i, c := range r.calls {
		if fn(c) {
			return i
		}
	}
	return -1
}

func (r *recorder) lastIndex(fn func(drawCall) bool) int {
	for i := len(r.calls) - 1; i >= 0; i-- {
		if fn(r.calls[i]) {
			return i
		}
	}
	return -1
}

func (r *recorder) count(fn func(drawCall) bool) int {
	n := 0
	for _, c := range r.calls {
		if fn(c) {
			n++
		}
	}
	return n
}

func sameRGB(a, b color.RGBA) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 800, 600
	cfg.BaseScale = 200
	return cfg
}

func square(lon0, lat0, lon1, lat1 float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{
		{lon0, lat0}, {lon1, lat0}, {lon1, lat1}, {lon0, lat1}, {lon0, lat0},
	}}}
}

// testGeography has Japan (392) and France (250) as rough boxes.
func testGeography(dir []travel.CountryRecord) ([]geography.Feature, *geography.Index) {
	jp := square(130, 30, 140, 40)
	fr := square(-4, 43, 8, 51)
	features := []geography.Feature{
		{ID: 392, Name: "Japan", Polygons: jp, Bound: jp.Bound()},
		{ID: 250, Name: "France", Polygons: fr, Bound: fr.Bound()},
	}
	return features, geography.BuildIndex(features, dir)
}

func testInputs() travel.Inputs {
	return travel.Inputs{
		Countries: []travel.CountryRecord{
			{ID: "jp", Code: "JP", Name: "Japan", Centroid: orb.Point{138.25, 36.2}},
			{ID: "fr", Code: "FR", Name: "France", Centroid: orb.Point{2.2, 46.2}},
			{ID: "ng", Code: "NG", Name: "Nigeria", Centroid: orb.Point{8.7, 9.1}},
		},
		Statuses: map[string]travel.Status{
			"jp": travel.StatusVisited,
			"fr": travel.StatusLived,
		},
		Locations: map[string][]travel.Location{
			"jp": {{ID: "tokyo", Name: "Tokyo", Coordinate: orb.Point{139.69, 35.69}, Category: "city"}},
			"fr": {{ID: "paris", Name: "Paris", Coordinate: orb.Point{2.35, 48.85}, Category: "city"}},
		},
		Members: []travel.Member{
			{ID: "m1", Name: "Aiko", Coordinate: orb.Point{135.5, 34.7}, CountryCode: "JP"},
			{ID: "m2", Name: "Luc", Coordinate: orb.Point{4.83, 45.76}, CountryCode: "FR"},
			{ID: "m3", Name: "Ada", Coordinate: orb.Point{3.38, 6.52}, CountryCode: "NG"},
		},
		Relationships: []travel.Relationship{
			{FromID: "m1", ToID: "m2", Category: "friend"},
			{FromID: "m2", ToID: "m3", Category: "family"},
		},
		Events: []travel.Event{
			{ID: "e1", Title: "Kyoto meetup", Coordinate: orb.Point{135.77, 35.01}, CountryCode: "JP", StartDate: t0.Add(72 * time.Hour)},
			{ID: "e2", Title: "Lyon dinner", Coordinate: orb.Point{4.83, 45.76}, CountryCode: "FR", StartDate: t0.Add(96 * time.Hour)},
		},
	}
}

// newTestView returns a view with geometry loaded and the mount redraw consumed.
func newTestView(t *testing.T) *View {
	t.Helper()
	in := testInputs()
	v := NewView(testConfig(), in)
	features, idx := testGeography(in.Countries)
	v.SetGeography(features, idx)
	v.Render(&recorder{}, t0)
	return v
}

// runFrames ticks the view every 16ms for d and returns the end time.
func runFrames(v *View, from time.Time, d time.Duration) time.Time {
	now := from
	for end := from.Add(d); !now.After(end); now = now.Add(16 * time.Millisecond) {
		v.Frame(now)
	}
	return now
}
