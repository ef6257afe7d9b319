package globeengine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sudorandom/travel-globe/pkg/travel"
)

func TestFlyToCountryJapan(t *testing.T) {
	v := newTestView(t)
	if !v.FlyToCountry("jp", t0) {
		t.Fatalf("FlyToCountry(jp) = false")
	}
	runFrames(v, t0, 3*time.Second)

	want := RotationState{Lon: -138.25, Lat: -36.2, Roll: 0}
	if got := v.Camera().Rotation(); got != want {
		t.Errorf("Rotation() = %v, want %v", got, want)
	}
	if z := v.Camera().Zoom(); z != 3.5 {
		t.Errorf("Zoom() = %f, want 3.5", z)
	}
	if f := v.Camera().Focus(); f != "jp" {
		t.Errorf("Focus() = %q, want jp", f)
	}
}

func TestFlyToUnknownCountryIsNoop(t *testing.T) {
	v := newTestView(t)
	before := v.Camera().Rotation()
	if v.FlyToCountry("atlantis", t0) {
		t.Errorf("FlyToCountry(atlantis) = true")
	}
	if v.Camera().State() != StateIdle || v.Camera().Rotation() != before {
		t.Errorf("camera changed after an unknown fly-to")
	}
}

func TestWheelAutoFocusesNearestCountry(t *testing.T) {
	v := newTestView(t)
	// the view center starts at (0, 20); Nigeria is the closest centroid
	now := t0
	for i := 0; i < 5; i++ {
		v.Wheel(1, 400, 300, now)
	}
	if z := v.Camera().Zoom(); z >= ModeBoundary {
		t.Fatalf("Zoom() = %f after 5 steps, expected to stay on the globe", z)
	}
	if f := v.Camera().Focus(); f != "" {
		t.Fatalf("Focus() = %q before the boundary", f)
	}
	v.Wheel(1, 400, 300, now)
	if f := v.Camera().Focus(); f != "ng" {
		t.Errorf("Focus() after crossing = %q, want ng", f)
	}
	if v.Projection().Mode() != ModeMap {
		t.Errorf("Mode() = %v, want map", v.Projection().Mode())
	}

	v.Wheel(-1, 400, 300, now)
	if f := v.Camera().Focus(); f != "" {
		t.Errorf("Focus() after leaving map mode = %q, want empty", f)
	}
}

func TestNearestCountryBlend(t *testing.T) {
	anchors := []countryAnchor{
		{ID: "a", Centroid: orb.Point{0, 0}},
		{ID: "b", Centroid: orb.Point{40, 0}},
	}
	center := orb.Point{5, 0}
	if got := nearestCountry(anchors, nil, center, 0.7, 0.3); got != "a" {
		t.Errorf("nearest to center = %q, want a", got)
	}
	pointer := orb.Point{38, 0}
	if got := nearestCountry(anchors, &pointer, center, 0.7, 0.3); got != "b" {
		t.Errorf("blended nearest = %q, want b", got)
	}
	if got := nearestCountry(nil, &pointer, center, 0.7, 0.3); got != "" {
		t.Errorf("nearest with no anchors = %q", got)
	}
}

func TestCoincidentPinsHoverIndependently(t *testing.T) {
	in := testInputs()
	spot := orb.Point{0, 20} // view center
	in.Locations = map[string][]travel.Location{
		"fr": {
			{ID: "a", Name: "Cafe", Coordinate: spot, Category: "food"},
			{ID: "b", Name: "Bakery", Coordinate: spot, Category: "food"},
		},
	}
	v := NewView(testConfig(), in)
	pins := v.layout(v.Projection(), v.snapshot())
	if len(pins) != 2 {
		t.Fatalf("layout has %d pins, want 2", len(pins))
	}
	if pins[0].At == pins[1].At {
		t.Fatalf("coincident pins share a rendered center %v", pins[0].At)
	}

	for _, p := range pins {
		v.Hover(p.At.X, p.At.Y)
		if v.Hovered() != p.key() {
			t.Errorf("Hover at %v = %q, want %q", p.At, v.Hovered(), p.key())
		}
	}
	if pins[0].key() == pins[1].key() {
		t.Errorf("pins share a key")
	}

	rec := &recorder{}
	v.Render(rec, t0)
	labels := rec.count(func(c drawCall) bool { return c.op == "text" && (c.text == "Cafe" || c.text == "Bakery") })
	if labels != 2 {
		t.Errorf("drew %d pin labels, want 2 (small pin count)", labels)
	}
}

func TestClickSelectsCountryAndPins(t *testing.T) {
	v := newTestView(t)
	var countries, members []string
	v.OnCountrySelected = func(id string) { countries = append(countries, id) }
	v.OnMemberSelected = func(id string) { members = append(members, id) }

	// center the globe on France
	v.camera.rot = RotationState{Lon: -2.2, Lat: -46.2}
	v.Click(400, 300)
	if len(countries) != 1 || countries[0] != "fr" {
		t.Errorf("country clicks = %v, want [fr]", countries)
	}

	// off the disk is a miss
	v.Click(5, 5)
	if len(countries) != 1 {
		t.Errorf("click off the globe selected %v", countries[1:])
	}

	v.SetLayers(Layers{Members: true})
	proj := v.Projection()
	x, y, ok := proj.Project(orb.Point{4.83, 45.76})
	if !ok {
		t.Fatalf("member m2 not visible")
	}
	v.Click(x, y)
	if len(members) != 1 || members[0] != "m2" {
		t.Errorf("member clicks = %v, want [m2]", members)
	}
}

func TestDoubleClickFliesToCountry(t *testing.T) {
	v := newTestView(t)
	var selected []string
	v.OnCountrySelected = func(id string) { selected = append(selected, id) }
	v.camera.rot = RotationState{Lon: -135, Lat: -35}

	v.PointerDown(400, 300, t0)
	v.PointerUp(400, 300, t0.Add(50*time.Millisecond))
	v.PointerDown(401, 300, t0.Add(150*time.Millisecond))
	v.PointerUp(401, 300, t0.Add(200*time.Millisecond))

	if v.Camera().State() != StateFlyingTo {
		t.Fatalf("State() after double-click = %v, want flying-to", v.Camera().State())
	}
	if len(selected) != 2 || selected[0] != "jp" || selected[1] != "jp" {
		t.Errorf("selections = %v, want [jp jp]", selected)
	}
}

func TestMapModeHitTestPrefersFocus(t *testing.T) {
	v := newTestView(t)
	var selected []string
	v.OnCountrySelected = func(id string) { selected = append(selected, id) }
	v.FlyToCountry("jp", t0)
	runFrames(v, t0, 3*time.Second)

	// the fitted map keeps Japan's box centered
	v.Click(400, 300)
	if len(selected) != 1 || selected[0] != "jp" {
		t.Errorf("selections = %v, want [jp]", selected)
	}
}

func TestLayersAreExclusive(t *testing.T) {
	v := newTestView(t)
	v.SetLayers(Layers{Members: true})
	v.SetLayers(Layers{Members: true, Events: true})
	if l := v.Layers(); l.Members || !l.Events {
		t.Errorf("enabling events over members gave %+v", l)
	}
	v.SetLayers(Layers{Members: true, Events: true})
	if l := v.Layers(); !l.Members || l.Events {
		t.Errorf("enabling members over events gave %+v", l)
	}
}

func TestRenderCoalescesInvalidations(t *testing.T) {
	v := newTestView(t)
	if v.Frame(t0) {
		t.Fatalf("Frame() reported a pending redraw with nothing dirty")
	}
	v.Resize(1024, 768)
	v.SetLayers(Layers{Members: true})
	v.SetInputs(testInputs())

	if !v.Frame(t0) {
		t.Fatalf("Frame() reported nothing pending after mutations")
	}
	rec := &recorder{}
	if !v.Render(rec, t0) {
		t.Fatalf("Render() did not draw")
	}
	if v.Render(rec, t0) {
		t.Errorf("second Render() drew again without changes")
	}
	if got := testutil.ToFloat64(v.Metrics().InvalidationsCoalesced); got < 2 {
		t.Errorf("coalesced invalidations = %v, want at least 2", got)
	}
}

func TestRenderDrawOrder(t *testing.T) {
	v := newTestView(t)
	v.camera.rot = RotationState{Lon: -2.2, Lat: -46.2}
	v.SetLayers(Layers{Members: true})
	rec := &recorder{}
	v.Render(rec, t0)

	if len(rec.calls) == 0 || rec.calls[0].op != "polygon" || !sameRGB(rec.calls[0].fill, ColorSpace) {
		t.Fatalf("first call is not the background")
	}
	lived := statusColors[travel.StatusLived]
	france := rec.firstIndex(func(c drawCall) bool { return c.op == "polygon" && sameRGB(c.fill, lived) })
	member := rec.firstIndex(func(c drawCall) bool { return c.op == "circle" && sameRGB(c.fill, ColorMember) })
	edge := rec.firstIndex(func(c drawCall) bool {
		return c.op == "line" && (sameRGB(c.fill, categoryColor("friend")) || sameRGB(c.fill, categoryColor("family")))
	})
	if france < 0 || member < 0 || edge < 0 {
		t.Fatalf("missing layers: country=%d member=%d edge=%d", france, member, edge)
	}
	if !(france < member && member < edge) {
		t.Errorf("draw order country=%d member=%d edge=%d, want countries < members < edges", france, member, edge)
	}
	if rec.count(func(c drawCall) bool { return c.op == "line" && sameRGB(c.fill, ColorLabel) }) != 0 {
		t.Errorf("event flags drawn with the members layer on")
	}
}

func TestFocusedCountryDrawnLastInMapMode(t *testing.T) {
	v := newTestView(t)
	v.FlyToCountry("jp", t0)
	runFrames(v, t0, 3*time.Second)
	rec := &recorder{}
	v.Render(rec, t0.Add(3*time.Second))

	visited := statusColors[travel.StatusVisited]
	lived := statusColors[travel.StatusLived]
	// legend swatches share the status colors but have no stroke
	jp := rec.lastIndex(func(c drawCall) bool { return c.op == "polygon" && sameRGB(c.fill, visited) && c.stroke.A > 0 })
	fr := rec.lastIndex(func(c drawCall) bool { return c.op == "polygon" && sameRGB(c.fill, lived) && c.stroke.A > 0 })
	if jp < 0 {
		t.Fatalf("focused country not drawn")
	}
	if rec.calls[jp].stroke != ColorFocusStroke {
		t.Errorf("focused country stroke = %v, want %v", rec.calls[jp].stroke, ColorFocusStroke)
	}
	if fr >= 0 && fr > jp {
		t.Errorf("non-focused country drawn after the focused one")
	}
	if fr >= 0 && rec.calls[fr].fill.A >= rec.calls[jp].fill.A {
		t.Errorf("non-focused alpha %d not below focused alpha %d", rec.calls[fr].fill.A, rec.calls[jp].fill.A)
	}
}

func TestGeometryFailureStillDrawsPins(t *testing.T) {
	in := testInputs()
	v := NewView(testConfig(), in)
	v.SetGeographyError(errors.New("both sources down"))
	v.camera.rot = RotationState{Lon: -2.2, Lat: -46.2}
	rec := &recorder{}
	v.Render(rec, t0)

	for _, s := range []travel.Status{travel.StatusVisited, travel.StatusLived} {
		c := statusColors[s]
		fills := rec.count(func(d drawCall) bool { return d.op == "polygon" && sameRGB(d.fill, c) && len(d.rings[0]) > 4 })
		if fills != 0 {
			t.Errorf("drew %d country fills without geometry", fills)
		}
	}
	if rec.firstIndex(func(c drawCall) bool { return c.op == "text" && c.text == "Paris" }) < 0 {
		t.Errorf("location pin label for Paris not drawn")
	}
	if rec.firstIndex(func(c drawCall) bool { return c.op == "text" && c.text == "Country outlines unavailable" }) < 0 {
		t.Errorf("missing geometry note not drawn")
	}
}

func TestBadCoordinatesAreSkippedAndCountedOnce(t *testing.T) {
	in := testInputs()
	in.Locations["fr"] = append(in.Locations["fr"], travel.Location{ID: "broken", Name: "Broken", Coordinate: orb.Point{math.NaN(), 12}})
	v := NewView(testConfig(), in)
	v.camera.rot = RotationState{Lon: -2.2, Lat: -46.2}

	rec := &recorder{}
	v.Render(rec, t0)
	v.sched.Invalidate("test")
	v.Render(rec, t0)

	if got := testutil.ToFloat64(v.Metrics().ProjectionErrors.WithLabelValues("location")); got != 1 {
		t.Errorf("projection errors = %v, want 1", got)
	}
	if rec.firstIndex(func(c drawCall) bool { return c.op == "text" && c.text == "Paris" }) < 0 {
		t.Errorf("valid pins were not drawn")
	}
}

func TestPulsingMarkersKeepRedrawing(t *testing.T) {
	v := newTestView(t)
	v.camera.rot = RotationState{Lon: -2.2, Lat: -46.2}
	v.SetLayers(Layers{Events: true})
	v.Render(&recorder{}, t0)
	if !v.Frame(t0.Add(16 * time.Millisecond)) {
		t.Errorf("Frame() with visible event markers reported no redraw")
	}
}

func TestCloseStopsEverything(t *testing.T) {
	v := newTestView(t)
	v.FlyToCountry("jp", t0)
	v.Close()
	if v.Frame(t0.Add(time.Second)) {
		t.Errorf("Frame() after Close reported work")
	}
	if v.Render(&recorder{}, t0) {
		t.Errorf("Render() after Close drew")
	}
	if v.FlyToCountry("fr", t0) {
		t.Errorf("FlyToCountry after Close = true")
	}
}

func TestKeysZoomAndReset(t *testing.T) {
	v := newTestView(t)
	v.Key(KeyZoomIn, t0)
	if z := v.Camera().Zoom(); !approx(z, 1.2, 1e-12) {
		t.Errorf("Zoom() after KeyZoomIn = %f, want 1.2", z)
	}
	v.FlyToCountry("fr", t0)
	runFrames(v, t0, time.Second)
	v.Key(KeyReset, t0.Add(time.Second))

	c := v.Camera()
	if c.Rotation() != (RotationState{0, -20, 0}) || c.Zoom() != 1 || c.Focus() != "" || c.State() != StateIdle {
		t.Errorf("after Escape rotation=%v zoom=%f focus=%q state=%v", c.Rotation(), c.Zoom(), c.Focus(), c.State())
	}
}

func TestCancelledFlyToDoesNotScopeTheGlobe(t *testing.T) {
	v := newTestView(t)
	v.SetLayers(Layers{Members: true})
	v.FlyToCountry("jp", t0)
	now := runFrames(v, t0, 400*time.Millisecond)
	v.PointerDown(400, 300, now)
	v.PointerUp(400, 300, now)

	if f := v.Camera().Focus(); f != "" {
		t.Fatalf("Focus() after cancelling on the globe = %q, want empty", f)
	}
	if n := len(v.snapshot().Members); n != 3 {
		t.Errorf("globe shows %d members, want all 3", n)
	}

	v.camera.rot = RotationState{Lon: -2.2, Lat: -46.2}
	for i := 0; i < 10 && v.Projection().Mode() == ModeGlobe; i++ {
		v.Wheel(1, 400, 300, now)
	}
	if f := v.Camera().Focus(); f != "fr" {
		t.Errorf("Focus() after wheeling over France = %q, want fr", f)
	}
}

func friendEdgeRuns(rec *recorder) [][]Point {
	var runs [][]Point
	for _, c := range rec.calls {
		if c.op == "line" && sameRGB(c.fill, categoryColor("friend")) {
			runs = append(runs, c.pts)
		}
	}
	return runs
}

func TestEdgesFollowProjectionMode(t *testing.T) {
	layers := Layers{Members: true, Categories: map[string]bool{"friend": true}}

	t.Run("globe", func(t *testing.T) {
		v := newTestView(t)
		// France in front, Japan behind the horizon
		v.camera.rot = RotationState{Lon: 40, Lat: -46}
		v.SetLayers(layers)
		proj := v.Projection()
		if proj.Visible(orb.Point{135.5, 34.7}) {
			t.Fatalf("Japan member unexpectedly visible")
		}
		rec := &recorder{}
		v.Render(rec, t0)

		runs := friendEdgeRuns(rec)
		if len(runs) == 0 {
			t.Fatalf("no edge drawn")
		}
		total := 0
		for _, run := range runs {
			if len(run) <= 2 {
				t.Errorf("globe edge run has %d points, want a sampled arc", len(run))
			}
			total += len(run)
		}
		if total >= v.cfg.EdgeSegments+1 {
			t.Errorf("edge kept %d of %d samples, want the hidden end cut", total, v.cfg.EdgeSegments+1)
		}
		x, y, _ := proj.Project(orb.Point{4.83, 45.76})
		last := runs[len(runs)-1]
		if end := last[len(last)-1]; !approx(end.X, x, 1e-6) || !approx(end.Y, y, 1e-6) {
			t.Errorf("edge ends at %v, want the France member at (%f, %f)", end, x, y)
		}
	})

	t.Run("map", func(t *testing.T) {
		v := newTestView(t)
		v.SetLayers(layers)
		v.FlyToCountry("fr", t0)
		end := runFrames(v, t0, 3*time.Second)
		if v.Projection().Mode() != ModeMap {
			t.Fatalf("Mode() = %v, want map", v.Projection().Mode())
		}
		rec := &recorder{}
		v.Render(rec, end)

		runs := friendEdgeRuns(rec)
		if len(runs) != 1 || len(runs[0]) != 2 {
			t.Errorf("map edge runs = %v, want one straight segment", runs)
		}
	})
}

func TestCountriesWithoutCentroidAreReported(t *testing.T) {
	tests := []struct {
		name string
		load func(v *View, in travel.Inputs)
	}{
		{"geometry loaded", func(v *View, in travel.Inputs) {
			features, idx := testGeography(in.Countries)
			v.SetGeography(features, idx)
		}},
		{"geometry failed", func(v *View, in travel.Inputs) {
			v.SetGeographyError(errors.New("both sources down"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInputs()
			in.Countries = append(in.Countries, travel.CountryRecord{ID: "xx", Code: "XX", Name: "Nowhere", Centroid: orb.Point{math.NaN(), 10}})
			v := NewView(testConfig(), in)
			errs := v.Metrics().ProjectionErrors.WithLabelValues("country")
			if got := testutil.ToFloat64(errs); got != 0 {
				t.Fatalf("errors before geometry settled = %v, want 0", got)
			}

			tt.load(v, in)
			// a second rebuild must not count again
			v.SetInputs(in)

			if _, ok := findAnchor(v.anchors, "xx"); ok {
				t.Errorf("country without a centroid was kept")
			}
			if len(v.anchors) != 3 {
				t.Errorf("anchored %d countries, want 3", len(v.anchors))
			}
			if got := testutil.ToFloat64(errs); got != 1 {
				t.Errorf("country projection errors = %v, want 1", got)
			}
			if v.FlyToCountry("xx", t0) {
				t.Errorf("FlyToCountry(xx) = true")
			}
		})
	}
}
