package globeengine

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestLayoutFansOutCoincidentPins(t *testing.T) {
	proj := NewProjection(RotationState{Lon: 0, Lat: -20}, 1, vp800, 200, nil)
	spot := orb.Point{0, 20}
	pins := []Pin{
		{Kind: PinLocation, ID: "a", Coordinate: spot},
		{Kind: PinMember, ID: "a", Coordinate: spot},
		{Kind: PinEvent, ID: "a", Coordinate: spot},
		{Kind: PinLocation, ID: "alone", Coordinate: orb.Point{10, 20}},
	}
	placed := layoutPins(proj, pins, 9, newDiagnostics(nil))
	if len(placed) != 4 {
		t.Fatalf("placed %d pins, want 4", len(placed))
	}
	for i := 0; i < 3; i++ {
		d := math.Hypot(placed[i].At.X-400, placed[i].At.Y-300)
		if !approx(d, 9*1.2, 1e-6) {
			t.Errorf("pin %d sits %f px from the shared point, want %f", i, d, 9*1.2)
		}
	}
	// the first pin of a group goes straight up
	if !approx(placed[0].At.X, 400, 1e-6) || !approx(placed[0].At.Y, 300-9*1.2, 1e-6) {
		t.Errorf("first fanned pin at %v", placed[0].At)
	}
	x, y, _ := proj.Project(orb.Point{10, 20})
	if placed[3].At != (Point{x, y}) {
		t.Errorf("lone pin moved to %v, want (%f, %f)", placed[3].At, x, y)
	}
}

func TestLayoutDropsHiddenAndInvalidPins(t *testing.T) {
	proj := NewProjection(RotationState{Lon: 0, Lat: -20}, 1, vp800, 200, nil)
	pins := []Pin{
		{Kind: PinLocation, ID: "front", Coordinate: orb.Point{0, 20}},
		{Kind: PinLocation, ID: "back", Coordinate: orb.Point{180, -20}},
		{Kind: PinMember, ID: "nan", Coordinate: orb.Point{math.NaN(), 0}},
	}
	placed := layoutPins(proj, pins, 9, newDiagnostics(nil))
	if len(placed) != 1 || placed[0].ID != "front" {
		t.Errorf("placed %v, want only the front pin", placed)
	}
}

func TestPickPin(t *testing.T) {
	placed := []placedPin{
		{Pin: Pin{ID: "a"}, At: Point{100, 100}},
		{Pin: Pin{ID: "b"}, At: Point{110, 100}},
		{Pin: Pin{ID: "c"}, At: Point{105, 100}},
	}
	tests := []struct {
		x, y float64
		want string
	}{
		{100, 100, "a"},
		{111, 100, "b"},
		{104, 100, "c"},
		{200, 200, ""},
	}
	for _, tt := range tests {
		p, ok := pickPin(placed, tt.x, tt.y, 9)
		if tt.want == "" {
			if ok {
				t.Errorf("pickPin(%f, %f) = %q, want miss", tt.x, tt.y, p.ID)
			}
			continue
		}
		if !ok || p.ID != tt.want {
			t.Errorf("pickPin(%f, %f) = %q, want %q", tt.x, tt.y, p.ID, tt.want)
		}
	}
}

func TestPickCountry(t *testing.T) {
	in := testInputs()
	_, idx := testGeography(in.Countries)
	proj := NewProjection(RotationState{Lon: -135, Lat: -35}, 1, vp800, 200, nil)

	e, ok := pickCountry(proj, idx, 400, 300, "")
	if !ok || e.CountryID != "jp" || e.Code != "JP" {
		t.Errorf("pickCountry(center) = %+v, %v, want jp", e, ok)
	}
	if _, ok := pickCountry(proj, idx, 5, 5, ""); ok {
		t.Errorf("pickCountry off the globe hit")
	}
	if _, ok := pickCountry(proj, nil, 400, 300, ""); ok {
		t.Errorf("pickCountry without geometry hit")
	}
}
