package globeengine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/sudorandom/travel-globe/pkg/geography"
)

// RotationState is a d3-style rotation in degrees: the point (-Lon, -Lat)
// sits at the center of the view.
type RotationState struct {
	Lon, Lat, Roll float64
}

// ViewCenter is the geographic point currently at the middle of the view.
func (r RotationState) ViewCenter() orb.Point {
	return orb.Point{wrapLongitude(-r.Lon), clampLatitude(-r.Lat)}
}

func (r RotationState) normalized() RotationState {
	return RotationState{Lon: wrapLongitude(r.Lon), Lat: clampLatitude(r.Lat), Roll: r.Roll}
}

type Viewport struct {
	Width, Height float64
}

type Mode int

const (
	ModeGlobe Mode = iota
	ModeMap
)

func (m Mode) String() string {
	if m == ModeMap {
		return "map"
	}
	return "globe"
}

func ModeFor(zoom float64) Mode {
	if zoom >= ModeBoundary {
		return ModeMap
	}
	return ModeGlobe
}

// TransitionFactor ramps from 0 at zoom 1.5 to 1 at the mode boundary.
func TransitionFactor(zoom float64) float64 {
	return clamp((zoom-1.5)/1.0, 0, 1)
}

// mercator latitude limit
const maxMercatorLat = 85.05112878

// FocusExtent is the geometry a map-mode projection is fitted to. Bound
// longitudes are relative to Center so extents crossing the antimeridian
// stay contiguous.
type FocusExtent struct {
	Center orb.Point
	Bound  orb.Bound
}

// ExtentOf measures a feature around its centroid.
func ExtentOf(f *geography.Feature, centroid orb.Point) FocusExtent {
	b := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, poly := range f.Polygons {
		for _, ring := range poly {
			for _, p := range ring {
				rel := orb.Point{shortestDelta(centroid[0], p[0]), p[1]}
				b = b.Extend(rel)
			}
		}
	}
	if math.IsInf(b.Min[0], 0) {
		b = orb.Bound{}
	}
	return FocusExtent{Center: centroid, Bound: b}
}

// fitFraction is how much of the viewport a focused country fills at the mode boundary.
const fitFraction = 0.8

// Projection maps lon/lat to screen pixels for one frame. It is immutable.
type Projection struct {
	mode  Mode
	zoom  float64
	vp    Viewport
	scale float64
	rot   RotationState

	cosDPhi, sinDPhi, cosGamma, sinGamma float64

	// map mode: longitudes are taken relative to centerLon, then offset by midX/midY
	centerLon  float64
	midX, midY float64
	focused    bool
}

// NewProjection builds the projection for a camera state. focus is only
// consulted in map mode.
func NewProjection(rot RotationState, zoom float64, vp Viewport, baseScale float64, focus *FocusExtent) *Projection {
	rot = rot.normalized()
	zoom = clamp(zoom, MinZoom, MaxZoom)
	p := &Projection{
		mode: ModeFor(zoom),
		zoom: zoom,
		vp:   vp,
		rot:  rot,
	}
	dPhi, gamma := rot.Lat*degToRad, rot.Roll*degToRad
	p.cosDPhi, p.sinDPhi = math.Cos(dPhi), math.Sin(dPhi)
	p.cosGamma, p.sinGamma = math.Cos(gamma), math.Sin(gamma)

	if p.mode == ModeGlobe {
		p.scale = baseScale * math.Min(zoom, maxGlobeZoom)
		return p
	}

	if focus != nil && focus.Bound.Max[0] > focus.Bound.Min[0] && focus.Bound.Max[1] > focus.Bound.Min[1] {
		p.focused = true
		p.centerLon = focus.Center[0]
		minX, minY := mercator(orb.Point{focus.Bound.Min[0], focus.Bound.Min[1]})
		maxX, maxY := mercator(orb.Point{focus.Bound.Max[0], focus.Bound.Max[1]})
		k := fitFraction * math.Min(vp.Width/(maxX-minX), vp.Height/(maxY-minY))
		p.scale = k * zoom / ModeBoundary
		p.midX, p.midY = (minX+maxX)/2, (minY+maxY)/2
		return p
	}

	center := rot.ViewCenter()
	p.centerLon = center[0]
	_, p.midY = mercator(orb.Point{0, center[1]})
	p.scale = baseScale * zoom
	return p
}

// mercator returns spherical mercator coordinates in radians.
func mercator(p orb.Point) (x, y float64) {
	p[1] = clamp(p[1], -maxMercatorLat, maxMercatorLat)
	m := project.WGS84.ToMercator(p)
	return m[0] / orb.EarthRadius, m[1] / orb.EarthRadius
}

func inverseMercator(x, y float64) orb.Point {
	return project.Mercator.ToWGS84(orb.Point{x * orb.EarthRadius, y * orb.EarthRadius})
}

func (p *Projection) Mode() Mode                { return p.mode }
func (p *Projection) Zoom() float64             { return p.zoom }
func (p *Projection) Scale() float64            { return p.scale }
func (p *Projection) Viewport() Viewport        { return p.vp }
func (p *Projection) Rotation() RotationState   { return p.rot }
func (p *Projection) ViewCenter() orb.Point     { return p.rot.ViewCenter() }
func (p *Projection) TransitionFactor() float64 { return TransitionFactor(p.zoom) }
func (p *Projection) Focused() bool             { return p.focused }

// Visible applies hemisphere culling in globe mode. Every valid point is
// visible in map mode.
func (p *Projection) Visible(pt orb.Point) bool {
	if !validCoordinate(pt) {
		return false
	}
	if p.mode == ModeMap {
		return true
	}
	return angularDistance(pt, p.rot.ViewCenter()) < 90
}

// Project maps pt to screen coordinates. ok is false for invalid input and
// for far-side points in globe mode.
func (p *Projection) Project(pt orb.Point) (x, y float64, ok bool) {
	if !p.Visible(pt) {
		return 0, 0, false
	}
	if p.mode == ModeGlobe {
		gx, gy := p.orthographic(pt)
		x, y = p.toScreen(gx, gy)
	} else {
		x, y = p.mapXY(shortestDelta(p.centerLon, pt[0]), pt[1])
	}
	if !finite(x) || !finite(y) {
		return 0, 0, false
	}
	return x, y, true
}

// GlobeCenter is the screen position and radius of the globe disk.
func (p *Projection) GlobeCenter() (x, y, r float64) {
	return p.vp.Width / 2, p.vp.Height / 2, p.scale
}

func (p *Projection) toScreen(gx, gy float64) (float64, float64) {
	return p.vp.Width/2 + p.scale*gx, p.vp.Height/2 - p.scale*gy
}

// rotate applies the rotation and returns the rotated lon/lat in radians.
func (p *Projection) rotate(pt orb.Point) (lambda, phi float64) {
	lambda = (pt[0] + p.rot.Lon) * degToRad
	phi = pt[1] * degToRad
	cosPhi := math.Cos(phi)
	x := math.Cos(lambda) * cosPhi
	y := math.Sin(lambda) * cosPhi
	z := math.Sin(phi)
	k := z*p.cosDPhi + x*p.sinDPhi
	return math.Atan2(y*p.cosGamma-k*p.sinGamma, x*p.cosDPhi-z*p.sinDPhi),
		math.Asin(clamp(k*p.cosGamma+y*p.sinGamma, -1, 1))
}

func (p *Projection) orthographic(pt orb.Point) (gx, gy float64) {
	lambda, phi := p.rotate(pt)
	return math.Cos(phi) * math.Sin(lambda), math.Sin(phi)
}

func (p *Projection) mapXY(relLon, lat float64) (float64, float64) {
	mx, my := mercator(orb.Point{relLon, lat})
	return p.vp.Width/2 + p.scale*(mx-p.midX), p.vp.Height/2 - p.scale*(my-p.midY)
}

// Invert maps a screen position back to lon/lat. In globe mode positions
// off the disk miss.
func (p *Projection) Invert(x, y float64) (orb.Point, bool) {
	if !finite(x) || !finite(y) || p.scale <= 0 {
		return orb.Point{}, false
	}
	if p.mode == ModeMap {
		mx := (x-p.vp.Width/2)/p.scale + p.midX
		my := p.midY - (y-p.vp.Height/2)/p.scale
		ll := inverseMercator(mx, my)
		if math.Abs(ll[0]) > 180 {
			// beyond one full turn from the center
			return orb.Point{}, false
		}
		return orb.Point{wrapLongitude(ll[0] + p.centerLon), ll[1]}, true
	}

	gx := (x - p.vp.Width/2) / p.scale
	gy := (p.vp.Height/2 - y) / p.scale
	rho2 := gx*gx + gy*gy
	if rho2 > 1 {
		return orb.Point{}, false
	}
	lambda := math.Atan2(gx, math.Sqrt(1-rho2))
	phi := math.Asin(clamp(gy, -1, 1))

	cosPhi := math.Cos(phi)
	vx := math.Cos(lambda) * cosPhi
	vy := math.Sin(lambda) * cosPhi
	vz := math.Sin(phi)
	k := vz*p.cosGamma - vy*p.sinGamma
	lon := math.Atan2(vy*p.cosGamma+vz*p.sinGamma, vx*p.cosDPhi+k*p.sinDPhi)*radToDeg - p.rot.Lon
	lat := math.Asin(clamp(k*p.cosDPhi-vx*p.sinDPhi, -1, 1)) * radToDeg
	return orb.Point{wrapLongitude(lon), lat}, true
}

// ProjectRing projects a polygon ring for filling. In globe mode far-side
// vertices are pushed onto the horizon; in map mode longitudes are
// unwrapped so rings crossing the seam stay contiguous. ok is false when
// nothing of the ring is on screen.
func (p *Projection) ProjectRing(ring orb.Ring) ([]Point, bool) {
	out := make([]Point, 0, len(ring))
	visible := 0
	if p.mode == ModeGlobe {
		center := p.rot.ViewCenter()
		for _, v := range ring {
			if !validCoordinate(v) {
				continue
			}
			gx, gy := p.orthographic(v)
			if angularDistance(v, center) < 90 {
				visible++
			} else {
				l := math.Hypot(gx, gy)
				if l < 1e-9 {
					continue
				}
				gx, gy = gx/l, gy/l
			}
			x, y := p.toScreen(gx, gy)
			out = append(out, Point{x, y})
		}
		return out, visible > 0 && len(out) >= 3
	}

	var rel, prevLon float64
	for i, v := range ring {
		if !validCoordinate(v) {
			continue
		}
		if i == 0 || len(out) == 0 {
			rel = shortestDelta(p.centerLon, v[0])
		} else {
			rel += shortestDelta(prevLon, v[0])
		}
		prevLon = v[0]
		x, y := p.mapXY(rel, v[1])
		if x >= 0 && x <= p.vp.Width && y >= 0 && y <= p.vp.Height {
			visible++
		}
		out = append(out, Point{x, y})
	}
	if visible == 0 && len(out) >= 3 {
		// a ring can cover the viewport without any vertex inside it
		visible = boundsOverlap(out, p.vp)
	}
	return out, visible > 0 && len(out) >= 3
}

func boundsOverlap(pts []Point, vp Viewport) int {
	minX, minY, maxX, maxY := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, pt := range pts {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	if maxX < 0 || minX > vp.Width || maxY < 0 || minY > vp.Height {
		return 0
	}
	return 1
}

// ProjectPath projects a polyline, splitting it wherever a vertex is culled
// or invalid. Map-mode longitudes are unwrapped along the path.
func (p *Projection) ProjectPath(pts []orb.Point) [][]Point {
	var runs [][]Point
	var cur []Point
	flush := func() {
		if len(cur) >= 2 {
			runs = append(runs, cur)
		}
		cur = nil
	}

	if p.mode == ModeGlobe {
		for _, v := range pts {
			x, y, ok := p.Project(v)
			if !ok {
				flush()
				continue
			}
			cur = append(cur, Point{x, y})
		}
		flush()
		return runs
	}

	var rel, prevLon float64
	for _, v := range pts {
		if !validCoordinate(v) {
			flush()
			continue
		}
		if len(cur) == 0 {
			rel = shortestDelta(p.centerLon, v[0])
		} else {
			rel += shortestDelta(prevLon, v[0])
		}
		prevLon = v[0]
		x, y := p.mapXY(rel, v[1])
		cur = append(cur, Point{x, y})
	}
	flush()
	return runs
}
