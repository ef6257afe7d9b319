package globeengine

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// wrapLongitude maps any finite longitude into (-180, 180].
func wrapLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon <= 0 {
		lon += 360
	}
	return lon - 180
}

func clampLatitude(lat float64) float64 {
	return clamp(lat, -90, 90)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// shortestDelta returns to-from normalized into [-180, 180].
func shortestDelta(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validCoordinate reports whether p is a finite lon/lat within the usual ranges.
func validCoordinate(p orb.Point) bool {
	return finite(p[0]) && finite(p[1]) &&
		p[0] >= -180 && p[0] <= 180 && p[1] >= -90 && p[1] <= 90
}

func toVector(p orb.Point) (x, y, z float64) {
	lon, lat := p[0]*degToRad, p[1]*degToRad
	cosLat := math.Cos(lat)
	return cosLat * math.Cos(lon), cosLat * math.Sin(lon), math.Sin(lat)
}

// angularDistance is the great-circle distance between a and b in degrees.
func angularDistance(a, b orb.Point) float64 {
	ax, ay, az := toVector(a)
	bx, by, bz := toVector(b)
	dot := clamp(ax*bx+ay*by+az*bz, -1, 1)
	return math.Acos(dot) * radToDeg
}

// greatCircle samples n+1 points along the shortest arc from a to b.
func greatCircle(a, b orb.Point, n int) []orb.Point {
	if n < 1 {
		n = 1
	}
	ax, ay, az := toVector(a)
	bx, by, bz := toVector(b)
	d := math.Acos(clamp(ax*bx+ay*by+az*bz, -1, 1))
	sinD := math.Sin(d)
	if sinD < 1e-9 {
		// identical or antipodal: no unique arc
		return []orb.Point{a, b}
	}
	pts := make([]orb.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		ka := math.Sin((1-f)*d) / sinD
		kb := math.Sin(f*d) / sinD
		x := ka*ax + kb*bx
		y := ka*ay + kb*by
		z := ka*az + kb*bz
		pts = append(pts, orb.Point{
			math.Atan2(y, x) * radToDeg,
			math.Atan2(z, math.Sqrt(x*x+y*y)) * radToDeg,
		})
	}
	return pts
}
