package globeengine

import "image/color"

// Point is a screen position in pixels.
type Point struct {
	X, Y float64
}

// Renderer is the drawing surface the overlay targets. Colors are straight
// (not premultiplied) RGBA.
type Renderer interface {
	// DrawPolygon fills rings with the even-odd rule, so inner rings cut
	// holes whatever their winding. A zero-alpha stroke skips the outline.
	DrawPolygon(rings [][]Point, fill, stroke color.RGBA, strokeWidth float64)
	DrawCircle(center Point, radius float64, fill color.RGBA)
	DrawLine(pts []Point, width float64, c color.RGBA)
	DrawText(s string, at Point, size float64, c color.RGBA)
}

// fade scales the alpha of c by a.
func fade(c color.RGBA, a float64) color.RGBA {
	c.A = uint8(clamp(float64(c.A)*a, 0, 255))
	return c
}
