package globeengine

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var whiteSubImage *ebiten.Image

// solidImage returns the center pixel of a 3x3 white image so sampling never
// touches the texture edge.
func solidImage() *ebiten.Image {
	if whiteSubImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(img.Bounds().Inset(1)).(*ebiten.Image)
	}
	return whiteSubImage
}

// ImageRenderer draws onto an ebiten image.
type ImageRenderer struct {
	dst  *ebiten.Image
	font *text.GoTextFaceSource

	vs []ebiten.Vertex
	is []uint16
}

func NewImageRenderer(dst *ebiten.Image, font *text.GoTextFaceSource) *ImageRenderer {
	return &ImageRenderer{dst: dst, font: font}
}

// fillMesh triangulates rings into a single-color mesh. Inner rings cut
// holes under the even-odd rule of fillOptions.
func fillMesh(rings [][]Point, fill color.RGBA, vs []ebiten.Vertex, is []uint16) ([]ebiten.Vertex, []uint16) {
	var path vector.Path
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		path.MoveTo(float32(ring[0].X), float32(ring[0].Y))
		for _, p := range ring[1:] {
			path.LineTo(float32(p.X), float32(p.Y))
		}
		path.Close()
	}
	vs, is = path.AppendVerticesAndIndicesForFilling(vs[:0], is[:0])
	cr, cg, cb, ca := float32(fill.R)/255, float32(fill.G)/255, float32(fill.B)/255, float32(fill.A)/255
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = cr
		vs[i].ColorG = cg
		vs[i].ColorB = cb
		vs[i].ColorA = ca
	}
	return vs, is
}

func fillOptions() *ebiten.DrawTrianglesOptions {
	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	// holes are wound either way in the source data
	op.FillRule = ebiten.FillRuleEvenOdd
	return op
}

func (r *ImageRenderer) DrawPolygon(rings [][]Point, fill, stroke color.RGBA, strokeWidth float64) {
	if fill.A > 0 {
		r.vs, r.is = fillMesh(rings, fill, r.vs, r.is)
		if len(r.is) > 0 {
			r.dst.DrawTriangles(r.vs, r.is, solidImage(), fillOptions())
		}
	}
	if stroke.A == 0 || strokeWidth <= 0 {
		return
	}
	for _, ring := range rings {
		for i := range ring {
			a, b := ring[i], ring[(i+1)%len(ring)]
			vector.StrokeLine(r.dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(strokeWidth), stroke, true)
		}
	}
}

func (r *ImageRenderer) DrawCircle(center Point, radius float64, fill color.RGBA) {
	if fill.A == 0 || radius <= 0 {
		return
	}
	vector.DrawFilledCircle(r.dst, float32(center.X), float32(center.Y), float32(radius), fill, true)
}

func (r *ImageRenderer) DrawLine(pts []Point, width float64, c color.RGBA) {
	if c.A == 0 {
		return
	}
	for i := 1; i < len(pts); i++ {
		vector.StrokeLine(r.dst, float32(pts[i-1].X), float32(pts[i-1].Y), float32(pts[i].X), float32(pts[i].Y), float32(width), c, true)
	}
}

func (r *ImageRenderer) DrawText(s string, at Point, size float64, c color.RGBA) {
	if r.font == nil || s == "" {
		return
	}
	face := &text.GoTextFace{Source: r.font, Size: size}
	op := &text.DrawOptions{}
	op.GeoM.Translate(at.X, at.Y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(r.dst, s, face, op)
}
