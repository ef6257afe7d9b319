package globeengine

import (
	"hash/fnv"
	"image/color"
	"time"

	"github.com/paulmach/orb"

	"github.com/sudorandom/travel-globe/pkg/geography"
	"github.com/sudorandom/travel-globe/pkg/travel"
)

var (
	ColorSpace       = color.RGBA{6, 8, 18, 255}
	ColorOcean       = color.RGBA{16, 30, 56, 255}
	ColorGrid        = color.RGBA{160, 190, 230, 90}
	ColorBorder      = color.RGBA{10, 14, 24, 255}
	ColorFocusStroke = color.RGBA{255, 255, 255, 255}
	ColorLabel       = color.RGBA{235, 240, 250, 255}
	ColorMember      = color.RGBA{0, 191, 255, 255}  // Sky Blue
	ColorEvent       = color.RGBA{255, 90, 90, 255}  // Red
	ColorEdge        = color.RGBA{173, 255, 47, 200} // Lime Green
)

var statusColors = map[travel.Status]color.RGBA{
	travel.StatusNone:       {62, 70, 86, 255},
	travel.StatusVisited:    {46, 170, 120, 255},
	travel.StatusLived:      {245, 170, 40, 255},
	travel.StatusBucketList: {130, 110, 235, 255},
}

var categoryPalette = []color.RGBA{
	{255, 99, 71, 255},
	{255, 215, 0, 255},
	{64, 224, 208, 255},
	{238, 130, 238, 255},
	{135, 206, 250, 255},
	{255, 160, 122, 255},
}

func categoryColor(c string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(c))
	return categoryPalette[h.Sum32()%uint32(len(categoryPalette))]
}

// frame is everything one redraw reads. It is assembled by the view and
// discarded afterwards.
type frame struct {
	cfg     Config
	proj    *Projection
	inputs  travel.Inputs
	idx     *geography.Index
	geoErr  error
	focus   string
	snap    Snapshot
	pins    []placedPin
	hovered string
	now     time.Time
}

// drawOverlay paints one full frame back to front.
func drawOverlay(r Renderer, f *frame) {
	drawBackground(r, f)
	drawGrid(r, f)
	drawCountries(r, f)
	drawPins(r, f)
	drawEdges(r, f)
	drawLegend(r, f)
}

func rect(x0, y0, x1, y1 float64) []Point {
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func drawBackground(r Renderer, f *frame) {
	vp := f.proj.Viewport()
	full := [][]Point{rect(0, 0, vp.Width, vp.Height)}
	r.DrawPolygon(full, ColorSpace, color.RGBA{}, 0)

	tf := f.proj.TransitionFactor()
	if f.proj.Mode() == ModeMap {
		r.DrawPolygon(full, ColorOcean, color.RGBA{}, 0)
		return
	}
	if tf > 0 {
		r.DrawPolygon(full, fade(ColorOcean, tf), color.RGBA{}, 0)
	}
	cx, cy, radius := f.proj.GlobeCenter()
	r.DrawCircle(Point{cx, cy}, radius, fade(ColorOcean, 1-tf))
}

func gridOpacity(style MapStyle, tf float64) float64 {
	if style == StyleStandard {
		return 1
	}
	return tf * 0.5
}

func drawGrid(r Renderer, f *frame) {
	a := gridOpacity(f.cfg.Style, f.proj.TransitionFactor())
	if a <= 0 {
		return
	}
	c := fade(ColorGrid, a)
	for lon := -180.0; lon < 180; lon += 30 {
		line := make([]orb.Point, 0, 37)
		for lat := -90.0; lat <= 90; lat += 5 {
			line = append(line, orb.Point{lon, lat})
		}
		for _, run := range f.proj.ProjectPath(line) {
			r.DrawLine(run, 1, c)
		}
	}
	for lat := -60.0; lat <= 60; lat += 30 {
		line := make([]orb.Point, 0, 73)
		for lon := -180.0; lon <= 180; lon += 5 {
			line = append(line, orb.Point{lon, lat})
		}
		for _, run := range f.proj.ProjectPath(line) {
			r.DrawLine(run, 1, c)
		}
	}
}

func drawCountries(r Renderer, f *frame) {
	if f.idx == nil {
		return
	}
	mapMode := f.proj.Mode() == ModeMap
	var focused *geography.Entry
	for _, e := range f.idx.Entries() {
		if mapMode && e.CountryID != "" && e.CountryID == f.focus {
			e := e
			focused = &e
			continue
		}
		alpha := 0.9
		if mapMode && f.focus != "" {
			alpha = 0.35
		}
		drawCountry(r, f, e, alpha, ColorBorder, 0.5)
	}
	if focused != nil {
		drawCountry(r, f, *focused, 0.9, ColorFocusStroke, 2)
	}
}

func drawCountry(r Renderer, f *frame, e geography.Entry, alpha float64, stroke color.RGBA, width float64) {
	feat := f.idx.Feature(e)
	if feat == nil {
		return
	}
	fill := fade(statusColors[f.inputs.StatusOf(e.CountryID)], alpha)
	for _, poly := range feat.Polygons {
		rings := make([][]Point, 0, len(poly))
		for _, ring := range poly {
			pts, ok := f.proj.ProjectRing(ring)
			if !ok {
				continue
			}
			rings = append(rings, pts)
		}
		if len(rings) == 0 {
			continue
		}
		r.DrawPolygon(rings, fill, stroke, width)
	}
}

// pulse returns the animation phase in [0, 1).
func pulse(now time.Time, period time.Duration) float64 {
	if period <= 0 {
		return 0
	}
	return float64(now.UnixNano()%int64(period)) / float64(period)
}

func drawPins(r Renderer, f *frame) {
	showLabels := f.snap.PinCount() <= f.cfg.LabelPinThreshold
	radius := f.cfg.PinRadius
	phase := pulse(f.now, f.cfg.PulsePeriod)

	for _, p := range f.pins {
		hovered := p.key() == f.hovered
		switch p.Kind {
		case PinLocation:
			drawTeardrop(r, p.At, radius, categoryColor(p.Category), hovered)
		case PinMember:
			r.DrawCircle(p.At, radius*(1+phase), fade(ColorMember, (1-phase)*0.5))
			r.DrawCircle(p.At, radius*0.55, ColorMember)
			if hovered {
				r.DrawCircle(p.At, radius*0.25, ColorLabel)
			}
		case PinEvent:
			r.DrawCircle(p.At, radius*(1+phase), fade(ColorEvent, (1-phase)*0.4))
			drawFlag(r, p.At, radius, ColorEvent, hovered)
		}
		if hovered || showLabels {
			r.DrawText(p.Label, Point{p.At.X + radius + 4, p.At.Y - radius}, 12, ColorLabel)
		}
	}
}

// drawTeardrop draws a map marker whose tip sits on at.
func drawTeardrop(r Renderer, at Point, radius float64, c color.RGBA, hovered bool) {
	head := Point{at.X, at.Y - radius*1.6}
	tip := [][]Point{{
		{head.X - radius*0.8, head.Y + radius*0.4},
		{head.X + radius*0.8, head.Y + radius*0.4},
		at,
	}}
	stroke := color.RGBA{}
	if hovered {
		stroke = ColorFocusStroke
	}
	r.DrawPolygon(tip, c, stroke, 1)
	r.DrawCircle(head, radius, c)
	r.DrawCircle(head, radius*0.4, ColorSpace)
}

func drawFlag(r Renderer, at Point, radius float64, c color.RGBA, hovered bool) {
	top := Point{at.X, at.Y - radius*1.8}
	r.DrawLine([]Point{at, top}, 1.5, ColorLabel)
	cloth := [][]Point{rect(top.X, top.Y, top.X+radius*1.2, top.Y+radius*0.8)}
	stroke := color.RGBA{}
	if hovered {
		stroke = ColorFocusStroke
	}
	r.DrawPolygon(cloth, c, stroke, 1)
}

func drawEdges(r Renderer, f *frame) {
	seg := f.cfg.EdgeSegments
	for _, e := range f.snap.Edges {
		if !validCoordinate(e.From) || !validCoordinate(e.To) {
			// member pins already report their own coordinates
			continue
		}
		var path []orb.Point
		if f.proj.Mode() == ModeGlobe {
			path = greatCircle(e.From, e.To, seg)
		} else {
			path = []orb.Point{e.From, e.To}
		}
		c := ColorEdge
		if e.Category != "" {
			c = fade(categoryColor(e.Category), 0.8)
		}
		for _, run := range f.proj.ProjectPath(path) {
			r.DrawLine(run, 1.5, c)
		}
	}
}

func drawLegend(r Renderer, f *frame) {
	vp := f.proj.Viewport()
	margin, fontSize, spacing, swatch := 24.0, 14.0, 22.0, 14.0
	if vp.Width > 2000 {
		margin, fontSize, spacing, swatch = 48.0, 28.0, 44.0, 28.0
	}
	items := []travel.Status{travel.StatusVisited, travel.StatusLived, travel.StatusBucketList}
	ly := vp.Height - margin - float64(len(items))*spacing
	for i, s := range items {
		ty := ly + float64(i)*spacing
		r.DrawPolygon([][]Point{rect(margin, ty, margin+swatch, ty+swatch)}, statusColors[s], color.RGBA{}, 0)
		r.DrawText(statusLabel(s), Point{margin + swatch + 10, ty + swatch/2 - fontSize/2}, fontSize, fade(ColorLabel, 0.8))
	}
	if f.geoErr != nil {
		r.DrawText("Country outlines unavailable", Point{margin, margin}, fontSize, fade(ColorLabel, 0.6))
	}
	if f.proj.Mode() == ModeMap && f.focus != "" {
		if c, ok := f.inputs.CountryByID(f.focus); ok {
			r.DrawText(c.Name, Point{margin, margin + spacing}, fontSize*1.5, ColorLabel)
		}
	}
}

func statusLabel(s travel.Status) string {
	switch s {
	case travel.StatusVisited:
		return "Visited"
	case travel.StatusLived:
		return "Lived"
	case travel.StatusBucketList:
		return "Bucket list"
	default:
		return "Not visited"
	}
}

// animatedPins reports whether the frame shows pulsing markers.
func animatedPins(pins []placedPin) bool {
	for _, p := range pins {
		if p.Kind != PinLocation {
			return true
		}
	}
	return false
}
