package globeengine

import (
	"log"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/sudorandom/travel-globe/pkg/geography"
	"github.com/sudorandom/travel-globe/pkg/travel"
)

type KeyAction int

const (
	KeyZoomIn KeyAction = iota
	KeyZoomOut
	KeyReset
)

// doubleClickSlop is how far apart two clicks may land and still pair up.
const doubleClickSlop = 5.0

// View ties the camera, scheduler and overlay together. All methods must be
// called from the frame loop goroutine.
type View struct {
	cfg     Config
	vp      Viewport
	camera  *Camera
	sched   *Scheduler
	metrics *Metrics
	diag    *diagnostics

	inputs   travel.Inputs
	layers   Layers
	features []geography.Feature
	idx      *geography.Index
	geoErr   error
	anchors  []countryAnchor

	// focus extent cache, keyed by country id
	extentFor string
	extent    *FocusExtent

	hovered   string
	lastClick pointerSample
	closed    bool

	OnCountrySelected func(countryID string)
	OnEventSelected   func(eventID string)
	OnMemberSelected  func(memberID string)
}

func NewView(cfg Config, inputs travel.Inputs) *View {
	m, err := NewMetrics(cfg.Metrics)
	if err != nil {
		log.Printf("[view] Metrics registration failed, using a private registry: %v", err)
		m, _ = NewMetrics(nil)
	}
	v := &View{
		cfg:     cfg,
		vp:      Viewport{Width: float64(cfg.Width), Height: float64(cfg.Height)},
		camera:  NewCamera(cfg),
		sched:   NewScheduler(m),
		metrics: m,
		diag:    newDiagnostics(m),
		inputs:  inputs,
	}
	// geometry may still supply centroids, so nothing is reported yet
	v.anchors = buildAnchors(inputs.Countries, nil, nil)
	v.camera.OnChange(v.sched.Invalidate)
	v.camera.SetFocusPicker(func(pointer *orb.Point, center orb.Point) string {
		return nearestCountry(v.anchors, pointer, center, cfg.PointerWeight, cfg.CenterWeight)
	})
	v.sched.Invalidate("mount")
	return v
}

func (v *View) Camera() *Camera       { return v.camera }
func (v *View) Metrics() *Metrics     { return v.metrics }
func (v *View) Inputs() travel.Inputs { return v.inputs }
func (v *View) Layers() Layers        { return v.layers }
func (v *View) Hovered() string       { return v.hovered }

// Projection builds the projection for the current camera state.
func (v *View) Projection() *Projection {
	return NewProjection(v.camera.Rotation(), v.camera.Zoom(), v.vp, v.cfg.baseScaleFor(v.vp), v.focusExtent())
}

func (v *View) focusExtent() *FocusExtent {
	id := v.camera.Focus()
	if id == "" || v.idx == nil {
		return nil
	}
	if v.extentFor == id {
		return v.extent
	}
	v.extentFor, v.extent = id, nil
	e, ok := v.idx.ByCountry(id)
	if !ok {
		return nil
	}
	f := v.idx.Feature(e)
	a, ok := findAnchor(v.anchors, id)
	if f == nil || !ok {
		return nil
	}
	ext := ExtentOf(f, a.Centroid)
	v.extent = &ext
	return v.extent
}

// anchorDiagnostics is nil while geometry is still loading.
func (v *View) anchorDiagnostics() *diagnostics {
	if v.idx == nil && v.geoErr == nil {
		return nil
	}
	return v.diag
}

// SetGeography installs loaded boundaries. Until it is called the view
// renders pins without country fills.
func (v *View) SetGeography(features []geography.Feature, idx *geography.Index) {
	v.features, v.idx, v.geoErr = features, idx, nil
	v.extentFor, v.extent = "", nil
	v.anchors = buildAnchors(v.inputs.Countries, idx, v.diag)
	v.sched.Invalidate("geometry")
}

// SetGeographyError records a total load failure. The view keeps rendering
// without country fills.
func (v *View) SetGeographyError(err error) {
	log.Printf("[view] Rendering without country outlines: %v", err)
	v.geoErr = err
	v.anchors = buildAnchors(v.inputs.Countries, nil, v.diag)
	v.sched.Invalidate("geometry")
}

// SetInputs replaces the external data snapshot. in must not be mutated by
// the caller afterwards.
func (v *View) SetInputs(in travel.Inputs) {
	v.inputs = in
	if v.features != nil {
		v.idx = geography.BuildIndex(v.features, in.Countries)
		v.extentFor, v.extent = "", nil
	}
	v.anchors = buildAnchors(in.Countries, v.idx, v.anchorDiagnostics())
	v.sched.Invalidate("data")
}

// SetLayers applies layer toggles. Members and events cannot both be on:
// whichever was just enabled wins.
func (v *View) SetLayers(l Layers) {
	if l.Members && l.Events {
		if v.layers.Events {
			l.Events = false
		} else {
			l.Members = false
		}
	}
	v.layers = l
	v.sched.Invalidate("layers")
}

func (v *View) Resize(w, h int) {
	vp := Viewport{Width: float64(w), Height: float64(h)}
	if vp == v.vp || w <= 0 || h <= 0 {
		return
	}
	v.vp = vp
	v.sched.Invalidate("resize")
}

func (v *View) PointerDown(x, y float64, now time.Time) {
	if v.closed {
		return
	}
	v.camera.PointerDown(x, y, now)
}

func (v *View) PointerMove(x, y float64, now time.Time) {
	if v.closed {
		return
	}
	v.camera.PointerMove(x, y, now)
}

// PointerUp ends a gesture. A release within the click slop is a click, and
// a second click close in time and space is a double-click.
func (v *View) PointerUp(x, y float64, now time.Time) {
	if v.closed || !v.camera.PointerUp(x, y, now) {
		return
	}
	prev := v.lastClick
	if !prev.t.IsZero() && now.Sub(prev.t) <= v.cfg.DoubleClickWindow &&
		math.Hypot(x-prev.x, y-prev.y) <= doubleClickSlop {
		v.lastClick = pointerSample{}
		v.DoubleClick(x, y, now)
		return
	}
	v.lastClick = pointerSample{x, y, now}
	v.Click(x, y)
}

// Wheel zooms in for positive dy. The pointer position steers the choice of
// focus country when the zoom enters map mode.
func (v *View) Wheel(dy, x, y float64, now time.Time) {
	if v.closed || dy == 0 || !finite(dy) {
		return
	}
	factor := v.cfg.ZoomStep
	if dy < 0 {
		factor = 1 / factor
	}
	v.camera.ZoomBy(factor, pointerCoordinate(v.Projection(), x, y), now)
}

func (v *View) Key(a KeyAction, now time.Time) {
	if v.closed {
		return
	}
	switch a {
	case KeyZoomIn:
		v.camera.ZoomBy(v.cfg.ZoomStep, nil, now)
	case KeyZoomOut:
		v.camera.ZoomBy(1/v.cfg.ZoomStep, nil, now)
	case KeyReset:
		v.camera.Reset(now)
	}
}

func (v *View) snapshot() Snapshot {
	return Gather(v.inputs, v.layers, v.camera.Focus())
}

func (v *View) layout(proj *Projection, snap Snapshot) []placedPin {
	pins := make([]Pin, 0, snap.PinCount())
	pins = append(pins, snap.Locations...)
	pins = append(pins, snap.Members...)
	pins = append(pins, snap.Events...)
	return layoutPins(proj, pins, v.cfg.PinRadius, v.diag)
}

// Click selects the pin or country under (x, y). Misses are ignored.
func (v *View) Click(x, y float64) {
	if v.closed {
		return
	}
	proj := v.Projection()
	if p, ok := pickPin(v.layout(proj, v.snapshot()), x, y, v.cfg.PinRadius); ok {
		switch p.Kind {
		case PinMember:
			emit(v.OnMemberSelected, p.ID)
		case PinEvent:
			emit(v.OnEventSelected, p.ID)
		default:
			emit(v.OnCountrySelected, p.CountryID)
		}
		return
	}
	if e, ok := pickCountry(proj, v.idx, x, y, v.camera.Focus()); ok {
		emit(v.OnCountrySelected, e.CountryID)
	}
}

// DoubleClick selects the country under (x, y) and flies to it.
func (v *View) DoubleClick(x, y float64, now time.Time) {
	if v.closed {
		return
	}
	e, ok := pickCountry(v.Projection(), v.idx, x, y, v.camera.Focus())
	if !ok || e.CountryID == "" {
		return
	}
	emit(v.OnCountrySelected, e.CountryID)
	v.FlyToCountry(e.CountryID, now)
}

// Hover highlights the pin under (x, y), if any.
func (v *View) Hover(x, y float64) {
	if v.closed {
		return
	}
	key := ""
	if p, ok := pickPin(v.layout(v.Projection(), v.snapshot()), x, y, v.cfg.PinRadius); ok {
		key = p.key()
	}
	if key != v.hovered {
		v.hovered = key
		v.sched.Invalidate("hover")
	}
}

// FlyToCountry animates to the country's centroid and focuses it on arrival
// in map mode. Unknown ids are ignored and report false.
func (v *View) FlyToCountry(id string, now time.Time) bool {
	if v.closed {
		return false
	}
	a, ok := findAnchor(v.anchors, id)
	if !ok {
		return false
	}
	return v.camera.FlyTo(a.Centroid, v.cfg.FlyToZoom, id, now)
}

// Frame advances the camera by one tick and reports whether a redraw is
// pending.
func (v *View) Frame(now time.Time) bool {
	if v.closed {
		return false
	}
	v.camera.Tick(now)
	if v.layers.Members || v.layers.Events {
		snap := v.snapshot()
		if len(snap.Members)+len(snap.Events) > 0 && animatedPins(v.layout(v.Projection(), snap)) {
			v.sched.Invalidate("pulse")
		}
	}
	return v.sched.Pending()
}

// Render redraws the whole frame into r if anything changed since the last
// redraw. It reports whether it drew.
func (v *View) Render(r Renderer, now time.Time) bool {
	if v.closed {
		return false
	}
	return v.sched.RunFrame(func() {
		proj := v.Projection()
		snap := v.snapshot()
		drawOverlay(r, &frame{
			cfg:     v.cfg,
			proj:    proj,
			inputs:  v.inputs,
			idx:     v.idx,
			geoErr:  v.geoErr,
			focus:   v.camera.Focus(),
			snap:    snap,
			pins:    v.layout(proj, snap),
			hovered: v.hovered,
			now:     now,
		})
	})
}

// Close cancels any camera motion. The view ignores all calls afterwards.
func (v *View) Close() {
	v.camera.Close()
	v.closed = true
}

func emit(fn func(string), id string) {
	if fn != nil && id != "" {
		fn(id)
	}
}
