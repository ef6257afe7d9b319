package globeengine

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

type CameraState int

const (
	StateIdle CameraState = iota
	StateDragging
	StateInertia
	StateAutoRotating
	StateFlyingTo
)

func (s CameraState) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateInertia:
		return "inertia"
	case StateAutoRotating:
		return "auto-rotating"
	case StateFlyingTo:
		return "flying-to"
	default:
		return "idle"
	}
}

// motion is the single in-flight camera animation. Starting a new one
// cancels the previous handle.
type motion struct {
	kind      CameraState
	cancelled bool

	// inertia, degrees per frame
	vLon, vLat float64

	// fly-to
	start            time.Time
	duration         time.Duration
	from, to         RotationState
	lonDelta         float64
	fromZoom, toZoom float64

	// country focused once the flight reaches map mode or lands
	focus string
}

func (m *motion) cancel() {
	if m != nil {
		m.cancelled = true
	}
}

// FocusPicker chooses the country to focus when zoom enters map mode. pointer
// is nil when the zoom was not driven by a pointer.
type FocusPicker func(pointer *orb.Point, center orb.Point) string

type pointerSample struct {
	x, y float64
	t    time.Time
}

// Camera owns rotation, zoom and the focused country. It is driven by one
// Tick per frame and never schedules work on its own.
type Camera struct {
	cfg  Config
	rot  RotationState
	zoom float64
	// focused country id, empty when none
	focus string

	motion *motion

	dragging     bool
	dragOrigin   pointerSample
	dragRot      RotationState
	prev, last   pointerSample
	dragDistance float64
	lastActivity time.Time
	closed       bool

	pick     FocusPicker
	onChange func(reason string)
}

func NewCamera(cfg Config) *Camera {
	return &Camera{
		cfg:  cfg,
		rot:  cfg.DefaultRotation.normalized(),
		zoom: 1,
	}
}

// SetFocusPicker installs the nearest-country lookup used on zoom crossings.
func (c *Camera) SetFocusPicker(p FocusPicker) { c.pick = p }

// OnChange is called with a reason whenever camera state changes.
func (c *Camera) OnChange(fn func(reason string)) { c.onChange = fn }

func (c *Camera) Rotation() RotationState { return c.rot }
func (c *Camera) Zoom() float64           { return c.zoom }
func (c *Camera) Focus() string           { return c.focus }
func (c *Camera) Mode() Mode              { return ModeFor(c.zoom) }

func (c *Camera) State() CameraState {
	if c.dragging {
		return StateDragging
	}
	if c.motion != nil && !c.motion.cancelled {
		return c.motion.kind
	}
	return StateIdle
}

func (c *Camera) changed(reason string) {
	if c.onChange != nil {
		c.onChange(reason)
	}
}

func (c *Camera) setRotation(r RotationState) {
	r = r.normalized()
	if r == c.rot {
		return
	}
	c.rot = r
	c.changed("rotation")
}

// setZoom clamps z and handles the globe/map boundary: entering map mode
// without a focus picks one, leaving it clears the focus.
func (c *Camera) setZoom(z float64, pointer *orb.Point) {
	if !finite(z) {
		return
	}
	z = clamp(z, MinZoom, MaxZoom)
	if z == c.zoom {
		return
	}
	old := c.zoom
	c.zoom = z
	switch {
	case old < ModeBoundary && z >= ModeBoundary && c.focus == "":
		if c.pick != nil {
			c.setFocus(c.pick(pointer, c.rot.ViewCenter()))
		}
	case old >= ModeBoundary && z < ModeBoundary:
		c.setFocus("")
	}
	c.changed("zoom")
}

// SetFocus sets or clears the focused country.
func (c *Camera) SetFocus(id string) { c.setFocus(id) }

func (c *Camera) setFocus(id string) {
	if id == c.focus {
		return
	}
	c.focus = id
	c.changed("focus")
}

func (c *Camera) start(m *motion) {
	c.motion.cancel()
	c.motion = m
}

func (c *Camera) stop() {
	c.motion.cancel()
	c.motion = nil
}

// PointerDown starts a drag and cancels any running motion.
func (c *Camera) PointerDown(x, y float64, now time.Time) {
	if c.closed {
		return
	}
	c.stop()
	c.dragging = true
	s := pointerSample{x, y, now}
	c.dragOrigin, c.prev, c.last = s, s, s
	c.dragRot = c.rot
	c.dragDistance = 0
	c.lastActivity = now
}

func (c *Camera) PointerMove(x, y float64, now time.Time) {
	if c.closed || !c.dragging {
		return
	}
	c.prev = c.last
	c.last = pointerSample{x, y, now}
	c.dragDistance = math.Max(c.dragDistance, math.Hypot(x-c.dragOrigin.x, y-c.dragOrigin.y))
	c.lastActivity = now

	s := c.cfg.DragSensitivity
	c.setRotation(RotationState{
		Lon:  c.dragRot.Lon + (x-c.dragOrigin.x)*s,
		Lat:  clampLatitude(c.dragRot.Lat - (y-c.dragOrigin.y)*s),
		Roll: c.dragRot.Roll,
	})
}

// PointerUp ends a drag. It reports whether the gesture stayed within the
// click slop, in which case the host should treat it as a click.
func (c *Camera) PointerUp(x, y float64, now time.Time) (click bool) {
	if c.closed || !c.dragging {
		return false
	}
	if x != c.last.x || y != c.last.y {
		c.PointerMove(x, y, now)
	}
	c.dragging = false
	c.lastActivity = now
	click = c.dragDistance < c.cfg.ClickSlop

	vLon, vLat := c.releaseVelocity(now)
	if math.Hypot(vLon, vLat) > c.cfg.InertiaEpsilon && !click {
		c.start(&motion{kind: StateInertia, vLon: vLon, vLat: vLat})
		c.changed("inertia")
	}
	return click
}

// releaseVelocity estimates degrees per frame from the last two samples.
func (c *Camera) releaseVelocity(now time.Time) (float64, float64) {
	if c.cfg.StaleRelease > 0 && now.Sub(c.last.t) > c.cfg.StaleRelease {
		return 0, 0
	}
	dt := c.last.t.Sub(c.prev.t).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	fps := float64(c.cfg.FPS)
	if fps <= 0 {
		fps = 60
	}
	s := c.cfg.DragSensitivity
	return (c.last.x - c.prev.x) * s / dt / fps, -(c.last.y - c.prev.y) * s / dt / fps
}

// ZoomBy multiplies the zoom by factor. Fly-to and auto-rotation are
// cancelled; inertia keeps running. pointer is the geographic position under
// the cursor for wheel zoom, nil otherwise.
func (c *Camera) ZoomBy(factor float64, pointer *orb.Point, now time.Time) {
	if c.closed || !finite(factor) || factor <= 0 {
		return
	}
	if c.motion != nil && c.motion.kind != StateInertia {
		c.stop()
	}
	c.lastActivity = now
	c.setZoom(c.zoom*factor, pointer)
}

// Reset restores the mount state.
func (c *Camera) Reset(now time.Time) {
	if c.closed {
		return
	}
	c.stop()
	c.dragging = false
	c.lastActivity = now
	c.setFocus("")
	c.setZoom(1, nil)
	c.setRotation(c.cfg.DefaultRotation)
	c.changed("reset")
}

// FlyTo animates the view center to target and the zoom to zoom. focus, when
// set, becomes the focused country once the flight enters map mode or
// completes. A flight cancelled on the globe leaves the focus untouched.
func (c *Camera) FlyTo(target orb.Point, zoom float64, focus string, now time.Time) bool {
	if c.closed || !validCoordinate(target) || !finite(zoom) {
		return false
	}
	c.dragging = false
	to := RotationState{Lon: -target[0], Lat: -target[1], Roll: 0}.normalized()
	c.start(&motion{
		kind:     StateFlyingTo,
		start:    now,
		duration: c.cfg.FlyToDuration,
		from:     c.rot,
		to:       to,
		lonDelta: shortestDelta(c.rot.Lon, to.Lon),
		fromZoom: c.zoom,
		toZoom:   clamp(zoom, MinZoom, MaxZoom),
		focus:    focus,
	})
	c.lastActivity = now
	c.changed("fly-to")
	return true
}

// Tick advances the active motion by one frame.
func (c *Camera) Tick(now time.Time) {
	if c.closed {
		return
	}
	if c.lastActivity.IsZero() {
		c.lastActivity = now
	}
	if c.dragging {
		return
	}
	m := c.motion
	if m == nil || m.cancelled {
		c.motion = nil
		if c.cfg.AutoRotate && c.zoom < ModeBoundary && now.Sub(c.lastActivity) >= c.cfg.AutoRotateDelay {
			c.start(&motion{kind: StateAutoRotating})
			c.changed("auto-rotate")
		}
		return
	}

	switch m.kind {
	case StateInertia:
		c.setRotation(RotationState{Lon: c.rot.Lon + m.vLon, Lat: c.rot.Lat + m.vLat, Roll: c.rot.Roll})
		m.vLon *= c.cfg.Damping
		m.vLat *= c.cfg.Damping
		if math.Hypot(m.vLon, m.vLat) < c.cfg.InertiaEpsilon {
			c.stop()
			c.lastActivity = now
		}
	case StateAutoRotating:
		if c.zoom >= ModeBoundary {
			c.stop()
			return
		}
		c.setRotation(RotationState{Lon: c.rot.Lon + c.cfg.AutoRotateStep, Lat: c.rot.Lat, Roll: c.rot.Roll})
	case StateFlyingTo:
		t := 1.0
		if m.duration > 0 {
			t = float64(now.Sub(m.start)) / float64(m.duration)
		}
		if t >= 1 {
			c.stop()
			c.lastActivity = now
			if m.focus != "" {
				c.setFocus(m.focus)
			}
			c.setRotation(m.to)
			c.setZoom(m.toZoom, nil)
			return
		}
		e := easeInOutCubic(clamp(t, 0, 1))
		c.setRotation(RotationState{
			Lon:  m.from.Lon + m.lonDelta*e,
			Lat:  m.from.Lat + (m.to.Lat-m.from.Lat)*e,
			Roll: m.from.Roll + (m.to.Roll-m.from.Roll)*e,
		})
		z := m.fromZoom + (m.toZoom-m.fromZoom)*e
		if m.focus != "" && z >= ModeBoundary {
			c.setFocus(m.focus)
		}
		c.setZoom(z, nil)
	}
}

// Animating reports whether Tick will change state without further input.
func (c *Camera) Animating() bool {
	return !c.closed && c.motion != nil && !c.motion.cancelled
}

// Close cancels the motion handle. Later calls are no-ops.
func (c *Camera) Close() {
	c.stop()
	c.dragging = false
	c.closed = true
}
