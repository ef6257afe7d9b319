// Package globeengine renders the travel globe: projection, camera,
// hit-testing, overlay drawing and frame scheduling.
package globeengine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MinZoom      = 0.5
	MaxZoom      = 10.0
	ModeBoundary = 2.5
	// globe scale stops growing just below the boundary
	maxGlobeZoom = 2.4
)

// MapStyle selects the background treatment.
type MapStyle string

const (
	StyleMinimal  MapStyle = "minimal"
	StyleStandard MapStyle = "standard"
)

// Config is passed to NewView and never changes afterwards.
type Config struct {
	Width, Height int
	// BaseScale is the globe radius in pixels at zoom 1. Zero derives it from the viewport.
	BaseScale float64
	FPS       int

	// AssetBasePath is where the host keeps fonts and icons.
	AssetBasePath   string
	FrameCaptureDir string
	Style           MapStyle

	DefaultRotation RotationState
	DragSensitivity float64 // degrees per pixel
	Damping         float64 // inertial velocity multiplier per frame
	InertiaEpsilon  float64 // degrees per frame below which motion stops
	StaleRelease    time.Duration

	AutoRotate      bool
	AutoRotateDelay time.Duration
	AutoRotateStep  float64 // degrees per frame

	FlyToZoom     float64
	FlyToDuration time.Duration

	ZoomStep float64
	// weights for choosing the focus country on wheel zoom
	PointerWeight, CenterWeight float64

	PinRadius         float64
	LabelPinThreshold int
	PulsePeriod       time.Duration
	EdgeSegments      int
	ClickSlop         float64
	DoubleClickWindow time.Duration

	// Metrics receives the view's collectors. Nil keeps them private.
	Metrics prometheus.Registerer
}

func DefaultConfig() Config {
	return Config{
		Width:             1280,
		Height:            720,
		FPS:               60,
		Style:             StyleMinimal,
		DefaultRotation:   RotationState{Lon: 0, Lat: -20, Roll: 0},
		DragSensitivity:   0.25,
		Damping:           0.95,
		InertiaEpsilon:    0.1,
		StaleRelease:      100 * time.Millisecond,
		AutoRotate:        true,
		AutoRotateDelay:   3 * time.Second,
		AutoRotateStep:    0.15,
		FlyToZoom:         3.5,
		FlyToDuration:     2500 * time.Millisecond,
		ZoomStep:          1.2,
		PointerWeight:     0.7,
		CenterWeight:      0.3,
		PinRadius:         9,
		LabelPinThreshold: 12,
		PulsePeriod:       2 * time.Second,
		EdgeSegments:      48,
		ClickSlop:         4,
		DoubleClickWindow: 350 * time.Millisecond,
	}
}

// baseScaleFor is the globe radius at zoom 1 for a viewport.
func (c Config) baseScaleFor(vp Viewport) float64 {
	if c.BaseScale > 0 {
		return c.BaseScale
	}
	m := vp.Width
	if vp.Height < m {
		m = vp.Height
	}
	return m * 0.45
}
