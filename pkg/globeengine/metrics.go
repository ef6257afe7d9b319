package globeengine

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts frames, invalidations and skipped entities for one view.
type Metrics struct {
	FramesRendered         prometheus.Counter
	Invalidations          *prometheus.CounterVec
	InvalidationsCoalesced prometheus.Counter
	ProjectionErrors       *prometheus.CounterVec
	GeometryLoads          *prometheus.CounterVec
}

// NewMetrics registers the view metrics against reg. A nil reg gets a
// private registry so several views can coexist in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	frames, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_frames_rendered_total",
		Help: "Number of full redraws.",
	}), "globe_frames_rendered_total")
	if err != nil {
		return nil, err
	}
	invalidations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_invalidations_total",
		Help: "State changes that marked the view dirty, by reason.",
	}, []string{"reason"}), "globe_invalidations_total")
	if err != nil {
		return nil, err
	}
	coalesced, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_invalidations_coalesced_total",
		Help: "Invalidations folded into an already pending redraw.",
	}), "globe_invalidations_coalesced_total")
	if err != nil {
		return nil, err
	}
	projErrs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_projection_errors_total",
		Help: "Entities skipped because their coordinates could not be projected.",
	}, []string{"entity"}), "globe_projection_errors_total")
	if err != nil {
		return nil, err
	}
	loads, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_geometry_loads_total",
		Help: "Geometry source attempts, by source and result.",
	}, []string{"source", "result"}), "globe_geometry_loads_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		FramesRendered:         frames,
		Invalidations:          invalidations,
		InvalidationsCoalesced: coalesced,
		ProjectionErrors:       projErrs,
		GeometryLoads:          loads,
	}, nil
}

// ObserveGeometryLoad matches the geography.Loader OnAttempt hook.
func (m *Metrics) ObserveGeometryLoad(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.GeometryLoads.WithLabelValues(source, result).Inc()
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
