package globeengine

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"
)

// ProjectionError describes an entity whose coordinate cannot be placed on
// screen. The entity is skipped; the rest of the frame still renders.
type ProjectionError struct {
	Entity string
	ID     string
	Point  orb.Point
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("%s %q has unprojectable coordinate (%v, %v)", e.Entity, e.ID, e.Point[0], e.Point[1])
}

// diagnostics logs each bad entity once instead of every frame.
type diagnostics struct {
	seen    map[string]struct{}
	metrics *Metrics
}

func newDiagnostics(m *Metrics) *diagnostics {
	return &diagnostics{seen: make(map[string]struct{}), metrics: m}
}

func (d *diagnostics) report(err *ProjectionError) {
	key := err.Entity + "/" + err.ID
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}
	log.Printf("[render] Skipping %v", err)
	if d.metrics != nil {
		d.metrics.ProjectionErrors.WithLabelValues(err.Entity).Inc()
	}
}

// check reports pt when it is not a usable coordinate.
func (d *diagnostics) check(entity, id string, pt orb.Point) bool {
	if validCoordinate(pt) {
		return true
	}
	d.report(&ProjectionError{Entity: entity, ID: id, Point: pt})
	return false
}
