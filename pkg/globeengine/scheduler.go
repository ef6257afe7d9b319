package globeengine

// Scheduler coalesces invalidations into at most one pending redraw. It is
// driven by the frame loop and is not safe for concurrent use.
type Scheduler struct {
	pending bool
	drawing bool
	metrics *Metrics
}

func NewScheduler(m *Metrics) *Scheduler {
	return &Scheduler{metrics: m}
}

// Invalidate marks the view dirty. Repeated calls before the next frame
// fold into the same redraw.
func (s *Scheduler) Invalidate(reason string) {
	if s.metrics != nil {
		s.metrics.Invalidations.WithLabelValues(reason).Inc()
	}
	if s.pending {
		if s.metrics != nil {
			s.metrics.InvalidationsCoalesced.Inc()
		}
		return
	}
	s.pending = true
}

func (s *Scheduler) Pending() bool { return s.pending }

// RunFrame calls draw once if a redraw is pending. Invalidations raised
// while draw runs schedule the following frame instead of re-entering.
func (s *Scheduler) RunFrame(draw func()) bool {
	if !s.pending || s.drawing {
		return false
	}
	s.pending = false
	s.drawing = true
	draw()
	s.drawing = false
	if s.metrics != nil {
		s.metrics.FramesRendered.Inc()
	}
	return true
}
