package scene

import (
	"fmt"

	"github.com/akmonengine/overlap/gjk"
	"github.com/akmonengine/overlap/shape"
	"github.com/akmonengine/overlap/vec"
)

// Sweep moves one shape of a model along an axis, through another one.
type Sweep struct {
	Moving string
	Fixed  string
	Axis   int
	Steps  int
}

// Sample is one position of a sweep.
type Sample struct {
	Offset     float64
	Status     gjk.Status
	Iterations int
}

// Run translates Moving from just before contact with Fixed to just after it, along Axis,
// and runs an overlap query at each of the Steps positions. The range is taken from the
// bounding boxes of both shapes, widened by a quarter of their combined extent on each side.
func (sw Sweep) Run(solver *gjk.Solver[vec.N, float64], m *Model) ([]Sample, error) {
	if sw.Axis < 0 || sw.Axis >= m.Dimension {
		return nil, fmt.Errorf("scene: axis %d out of [0, %d)", sw.Axis, m.Dimension)
	}
	if sw.Steps < 2 {
		return nil, fmt.Errorf("scene: a sweep needs at least 2 steps, got %d", sw.Steps)
	}
	if solver.Dimension() != m.Dimension {
		return nil, fmt.Errorf("%w: solver dimension %d, scene dimension %d", ErrInvalidScene, solver.Dimension(), m.Dimension)
	}
	moving, err := m.Bounds(sw.Moving)
	if err != nil {
		return nil, err
	}
	fixed, err := m.Bounds(sw.Fixed)
	if err != nil {
		return nil, err
	}

	// Offsets at which the bounding boxes start and stop touching along the axis.
	first := fixed.Min[sw.Axis] - moving.Max[sw.Axis]
	last := fixed.Max[sw.Axis] - moving.Min[sw.Axis]
	pad := (last - first) / 4
	first, last = first-pad, last+pad

	axis := m.Basis[sw.Axis]
	a, b := m.Shapes[sw.Moving], m.Shapes[sw.Fixed]
	samples := make([]Sample, sw.Steps)
	for i := range samples {
		offset := first + (last-first)*float64(i)/float64(sw.Steps-1)
		r := solver.Intersect(shape.Translate(a, axis.Mul(offset)), b)
		samples[i] = Sample{Offset: offset, Status: r.Status, Iterations: r.Iterations}
	}
	return samples, nil
}
