package shape

import (
	"github.com/akmonengine/overlap/vec"
)

// Shape is the interface that all convex shapes must implement.
//
// Support returns a point of the shape whose dot product with direction is maximal.
// When several points qualify any of them may be returned, but the choice must be
// deterministic. Support must not modify the shape: queries may run concurrently.
type Shape[V any] interface {
	Support(direction V) V
}

// Emptier is implemented by shapes that can hold no point at all.
// The overlap test rejects empty shapes instead of querying them.
type Emptier interface {
	Empty() bool
}

// Func adapts a support function to the Shape interface.
type Func[V any] func(direction V) V

func (f Func[V]) Support(direction V) V {
	return f(direction)
}

// Point is a shape reduced to a single point.
type Point[V any] struct {
	P V
}

func (p Point[V]) Support(direction V) V {
	return p.P
}

// Ball is a solid N-ball.
type Ball[V vec.Vector[V, S], S vec.Scalar] struct {
	Center V
	Radius S
}

func NewBall[V vec.Vector[V, S], S vec.Scalar](center V, radius S) *Ball[V, S] {
	return &Ball[V, S]{Center: center, Radius: radius}
}

func (b *Ball[V, S]) Support(direction V) V {
	l := vec.Len[V, S](direction)
	if l == 0 {
		return b.Center
	}
	return b.Center.Add(direction.Mul(S(float64(b.Radius) / l)))
}

// Box is an oriented box defined by its center and one half-axis per dimension.
// Each half-axis goes from the center to the middle of a face.
type Box[V vec.Vector[V, S], S vec.Scalar] struct {
	Center   V
	HalfAxes []V
}

func NewBox[V vec.Vector[V, S], S vec.Scalar](center V, halfAxes ...V) *Box[V, S] {
	return &Box[V, S]{Center: center, HalfAxes: halfAxes}
}

// NewAlignedBox creates a box whose half-axes follow the basis vectors,
// scaled by the half-extents.
func NewAlignedBox[V vec.Vector[V, S], S vec.Scalar](center V, halfExtents []S, basis []V) *Box[V, S] {
	halfAxes := make([]V, len(halfExtents))
	for i, h := range halfExtents {
		halfAxes[i] = basis[i].Mul(h)
	}
	return &Box[V, S]{Center: center, HalfAxes: halfAxes}
}

func (b *Box[V, S]) Support(direction V) V {
	p := b.Center
	for _, axis := range b.HalfAxes {
		if direction.Dot(axis) < 0 {
			p = p.Sub(axis)
		} else {
			p = p.Add(axis)
		}
	}
	return p
}

// Polytope is the convex hull of a set of vertices.
type Polytope[V vec.Vector[V, S], S vec.Scalar] struct {
	Vertices []V
}

func NewPolytope[V vec.Vector[V, S], S vec.Scalar](vertices ...V) *Polytope[V, S] {
	return &Polytope[V, S]{Vertices: vertices}
}

func (p *Polytope[V, S]) Empty() bool {
	return len(p.Vertices) == 0
}

// Support scans every vertex; the first one wins ties.
func (p *Polytope[V, S]) Support(direction V) V {
	var best V
	if len(p.Vertices) == 0 {
		return best
	}
	best = p.Vertices[0]
	bestDot := best.Dot(direction)
	for _, v := range p.Vertices[1:] {
		if d := v.Dot(direction); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

// Capsule is the segment AB swept by a ball. A zero radius gives a segment.
type Capsule[V vec.Vector[V, S], S vec.Scalar] struct {
	A, B   V
	Radius S
}

func NewCapsule[V vec.Vector[V, S], S vec.Scalar](a, b V, radius S) *Capsule[V, S] {
	return &Capsule[V, S]{A: a, B: b, Radius: radius}
}

func (c *Capsule[V, S]) Support(direction V) V {
	p := c.A
	if direction.Dot(c.B.Sub(c.A)) > 0 {
		p = c.B
	}
	if c.Radius == 0 {
		return p
	}
	l := vec.Len[V, S](direction)
	if l == 0 {
		return p
	}
	return p.Add(direction.Mul(S(float64(c.Radius) / l)))
}
