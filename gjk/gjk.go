// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for overlap detection
// between convex shapes of any dimension.
//
// GJK detects whether two convex shapes overlap by testing if their Minkowski difference
// contains the origin. The algorithm builds a simplex incrementally, converging toward
// the origin in typically 3-6 iterations in 3D.
//
// The shapes are only known through their support function (see shape.Shape), and points
// only through the vec.Vector operations, so the same solver runs on mgl64.Vec2, mgl32.Vec3
// or vec.N of any dimension. The dimension is given by the basis the solver is created with.
//
// Every query ends in one of four states:
//   - Separated: a separating axis was found, reported in Result.Axis
//   - Overlapping: the simplex encloses the origin, reported in Result.Simplex
//   - Inconclusive: the search stalled or hit the iteration cap; Result.Err tells which
//   - Invalid: a shape was nil, empty, or its support function returned a non-finite point
//
// Inconclusive results usually come from shapes touching within round-off. A common
// fallback is to retry on shapes inflated by a small margin (shape.Inflated).
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"fmt"
	"math"
	"sync"

	"github.com/akmonengine/overlap/shape"
	"github.com/akmonengine/overlap/vec"
	"go.uber.org/zap"
)

// MaxDimension bounds the dimension of a solver.
// The simplex reduction visits every face of the simplex, 2^(N+1)-1 of them.
const MaxDimension = 12

// DefaultMaxIterations returns the iteration cap used for dimension n.
func DefaultMaxIterations(n int) int {
	return max(32, 8*(n+1))
}

// DefaultTolerance returns the relative tolerance used for the scalar type S.
func DefaultTolerance[S vec.Scalar]() float64 {
	if vec.Epsilon[S]() > 1e-10 {
		return 1e-5
	}
	return 1e-10
}

type settings struct {
	maxIterations int
	tolerance     float64
	logger        *zap.Logger
}

// Option configures a Solver.
type Option func(*settings)

// WithMaxIterations sets the number of support samples after which a query gives up.
func WithMaxIterations(n int) Option {
	return func(s *settings) {
		s.maxIterations = n
	}
}

// WithTolerance sets the relative tolerance of the simplex reduction.
func WithTolerance(eps float64) Option {
	return func(s *settings) {
		s.tolerance = eps
	}
}

// WithLogger sets the logger receiving debug entries for inconclusive and invalid queries.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger == nil {
			logger = zap.NewNop()
		}
		s.logger = logger
	}
}

// Solver runs overlap queries in a fixed dimension.
// It is immutable once created and safe for concurrent use.
type Solver[V vec.Vector[V, S], S vec.Scalar] struct {
	basis         []V
	maxIterations int
	tolerance     float64
	logger        *zap.Logger
	simplices     sync.Pool
}

// New creates a solver for the space spanned by basis. The dimension is len(basis) and
// basis[0] is the search direction used when no hint is given.
func New[V vec.Vector[V, S], S vec.Scalar](basis []V, opts ...Option) (*Solver[V, S], error) {
	n := len(basis)
	if n == 0 || n > MaxDimension {
		return nil, fmt.Errorf("%w: %d basis vectors, want 1 to %d", ErrInvalidDimension, n, MaxDimension)
	}
	if l := float64(basis[0].LenSqr()); l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return nil, fmt.Errorf("%w: first basis vector must be finite and non-zero", ErrInvalidDimension)
	}

	cfg := settings{
		maxIterations: DefaultMaxIterations(n),
		tolerance:     DefaultTolerance[S](),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxIterations < 1 {
		return nil, fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidDimension, cfg.maxIterations)
	}
	if !(cfg.tolerance > 0 && cfg.tolerance < 1) {
		return nil, fmt.Errorf("%w: tolerance must be in (0, 1), got %g", ErrInvalidDimension, cfg.tolerance)
	}

	s := &Solver[V, S]{
		basis:         append([]V(nil), basis...),
		maxIterations: cfg.maxIterations,
		tolerance:     cfg.tolerance,
		logger:        cfg.logger,
	}
	s.simplices.New = func() any {
		return NewSimplex[V, S](n + 1)
	}
	return s, nil
}

// Dimension returns the dimension of the space.
func (s *Solver[V, S]) Dimension() int {
	return len(s.basis)
}

func (s *Solver[V, S]) MaxIterations() int {
	return s.maxIterations
}

func (s *Solver[V, S]) Tolerance() float64 {
	return s.tolerance
}

// MinkowskiSupport computes a support point in the Minkowski difference (A - B).
//
// The Minkowski difference A - B is the set of all vectors (a - b) where a ∈ A and b ∈ B.
// For overlap detection, we only need the extreme points (support points) in any direction:
//
//	furthestPoint(A, direction) - furthestPoint(B, -direction)
//
// This is the fundamental query that makes GJK work for any convex shape - shapes only
// need to implement a Support() function, not expose their full geometry.
func MinkowskiSupport[V vec.Vector[V, S], S vec.Scalar](a, b shape.Shape[V], direction V) V {
	return a.Support(direction).Sub(b.Support(vec.Negate[V, S](direction)))
}

// Intersect tests whether a and b overlap, starting the search along the default axis.
func (s *Solver[V, S]) Intersect(a, b shape.Shape[V]) Result[V] {
	return s.intersect(a, b, s.basis[0])
}

// IntersectFrom tests whether a and b overlap, starting the search along hint.
// A zero or non-finite hint falls back to the default axis. Starting toward B from A,
// or along the axis that separated the pair last time, typically saves iterations.
func (s *Solver[V, S]) IntersectFrom(a, b shape.Shape[V], hint V) Result[V] {
	return s.intersect(a, b, s.direction(hint))
}

// Distance computes the distance between a and b and the closest points realizing it.
// Unlike Intersect it does not stop at the first separating axis: it keeps refining the
// simplex until the closest point of the Minkowski difference converges.
// Overlapping shapes report a zero distance.
func (s *Solver[V, S]) Distance(a, b shape.Shape[V]) Result[V] {
	return s.distance(a, b, s.basis[0])
}

// DistanceFrom is Distance starting the search along hint.
func (s *Solver[V, S]) DistanceFrom(a, b shape.Shape[V], hint V) Result[V] {
	return s.distance(a, b, s.direction(hint))
}

func (s *Solver[V, S]) direction(hint V) V {
	l := float64(hint.LenSqr())
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return s.basis[0]
	}
	return hint
}

// intersect performs the boolean GJK loop.
//
// Algorithm overview:
//  1. Sample the Minkowski difference along the search direction
//  2. If the sample does not pass the origin, the direction separates the shapes
//  3. Otherwise add it to the simplex and reduce the simplex to its face closest to the origin
//  4. If that face contains the origin → overlap
//  5. Else search again from the closest point toward the origin
func (s *Solver[V, S]) intersect(a, b shape.Shape[V], direction V) Result[V] {
	if err := checkShapes(a, b); err != nil {
		return s.done(Result[V]{Status: Invalid, Err: err})
	}

	simplex := s.acquire()
	defer s.release(simplex)

	for i := 1; i <= s.maxIterations; i++ {
		supportA := a.Support(direction)
		supportB := b.Support(vec.Negate[V, S](direction))
		w := supportA.Sub(supportB)
		if !vec.IsFinite[V, S](w) {
			return s.done(Result[V]{Status: Invalid, Iterations: i, Err: fmt.Errorf("%w: non-finite support point", ErrInvalidInput)})
		}

		// If the new point doesn't pass the origin in the search direction,
		// the origin cannot be reached: the plane normal to direction separates A - B from it.
		if proj := float64(w.Dot(direction)); proj < 0 {
			l := vec.Len[V, S](direction)
			return Result[V]{
				Status:     Separated,
				Axis:       direction.Mul(S(1 / l)),
				Gap:        -proj / l,
				Iterations: i,
			}
		}

		if simplex.Holds(w, s.tolerance) {
			return s.done(Result[V]{
				Status:     Inconclusive,
				Simplex:    simplex.Certificate(),
				Iterations: i,
				Err:        fmt.Errorf("%w: search stalled on a known point", ErrNumericDegeneracy),
			})
		}

		simplex.Push(w, supportA, supportB)
		closest, contained, err := simplex.Reduce(s.tolerance)
		if err != nil {
			return s.done(Result[V]{Status: Inconclusive, Simplex: simplex.Certificate(), Iterations: i, Err: err})
		}
		if contained {
			return Result[V]{Status: Overlapping, Simplex: simplex.Certificate(), Iterations: i}
		}

		// New direction towards the origin from the closest feature
		direction = vec.Negate[V, S](closest)
	}

	return s.done(Result[V]{
		Status:     Inconclusive,
		Simplex:    simplex.Certificate(),
		Iterations: s.maxIterations,
		Err:        fmt.Errorf("%w: %d iterations", ErrIterationLimitExceeded, s.maxIterations),
	})
}

// distance runs GJK until the closest point of the simplex stops moving.
// Convergence is reached when a new sample w does not improve on the closest point p
// by more than the convergence tolerance, |p|² - w·p <= eps·|p|², or when |p| stops
// decreasing. On curved shapes the closest point only converges linearly, so eps is
// at least sqrt of the machine epsilon of S rather than the reduction tolerance.
func (s *Solver[V, S]) distance(a, b shape.Shape[V], direction V) Result[V] {
	if err := checkShapes(a, b); err != nil {
		return s.done(Result[V]{Status: Invalid, Err: err})
	}

	simplex := s.acquire()
	defer s.release(simplex)

	convergence := max(s.tolerance, math.Sqrt(vec.Epsilon[S]()))
	previous := math.Inf(1)

	var closest V
	for i := 1; i <= s.maxIterations; i++ {
		supportA := a.Support(direction)
		supportB := b.Support(vec.Negate[V, S](direction))
		w := supportA.Sub(supportB)
		if !vec.IsFinite[V, S](w) {
			return s.done(Result[V]{Status: Invalid, Iterations: i, Err: fmt.Errorf("%w: non-finite support point", ErrInvalidInput)})
		}

		if simplex.Count > 0 {
			pp := float64(closest.LenSqr())
			if pp-float64(w.Dot(closest)) <= convergence*pp || simplex.Holds(w, s.tolerance) {
				return s.separated(simplex, closest, i)
			}
		}

		simplex.Push(w, supportA, supportB)
		var (
			contained bool
			err       error
		)
		closest, contained, err = simplex.Reduce(s.tolerance)
		if err != nil {
			return s.done(Result[V]{Status: Inconclusive, Simplex: simplex.Certificate(), Iterations: i, Err: err})
		}
		if contained {
			pointA, pointB := simplex.Witnesses()
			return Result[V]{
				Status:     Overlapping,
				PointA:     pointA,
				PointB:     pointB,
				Simplex:    simplex.Certificate(),
				Iterations: i,
			}
		}

		// No progress: the closest point is as good as round-off allows.
		pp := float64(closest.LenSqr())
		if pp >= previous {
			return s.separated(simplex, closest, i)
		}
		previous = pp
		direction = vec.Negate[V, S](closest)
	}

	// Best estimate so far, flagged as inconclusive.
	r := s.separated(simplex, closest, s.maxIterations)
	r.Status = Inconclusive
	r.Err = fmt.Errorf("%w: %d iterations", ErrIterationLimitExceeded, s.maxIterations)
	return s.done(r)
}

// separated builds the result of a converged distance query from the closest point p of A - B.
// Every point x of A - B satisfies x·p >= |p|², so -p/|p| separates A below B.
func (s *Solver[V, S]) separated(simplex *Simplex[V, S], p V, iterations int) Result[V] {
	dist := vec.Len[V, S](p)
	pointA, pointB := simplex.Witnesses()
	return Result[V]{
		Status:     Separated,
		Axis:       p.Mul(S(-1 / dist)),
		Gap:        dist,
		Distance:   dist,
		PointA:     pointA,
		PointB:     pointB,
		Simplex:    simplex.Certificate(),
		Iterations: iterations,
	}
}

func (s *Solver[V, S]) done(r Result[V]) Result[V] {
	s.logger.Debug("gjk query did not conclude",
		zap.Stringer("status", r.Status),
		zap.Int("iterations", r.Iterations),
		zap.Int("dimension", len(s.basis)),
		zap.Error(r.Err),
	)
	return r
}

func (s *Solver[V, S]) acquire() *Simplex[V, S] {
	simplex := s.simplices.Get().(*Simplex[V, S])
	simplex.Reset()
	return simplex
}

func (s *Solver[V, S]) release(simplex *Simplex[V, S]) {
	simplex.Reset()
	s.simplices.Put(simplex)
}

func checkShapes[V any](a, b shape.Shape[V]) error {
	if shape.IsEmpty(a) {
		return fmt.Errorf("%w: shape A is nil or empty", ErrInvalidInput)
	}
	if shape.IsEmpty(b) {
		return fmt.Errorf("%w: shape B is nil or empty", ErrInvalidInput)
	}
	return nil
}
