package gjk

import (
	"fmt"
	"math"

	"github.com/akmonengine/overlap/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Simplex represents a set of 1 to N+1 points in the Minkowski difference space.
// The simplex evolves during GJK iterations, always containing the most recent support points.
// Size progression in 3D: 1 point → 2 points (line) → 3 points (triangle) → 4 points (tetrahedron)
//
// Points are kept oldest first. Each sample W[i] = A[i] - B[i] remembers the support
// points of both shapes that produced it, so that Distance queries can rebuild witness
// points from the barycentric weights in Lambda.
type Simplex[V vec.Vector[V, S], S vec.Scalar] struct {
	W      []V
	A      []V
	B      []V
	Lambda []float64
	Count  int

	pivotTol float64
	edges    []V
	work     workspace
}

// workspace holds the buffers of the face projections, sized once for the capacity.
type workspace struct {
	gram    *mgl64.MatMxN
	rhs     []float64
	mu      []float64
	lambda  []float64
	face    []int
	best    []int
	bestLam []float64
}

// NewSimplex creates an empty simplex holding at most capacity points.
// A query in dimension N needs a capacity of N+1.
func NewSimplex[V vec.Vector[V, S], S vec.Scalar](capacity int) *Simplex[V, S] {
	m := max(capacity-1, 1)
	return &Simplex[V, S]{
		W:        make([]V, capacity),
		A:        make([]V, capacity),
		B:        make([]V, capacity),
		Lambda:   make([]float64, capacity),
		pivotTol: math.Sqrt(vec.Epsilon[S]()),
		edges:    make([]V, m),
		work: workspace{
			gram:    mgl64.NewMatrix(m, m),
			rhs:     make([]float64, m),
			mu:      make([]float64, m),
			lambda:  make([]float64, capacity),
			face:    make([]int, 0, capacity),
			best:    make([]int, 0, capacity),
			bestLam: make([]float64, 0, capacity),
		},
	}
}

func (s *Simplex[V, S]) Reset() {
	s.Count = 0
}

// Capacity returns the maximal number of points.
func (s *Simplex[V, S]) Capacity() int {
	return len(s.W)
}

// Points returns the live points, oldest first. The slice aliases the simplex.
func (s *Simplex[V, S]) Points() []V {
	return s.W[:s.Count]
}

// Certificate returns a copy of the live points.
func (s *Simplex[V, S]) Certificate() []V {
	return append([]V(nil), s.W[:s.Count]...)
}

// Push appends a sample and the two support points it was built from.
// Pushing onto a full simplex is a programming error and panics.
func (s *Simplex[V, S]) Push(w, a, b V) {
	if s.Count >= len(s.W) {
		panic(fmt.Sprintf("gjk: push on a full simplex of capacity %d", len(s.W)))
	}
	s.W[s.Count] = w
	s.A[s.Count] = a
	s.B[s.Count] = b
	s.Lambda[s.Count] = 0
	s.Count++
}

// Holds reports whether w duplicates a live point, relative to tolerance.
func (s *Simplex[V, S]) Holds(w V, tolerance float64) bool {
	lw := float64(w.LenSqr())
	for i := 0; i < s.Count; i++ {
		limit := tolerance * tolerance * max(lw, float64(s.W[i].LenSqr()))
		if float64(w.Sub(s.W[i]).LenSqr()) <= limit {
			return true
		}
	}
	return false
}

// ClosestPoint rebuilds the point of the simplex closest to the origin from Lambda.
func (s *Simplex[V, S]) ClosestPoint() V {
	return combine(s.W[:s.Count], s.Lambda)
}

// Witnesses returns the points of A and of B whose difference is ClosestPoint.
func (s *Simplex[V, S]) Witnesses() (a, b V) {
	return combine(s.A[:s.Count], s.Lambda), combine(s.B[:s.Count], s.Lambda)
}

func combine[V vec.Vector[V, S], S vec.Scalar](points []V, weights []float64) V {
	var p V
	for i, pt := range points {
		if i == 0 {
			p = pt.Mul(S(weights[0]))
			continue
		}
		p = p.Add(pt.Mul(S(weights[i])))
	}
	return p
}

// Reduce shrinks the simplex to the face closest to the origin and returns the closest point.
//
// Every non-empty subset of the live points is a face. For each face the origin is projected
// onto the affine hull of its points; the face is a candidate when the projection has
// non-negative barycentric coordinates, that is when it falls inside the face. Faces whose
// points are nearly dependent (duplicates, collinear or coplanar points) are skipped: their
// lower-dimensional sub-faces are visited too and take over.
//
// Among the candidates the closest one wins. When two candidates are equally close
// (within tolerance) the one retaining more points is kept, then the one holding the
// newest point, then the first enumerated. The retained points keep their age order.
//
// contained is true when the closest point lies within tolerance of the origin,
// relative to the size of the simplex, or when all N+1 points were retained.
func (s *Simplex[V, S]) Reduce(tolerance float64) (closest V, contained bool, err error) {
	n := s.Count
	if n == 0 {
		return closest, false, fmt.Errorf("%w: reducing an empty simplex", ErrNumericDegeneracy)
	}

	scale := 0.0
	for i := 0; i < n; i++ {
		scale = max(scale, float64(s.W[i].LenSqr()))
	}
	eps2 := tolerance * tolerance * scale

	w := &s.work
	newest := 1 << (n - 1)
	bestK := 0
	bestDist := math.Inf(1)
	bestNewest := false

	for mask := 1; mask < 1<<n; mask++ {
		face := w.face[:0]
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				face = append(face, i)
			}
		}

		p, ok := s.project(face, tolerance, eps2)
		if !ok {
			continue
		}
		dist := float64(p.LenSqr())
		if math.IsNaN(dist) || math.IsInf(dist, 0) {
			continue
		}

		k := len(face)
		hasNewest := mask&newest != 0
		if bestK > 0 {
			slack := tolerance*max(dist, bestDist) + eps2
			if dist > bestDist+slack {
				continue
			}
			if dist >= bestDist-slack {
				// same distance: keep the larger face, then the one holding the newest point
				if k < bestK || (k == bestK && (bestNewest || !hasNewest)) {
					continue
				}
			}
		}

		closest, bestDist, bestK, bestNewest = p, dist, k, hasNewest
		w.best = append(w.best[:0], face...)
		w.bestLam = append(w.bestLam[:0], w.lambda[:k]...)
	}

	if bestK == 0 {
		return closest, false, fmt.Errorf("%w: no face of a %d-point simplex could be projected", ErrNumericDegeneracy, n)
	}

	for j, i := range w.best {
		s.W[j], s.A[j], s.B[j] = s.W[i], s.A[i], s.B[i]
		s.Lambda[j] = w.bestLam[j]
	}
	s.Count = bestK

	contained = bestDist <= eps2 || bestK == len(s.W)
	return closest, contained, nil
}

// project computes the projection of the origin onto the affine hull of the face.
// It leaves the barycentric coordinates in work.lambda and reports false when the face is
// degenerate or when the projection falls outside of it.
//
// With y0 the first point and e_j = y_j - y0 the edges, the projection y0 + Σ μ_j e_j
// is orthogonal to every edge, which gives the Gram system G μ = -b with
// G_ij = e_i·e_j and b_j = e_j·y0.
func (s *Simplex[V, S]) project(face []int, tolerance, eps2 float64) (V, bool) {
	w := &s.work
	y0 := s.W[face[0]]
	if len(face) == 1 {
		w.lambda[0] = 1
		return y0, true
	}

	m := len(face) - 1
	for j := 0; j < m; j++ {
		s.edges[j] = s.W[face[j+1]].Sub(y0)
	}
	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			w.gram.Set(i, j, float64(s.edges[i].Dot(s.edges[j])))
		}
		w.rhs[i] = -float64(s.edges[i].Dot(y0))
	}
	if !choleskySolve(w.gram, m, w.rhs, w.mu, s.pivotTol, eps2) {
		return y0, false
	}

	p := y0
	sum := 0.0
	for j := 0; j < m; j++ {
		mu := w.mu[j]
		if mu < -tolerance {
			return y0, false
		}
		sum += mu
		w.lambda[j+1] = mu
		p = p.Add(s.edges[j].Mul(S(mu)))
	}
	w.lambda[0] = 1 - sum
	if w.lambda[0] < -tolerance {
		return y0, false
	}
	return p, true
}

// choleskySolve solves G x = rhs for the symmetric m×m matrix whose lower triangle is
// stored in g. g is overwritten by its Cholesky factor.
//
// It reports false when G is not safely positive definite: a diagonal entry at or
// below minDiag (an edge too short to matter) or a pivot at or below pivotTol times its
// diagonal entry (an edge nearly in the span of the previous ones).
func choleskySolve(g *mgl64.MatMxN, m int, rhs, x []float64, pivotTol, minDiag float64) bool {
	for j := 0; j < m; j++ {
		gjj := g.At(j, j)
		if !(gjj > minDiag) {
			return false
		}
		pivot := gjj
		for k := 0; k < j; k++ {
			l := g.At(j, k)
			pivot -= l * l
		}
		if !(pivot > pivotTol*gjj) {
			return false
		}
		ljj := math.Sqrt(pivot)
		g.Set(j, j, ljj)
		for i := j + 1; i < m; i++ {
			v := g.At(i, j)
			for k := 0; k < j; k++ {
				v -= g.At(i, k) * g.At(j, k)
			}
			g.Set(i, j, v/ljj)
		}
	}

	// L y = rhs
	for i := 0; i < m; i++ {
		v := rhs[i]
		for k := 0; k < i; k++ {
			v -= g.At(i, k) * x[k]
		}
		x[i] = v / g.At(i, i)
	}
	// Lᵀ x = y
	for i := m - 1; i >= 0; i-- {
		v := x[i]
		for k := i + 1; k < m; k++ {
			v -= g.At(k, i) * x[k]
		}
		x[i] = v / g.At(i, i)
	}
	return true
}
