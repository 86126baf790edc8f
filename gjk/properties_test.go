package gjk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/overlap/shape"
	"github.com/akmonengine/overlap/vec"
)

// body is a ball or an axis-aligned box whose true separation is known in closed form.
type body struct {
	ball   bool
	center []float64
	radius float64
	half   []float64
}

func (b body) build() shape.Shape[vec.N] {
	if b.ball {
		return shape.NewBall(vec.New(b.center...), b.radius)
	}
	return shape.NewAlignedBox(vec.New(b.center...), b.half, vec.Basis(len(b.center)))
}

func (b body) translate(v []float64) body {
	moved := b
	moved.center = make([]float64, len(b.center))
	for i := range v {
		moved.center[i] = b.center[i] + v[i]
	}
	return moved
}

func randomBody(rng *rand.Rand, n int) body {
	b := body{ball: rng.Intn(2) == 0, center: make([]float64, n)}
	for i := range b.center {
		b.center[i] = rng.Float64()*4 - 2
	}
	if b.ball {
		b.radius = 0.3 + rng.Float64()*1.2
		return b
	}
	b.half = make([]float64, n)
	for i := range b.half {
		b.half[i] = 0.2 + rng.Float64()*1.3
	}
	return b
}

// signedGap returns the distance between a and b, or minus a penetration lower bound when they overlap.
func signedGap(a, b body) float64 {
	switch {
	case a.ball && b.ball:
		d := 0.0
		for i := range a.center {
			d += (a.center[i] - b.center[i]) * (a.center[i] - b.center[i])
		}
		return math.Sqrt(d) - a.radius - b.radius
	case !a.ball && !b.ball:
		outside, deepest := 0.0, math.Inf(-1)
		for i := range a.center {
			s := math.Abs(a.center[i]-b.center[i]) - a.half[i] - b.half[i]
			deepest = math.Max(deepest, s)
			if s > 0 {
				outside += s * s
			}
		}
		if deepest > 0 {
			return math.Sqrt(outside)
		}
		return deepest
	case !a.ball:
		a, b = b, a
	}
	// a is the ball, b the box
	outside, deepest := 0.0, math.Inf(-1)
	for i := range a.center {
		s := math.Abs(a.center[i]-b.center[i]) - b.half[i]
		deepest = math.Max(deepest, s)
		if s > 0 {
			outside += s * s
		}
	}
	if deepest > 0 {
		return math.Sqrt(outside) - a.radius
	}
	return deepest - a.radius
}

type pairCase struct {
	a, b body
	want Status
}

// randomPairs draws pairs whose status is unambiguous: touching within margin is skipped.
func randomPairs(rng *rand.Rand, n, count int, margin float64) []pairCase {
	var pairs []pairCase
	for len(pairs) < count {
		a, b := randomBody(rng, n), randomBody(rng, n)
		gap := signedGap(a, b)
		if math.Abs(gap) < margin {
			continue
		}
		want := Separated
		if gap < 0 {
			want = Overlapping
		}
		pairs = append(pairs, pairCase{a: a, b: b, want: want})
	}
	return pairs
}

func TestProperties(t *testing.T) {
	for n := 2; n <= 5; n++ {
		solver, err := New[vec.N, float64](vec.Basis(n))
		if err != nil {
			t.Fatal(err)
		}
		rng := rand.New(rand.NewSource(int64(n)))
		pairs := randomPairs(rng, n, 150, 0.1)

		t.Run("dimension "+string(rune('0'+n)), func(t *testing.T) {
			for i, pc := range pairs {
				a, b := pc.a.build(), pc.b.build()

				// expected status in both orders
				ab := solver.Intersect(a, b)
				ba := solver.Intersect(b, a)
				if ab.Status != pc.want || ba.Status != pc.want {
					t.Errorf("pair %d: expected %v, got %v / %v (err %v / %v)", i, pc.want, ab.Status, ba.Status, ab.Err, ba.Err)
					continue
				}

				// translation invariance
				v := make([]float64, n)
				for k := range v {
					v[k] = rng.Float64()*20 - 10
				}
				moved := solver.Intersect(pc.a.translate(v).build(), pc.b.translate(v).build())
				if moved.Status != pc.want {
					t.Errorf("pair %d: translated by %v gave %v", i, v, moved.Status)
				}

				// separating axis validity
				if ab.Status == Separated {
					axis := ab.Axis
					maxA := a.Support(axis).Dot(axis)
					minB := b.Support(vec.Negate[vec.N, float64](axis)).Dot(axis)
					if !(ab.Gap > 0) || maxA+ab.Gap > minB+1e-9 {
						t.Errorf("pair %d: axis %v does not separate: max A %v, gap %v, min B %v", i, axis, maxA, ab.Gap, minB)
					}
				}

				// termination bound for polytopes
				if !pc.a.ball && !pc.b.ball && ab.Iterations > (n+1)*(n+2) {
					t.Errorf("pair %d: %d iterations for two boxes in dimension %d", i, ab.Iterations, n)
				}
			}
		})
	}
}

func TestProperties_SelfOverlap(t *testing.T) {
	for n := 2; n <= 5; n++ {
		solver, err := New[vec.N, float64](vec.Basis(n))
		if err != nil {
			t.Fatal(err)
		}
		rng := rand.New(rand.NewSource(100 + int64(n)))
		for i := 0; i < 20; i++ {
			s := randomBody(rng, n).build()
			if got := solver.Intersect(s, s); got.Status != Overlapping {
				t.Errorf("dimension %d, shape %d: expected overlapping, got %v (err %v)", n, i, got.Status, got.Err)
			}
		}
	}
}

func TestProperties_Distance(t *testing.T) {
	// Box-box distances converge exactly on polytopes.
	for n := 2; n <= 4; n++ {
		solver, err := New[vec.N, float64](vec.Basis(n))
		if err != nil {
			t.Fatal(err)
		}
		rng := rand.New(rand.NewSource(200 + int64(n)))
		checked := 0
		for checked < 50 {
			a, b := randomBody(rng, n), randomBody(rng, n)
			if a.ball || b.ball {
				continue
			}
			gap := signedGap(a, b)
			if gap < 0.1 {
				continue
			}
			checked++
			result := solver.Distance(a.build(), b.build())
			if result.Status != Separated {
				t.Errorf("dimension %d: expected separated, got %v (err %v)", n, result.Status, result.Err)
				continue
			}
			if math.Abs(result.Distance-gap) > 1e-7 {
				t.Errorf("dimension %d: expected distance %v, got %v", n, gap, result.Distance)
			}
			if d := vec.Len[vec.N, float64](result.PointB.Sub(result.PointA)); math.Abs(d-result.Distance) > 1e-7 {
				t.Errorf("dimension %d: witnesses are %v apart, distance %v", n, d, result.Distance)
			}
		}
	}
}

func TestIntersect_HigherDimensions(t *testing.T) {
	for _, n := range []int{4, 5} {
		solver, err := New[vec.N, float64](vec.Basis(n))
		if err != nil {
			t.Fatal(err)
		}
		origin := vec.Zero(n)
		unitBall := shape.NewBall(origin, 1.0)

		for _, tc := range []struct {
			name     string
			distance float64
			want     Status
		}{
			{"balls at 1.9", 1.9, Overlapping},
			{"balls at 2.1", 2.1, Separated},
		} {
			// offset along the last axis, away from the default search direction
			other := shape.NewBall(vec.Axis(n, n-1).Mul(tc.distance), 1.0)
			if got := solver.Intersect(unitBall, other); got.Status != tc.want {
				t.Errorf("n=%d %s: expected %v, got %v (err %v)", n, tc.name, tc.want, got.Status, got.Err)
			}
		}

		half := make([]float64, n)
		for i := range half {
			half[i] = 1
		}
		cube := shape.NewAlignedBox(origin, half, vec.Basis(n))
		result := solver.Intersect(cube, unitBall)
		if result.Status != Overlapping {
			t.Fatalf("n=%d: expected cube and ball to overlap, got %v", n, result.Status)
		}
		if len(result.Simplex) > n+1 {
			t.Errorf("n=%d: certificate holds %d points", n, len(result.Simplex))
		}
	}
}
