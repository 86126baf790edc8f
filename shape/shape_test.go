package shape

import (
	"math"
	"testing"

	"github.com/akmonengine/overlap/vec"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions
func vec3AlmostEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func createBox(center, halfExtents mgl64.Vec3) *Box[mgl64.Vec3, float64] {
	return NewAlignedBox(center, halfExtents[:], vec.Basis3())
}

func TestBallSupport(t *testing.T) {
	ball := NewBall(mgl64.Vec3{0, 0, 0}, 2.0)

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"positive X", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0}},
		{"negative X", mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{-2, 0, 0}},
		{"positive Y", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 2, 0}},
		{"negative Y", mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, -2, 0}},
		{"non unit direction", mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, 2}},
		{"diagonal", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}.Normalize().Mul(2)},
		{"zero direction gives the center", mgl64.Vec3{}, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			support := ball.Support(tt.direction)
			if !vec3AlmostEqual(support, tt.expected, 1e-9) {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, support, tt.expected)
			}
		})
	}
}

func TestBoxSupport(t *testing.T) {
	box := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 3, 1})

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"positive X corner", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 3, 1}},
		// zero components pick the positive half-axis
		{"negative X corner", mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{-2, 3, 1}},
		{"positive Y corner", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{2, 3, 1}},
		{"diagonal corner", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 3, 1}},
		{"negative diagonal", mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{-2, -3, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			support := box.Support(tt.direction)
			if !vec3AlmostEqual(support, tt.expected, 1e-9) {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, support, tt.expected)
			}
		})
	}

	t.Run("translated center", func(t *testing.T) {
		box := createBox(mgl64.Vec3{10, 20, 30}, mgl64.Vec3{1, 1, 1})
		support := box.Support(mgl64.Vec3{1, -1, 1})
		if !vec3AlmostEqual(support, mgl64.Vec3{11, 19, 31}, 1e-9) {
			t.Errorf("Support = %v, want (11,19,31)", support)
		}
	})

	t.Run("oriented half-axes", func(t *testing.T) {
		// square rotated by 45 degrees, half diagonal along X is sqrt(2)
		h := math.Sqrt2 / 2
		box := NewBox[mgl64.Vec2, float64](mgl64.Vec2{0, 0}, mgl64.Vec2{h, h}, mgl64.Vec2{-h, h})
		support := box.Support(mgl64.Vec2{1, 0})
		if math.Abs(support.X()-math.Sqrt2) > 1e-12 {
			t.Errorf("Expected reach sqrt(2) along X, got %v", support)
		}
	})
}

func TestPolytopeSupport(t *testing.T) {
	triangle := NewPolytope[mgl64.Vec2, float64](mgl64.Vec2{0, 0}, mgl64.Vec2{4, 0}, mgl64.Vec2{0, 3})

	tests := []struct {
		direction mgl64.Vec2
		expected  mgl64.Vec2
	}{
		{mgl64.Vec2{1, 0}, mgl64.Vec2{4, 0}},
		{mgl64.Vec2{0, 1}, mgl64.Vec2{0, 3}},
		{mgl64.Vec2{-1, -1}, mgl64.Vec2{0, 0}},
		// tie between (0,0) and (0,3): first vertex wins
		{mgl64.Vec2{-1, 0}, mgl64.Vec2{0, 0}},
	}
	for _, tt := range tests {
		if got := triangle.Support(tt.direction); got != tt.expected {
			t.Errorf("Support(%v) = %v, want %v", tt.direction, got, tt.expected)
		}
	}

	if triangle.Empty() {
		t.Error("triangle should not be empty")
	}
	empty := NewPolytope[mgl64.Vec2, float64]()
	if !empty.Empty() {
		t.Error("polytope without vertices should be empty")
	}
}

func TestCapsuleSupport(t *testing.T) {
	capsule := NewCapsule(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 4, 0}, 1.0)

	if got := capsule.Support(mgl64.Vec3{0, 1, 0}); !vec3AlmostEqual(got, mgl64.Vec3{0, 5, 0}, 1e-12) {
		t.Errorf("top support = %v", got)
	}
	if got := capsule.Support(mgl64.Vec3{0, -1, 0}); !vec3AlmostEqual(got, mgl64.Vec3{0, -1, 0}, 1e-12) {
		t.Errorf("bottom support = %v", got)
	}
	if got := capsule.Support(mgl64.Vec3{1, 0, 0}); !vec3AlmostEqual(got, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("side support = %v", got)
	}

	segment := NewCapsule(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 4, 0}, 0.0)
	if got := segment.Support(mgl64.Vec3{1, 1, 0}); got != (mgl64.Vec3{0, 4, 0}) {
		t.Errorf("segment support = %v", got)
	}
}

func TestTranslatedAndInflated(t *testing.T) {
	ball := NewBall(mgl64.Vec3{0, 0, 0}, 1.0)

	moved := Translate[mgl64.Vec3](ball, mgl64.Vec3{5, 0, 0})
	if got := moved.Support(mgl64.Vec3{1, 0, 0}); !vec3AlmostEqual(got, mgl64.Vec3{6, 0, 0}, 1e-12) {
		t.Errorf("translated support = %v", got)
	}

	inflated := Inflate[mgl64.Vec3, float64](ball, 0.5)
	if got := inflated.Support(mgl64.Vec3{0, 0, -3}); !vec3AlmostEqual(got, mgl64.Vec3{0, 0, -1.5}, 1e-12) {
		t.Errorf("inflated support = %v", got)
	}

	square := createBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
	rounded := Inflate[mgl64.Vec3, float64](square, 1)
	if got := rounded.Support(mgl64.Vec3{1, 0, 0}); !vec3AlmostEqual(got, mgl64.Vec3{2, 1, 1}, 1e-12) {
		t.Errorf("inflated box support = %v", got)
	}
}

func TestFuncAndPoint(t *testing.T) {
	var s Shape[mgl64.Vec2] = Func[mgl64.Vec2](func(d mgl64.Vec2) mgl64.Vec2 { return d.Mul(2) })
	if got := s.Support(mgl64.Vec2{1, 2}); got != (mgl64.Vec2{2, 4}) {
		t.Errorf("Func support = %v", got)
	}

	p := Point[mgl64.Vec2]{P: mgl64.Vec2{3, 3}}
	if got := p.Support(mgl64.Vec2{-1, 0}); got != (mgl64.Vec2{3, 3}) {
		t.Errorf("Point support = %v", got)
	}
}

func TestIsEmpty(t *testing.T) {
	empty := NewPolytope[mgl64.Vec3, float64]()
	full := NewBall(mgl64.Vec3{}, 1.0)

	tests := []struct {
		name  string
		shape Shape[mgl64.Vec3]
		want  bool
	}{
		{"nil", nil, true},
		{"ball", full, false},
		{"empty polytope", empty, true},
		{"translated empty polytope", Translate[mgl64.Vec3](empty, mgl64.Vec3{1, 0, 0}), true},
		{"inflated empty polytope", Inflate[mgl64.Vec3, float64](empty, 1), true},
		{"body holding an empty polytope", NewBody(NewTransform(), empty), true},
		{"body holding a ball", NewBody(NewTransform(), full), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.shape); got != tt.want {
				t.Errorf("IsEmpty = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestBodySupport_WithTranslation verifies translation is correctly added
func TestBodySupport_WithTranslation(t *testing.T) {
	transform := NewTransform()
	transform.Position = mgl64.Vec3{10, 20, 30}
	body := NewBody(transform, NewBall(mgl64.Vec3{}, 1.0))

	support := body.Support(mgl64.Vec3{1, 0, 0})
	expected := mgl64.Vec3{11, 20, 30}
	if !vec3AlmostEqual(support, expected, 1e-9) {
		t.Errorf("Support with translation = %v, want %v", support, expected)
	}
}

// TestBodySupport_BoxWithRotation verifies box support with a 90° rotation around Z
func TestBodySupport_BoxWithRotation(t *testing.T) {
	transform := NewPose(mgl64.Vec3{}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))
	body := NewBody(transform, createBox(mgl64.Vec3{}, mgl64.Vec3{2, 1, 0.5}))

	// Along world X the rotated box reaches its local half-extent along Y.
	direction := mgl64.Vec3{1, 0, 0}
	support := body.Support(direction)
	if reach := support.Dot(direction); math.Abs(reach-1) > 1e-9 {
		t.Errorf("Expected reach 1 along X, got %v (support %v)", reach, support)
	}

	direction = mgl64.Vec3{0, 1, 0}
	support = body.Support(direction)
	if reach := support.Dot(direction); math.Abs(reach-2) > 1e-9 {
		t.Errorf("Expected reach 2 along Y, got %v (support %v)", reach, support)
	}
}

func TestBody_ZeroRotationIsIdentity(t *testing.T) {
	body := NewBody(Transform{Position: mgl64.Vec3{1, 0, 0}}, NewBall(mgl64.Vec3{}, 1.0))
	support := body.Support(mgl64.Vec3{0, 1, 0})
	if !vec3AlmostEqual(support, mgl64.Vec3{1, 1, 0}, 1e-12) {
		t.Errorf("Support = %v, want (1,1,0)", support)
	}
}

func TestBody_RotationIsNormalized(t *testing.T) {
	rotation := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}).Scale(3)
	body := NewBody(Transform{Position: mgl64.Vec3{0, 0, 1}, Rotation: rotation}, createBox(mgl64.Vec3{}, mgl64.Vec3{2, 1, 0.5}))

	if l := body.Transform.Rotation.Len(); math.Abs(l-1) > 1e-12 {
		t.Errorf("Expected a unit rotation, got length %v", l)
	}

	// Same reaches as the unit rotation: the box is turned, not scaled.
	if reach := body.Support(mgl64.Vec3{1, 0, 0}).X(); math.Abs(reach-1) > 1e-9 {
		t.Errorf("Expected reach 1 along X, got %v", reach)
	}
	if reach := body.Support(mgl64.Vec3{0, 1, 0}).Y(); math.Abs(reach-2) > 1e-9 {
		t.Errorf("Expected reach 2 along Y, got %v", reach)
	}
	if reach := body.Support(mgl64.Vec3{0, 0, 1}).Z(); math.Abs(reach-1.5) > 1e-9 {
		t.Errorf("Expected reach 1.5 along Z, got %v", reach)
	}
}

func TestShapes_Float32AndNDimensional(t *testing.T) {
	t.Run("float32 ball", func(t *testing.T) {
		ball := NewBall(mgl32.Vec3{1, 0, 0}, float32(0.5))
		got := ball.Support(mgl32.Vec3{0, 2, 0})
		if got != (mgl32.Vec3{1, 0.5, 0}) {
			t.Errorf("Support = %v", got)
		}
	})

	t.Run("5D box", func(t *testing.T) {
		basis := vec.Basis(5)
		box := NewAlignedBox(vec.Zero(5), []float64{1, 2, 3, 4, 5}, basis)
		got := box.Support(vec.New(1, -1, 1, -1, 1)).Raw()
		want := []float64{1, -2, 3, -4, 5}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("component %d: expected %v, got %v", i, want[i], got[i])
			}
		}
	})
}
