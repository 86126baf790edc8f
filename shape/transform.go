package shape

import (
	"github.com/akmonengine/overlap/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Translated is a shape moved by Offset.
type Translated[V interface{ Add(V) V }] struct {
	Shape  Shape[V]
	Offset V
}

func Translate[V interface{ Add(V) V }](s Shape[V], offset V) *Translated[V] {
	return &Translated[V]{Shape: s, Offset: offset}
}

func (t *Translated[V]) Support(direction V) V {
	return t.Shape.Support(direction).Add(t.Offset)
}

func (t *Translated[V]) Empty() bool {
	return IsEmpty(t.Shape)
}

// Inflated is the Minkowski sum of a shape and a ball of radius Margin centered on the origin.
// It is the usual way to retry an inconclusive query on slightly enlarged shapes.
type Inflated[V vec.Vector[V, S], S vec.Scalar] struct {
	Shape  Shape[V]
	Margin S
}

func Inflate[V vec.Vector[V, S], S vec.Scalar](s Shape[V], margin S) *Inflated[V, S] {
	return &Inflated[V, S]{Shape: s, Margin: margin}
}

func (i *Inflated[V, S]) Support(direction V) V {
	p := i.Shape.Support(direction)
	l := vec.Len[V, S](direction)
	if l == 0 || i.Margin == 0 {
		return p
	}
	return p.Add(direction.Mul(S(float64(i.Margin) / l)))
}

func (i *Inflated[V, S]) Empty() bool {
	return IsEmpty(i.Shape)
}

// Transform represents a position and an orientation in 3D space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewPose creates a transform from a position and a rotation.
func NewPose(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	rotation = rotation.Normalize()
	return Transform{
		Position:        position,
		Rotation:        rotation,
		InverseRotation: rotation.Inverse(),
	}
}

// Body places a shape defined in local space into the world.
type Body struct {
	Transform Transform
	Shape     Shape[mgl64.Vec3]
}

func NewBody(transform Transform, s Shape[mgl64.Vec3]) *Body {
	// A zero quaternion would collapse every point onto the position.
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	// Quat.Rotate assumes a unit quaternion.
	transform.Rotation = transform.Rotation.Normalize()
	transform.InverseRotation = transform.Rotation.Inverse()
	return &Body{Transform: transform, Shape: s}
}

func (b *Body) Support(direction mgl64.Vec3) mgl64.Vec3 {
	// 1. direction into local space
	localDirection := b.Transform.InverseRotation.Rotate(direction)

	// 2. local support point
	localSupport := b.Shape.Support(localDirection)

	// 3. back to world space (rotation + translation)
	worldSupport := b.Transform.Rotation.Rotate(localSupport)
	return b.Transform.Position.Add(worldSupport)
}

func (b *Body) Empty() bool {
	return IsEmpty(b.Shape)
}

func isEmpty(s any) bool {
	if e, ok := s.(Emptier); ok {
		return e.Empty()
	}
	return false
}

// IsEmpty reports whether s is nil or reports itself as empty.
func IsEmpty[V any](s Shape[V]) bool {
	if s == nil {
		return true
	}
	return isEmpty(s)
}
