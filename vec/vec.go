// Package vec holds the vector algebra the overlap test consumes.
//
// The core never looks at coordinates: it only needs addition, subtraction, scaling
// and dot products, expressed by the Vector constraint. mathgl's fixed size vectors
// (mgl64.Vec2/3/4, mgl32.Vec2/3/4) satisfy it as they are, and N provides the same
// algebra for any dimension on top of mgl64.VecN.
package vec

import (
	"math"
	"unsafe"
)

// Scalar is the element type of a vector space.
type Scalar interface {
	~float32 | ~float64
}

// Vector is the set of operations required from a point type V with scalars S.
type Vector[V any, S Scalar] interface {
	Add(V) V
	Sub(V) V
	Mul(S) V
	Dot(V) S
	LenSqr() S
}

// Negate returns -v.
func Negate[V Vector[V, S], S Scalar](v V) V {
	return v.Mul(-1)
}

// Len returns the magnitude of v in float64.
func Len[V Vector[V, S], S Scalar](v V) float64 {
	return math.Sqrt(float64(v.LenSqr()))
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func Normalize[V Vector[V, S], S Scalar](v V) V {
	l := Len[V, S](v)
	if l == 0 {
		return v
	}
	return v.Mul(S(1 / l))
}

// Project returns the projection of v onto the line spanned by onto.
// Projecting onto the zero vector yields the zero vector.
func Project[V Vector[V, S], S Scalar](v, onto V) V {
	d := float64(onto.LenSqr())
	if d == 0 {
		return v.Mul(0)
	}
	return onto.Mul(S(float64(v.Dot(onto)) / d))
}

// IsFinite reports whether every component of v is finite.
// A NaN or infinite component propagates into the squared length, and so does
// a magnitude too large to be squared, which is rejected as well.
func IsFinite[V Vector[V, S], S Scalar](v V) bool {
	l := float64(v.LenSqr())
	return !math.IsNaN(l) && !math.IsInf(l, 0)
}

// Epsilon returns the machine epsilon of S.
func Epsilon[S Scalar]() float64 {
	var s S
	if unsafe.Sizeof(s) == 4 {
		return 0x1p-23
	}
	return 0x1p-52
}
