package vec

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// N is a vector of arbitrary dimension with value semantics.
// Every operation returns a new vector; the receiver is never modified.
// The zero value has dimension 0 and is only useful as a placeholder.
type N struct {
	v *mgl64.VecN
}

// New returns the vector with the given components.
func New(components ...float64) N {
	return N{v: mgl64.NewVecNFromData(components)}
}

// Zero returns the zero vector of dimension n.
func Zero(n int) N {
	return N{v: mgl64.NewVecNFromData(make([]float64, n))}
}

// Axis returns the i-th standard basis vector of dimension n.
func Axis(n, i int) N {
	data := make([]float64, n)
	data[i] = 1
	return N{v: mgl64.NewVecNFromData(data)}
}

// Basis returns the standard basis of dimension n.
func Basis(n int) []N {
	basis := make([]N, n)
	for i := range basis {
		basis[i] = Axis(n, i)
	}
	return basis
}

func (a N) Add(b N) N {
	return N{v: a.v.Add(mgl64.NewVecN(a.Dim()), b.v)}
}

func (a N) Sub(b N) N {
	return N{v: a.v.Sub(mgl64.NewVecN(a.Dim()), b.v)}
}

func (a N) Mul(c float64) N {
	return N{v: a.v.Mul(mgl64.NewVecN(a.Dim()), c)}
}

func (a N) Dot(b N) float64 {
	if a.v == nil || b.v == nil {
		return 0
	}
	return a.v.Dot(b.v)
}

func (a N) LenSqr() float64 {
	return a.Dot(a)
}

// Dim returns the number of components.
func (a N) Dim() int {
	if a.v == nil {
		return 0
	}
	return a.v.Size()
}

// At returns the i-th component.
func (a N) At(i int) float64 {
	return a.v.Get(i)
}

// Raw returns a copy of the components.
func (a N) Raw() []float64 {
	if a.v == nil {
		return nil
	}
	return append([]float64(nil), a.v.Raw()...)
}

func (a N) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < a.Dim(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g", a.At(i))
	}
	sb.WriteByte(')')
	return sb.String()
}
