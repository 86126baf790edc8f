package shape

import "github.com/akmonengine/overlap/vec"

// AABB represents an axis-aligned bounding box.
// Min[i] and Max[i] bound the shape along the i-th basis vector it was computed with.
type AABB struct {
	Min []float64
	Max []float64
}

// ComputeAABB bounds any shape by querying its support function along each signed basis direction.
func ComputeAABB[V vec.Vector[V, S], S vec.Scalar](s Shape[V], basis []V) AABB {
	aabb := AABB{
		Min: make([]float64, len(basis)),
		Max: make([]float64, len(basis)),
	}
	for i, axis := range basis {
		aabb.Max[i] = float64(s.Support(axis).Dot(axis))
		aabb.Min[i] = float64(s.Support(axis.Mul(-1)).Dot(axis))
	}
	return aabb
}

// Coordinates returns the components of p along each basis vector.
func Coordinates[V vec.Vector[V, S], S vec.Scalar](p V, basis []V) []float64 {
	coords := make([]float64, len(basis))
	for i, axis := range basis {
		coords[i] = float64(p.Dot(axis))
	}
	return coords
}

// Dim returns the number of axes.
func (a AABB) Dim() int {
	return len(a.Min)
}

// Extent returns the size of the box along axis i.
func (a AABB) Extent(i int) float64 {
	return a.Max[i] - a.Min[i]
}

// ContainsPoint checks if a point, given by its coordinates, is inside the AABB
func (a AABB) ContainsPoint(coords []float64) bool {
	if len(coords) != len(a.Min) {
		return false
	}
	for i, c := range coords {
		if c < a.Min[i] || c > a.Max[i] {
			return false
		}
	}
	return true
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	if len(a.Min) != len(other.Min) {
		return false
	}
	// AABBs overlap if they overlap on every axis
	for i := range a.Min {
		if a.Max[i] < other.Min[i] || a.Min[i] > other.Max[i] {
			return false
		}
	}
	return true
}
