package gjk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNumericDegeneracy is returned when the simplex could not be reduced to a
	// non-degenerate face, or when the search stalled on a sample it already holds.
	ErrNumericDegeneracy = errors.New("gjk: numeric degeneracy")
	// ErrIterationLimitExceeded is returned when the iteration cap is reached before
	// the search reached a conclusion.
	ErrIterationLimitExceeded = errors.New("gjk: iteration limit exceeded")
	// ErrInvalidInput is returned for nil or empty shapes and for non-finite support points.
	// A shape is empty when it holds no point at all (see shape.Emptier). Shapes of zero
	// extent, such as a point or a segment, hold points and are valid input.
	ErrInvalidInput = errors.New("gjk: invalid input")
	// ErrInvalidDimension is returned by New for an unusable basis or option.
	ErrInvalidDimension = errors.New("gjk: invalid dimension")
)

// Status is the state of an overlap query.
type Status int

const (
	Searching Status = iota
	Separated
	Overlapping
	Inconclusive
	Invalid
)

var statusNames = [...]string{
	Searching:    "searching",
	Separated:    "separated",
	Overlapping:  "overlapping",
	Inconclusive: "inconclusive",
	Invalid:      "invalid",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus is the inverse of Status.String. It ignores case.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if strings.EqualFold(n, name) {
			return Status(i), nil
		}
	}
	return Searching, fmt.Errorf("gjk: unknown status %q", name)
}

// Result is the outcome of a query.
//
// Axis and Gap are set when Status is Separated: every point of A projects at least
// Gap lower along Axis than every point of B. Axis has unit length.
//
// Distance, PointA and PointB are only computed by Distance queries, where PointA on A
// and PointB on B realize the distance between the shapes.
//
// Simplex is a copy of the final simplex. For Overlapping results it encloses the origin
// and can serve as the starting polytope of a penetration solver.
type Result[V any] struct {
	Status     Status
	Axis       V
	Gap        float64
	Distance   float64
	PointA     V
	PointB     V
	Simplex    []V
	Iterations int
	Err        error
}

// Conclusive reports whether the query ended with a definite answer.
func (r Result[V]) Conclusive() bool {
	return r.Status == Separated || r.Status == Overlapping
}
