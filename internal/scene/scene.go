// Package scene reads YAML scene files: named convex shapes of one dimension, the
// pairs to test and optionally the expected status of each pair.
package scene

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/overlap/gjk"
	"github.com/akmonengine/overlap/shape"
	"github.com/akmonengine/overlap/vec"
	"gopkg.in/yaml.v3"
)

// Shape kinds.
const (
	KindPoint    = "point"
	KindBall     = "ball"
	KindBox      = "box"
	KindPolytope = "polytope"
	KindCapsule  = "capsule"
)

var ErrInvalidScene = errors.New("scene: invalid scene")

// Scene is the content of a scene file.
type Scene struct {
	Name      string        `yaml:"name"`
	Dimension int           `yaml:"dimension"`
	Shapes    []ShapeSpec   `yaml:"shapes"`
	Pairs     [][]string    `yaml:"pairs"`
	Expect    []Expectation `yaml:"expect"`
}

// ShapeSpec describes one shape. Which fields are read depends on Kind:
//   - point: Center
//   - ball: Center, Radius
//   - box: Center, HalfExtents (axis aligned)
//   - polytope: Vertices
//   - capsule: A, B, Radius
//
// Offset translates the shape and Margin inflates it, whatever its kind.
type ShapeSpec struct {
	Name        string      `yaml:"name"`
	Kind        string      `yaml:"kind"`
	Center      []float64   `yaml:"center"`
	Radius      float64     `yaml:"radius"`
	HalfExtents []float64   `yaml:"half_extents"`
	Vertices    [][]float64 `yaml:"vertices"`
	A           []float64   `yaml:"a"`
	B           []float64   `yaml:"b"`
	Offset      []float64   `yaml:"offset"`
	Margin      float64     `yaml:"margin"`
}

// Expectation is the status a pair must end in.
type Expectation struct {
	A      string `yaml:"a"`
	B      string `yaml:"b"`
	Status string `yaml:"status"`
}

// NamedPair identifies a pair by the names of its shapes.
type NamedPair struct {
	A, B string
}

func (p NamedPair) String() string {
	return p.A + "|" + p.B
}

// Model is a scene whose shapes are built and validated.
type Model struct {
	Dimension int
	Basis     []vec.N
	Names     []string
	Shapes    map[string]shape.Shape[vec.N]
	Pairs     []NamedPair
	Expected  map[NamedPair]gjk.Status
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Parse decodes a scene document.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return &s, nil
}

// Build checks the scene and builds its shapes.
// Without explicit pairs, every pair of shapes is tested in declaration order.
func (s *Scene) Build() (*Model, error) {
	if s.Dimension < 1 || s.Dimension > gjk.MaxDimension {
		return nil, fmt.Errorf("%w: dimension %d out of [1, %d]", ErrInvalidScene, s.Dimension, gjk.MaxDimension)
	}

	m := &Model{
		Dimension: s.Dimension,
		Basis:     vec.Basis(s.Dimension),
		Shapes:    make(map[string]shape.Shape[vec.N], len(s.Shapes)),
		Expected:  make(map[NamedPair]gjk.Status, len(s.Expect)),
	}

	for i, def := range s.Shapes {
		if def.Name == "" {
			return nil, fmt.Errorf("%w: shape #%d has no name", ErrInvalidScene, i)
		}
		if _, ok := m.Shapes[def.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate shape %q", ErrInvalidScene, def.Name)
		}
		built, err := def.build(s.Dimension, m.Basis)
		if err != nil {
			return nil, fmt.Errorf("%w: shape %q: %w", ErrInvalidScene, def.Name, err)
		}
		m.Shapes[def.Name] = built
		m.Names = append(m.Names, def.Name)
	}

	if len(s.Pairs) == 0 {
		for i := 0; i < len(m.Names); i++ {
			for j := i + 1; j < len(m.Names); j++ {
				m.Pairs = append(m.Pairs, NamedPair{A: m.Names[i], B: m.Names[j]})
			}
		}
	}
	for i, p := range s.Pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: pair #%d must name 2 shapes, got %d", ErrInvalidScene, i, len(p))
		}
		pair := NamedPair{A: p[0], B: p[1]}
		if err := m.check(pair); err != nil {
			return nil, fmt.Errorf("%w: pair #%d: %w", ErrInvalidScene, i, err)
		}
		m.Pairs = append(m.Pairs, pair)
	}

	for i, e := range s.Expect {
		pair := NamedPair{A: e.A, B: e.B}
		if err := m.check(pair); err != nil {
			return nil, fmt.Errorf("%w: expectation #%d: %w", ErrInvalidScene, i, err)
		}
		if !m.tested(pair) {
			return nil, fmt.Errorf("%w: expectation #%d: pair %s is not tested", ErrInvalidScene, i, pair)
		}
		status, err := gjk.ParseStatus(e.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: expectation #%d: %w", ErrInvalidScene, i, err)
		}
		m.Expected[pair] = status
	}

	return m, nil
}

// Expectation returns the status expected for p, in either order.
func (m *Model) Expectation(p NamedPair) (gjk.Status, bool) {
	if status, ok := m.Expected[p]; ok {
		return status, true
	}
	status, ok := m.Expected[NamedPair{A: p.B, B: p.A}]
	return status, ok
}

func (m *Model) tested(p NamedPair) bool {
	for _, q := range m.Pairs {
		if q == p || (q.A == p.B && q.B == p.A) {
			return true
		}
	}
	return false
}

func (m *Model) check(p NamedPair) error {
	for _, name := range []string{p.A, p.B} {
		if _, ok := m.Shapes[name]; !ok {
			return fmt.Errorf("unknown shape %q", name)
		}
	}
	return nil
}

// Bounds returns the bounding box of a shape along the standard axes.
func (m *Model) Bounds(name string) (shape.AABB, error) {
	s, ok := m.Shapes[name]
	if !ok {
		return shape.AABB{}, fmt.Errorf("scene: unknown shape %q", name)
	}
	return shape.ComputeAABB[vec.N, float64](s, m.Basis), nil
}

func (def ShapeSpec) build(dim int, basis []vec.N) (shape.Shape[vec.N], error) {
	var s shape.Shape[vec.N]

	switch def.Kind {
	case KindPoint:
		center, err := point("center", def.Center, dim)
		if err != nil {
			return nil, err
		}
		s = shape.Point[vec.N]{P: center}
	case KindBall:
		center, err := point("center", def.Center, dim)
		if err != nil {
			return nil, err
		}
		if err := nonNegative("radius", def.Radius); err != nil {
			return nil, err
		}
		s = shape.NewBall(center, def.Radius)
	case KindBox:
		center, err := point("center", def.Center, dim)
		if err != nil {
			return nil, err
		}
		if len(def.HalfExtents) != dim {
			return nil, fmt.Errorf("half_extents has %d components, want %d", len(def.HalfExtents), dim)
		}
		for _, h := range def.HalfExtents {
			if err := nonNegative("half_extents", h); err != nil {
				return nil, err
			}
		}
		s = shape.NewAlignedBox(center, def.HalfExtents, basis)
	case KindPolytope:
		if len(def.Vertices) == 0 {
			return nil, fmt.Errorf("polytope has no vertex")
		}
		vertices := make([]vec.N, len(def.Vertices))
		for i, raw := range def.Vertices {
			v, err := point(fmt.Sprintf("vertices[%d]", i), raw, dim)
			if err != nil {
				return nil, err
			}
			vertices[i] = v
		}
		s = shape.NewPolytope[vec.N, float64](vertices...)
	case KindCapsule:
		a, err := point("a", def.A, dim)
		if err != nil {
			return nil, err
		}
		b, err := point("b", def.B, dim)
		if err != nil {
			return nil, err
		}
		if err := nonNegative("radius", def.Radius); err != nil {
			return nil, err
		}
		s = shape.NewCapsule(a, b, def.Radius)
	default:
		return nil, fmt.Errorf("unknown kind %q", def.Kind)
	}

	if def.Offset != nil {
		offset, err := point("offset", def.Offset, dim)
		if err != nil {
			return nil, err
		}
		s = shape.Translate(s, offset)
	}
	if def.Margin != 0 {
		if err := nonNegative("margin", def.Margin); err != nil {
			return nil, err
		}
		s = shape.Inflate[vec.N, float64](s, def.Margin)
	}
	return s, nil
}

func point(field string, components []float64, dim int) (vec.N, error) {
	if len(components) != dim {
		return vec.N{}, fmt.Errorf("%s has %d components, want %d", field, len(components), dim)
	}
	for _, c := range components {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return vec.N{}, fmt.Errorf("%s is not finite", field)
		}
	}
	return vec.New(append([]float64(nil), components...)...), nil
}

func nonNegative(field string, x float64) error {
	if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%s must be a finite non-negative number, got %g", field, x)
	}
	return nil
}
