package vec

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Standard bases of the mathgl vector types, in axis order.

func Basis2() []mgl64.Vec2 {
	return []mgl64.Vec2{{1, 0}, {0, 1}}
}

func Basis3() []mgl64.Vec3 {
	return []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func Basis4() []mgl64.Vec4 {
	return []mgl64.Vec4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
}

func Basis2f() []mgl32.Vec2 {
	return []mgl32.Vec2{{1, 0}, {0, 1}}
}

func Basis3f() []mgl32.Vec3 {
	return []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}
