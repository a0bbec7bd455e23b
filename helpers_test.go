package autorig

import (
	"testing"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-4

func newCube(s *scene.Scene, name string, pos mgl32.Vec3) *scene.Object {
	return s.AddMesh(name, scene.NewBox(mgl32.Vec3{1, 1, 1}), scene.NewTransformEuler(pos, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}))
}

// chainScene is three unit cubes in a row along +X.
func chainScene() (*scene.Scene, *scene.Object, *scene.Object, *scene.Object) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	b := newCube(s, "B", mgl32.Vec3{1, 0, 0})
	c := newCube(s, "C", mgl32.Vec3{2, 0, 0})
	return s, a, b, c
}

// cycleScene makes A, B and C pairwise touching: A and B side by side, C a
// two-cube bar lying across the top of both.
func cycleScene() (*scene.Scene, *scene.Object, *scene.Object, *scene.Object) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	b := newCube(s, "B", mgl32.Vec3{1, 0, 0})
	bar := scene.NewBoxes(
		[]mgl32.Vec3{{1, 1, 1}, {1, 1, 1}},
		[]mgl32.Vec3{{0, 1, 0}, {1, 1, 0}},
	)
	c := s.AddMesh("C", bar, nil)
	return s, a, b, c
}

func assertVec(t *testing.T, want, got mgl32.Vec3, what string) {
	t.Helper()
	// Absolute distance: float noise around an exact zero must pass.
	if want.Sub(got).Len() > tol {
		assert.Fail(t, "vectors differ", "%s: want %v, got %v", what, want, got)
	}
}
