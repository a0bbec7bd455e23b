package autorig

import (
	"fmt"
	"testing"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTouching_Symmetric(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	b := newCube(s, "B", mgl32.Vec3{1, 0, 0})
	d := NewDetector(DefaultConfig(), nil)

	fromA, err := d.FindTouching(a, s.Objects(), nil)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Same(t, b, fromA[0].Part)
	require.Len(t, fromA[0].Polygons, 1)
	assertVec(t, mgl32.Vec3{-1, 0, 0}, fromA[0].Polygons[0].Normal, "B contact normal")

	fromB, err := d.FindTouching(b, s.Objects(), nil)
	require.NoError(t, err)
	require.Len(t, fromB, 1)
	assert.Same(t, a, fromB[0].Part)
	assertVec(t, mgl32.Vec3{1, 0, 0}, fromB[0].Polygons[0].Normal, "A contact normal")
	assert.Equal(t, 1, fromB.Polygons())
}

func TestFindTouching_Separated(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	// A gap twice the cast length.
	newCube(s, "B", mgl32.Vec3{1 + 2*DefaultCastLength, 0, 0})

	got, err := NewDetector(DefaultConfig(), nil).FindTouching(a, s.Objects(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, got.Polygons())
}

func TestFindTouching_WithinCastLength(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	newCube(s, "B", mgl32.Vec3{1 + DefaultCastLength/2, 0, 0})

	got, err := NewDetector(DefaultConfig(), nil).FindTouching(a, s.Objects(), nil)
	require.NoError(t, err)
	_, ok := got.Find("B")
	assert.True(t, ok)
}

func TestFindTouching_Excluded(t *testing.T) {
	s, a, _, _ := cycleScene()

	got, err := NewDetector(DefaultConfig(), nil).FindTouching(a, s.Objects(), map[string]struct{}{"C": {}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Part.Name)

	_, ok := got.Find("C")
	assert.False(t, ok)
}

func TestFindTouching_SkipsNonMeshObjects(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	_, err := s.AddArmature("Armature", mgl32.Vec3{0.5, 0, 0})
	require.NoError(t, err)
	newCube(s, "B", mgl32.Vec3{0, 0, 1})

	got, err := NewDetector(DefaultConfig(), nil).FindTouching(a, s.Objects(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Part.Name)
}

func TestFindTouching_RotatedNeighbour(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	// Turned a quarter about Z, so its local +Y face looks along -X onto A.
	b := s.AddMesh("B", scene.NewBox(mgl32.Vec3{1, 1, 1}),
		scene.NewTransformEuler(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 90}, mgl32.Vec3{1, 1, 1}))

	got, err := NewDetector(DefaultConfig(), nil).FindTouching(a, s.Objects(), nil)
	require.NoError(t, err)
	c, ok := got.Find("B")
	require.True(t, ok)
	require.Len(t, c.Polygons, 1)
	// Box face 3 is local +Y.
	assert.Equal(t, 3, c.Polygons[0].Index)
	assert.Same(t, b, c.Part)
}

func TestFindTouching_BroadPhaseMatchesBruteForce(t *testing.T) {
	s := scene.NewScene()
	var parts []*scene.Object
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			parts = append(parts, newCube(s, fmt.Sprintf("P%d%d", x, y), mgl32.Vec3{float32(x), float32(y), 0}))
		}
	}
	newCube(s, "Far", mgl32.Vec3{20, 20, 20})

	brute := DefaultConfig()
	brute.BroadPhase = false
	withGrid := NewDetector(DefaultConfig(), nil)
	without := NewDetector(brute, nil)

	for _, p := range parts {
		want, err := without.FindTouching(p, s.Objects(), nil)
		require.NoError(t, err)
		got, err := withGrid.FindTouching(p, s.Objects(), nil)
		require.NoError(t, err)

		require.Len(t, got, len(want), p.Name)
		for i := range want {
			assert.Same(t, want[i].Part, got[i].Part)
			assert.Len(t, got[i].Polygons, len(want[i].Polygons))
		}
	}
}

func TestFindTouching_GridFollowsMovedParts(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	b := newCube(s, "B", mgl32.Vec3{5, 0, 0})
	d := NewDetector(DefaultConfig(), nil)

	got, err := d.FindTouching(a, s.Objects(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	grid := d.grid.grid

	b.Transform.Position = mgl32.Vec3{1, 0, 0}
	got, err = d.FindTouching(a, s.Objects(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Same part sizes, so the grid is cleared and refilled in place.
	assert.Same(t, grid, d.grid.grid)
	assert.Equal(t, float32(1), grid.CellSize())
	assert.ElementsMatch(t, []scene.ObjectId{a.Id, b.Id}, grid.QueryAABB(AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{2, 1, 1}}))
	assert.Empty(t, grid.QueryAABB(AABB{Min: mgl32.Vec3{4.6, -0.4, -0.4}, Max: mgl32.Vec3{5.4, 0.4, 0.4}}))
}
