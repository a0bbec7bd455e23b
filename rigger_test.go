package autorig

import (
	"fmt"
	"testing"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRig_Chain(t *testing.T) {
	s, a, b, c := chainScene()

	res, err := NewRigger(s, DefaultConfig(), nil).StartRig(a)
	require.NoError(t, err)

	require.Len(t, res.Bones, 3)
	assert.Equal(t, []string{"A", "B", "C"}, res.Visits)

	boneA, boneB, boneC := res.BoneFor("A"), res.BoneFor("B"), res.BoneFor("C")
	require.NotNil(t, boneA)
	require.NotNil(t, boneB)
	require.NotNil(t, boneC)
	assert.Same(t, res.Root, boneA)

	assert.Nil(t, boneA.Parent)
	assert.Same(t, boneA, boneB.Parent)
	assert.Same(t, boneB, boneC.Parent)

	assertVec(t, mgl32.Vec3{0.5, 0, 0}, boneA.Head, "A head")
	assertVec(t, mgl32.Vec3{0, 0, 0}, boneA.Tail, "A tail")
	assertVec(t, mgl32.Vec3{0.5, 0, 0}, boneB.Head, "B head")
	assertVec(t, mgl32.Vec3{1, 0, 0}, boneB.Tail, "B tail")
	assertVec(t, mgl32.Vec3{1.5, 0, 0}, boneC.Head, "C head")
	assertVec(t, mgl32.Vec3{2, 0, 0}, boneC.Tail, "C tail")

	arm := res.Armature
	assert.Equal(t, DefaultArmatureName, arm.Name)
	assert.Equal(t, scene.ObjectArmature, arm.Type)
	assert.True(t, arm.ShowXRay)
	assertVec(t, mgl32.Vec3{0, 0, 0}, arm.Location(), "armature location")
	assert.False(t, arm.Armature.IsEditing())

	for _, part := range []*scene.Object{a, b, c} {
		assert.Same(t, arm, part.Parent, part.Name)

		require.Len(t, part.VertexGroups, 1, part.Name)
		g := part.VertexGroups[0]
		assert.Equal(t, part.Name, g.Name)
		assert.Len(t, g.Weights, len(part.Mesh.Vertices))
		for i := range part.Mesh.Vertices {
			w, ok := g.Weight(i)
			assert.True(t, ok)
			assert.Equal(t, float32(1), w)
		}

		require.Len(t, part.Modifiers, 1, part.Name)
		m := part.Modifiers[0]
		assert.Equal(t, "rig_modifier", m.Name)
		assert.Equal(t, scene.ModifierArmature, m.Type)
		assert.Same(t, arm, m.Object)
	}

	// Reparenting keeps every part where it was.
	assertVec(t, mgl32.Vec3{1, 0, 0}, b.Location(), "B location")
	assertVec(t, mgl32.Vec3{2, 0, 0}, c.Location(), "C location")
}

func TestStartRig_RootInMiddle(t *testing.T) {
	s, _, b, _ := chainScene()

	res, err := NewRigger(s, DefaultConfig(), nil).StartRig(b)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A", "C"}, res.Visits)
	// Root head is the polygon-weighted mean of both contact regions.
	assertVec(t, mgl32.Vec3{1, 0, 0}, res.Root.Head, "root head")
	assertVec(t, mgl32.Vec3{1, 0, 0}, res.Root.Tail, "root tail")

	assert.Same(t, res.Root, res.BoneFor("A").Parent)
	assert.Same(t, res.Root, res.BoneFor("C").Parent)
	assertVec(t, mgl32.Vec3{0.5, 0, 0}, res.BoneFor("A").Head, "A head")
	assertVec(t, mgl32.Vec3{1.5, 0, 0}, res.BoneFor("C").Head, "C head")
	assertVec(t, mgl32.Vec3{1, 0, 0}, res.Armature.Location(), "armature location")
}

func TestStartRig_CycleVisitsEachPartOnce(t *testing.T) {
	s, a, _, _ := cycleScene()

	res, err := NewRigger(s, DefaultConfig(), nil).StartRig(a)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, res.Visits)
	require.Len(t, res.Bones, 3)
	assert.Same(t, res.BoneFor("B"), res.BoneFor("C").Parent)

	assertVec(t, mgl32.Vec3{0.25, 0.25, 0}, res.Root.Head, "root head")
	assertVec(t, mgl32.Vec3{1, 0.5, 0}, res.BoneFor("C").Head, "C head")
	assertVec(t, mgl32.Vec3{0.5, 1, 0}, res.BoneFor("C").Tail, "C tail")
}

func TestStartRig_RevisitPartsStopsAtMaxDepth(t *testing.T) {
	s, a, _, _ := cycleScene()
	cfg := DefaultConfig()
	cfg.RevisitParts = true
	cfg.MaxDepth = 3

	res, err := NewRigger(s, cfg, nil).StartRig(a)
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrDepthExceeded)

	var partial *PartialRigError
	require.ErrorAs(t, err, &partial)
	require.NotNil(t, partial.Armature)

	var names []string
	for _, b := range partial.Bones {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"A", "B", "C", "A.001"}, names)
	assert.NotNil(t, s.Object(DefaultArmatureName))
	assert.False(t, partial.Armature.Armature.IsEditing())
}

func TestStartRig_RevisitPartsTwoParts(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	newCube(s, "B", mgl32.Vec3{1, 0, 0})
	cfg := DefaultConfig()
	cfg.RevisitParts = true

	// The previous part is always skipped, so a pair terminates.
	res, err := NewRigger(s, cfg, nil).StartRig(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Visits)
}

func TestStartRig_LongChainHasNoDepthLimit(t *testing.T) {
	s := scene.NewScene()
	n := DefaultMaxDepth + 44
	var first *scene.Object
	for i := 0; i < n; i++ {
		o := newCube(s, fmt.Sprintf("P%03d", i), mgl32.Vec3{float32(i), 0, 0})
		if first == nil {
			first = o
		}
	}

	res, err := NewRigger(s, DefaultConfig(), nil).StartRig(first)
	require.NoError(t, err)
	require.Len(t, res.Bones, n)

	last := res.BoneFor(fmt.Sprintf("P%03d", n-1))
	require.NotNil(t, last)
	depth := 0
	for b := last; b.Parent != nil; b = b.Parent {
		depth++
	}
	assert.Equal(t, n-1, depth)
}

func TestStartRig_RootWithoutNeighbours(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{0, 0, 0})
	b := newCube(s, "B", mgl32.Vec3{3, 0, 0})

	_, err := NewRigger(s, DefaultConfig(), nil).StartRig(a)
	require.ErrorIs(t, err, ErrPrecondition)

	var partial *PartialRigError
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Bones, 1)
	assert.Equal(t, "A", partial.Bones[0].Name)

	// Nothing was reparented or weighted.
	assert.Nil(t, a.Parent)
	assert.Empty(t, a.VertexGroups)
	assert.Empty(t, b.Modifiers)
	assert.Same(t, partial.Armature, s.Object(DefaultArmatureName))
}

func TestStartRig_IgnoresDetachedParts(t *testing.T) {
	s, a, _, _ := chainScene()
	far := newCube(s, "Far", mgl32.Vec3{10, 0, 0})

	res, err := NewRigger(s, DefaultConfig(), nil).StartRig(a)
	require.NoError(t, err)
	assert.Nil(t, res.BoneFor("Far"))
	assert.Nil(t, far.Parent)
	assert.Empty(t, far.VertexGroups)
}

func TestStartRig_Preconditions(t *testing.T) {
	t.Run("nil root", func(t *testing.T) {
		s, _, _, _ := chainScene()
		_, err := NewRigger(s, DefaultConfig(), nil).StartRig(nil)
		assert.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("root from another scene", func(t *testing.T) {
		s, _, _, _ := chainScene()
		other, _, _, _ := chainScene()
		_, err := NewRigger(s, DefaultConfig(), nil).StartRig(other.Object("A"))
		assert.ErrorIs(t, err, ErrPrecondition)
		assert.Nil(t, s.Object(DefaultArmatureName))
	})

	t.Run("root is not a mesh", func(t *testing.T) {
		s, _, _, _ := chainScene()
		rig, err := s.AddArmature("Rig", mgl32.Vec3{})
		require.NoError(t, err)
		_, err = NewRigger(s, DefaultConfig(), nil).StartRig(rig)
		assert.ErrorIs(t, err, ErrPrecondition)
	})

	t.Run("invalid config", func(t *testing.T) {
		s, a, _, _ := chainScene()
		cfg := DefaultConfig()
		cfg.CastLength = 0
		_, err := NewRigger(s, cfg, nil).StartRig(a)
		assert.ErrorIs(t, err, ErrPrecondition)
		assert.Nil(t, s.Object(DefaultArmatureName))
	})
}

func TestStartRig_AmbiguousNames(t *testing.T) {
	t.Run("duplicate part names", func(t *testing.T) {
		s, a, b, _ := chainScene()
		b.Name = "A"
		_, err := NewRigger(s, DefaultConfig(), nil).StartRig(a)
		assert.ErrorIs(t, err, ErrAmbiguousName)
		assert.Nil(t, s.Object(DefaultArmatureName))
	})

	t.Run("part uses the armature name", func(t *testing.T) {
		s, a, _, _ := chainScene()
		newCube(s, DefaultArmatureName, mgl32.Vec3{5, 0, 0})
		_, err := NewRigger(s, DefaultConfig(), nil).StartRig(a)
		assert.ErrorIs(t, err, ErrAmbiguousName)
	})

	t.Run("armature renamed by the scene", func(t *testing.T) {
		s, a, _, _ := chainScene()
		_, err := NewRigger(renamingScene{s}, DefaultConfig(), nil).StartRig(a)
		require.ErrorIs(t, err, ErrAmbiguousName)
		var partial *PartialRigError
		require.ErrorAs(t, err, &partial)
		assert.Empty(t, partial.Bones)
	})
}

func TestStartRig_CustomArmatureName(t *testing.T) {
	s, a, _, _ := chainScene()
	cfg := DefaultConfig()
	cfg.ArmatureName = "Skeleton"

	res, err := NewRigger(s, cfg, nil).StartRig(a)
	require.NoError(t, err)
	assert.Equal(t, "Skeleton", res.Armature.Name)
	assert.Same(t, res.Armature, a.Modifiers[0].Object)
}

func TestStartRig_BroadPhaseAndCacheOff(t *testing.T) {
	s1, a1, _, _ := cycleScene()
	want, err := NewRigger(s1, DefaultConfig(), nil).StartRig(a1)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BroadPhase = false
	cfg.CacheIndexes = false
	s2, a2, _, _ := cycleScene()
	got, err := NewRigger(s2, cfg, nil).StartRig(a2)
	require.NoError(t, err)

	assert.Equal(t, want.Visits, got.Visits)
	require.Len(t, got.Bones, len(want.Bones))
	for i := range want.Bones {
		assertVec(t, want.Bones[i].Head, got.Bones[i].Head, want.Bones[i].Name)
		assertVec(t, want.Bones[i].Tail, got.Bones[i].Tail, want.Bones[i].Name)
	}
	assert.Zero(t, got.IndexBuilds)
	assert.Equal(t, 3, want.IndexBuilds)
}

func TestWeightPartTwice(t *testing.T) {
	s := scene.NewScene()
	a := newCube(s, "A", mgl32.Vec3{})
	arm, err := s.AddArmature("Armature", mgl32.Vec3{})
	require.NoError(t, err)

	weightPart(a, arm)
	weightPart(a, arm)

	require.Len(t, a.VertexGroups, 2)
	assert.Equal(t, "A", a.VertexGroups[0].Name)
	assert.Equal(t, "A.001", a.VertexGroups[1].Name)
	require.Len(t, a.Modifiers, 2)
	assert.Equal(t, "rig_modifier", a.Modifiers[0].Name)
	assert.Equal(t, "rig_modifier.001", a.Modifiers[1].Name)
}

// renamingScene hands out armatures under a different name than asked for.
type renamingScene struct {
	*scene.Scene
}

func (r renamingScene) AddArmature(name string, location mgl32.Vec3) (*scene.Object, error) {
	return r.Scene.AddArmature(name+"_1", location)
}
