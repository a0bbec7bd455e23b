package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArmatureEditMode(t *testing.T) {
	a := NewArmature()
	_, err := a.NewBone("Root", nil)
	assert.ErrorIs(t, err, ErrNotEditing)

	a.BeginEdit()
	assert.True(t, a.IsEditing())
	root, err := a.NewBone("Root", nil)
	require.NoError(t, err)
	a.EndEdit()

	assert.False(t, a.IsEditing())
	assert.Equal(t, []*Bone{root}, a.Bones)
	assert.NotEqual(t, root.ID, a.ID)
}

func TestArmatureBones(t *testing.T) {
	a := NewArmature()
	a.BeginEdit()
	defer a.EndEdit()

	root, err := a.NewBone("Torso", nil)
	require.NoError(t, err)
	arm, err := a.NewBone("Arm", root)
	require.NoError(t, err)
	again, err := a.NewBone("Torso", arm)
	require.NoError(t, err)

	assert.Equal(t, "Torso.001", again.Name)
	assert.Same(t, root, a.Bone("Torso"))
	assert.Same(t, again, a.Bone("Torso.001"))
	assert.Equal(t, []*Bone{arm}, a.Children(root))
	assert.Equal(t, []*Bone{root}, a.Children(nil))

	root.Head = mgl32.Vec3{0, 0, 0}
	root.Tail = mgl32.Vec3{0, 3, 4}
	assert.InDelta(t, 5, root.Length(), 1e-6)

	other := NewArmature()
	other.BeginEdit()
	_, err = other.NewBone("Child", root)
	assert.Error(t, err)
}
