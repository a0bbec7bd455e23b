package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var ErrNotEditing = errors.New("scene: armature is not in edit mode")

type Bone struct {
	ID     uuid.UUID
	Name   string
	Parent *Bone
	Head   mgl32.Vec3
	Tail   mgl32.Vec3
}

func (b *Bone) Length() float32 {
	return b.Tail.Sub(b.Head).Len()
}

// Armature is the bone data of an armature object. Bones can only be added
// between BeginEdit and EndEdit.
type Armature struct {
	ID      uuid.UUID
	Bones   []*Bone
	editing bool
}

func NewArmature() *Armature {
	return &Armature{ID: uuid.New()}
}

func (a *Armature) BeginEdit() { a.editing = true }
func (a *Armature) EndEdit()   { a.editing = false }
func (a *Armature) IsEditing() bool {
	return a.editing
}

// NewBone appends a bone. Names are made unique within the armature by
// suffixing .001, .002 and so on.
func (a *Armature) NewBone(name string, parent *Bone) (*Bone, error) {
	if !a.editing {
		return nil, fmt.Errorf("new bone %q: %w", name, ErrNotEditing)
	}
	if parent != nil && a.Bone(parent.Name) != parent {
		return nil, fmt.Errorf("scene: parent bone %q does not belong to armature %s", parent.Name, a.ID)
	}
	b := &Bone{
		ID:     uuid.New(),
		Name:   uniqueName(name, func(n string) bool { return a.Bone(n) != nil }),
		Parent: parent,
	}
	a.Bones = append(a.Bones, b)
	return b, nil
}

func (a *Armature) Bone(name string) *Bone {
	for _, b := range a.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (a *Armature) Children(parent *Bone) []*Bone {
	var out []*Bone
	for _, b := range a.Bones {
		if b.Parent == parent {
			out = append(out, b)
		}
	}
	return out
}

func uniqueName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		n := fmt.Sprintf("%s.%03d", base, i)
		if !taken(n) {
			return n
		}
	}
}
