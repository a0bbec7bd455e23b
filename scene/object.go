package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type ObjectId uint64

type ObjectType int

const (
	ObjectMesh ObjectType = iota
	ObjectArmature
)

func (t ObjectType) String() string {
	switch t {
	case ObjectMesh:
		return "MESH"
	case ObjectArmature:
		return "ARMATURE"
	}
	return "UNKNOWN"
}

// Object is a node of the scene graph. Transform is relative to Parent, or
// to the world when Parent is nil.
type Object struct {
	Id        ObjectId
	Name      string
	Type      ObjectType
	Transform *Transform
	Parent    *Object

	Mesh     *Mesh     // ObjectMesh only
	Armature *Armature // ObjectArmature only
	ShowXRay bool

	VertexGroups []*VertexGroup
	Modifiers    []*Modifier
}

func (o *Object) IsMesh() bool {
	return o.Type == ObjectMesh && o.Mesh != nil
}

// WorldTransform walks the parent chain.
func (o *Object) WorldTransform() *Transform {
	if o.Parent == nil {
		return o.Transform.Clone()
	}
	return o.Parent.WorldTransform().Compose(o.Transform)
}

func (o *Object) MatrixWorld() mgl32.Mat4 {
	return o.WorldTransform().ObjectToWorld()
}

// Location is the world-space origin of the object.
func (o *Object) Location() mgl32.Vec3 {
	return o.WorldTransform().Position
}

// WorldAABB returns the world-space bounds of the object's mesh.
func (o *Object) WorldAABB() (minB, maxB mgl32.Vec3, ok bool) {
	if !o.IsMesh() || len(o.Mesh.Vertices) == 0 {
		return minB, maxB, false
	}
	world := o.WorldTransform()
	minB = world.TransformPoint(o.Mesh.Vertices[0])
	maxB = minB
	for _, v := range o.Mesh.Vertices[1:] {
		wv := world.TransformPoint(v)
		minB = mgl32.Vec3{min(minB.X(), wv.X()), min(minB.Y(), wv.Y()), min(minB.Z(), wv.Z())}
		maxB = mgl32.Vec3{max(maxB.X(), wv.X()), max(maxB.Y(), wv.Y()), max(maxB.Z(), wv.Z())}
	}
	return minB, maxB, true
}

func (o *Object) NewVertexGroup(name string) *VertexGroup {
	g := &VertexGroup{
		Name:    uniqueName(name, func(n string) bool { return o.VertexGroup(n) != nil }),
		Weights: make(map[int]float32),
	}
	o.VertexGroups = append(o.VertexGroups, g)
	return g
}

func (o *Object) VertexGroup(name string) *VertexGroup {
	for _, g := range o.VertexGroups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (o *Object) AddModifier(name string, typ ModifierType) *Modifier {
	m := &Modifier{
		Name: uniqueName(name, func(n string) bool {
			for _, existing := range o.Modifiers {
				if existing.Name == n {
					return true
				}
			}
			return false
		}),
		Type: typ,
	}
	o.Modifiers = append(o.Modifiers, m)
	return m
}
