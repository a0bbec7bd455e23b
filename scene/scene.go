package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrParentCycle = errors.New("scene: parenting would create a cycle")

// Scene is an in-memory scene graph. Objects keep insertion order.
type Scene struct {
	objects []*Object
	nextId  ObjectId
}

func NewScene() *Scene {
	return &Scene{}
}

// Objects returns a snapshot of the object list.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

func (s *Scene) Object(name string) *Object {
	for _, o := range s.objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

func (s *Scene) addObject(name string, typ ObjectType, tr *Transform) *Object {
	if tr == nil {
		tr = NewTransform()
	}
	s.nextId++
	o := &Object{
		Id:        s.nextId,
		Name:      uniqueName(name, func(n string) bool { return s.Object(n) != nil }),
		Type:      typ,
		Transform: tr,
	}
	s.objects = append(s.objects, o)
	return o
}

// AddMesh adds a mesh object. A taken name gets a numeric suffix.
func (s *Scene) AddMesh(name string, mesh *Mesh, tr *Transform) *Object {
	o := s.addObject(name, ObjectMesh, tr)
	o.Mesh = mesh
	return o
}

// AddArmature adds an armature object at a world location. A taken name
// gets a numeric suffix; callers that rely on the name should check it.
func (s *Scene) AddArmature(name string, location mgl32.Vec3) (*Object, error) {
	tr := NewTransform()
	tr.Position = location
	o := s.addObject(name, ObjectArmature, tr)
	o.Armature = NewArmature()
	return o, nil
}

// SetParent parents child under parent (nil clears the parent). With
// keepTransform the child's world transform is unchanged.
func (s *Scene) SetParent(child, parent *Object, keepTransform bool) error {
	if child == nil {
		return fmt.Errorf("scene: set parent of nil object")
	}
	for p := parent; p != nil; p = p.Parent {
		if p == child {
			return fmt.Errorf("%s under %s: %w", child.Name, parent.Name, ErrParentCycle)
		}
	}

	var world *Transform
	if keepTransform {
		world = child.WorldTransform()
	}
	child.Parent = parent
	if !keepTransform {
		return nil
	}
	if parent == nil {
		child.Transform = world
		return nil
	}
	child.Transform = parent.WorldTransform().Relative(world)
	return nil
}

// Children returns the direct children of o in scene order.
func (s *Scene) Children(o *Object) []*Object {
	var out []*Object
	for _, c := range s.objects {
		if c.Parent == o {
			out = append(out, c)
		}
	}
	return out
}
