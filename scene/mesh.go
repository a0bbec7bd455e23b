package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Polygon is one face of a Mesh. Vertices index into Mesh.Vertices and
// Normal is in the mesh's local space.
type Polygon struct {
	Index    int
	Vertices []int
	Normal   mgl32.Vec3
}

type Mesh struct {
	Vertices []mgl32.Vec3
	Polygons []Polygon
}

// NewMesh builds a mesh from local vertex positions and faces given as
// vertex-index loops. Face normals are derived from the winding order.
func NewMesh(vertices []mgl32.Vec3, faces [][]int) (*Mesh, error) {
	m := &Mesh{Vertices: vertices}
	for _, f := range faces {
		if err := m.AddPolygon(f...); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Mesh) AddPolygon(indices ...int) error {
	for _, vi := range indices {
		if vi < 0 || vi >= len(m.Vertices) {
			return fmt.Errorf("scene: polygon %d references vertex %d of %d", len(m.Polygons), vi, len(m.Vertices))
		}
	}
	loop := make([]int, len(indices))
	copy(loop, indices)
	m.Polygons = append(m.Polygons, Polygon{
		Index:    len(m.Polygons),
		Vertices: loop,
		Normal:   newellNormal(m.Vertices, loop),
	})
	return nil
}

// Append merges other into m, offsetting its vertices.
func (m *Mesh) Append(other *Mesh, offset mgl32.Vec3) {
	base := len(m.Vertices)
	for _, v := range other.Vertices {
		m.Vertices = append(m.Vertices, v.Add(offset))
	}
	for _, p := range other.Polygons {
		loop := make([]int, len(p.Vertices))
		for i, vi := range p.Vertices {
			loop[i] = vi + base
		}
		m.Polygons = append(m.Polygons, Polygon{
			Index:    len(m.Polygons),
			Vertices: loop,
			Normal:   p.Normal,
		})
	}
}

func (m *Mesh) RecalculateNormals() {
	for i := range m.Polygons {
		m.Polygons[i].Normal = newellNormal(m.Vertices, m.Polygons[i].Vertices)
	}
}

// Bounds returns the local-space AABB. ok is false for a mesh without vertices.
func (m *Mesh) Bounds() (minB, maxB mgl32.Vec3, ok bool) {
	if len(m.Vertices) == 0 {
		return minB, maxB, false
	}
	minB, maxB = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		minB = mgl32.Vec3{min(minB.X(), v.X()), min(minB.Y(), v.Y()), min(minB.Z(), v.Z())}
		maxB = mgl32.Vec3{max(maxB.X(), v.X()), max(maxB.Y(), v.Y()), max(maxB.Z(), v.Z())}
	}
	return minB, maxB, true
}

// Newell's method; robust for non-planar and concave loops.
func newellNormal(verts []mgl32.Vec3, loop []int) mgl32.Vec3 {
	var n mgl32.Vec3
	for i := range loop {
		cur := verts[loop[i]]
		next := verts[loop[(i+1)%len(loop)]]
		n[0] += (cur.Y() - next.Y()) * (cur.Z() + next.Z())
		n[1] += (cur.Z() - next.Z()) * (cur.X() + next.X())
		n[2] += (cur.X() - next.X()) * (cur.Y() + next.Y())
	}
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}
