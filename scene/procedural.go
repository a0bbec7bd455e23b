package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NewBox returns an axis-aligned box centred on the origin with one quad per
// side and outward-facing normals.
func NewBox(size mgl32.Vec3) *Mesh {
	h := size.Mul(0.5)
	verts := []mgl32.Vec3{
		{-h.X(), -h.Y(), -h.Z()},
		{h.X(), -h.Y(), -h.Z()},
		{h.X(), h.Y(), -h.Z()},
		{-h.X(), h.Y(), -h.Z()},
		{-h.X(), -h.Y(), h.Z()},
		{h.X(), -h.Y(), h.Z()},
		{h.X(), h.Y(), h.Z()},
		{-h.X(), h.Y(), h.Z()},
	}
	faces := [][]int{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
	}

	m, _ := NewMesh(verts, faces)
	return m
}

// NewBoxes merges several boxes into one mesh. offsets[i] is the centre of
// the box with sizes[i].
func NewBoxes(sizes, offsets []mgl32.Vec3) *Mesh {
	m := &Mesh{}
	for i, size := range sizes {
		var off mgl32.Vec3
		if i < len(offsets) {
			off = offsets[i]
		}
		m.Append(NewBox(size), off)
	}
	return m
}
