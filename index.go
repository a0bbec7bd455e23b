package autorig

import (
	"fmt"

	"github.com/gekko3d/autorig/bvh"
	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// BuildIndex triangulates part into world space and builds a BVH over it.
// Every polygon with three or more vertices is fan-split from its first
// vertex; degenerate polygons contribute nothing.
func BuildIndex(part *scene.Object) (*bvh.Tree, error) {
	if part == nil || !part.IsMesh() {
		return nil, fmt.Errorf("%w: spatial index of an object without mesh", ErrPrecondition)
	}
	tris, err := worldTriangles(part)
	if err != nil {
		return nil, err
	}
	return bvh.Build(tris), nil
}

func worldTriangles(part *scene.Object) ([]bvh.Triangle, error) {
	world := part.WorldTransform()
	mesh := part.Mesh

	verts := make([]mgl32.Vec3, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		verts[i] = world.TransformPoint(v)
	}

	var tris []bvh.Triangle
	for _, p := range mesh.Polygons {
		if len(p.Vertices) < 3 {
			continue
		}
		for _, vi := range p.Vertices {
			if vi < 0 || vi >= len(verts) {
				return nil, fmt.Errorf("%w: polygon %d of %s references vertex %d of %d", ErrPrecondition, p.Index, part.Name, vi, len(verts))
			}
		}
		v0 := verts[p.Vertices[0]]
		for i := 1; i+1 < len(p.Vertices); i++ {
			tris = append(tris, bvh.Triangle{
				V0:      v0,
				V1:      verts[p.Vertices[i]],
				V2:      verts[p.Vertices[i+1]],
				Polygon: p.Index,
			})
		}
	}
	return tris, nil
}

// matrixEpsilon absorbs float noise from transform-preserving reparenting.
// It is relative for elements larger than one.
const matrixEpsilon = 1e-5

func sameMatrix(a, b mgl32.Mat4) bool {
	for i := range a {
		limit := matrixEpsilon * max(1, abs32(a[i]), abs32(b[i]))
		if abs32(a[i]-b[i]) > limit {
			return false
		}
	}
	return true
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

type cachedIndex struct {
	matrix mgl32.Mat4
	tree   *bvh.Tree
}

// indexCache keeps one spatial index per part for the lifetime of a rig run.
// An entry is rebuilt as soon as the part's world matrix moves.
type indexCache struct {
	entries map[scene.ObjectId]cachedIndex
	builds  int
	hits    int
}

func newIndexCache() *indexCache {
	return &indexCache{entries: make(map[scene.ObjectId]cachedIndex)}
}

func (c *indexCache) get(part *scene.Object) (*bvh.Tree, error) {
	if c == nil {
		return BuildIndex(part)
	}
	m := part.MatrixWorld()
	if e, ok := c.entries[part.Id]; ok && sameMatrix(e.matrix, m) {
		c.hits++
		return e.tree, nil
	}
	tree, err := BuildIndex(part)
	if err != nil {
		return nil, err
	}
	c.builds++
	c.entries[part.Id] = cachedIndex{matrix: m, tree: tree}
	return tree, nil
}
