package autorig

import (
	"fmt"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// PolygonCenter is the world-space mean of the polygon's vertices.
func PolygonCenter(part *scene.Object, poly scene.Polygon) (mgl32.Vec3, error) {
	if part == nil || part.Mesh == nil {
		return mgl32.Vec3{}, fmt.Errorf("%w: polygon center of an object without mesh", ErrPrecondition)
	}
	if len(poly.Vertices) == 0 {
		return mgl32.Vec3{}, fmt.Errorf("%w: polygon %d of %s has no vertices", ErrPrecondition, poly.Index, part.Name)
	}
	return polygonCenter(part.WorldTransform(), part.Mesh, poly)
}

func polygonCenter(world *scene.Transform, mesh *scene.Mesh, poly scene.Polygon) (mgl32.Vec3, error) {
	var sum mgl32.Vec3
	for _, vi := range poly.Vertices {
		if vi < 0 || vi >= len(mesh.Vertices) {
			return mgl32.Vec3{}, fmt.Errorf("%w: polygon %d references vertex %d of %d", ErrPrecondition, poly.Index, vi, len(mesh.Vertices))
		}
		sum = sum.Add(world.TransformPoint(mesh.Vertices[vi]))
	}
	return sum.Mul(1 / float32(len(poly.Vertices))), nil
}

// RegionCenter is the mean of the polygon centers of a non-empty region.
func RegionCenter(part *scene.Object, polys []scene.Polygon) (mgl32.Vec3, error) {
	if len(polys) == 0 {
		name := "<nil>"
		if part != nil {
			name = part.Name
		}
		return mgl32.Vec3{}, fmt.Errorf("%w: empty polygon region on %s", ErrPrecondition, name)
	}
	var sum mgl32.Vec3
	for _, p := range polys {
		c, err := PolygonCenter(part, p)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		sum = sum.Add(c)
	}
	return sum.Mul(1 / float32(len(polys))), nil
}

// MeshCenter is RegionCenter over every polygon of the part.
func MeshCenter(part *scene.Object) (mgl32.Vec3, error) {
	if part == nil || part.Mesh == nil {
		return mgl32.Vec3{}, fmt.Errorf("%w: mesh center of an object without mesh", ErrPrecondition)
	}
	return RegionCenter(part, part.Mesh.Polygons)
}
