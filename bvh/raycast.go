package bvh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Tolerances for rays that start on, or graze, a surface. Contact tests cast
// from points lying exactly on the other mesh, so both must accept zero.
const (
	hitEpsilon  = 1e-5
	boxEpsilon  = 1e-4
	detEpsilon  = 1e-12
	minDirLenSq = 1e-20
)

type Hit struct {
	Pos      mgl32.Vec3
	Normal   mgl32.Vec3
	Triangle int
	Polygon  int
	Distance float32
}

// RayCast returns the nearest triangle hit along dir within maxDist.
// Triangles are double-sided; a hit at distance zero counts.
func (t *Tree) RayCast(origin, dir mgl32.Vec3, maxDist float32) (Hit, bool) {
	if len(t.Nodes) == 0 || dir.Dot(dir) < minDirLenSq || maxDist < 0 {
		return Hit{}, false
	}
	dir = dir.Normalize()
	invDir := mgl32.Vec3{safeInv(dir.X()), safeInv(dir.Y()), safeInv(dir.Z())}

	best := Hit{Triangle: -1, Distance: maxDist + hitEpsilon}
	found := false

	stack := make([]int32, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.Nodes[ni]

		tNear, ok := rayAABB(origin, invDir, node.Min, node.Max, best.Distance)
		if !ok || tNear > best.Distance {
			continue
		}

		if node.IsLeaf() {
			for i := node.LeafFirst; i < node.LeafFirst+node.LeafCount; i++ {
				tri := &t.Triangles[i]
				d, hit := intersectTriangle(origin, dir, tri)
				if hit && d <= best.Distance {
					best = Hit{
						Pos:      origin.Add(dir.Mul(d)),
						Normal:   tri.Normal(),
						Triangle: int(i),
						Polygon:  tri.Polygon,
						Distance: d,
					}
					found = true
				}
			}
			continue
		}
		stack = append(stack, node.Left, node.Right)
	}

	if !found {
		return Hit{}, false
	}
	best.Distance = max(best.Distance, 0)
	return best, true
}

func safeInv(v float32) float32 {
	if v == 0 {
		return float32(math.Inf(1))
	}
	return 1 / v
}

// Slab test against a slightly inflated box so flat leaves are not missed.
func rayAABB(origin, invDir, minB, maxB mgl32.Vec3, tMax float32) (float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	for a := 0; a < 3; a++ {
		lo := minB[a] - boxEpsilon
		hi := maxB[a] + boxEpsilon
		if math.IsInf(float64(invDir[a]), 0) {
			if origin[a] < lo || origin[a] > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - origin[a]) * invDir[a]
		t2 := (hi - origin[a]) * invDir[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < -hitEpsilon || tmin > tMax {
		return 0, false
	}
	return tmin, true
}

// Möller–Trumbore, double-sided, with inclusive edges.
func intersectTriangle(origin, dir mgl32.Vec3, tri *Triangle) (float32, bool) {
	e1 := tri.V1.Sub(tri.V0)
	e2 := tri.V2.Sub(tri.V0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -detEpsilon && det < detEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := origin.Sub(tri.V0)
	u := s.Dot(p) * inv
	if u < -hitEpsilon || u > 1+hitEpsilon {
		return 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < -hitEpsilon || u+v > 1+hitEpsilon {
		return 0, false
	}
	d := e2.Dot(q) * inv
	if d < -hitEpsilon {
		return 0, false
	}
	return d, true
}
