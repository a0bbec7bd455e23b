package bvh

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Triangle is a world-space triangle. Polygon records the source face it was
// split from.
type Triangle struct {
	V0, V1, V2 mgl32.Vec3
	Polygon    int
}

func (t *Triangle) Normal() mgl32.Vec3 {
	n := t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0))
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}

// BVHNode is a flat tree node. Inner nodes have Left/Right set and
// LeafCount 0; leaves reference Tree.Triangles[LeafFirst:LeafFirst+LeafCount].
type BVHNode struct {
	Min       mgl32.Vec3
	Max       mgl32.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

func (n *BVHNode) IsLeaf() bool {
	return n.LeafCount > 0
}

type AABBItem struct {
	Min      mgl32.Vec3
	Max      mgl32.Vec3
	Centroid mgl32.Vec3
	Index    int
}

// Tree is a read-only triangle BVH. Nodes[0] is the root.
type Tree struct {
	Nodes     []BVHNode
	Triangles []Triangle
}

const DefaultMaxLeafSize = 4

type TriangleBuilder struct {
	MaxLeafSize int
}

// Build constructs a tree over tris. The input slice is not modified.
func Build(tris []Triangle) *Tree {
	b := &TriangleBuilder{MaxLeafSize: DefaultMaxLeafSize}
	return b.Build(tris)
}

func (b *TriangleBuilder) Build(tris []Triangle) *Tree {
	t := &Tree{}
	if len(tris) == 0 {
		return t
	}

	items := make([]AABBItem, len(tris))
	for i := range tris {
		tri := &tris[i]
		minB := mgl32.Vec3{
			min(tri.V0.X(), tri.V1.X(), tri.V2.X()),
			min(tri.V0.Y(), tri.V1.Y(), tri.V2.Y()),
			min(tri.V0.Z(), tri.V1.Z(), tri.V2.Z()),
		}
		maxB := mgl32.Vec3{
			max(tri.V0.X(), tri.V1.X(), tri.V2.X()),
			max(tri.V0.Y(), tri.V1.Y(), tri.V2.Y()),
			max(tri.V0.Z(), tri.V1.Z(), tri.V2.Z()),
		}
		items[i] = AABBItem{
			Min:      minB,
			Max:      maxB,
			Centroid: tri.V0.Add(tri.V1).Add(tri.V2).Mul(1.0 / 3.0),
			Index:    i,
		}
	}

	t.Triangles = make([]Triangle, 0, len(tris))
	b.recursiveBuild(items, tris, t)
	return t
}

func (b *TriangleBuilder) recursiveBuild(items []AABBItem, tris []Triangle, t *Tree) int32 {
	idx := int32(len(t.Nodes))
	t.Nodes = append(t.Nodes, BVHNode{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0})

	inf := float32(math.Inf(1))
	minB := mgl32.Vec3{inf, inf, inf}
	maxB := mgl32.Vec3{-inf, -inf, -inf}
	cMin := minB
	cMax := maxB

	for _, it := range items {
		minB = mgl32.Vec3{min(minB.X(), it.Min.X()), min(minB.Y(), it.Min.Y()), min(minB.Z(), it.Min.Z())}
		maxB = mgl32.Vec3{max(maxB.X(), it.Max.X()), max(maxB.Y(), it.Max.Y()), max(maxB.Z(), it.Max.Z())}
		cMin = mgl32.Vec3{min(cMin.X(), it.Centroid.X()), min(cMin.Y(), it.Centroid.Y()), min(cMin.Z(), it.Centroid.Z())}
		cMax = mgl32.Vec3{max(cMax.X(), it.Centroid.X()), max(cMax.Y(), it.Centroid.Y()), max(cMax.Z(), it.Centroid.Z())}
	}

	t.Nodes[idx].Min = minB
	t.Nodes[idx].Max = maxB

	leafSize := b.MaxLeafSize
	if leafSize < 1 {
		leafSize = DefaultMaxLeafSize
	}
	if len(items) <= leafSize {
		t.Nodes[idx].LeafFirst = int32(len(t.Triangles))
		t.Nodes[idx].LeafCount = int32(len(items))
		for _, it := range items {
			t.Triangles = append(t.Triangles, tris[it.Index])
		}
		return idx
	}

	// Split on the longest axis of the centroid bounds.
	extent := cMax.Sub(cMin)
	axis := 0
	if extent.Y() > extent.X() {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Centroid[axis] < items[j].Centroid[axis]
	})

	mid := len(items) / 2
	left := b.recursiveBuild(items[:mid], tris, t)
	right := b.recursiveBuild(items[mid:], tris, t)
	t.Nodes[idx].Left = left
	t.Nodes[idx].Right = right

	return idx
}

// Bounds returns the root AABB. ok is false for an empty tree.
func (t *Tree) Bounds() (minB, maxB mgl32.Vec3, ok bool) {
	if len(t.Nodes) == 0 {
		return minB, maxB, false
	}
	return t.Nodes[0].Min, t.Nodes[0].Max, true
}
