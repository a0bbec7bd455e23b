package autorig

import (
	"math"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Expand grows the box by d on every side.
func (b AABB) Expand(d float32) AABB {
	pad := mgl32.Vec3{d, d, d}
	return AABB{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)}
}

func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// maxCellsPerAxis bounds how many cells one box may span before the grid is
// coarsened.
const maxCellsPerAxis = 64

type SpatialHashGrid struct {
	cellSize float32
	// Map from cell hash to list of parts
	cells map[uint64][]scene.ObjectId
}

func NewSpatialHashGrid(cellSize float32) *SpatialHashGrid {
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]scene.ObjectId),
	}
}

func (grid *SpatialHashGrid) CellSize() float32 {
	return grid.cellSize
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
}

func (grid *SpatialHashGrid) Insert(id scene.ObjectId, aabb AABB) {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				key := grid.hashKey(x, y, z)
				grid.cells[key] = append(grid.cells[key], id)
			}
		}
	}
}

// QueryAABB returns broad-phase candidates: every id sharing a cell with
// aabb. Hash collisions can add extra ids, never drop one.
func (grid *SpatialHashGrid) QueryAABB(aabb AABB) []scene.ObjectId {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	unique := make(map[scene.ObjectId]struct{})
	var results []scene.ObjectId

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				key := grid.hashKey(x, y, z)
				for _, id := range grid.cells[key] {
					if _, ok := unique[id]; !ok {
						unique[id] = struct{}{}
						results = append(results, id)
					}
				}
			}
		}
	}
	return results
}

func (grid *SpatialHashGrid) getCellIndex(pos float32) int {
	return int(math.Floor(float64(pos / grid.cellSize)))
}

// Simple hash function for 3D coordinates
func (grid *SpatialHashGrid) hashKey(x, y, z int) uint64 {
	// large primes for mixing
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}

// autoCellSize returns requested, or about the size of an average part when
// requested is zero, but never so small that the largest box spans more than
// maxCellsPerAxis cells.
func autoCellSize(boxes []AABB, requested float32) float32 {
	var sum, largest float32
	for _, b := range boxes {
		s := b.Size()
		edge := max(s.X(), s.Y(), s.Z())
		sum += edge
		largest = max(largest, edge)
	}
	size := requested
	if size <= 0 && len(boxes) > 0 {
		size = sum / float32(len(boxes))
	}
	size = max(size, largest/maxCellsPerAxis)
	if !(size > 0) {
		return 1
	}
	return size
}
