package autorig

import (
	"fmt"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Contact lists the polygons of Part whose contact rays hit the queried part.
type Contact struct {
	Part     *scene.Object
	Polygons []scene.Polygon
}

// ContactSet is ordered like the part list it was computed from.
type ContactSet []Contact

// Polygons returns the total polygon count over all contacts.
func (cs ContactSet) Polygons() int {
	n := 0
	for _, c := range cs {
		n += len(c.Polygons)
	}
	return n
}

func (cs ContactSet) Find(name string) (Contact, bool) {
	for _, c := range cs {
		if c.Part.Name == name {
			return c, true
		}
	}
	return Contact{}, false
}

// Detector finds touching parts. It is not safe for concurrent use; a rig
// run owns one.
type Detector struct {
	castLength   float32
	broadPhase   bool
	gridCellSize float32
	log          Logger

	cache *indexCache
	grid  *broadPhase
}

func NewDetector(cfg Config, log Logger) *Detector {
	d := &Detector{
		castLength:   cfg.CastLength,
		broadPhase:   cfg.BroadPhase,
		gridCellSize: cfg.GridCellSize,
		log:          orNop(log),
	}
	if cfg.CacheIndexes {
		d.cache = newIndexCache()
	}
	return d
}

// IndexStats reports spatial index builds and cache hits so far.
func (d *Detector) IndexStats() (builds, hits int) {
	if d.cache == nil {
		return 0, 0
	}
	return d.cache.builds, d.cache.hits
}

// FindTouching returns every part in allParts, other than part and those
// named in excluded, with at least one polygon whose contact ray hits part.
// A contact ray starts at the polygon's world center and runs along its
// world normal for the cast length.
func (d *Detector) FindTouching(part *scene.Object, allParts []*scene.Object, excluded map[string]struct{}) (ContactSet, error) {
	index, err := d.cache.get(part)
	if err != nil {
		return nil, err
	}

	var candidates map[scene.ObjectId]struct{}
	if d.broadPhase {
		candidates = d.candidates(part, allParts)
	}

	var out ContactSet
	for _, other := range allParts {
		if other == part || !other.IsMesh() {
			continue
		}
		if _, skip := excluded[other.Name]; skip {
			continue
		}
		if candidates != nil {
			if _, ok := candidates[other.Id]; !ok {
				continue
			}
		}

		world := other.WorldTransform()
		var touching []scene.Polygon
		for _, p := range other.Mesh.Polygons {
			if len(p.Vertices) == 0 {
				continue
			}
			origin, err := polygonCenter(world, other.Mesh, p)
			if err != nil {
				return nil, fmt.Errorf("contact rays of %s: %w", other.Name, err)
			}
			dir := world.TransformNormal(p.Normal)
			if _, hit := index.RayCast(origin, dir, d.castLength); hit {
				touching = append(touching, p)
			}
		}

		if len(touching) > 0 {
			d.log.Debugf("%s touches %s through %d polygon(s)", other.Name, part.Name, len(touching))
			out = append(out, Contact{Part: other, Polygons: touching})
		}
	}
	return out, nil
}

// broadPhaseSlack covers the ray-cast tolerances so the broad phase never
// rejects a pair the narrow phase would accept.
const broadPhaseSlack = 1e-3

type broadPhase struct {
	grid     *SpatialHashGrid
	boxes    map[scene.ObjectId]AABB
	matrices map[scene.ObjectId]mgl32.Mat4
}

// candidates returns the parts whose bounds come within the cast length of
// part. The grid is reused while no part in allParts has moved.
func (d *Detector) candidates(part *scene.Object, allParts []*scene.Object) map[scene.ObjectId]struct{} {
	if d.grid == nil || d.grid.stale(allParts) {
		d.grid = d.buildBroadPhase(allParts, d.grid)
	}
	box, ok := d.grid.boxes[part.Id]
	if !ok {
		return nil
	}
	query := box.Expand(d.castLength + broadPhaseSlack)

	out := make(map[scene.ObjectId]struct{})
	for _, id := range d.grid.grid.QueryAABB(query) {
		if other, ok := d.grid.boxes[id]; ok && other.Overlaps(query) {
			out[id] = struct{}{}
		}
	}
	return out
}

// buildBroadPhase indexes the current bounds of allParts. The grid of prev is
// cleared and reused when the cell size is unchanged.
func (d *Detector) buildBroadPhase(allParts []*scene.Object, prev *broadPhase) *broadPhase {
	bp := &broadPhase{
		boxes:    make(map[scene.ObjectId]AABB),
		matrices: make(map[scene.ObjectId]mgl32.Mat4),
	}
	var boxes []AABB
	for _, o := range allParts {
		minB, maxB, ok := o.WorldAABB()
		if !ok {
			continue
		}
		b := AABB{Min: minB, Max: maxB}
		bp.boxes[o.Id] = b
		bp.matrices[o.Id] = o.MatrixWorld()
		boxes = append(boxes, b)
	}

	cell := autoCellSize(boxes, d.gridCellSize)
	if prev != nil && prev.grid.CellSize() == cell {
		bp.grid = prev.grid
		bp.grid.Clear()
	} else {
		bp.grid = NewSpatialHashGrid(cell)
	}
	for id, b := range bp.boxes {
		bp.grid.Insert(id, b)
	}
	d.log.Debugf("broad phase: %d parts, cell size %.4g", len(bp.boxes), bp.grid.CellSize())
	return bp
}

func (bp *broadPhase) stale(allParts []*scene.Object) bool {
	n := 0
	for _, o := range allParts {
		if !o.IsMesh() || len(o.Mesh.Vertices) == 0 {
			continue
		}
		n++
		m, ok := bp.matrices[o.Id]
		if !ok || !sameMatrix(m, o.MatrixWorld()) {
			return true
		}
	}
	return n != len(bp.matrices)
}
