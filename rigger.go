package autorig

import (
	"fmt"

	"github.com/gekko3d/autorig/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene is the part of the host scene graph a rig run mutates.
// *scene.Scene implements it.
type Scene interface {
	Objects() []*scene.Object
	AddArmature(name string, location mgl32.Vec3) (*scene.Object, error)
	SetParent(child, parent *scene.Object, keepTransform bool) error
}

const rigModifierName = "rig_modifier"

type Rigger struct {
	scene Scene
	cfg   Config
	log   Logger
}

func NewRigger(s Scene, cfg Config, log Logger) *Rigger {
	return &Rigger{scene: s, cfg: cfg, log: orNop(log)}
}

// Result describes a finished rig.
type Result struct {
	Armature *scene.Object
	Root     *scene.Bone
	// Bones in creation order.
	Bones []*scene.Bone
	// PartBones maps a part name to the bones made for it. Without
	// Config.RevisitParts every part has exactly one.
	PartBones map[string][]*scene.Bone
	// Visits lists part names in the order they were rigged.
	Visits []string

	IndexBuilds    int
	IndexCacheHits int
}

// BoneFor returns the first bone made for part, or nil.
func (r *Result) BoneFor(part string) *scene.Bone {
	if bones := r.PartBones[part]; len(bones) > 0 {
		return bones[0]
	}
	return nil
}

type rigRun struct {
	cfg      Config
	log      Logger
	scene    Scene
	parts    []*scene.Object
	armature *scene.Object
	excluded map[string]struct{}
	visited  map[scene.ObjectId]bool
	detector *Detector
	result   *Result
}

// StartRig builds an armature with one bone per part reachable from root
// through touching parts. The part list is read from the scene once, up
// front. Any failure after the armature exists is a *PartialRigError.
func (r *Rigger) StartRig(root *scene.Object) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: config: %v", ErrPrecondition, err)
	}
	parts := r.scene.Objects()
	if err := validateParts(root, parts, r.cfg.ArmatureName); err != nil {
		return nil, err
	}

	armature, err := r.scene.AddArmature(r.cfg.ArmatureName, root.Location())
	if err != nil {
		return nil, fmt.Errorf("autorig: create armature: %w", err)
	}
	armature.ShowXRay = true

	run := &rigRun{
		cfg:      r.cfg,
		log:      r.log,
		scene:    r.scene,
		parts:    parts,
		armature: armature,
		excluded: map[string]struct{}{armature.Name: {}},
		visited:  make(map[scene.ObjectId]bool),
		detector: NewDetector(r.cfg, r.log),
		result: &Result{
			Armature:  armature,
			PartBones: make(map[string][]*scene.Bone),
		},
	}

	if armature.Name != r.cfg.ArmatureName {
		err := fmt.Errorf("%w: armature created as %q instead of %q", ErrAmbiguousName, armature.Name, r.cfg.ArmatureName)
		return nil, run.partial(err)
	}

	if err := run.start(root); err != nil {
		r.log.Errorf("rig from %s failed: %v", root.Name, err)
		return nil, run.partial(err)
	}

	res := run.result
	res.Bones = armature.Armature.Bones
	res.IndexBuilds, res.IndexCacheHits = run.detector.IndexStats()
	r.log.Infof("rigged %d part(s) from %s into %s: %d bones, %d index builds, %d cache hits",
		len(res.PartBones), root.Name, armature.Name, len(res.Bones), res.IndexBuilds, res.IndexCacheHits)
	return res, nil
}

func validateParts(root *scene.Object, parts []*scene.Object, armatureName string) error {
	if root == nil {
		return fmt.Errorf("%w: no root part", ErrPrecondition)
	}
	names := make(map[string]struct{}, len(parts))
	found := false
	for _, o := range parts {
		if o == root {
			found = true
		}
		if o.Name == armatureName {
			return fmt.Errorf("%w: object %q already uses the armature name", ErrAmbiguousName, o.Name)
		}
		if _, dup := names[o.Name]; dup {
			return fmt.Errorf("%w: %q names more than one object", ErrAmbiguousName, o.Name)
		}
		names[o.Name] = struct{}{}
	}
	if !found {
		return fmt.Errorf("%w: root %q is not in the scene", ErrPrecondition, root.Name)
	}
	if !root.IsMesh() {
		return fmt.Errorf("%w: root %q is a %s, not a mesh", ErrPrecondition, root.Name, root.Type)
	}
	return nil
}

func (run *rigRun) partial(err error) error {
	return &PartialRigError{
		Armature: run.armature,
		Bones:    append([]*scene.Bone(nil), run.armature.Armature.Bones...),
		Err:      err,
	}
}

func (run *rigRun) start(root *scene.Object) error {
	arm := run.armature.Armature
	arm.BeginEdit()
	defer arm.EndEdit()

	bone, err := arm.NewBone(root.Name, nil)
	if err != nil {
		return err
	}
	bone.Tail, err = MeshCenter(root)
	if err != nil {
		return err
	}
	run.result.Root = bone
	run.record(root, bone)

	touching, err := run.detector.FindTouching(root, run.parts, run.excluded)
	if err != nil {
		return err
	}
	// Checked before any recursion so no bone below the root is made.
	total := touching.Polygons()
	if total == 0 {
		return fmt.Errorf("%w: root %q touches no other part", ErrPrecondition, root.Name)
	}

	if err := run.scene.SetParent(root, run.armature, true); err != nil {
		return err
	}

	var sum mgl32.Vec3
	for _, c := range touching {
		center, err := RegionCenter(c.Part, c.Polygons)
		if err != nil {
			return err
		}
		sum = sum.Add(center.Mul(float32(len(c.Polygons))))

		if !run.shouldVisit(c.Part) {
			run.log.Debugf("skip %s from %s: already rigged", c.Part.Name, root.Name)
			continue
		}
		if err := run.rig(bone, c.Polygons, root, c.Part, 1); err != nil {
			return err
		}
	}
	bone.Head = sum.Mul(1 / float32(total))
	run.log.Debugf("bone %s: head %v tail %v", bone.Name, bone.Head, bone.Tail)

	weightPart(root, run.armature)
	return nil
}

// rig makes the bone for current, entered from previous through entry, then
// descends into every part touching current except previous. current is
// weighted only after all of its descendants are done.
func (run *rigRun) rig(parent *scene.Bone, entry []scene.Polygon, previous, current *scene.Object, depth int) error {
	// Only revisits can cycle; with the visited set every path ends.
	if run.cfg.RevisitParts && depth > run.cfg.MaxDepth {
		return fmt.Errorf("%w: %d levels reached at %s", ErrDepthExceeded, run.cfg.MaxDepth, current.Name)
	}

	bone, err := run.armature.Armature.NewBone(current.Name, parent)
	if err != nil {
		return err
	}
	if bone.Head, err = RegionCenter(current, entry); err != nil {
		return err
	}
	if bone.Tail, err = MeshCenter(current); err != nil {
		return err
	}
	run.record(current, bone)
	run.log.Debugf("bone %s (parent %s): head %v tail %v", bone.Name, parent.Name, bone.Head, bone.Tail)

	if err := run.scene.SetParent(current, run.armature, true); err != nil {
		return err
	}

	touching, err := run.detector.FindTouching(current, run.parts, run.excluded)
	if err != nil {
		return err
	}
	for _, c := range touching {
		if c.Part.Name == previous.Name {
			continue
		}
		if !run.shouldVisit(c.Part) {
			run.log.Debugf("skip %s from %s: already rigged", c.Part.Name, current.Name)
			continue
		}
		if err := run.rig(bone, c.Polygons, current, c.Part, depth+1); err != nil {
			return err
		}
	}

	weightPart(current, run.armature)
	return nil
}

func (run *rigRun) shouldVisit(part *scene.Object) bool {
	return run.cfg.RevisitParts || !run.visited[part.Id]
}

func (run *rigRun) record(part *scene.Object, bone *scene.Bone) {
	run.visited[part.Id] = true
	run.result.Visits = append(run.result.Visits, part.Name)
	run.result.PartBones[part.Name] = append(run.result.PartBones[part.Name], bone)
}

// weightPart binds every vertex of part at full weight to the bone named
// like the part, through an armature modifier. Calling it twice adds a
// second group and modifier.
func weightPart(part *scene.Object, armature *scene.Object) {
	group := part.NewVertexGroup(part.Name)
	indices := make([]int, len(part.Mesh.Vertices))
	for i := range indices {
		indices[i] = i
	}
	group.Assign(indices, 1)

	mod := part.AddModifier(rigModifierName, scene.ModifierArmature)
	mod.Object = armature
}
