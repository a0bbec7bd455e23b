package autorig

import (
	"errors"
	"fmt"

	"github.com/gekko3d/autorig/scene"
)

var (
	// ErrPrecondition marks input the rig cannot be built from: empty
	// polygons or regions, a root without neighbours, a root outside the scene.
	ErrPrecondition = errors.New("autorig: precondition failed")
	// ErrAmbiguousName marks scenes whose object names cannot be used to
	// tell parts apart.
	ErrAmbiguousName = errors.New("autorig: ambiguous object name")
	// ErrDepthExceeded is returned when a traversal with Config.RevisitParts
	// goes deeper than Config.MaxDepth.
	ErrDepthExceeded = errors.New("autorig: traversal depth exceeded")
)

// PartialRigError is returned for any failure after the armature was
// created. Nothing is rolled back: Armature and the bones made so far stay
// in the scene.
type PartialRigError struct {
	Armature *scene.Object
	Bones    []*scene.Bone
	Err      error
}

func (e *PartialRigError) Error() string {
	name := "<nil>"
	if e.Armature != nil {
		name = e.Armature.Name
	}
	return fmt.Sprintf("autorig: partial rig left in %s (%d bones): %v", name, len(e.Bones), e.Err)
}

func (e *PartialRigError) Unwrap() error {
	return e.Err
}
