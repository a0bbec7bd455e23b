package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// NewTransformEuler builds a transform from XYZ euler angles in degrees.
func NewTransformEuler(position, eulerDeg, scale mgl32.Vec3) *Transform {
	rot := mgl32.AnglesToQuat(
		mgl32.DegToRad(eulerDeg.X()),
		mgl32.DegToRad(eulerDeg.Y()),
		mgl32.DegToRad(eulerDeg.Z()),
		mgl32.XYZ,
	)
	return &Transform{
		Position: position,
		Rotation: rot.Normalize(),
		Scale:    scale,
	}
}

func (t *Transform) Clone() *Transform {
	c := *t
	return &c
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// TransformPoint maps a local-space point to the space this transform lives in.
func (t *Transform) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	scaled := mgl32.Vec3{p.X() * t.Scale.X(), p.Y() * t.Scale.Y(), p.Z() * t.Scale.Z()}
	return t.Position.Add(t.Rotation.Rotate(scaled))
}

// TransformNormal maps a local-space normal using the inverse-transpose of R*S.
func (t *Transform) TransformNormal(n mgl32.Vec3) mgl32.Vec3 {
	inv := mgl32.Vec3{n.X() / t.Scale.X(), n.Y() / t.Scale.Y(), n.Z() / t.Scale.Z()}
	out := t.Rotation.Rotate(inv)
	if out.Len() == 0 {
		return out
	}
	return out.Normalize()
}

// Compose returns the world transform of a child whose local transform is
// local, given that t is the parent's world transform.
func (t *Transform) Compose(local *Transform) *Transform {
	// Propagate components directly to preserve scale signs (reflections).
	// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
	return &Transform{
		Position: t.TransformPoint(local.Position),
		Rotation: t.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			t.Scale.X() * local.Scale.X(),
			t.Scale.Y() * local.Scale.Y(),
			t.Scale.Z() * local.Scale.Z(),
		},
	}
}

// Relative is the inverse of Compose: it returns the local transform that,
// composed under t, yields world.
func (t *Transform) Relative(world *Transform) *Transform {
	inv := t.Rotation.Conjugate()
	d := inv.Rotate(world.Position.Sub(t.Position))
	return &Transform{
		Position: mgl32.Vec3{d.X() / t.Scale.X(), d.Y() / t.Scale.Y(), d.Z() / t.Scale.Z()},
		Rotation: inv.Mul(world.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			world.Scale.X() / t.Scale.X(),
			world.Scale.Y() / t.Scale.Y(),
			world.Scale.Z() / t.Scale.Z(),
		},
	}
}
