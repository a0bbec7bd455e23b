package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func nearMat(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if d := a[i] - b[i]; d > eps || d < -eps {
			return false
		}
	}
	return true
}

// nearQuat treats q and -q as the same rotation.
func nearQuat(a, b mgl32.Quat, eps float32) bool {
	return a.Sub(b).Len() <= eps || a.Add(b).Len() <= eps
}
