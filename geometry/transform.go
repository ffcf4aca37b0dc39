package geometry

import "github.com/go-gl/mathgl/mgl64"

// Translate returns a translation matrix.
func Translate(x, y, z float64) mgl64.Mat4 {
	return mgl64.Translate3D(x, y, z)
}

// RotateAxis returns a rotation matrix of angle degrees around the named
// axis ("x", "y" or "z"). Unknown axes rotate around z.
func RotateAxis(axis string, angleDeg float64) mgl64.Mat4 {
	rad := mgl64.DegToRad(angleDeg)
	switch axis {
	case "x":
		return mgl64.HomogRotate3DX(rad)
	case "y":
		return mgl64.HomogRotate3DY(rad)
	default:
		return mgl64.HomogRotate3DZ(rad)
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float64) mgl64.Mat4 {
	return mgl64.Scale3D(x, y, z)
}
