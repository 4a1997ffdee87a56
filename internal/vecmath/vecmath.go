// Package vecmath converts placement orientations between yaw/pitch/roll
// angles and right/forward/up basis vectors. Angles are radians.
package vecmath

import "math"

type Vector3 struct {
	X, Y, Z float32
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Basis is an orthonormal orientation.
type Basis struct {
	Right   Vector3
	Forward Vector3
	Up      Vector3
}

// gimbalEpsilon bounds the up vector's Y/Z magnitude below which pitch is
// treated as straight up or down.
const gimbalEpsilon = 1e-6

func RightVector(yaw, pitch, roll float32) Vector3 {
	sy, cy := math.Sincos(float64(yaw))
	sp, cp := math.Sincos(float64(pitch))
	sr, cr := math.Sincos(float64(roll))
	return Vector3{
		X: float32(cp * cy),
		Y: float32(sp*sr*cy - sy*cr),
		Z: float32(sp*cr*cy + sr*sy),
	}
}

func UpVector(yaw, pitch, roll float32) Vector3 {
	sp, cp := math.Sincos(float64(pitch))
	sr, cr := math.Sincos(float64(roll))
	return Vector3{
		X: float32(-sp),
		Y: float32(sr * cp),
		Z: float32(cp * cr),
	}
}

// ForwardVector is up × right.
func ForwardVector(yaw, pitch, roll float32) Vector3 {
	return UpVector(yaw, pitch, roll).Cross(RightVector(yaw, pitch, roll))
}

func FromYawPitchRoll(yaw, pitch, roll float32) Basis {
	right := RightVector(yaw, pitch, roll)
	up := UpVector(yaw, pitch, roll)
	return Basis{Right: right, Forward: up.Cross(right), Up: up}
}

// ToYawPitchRoll recovers angles from a basis. At gimbal lock yaw is folded
// into roll and reported as zero.
func ToYawPitchRoll(b Basis) (yaw, pitch, roll float32) {
	ux, uy, uz := float64(b.Up.X), float64(b.Up.Y), float64(b.Up.Z)
	horiz := math.Hypot(uy, uz)
	pitch = float32(math.Atan2(-ux, horiz))
	if horiz < gimbalEpsilon {
		roll = float32(-math.Atan2(float64(b.Forward.Z), float64(b.Forward.Y)))
		return 0, pitch, roll
	}
	roll = float32(math.Atan2(uy, uz))
	yaw = float32(math.Atan2(float64(b.Forward.X), float64(b.Right.X)))
	return yaw, pitch, roll
}

func Degrees(radians float32) float32 {
	return radians * float32(180/math.Pi)
}

func Radians(degrees float32) float32 {
	return degrees * float32(math.Pi/180)
}
