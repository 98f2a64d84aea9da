package world

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vector3 is a position or an Euler rotation (radians) in world space.
type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Vec converts to an mgl32 vector for arithmetic.
func (v Vector3) Vec() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// FromVec converts an mgl32 vector back.
func FromVec(v mgl32.Vec3) Vector3 {
	return Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return FromVec(v.Vec().Add(o.Vec()))
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vector3) float32 {
	return a.Vec().Sub(b.Vec()).Len()
}

// IsFinite reports whether all three components are finite.
func (v Vector3) IsFinite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

const (
	halfPi = math32.Pi / 2
	twoPi  = 2 * math32.Pi
)

// ClampPitch limits a pitch angle to [-pi/2, pi/2] so the camera never flips.
func ClampPitch(x float32) float32 {
	return mgl32.Clamp(x, -halfPi, halfPi)
}

// NormalizeYaw wraps an angle into (-pi, pi]. Any amount of accumulated drift
// is handled; values far outside the range are reduced with a modulo first so
// the wrap loop stays short.
func NormalizeYaw(y float32) float32 {
	if !finite(y) {
		return 0
	}
	if y > 4*math32.Pi || y < -4*math32.Pi {
		y = math32.Mod(y, twoPi)
	}
	for y > math32.Pi {
		y -= twoPi
	}
	for y <= -math32.Pi {
		y += twoPi
	}
	return y
}
