package world

import "github.com/chewxy/math32"

// Integrate advances a position and rotation by one input sample over dt
// seconds. It is pure and never fails.
//
// Directional keys are additive and diagonal movement is not normalized, so
// forward+strafe is faster than either alone. Jump is a flat vertical
// impulse; there is no gravity or ground collision.
func Integrate(pos, rot Vector3, in InputState, dt float32, t Tuning) (Vector3, Vector3) {
	newRot := rot
	newRot.Y += lookDelta(in.MouseX) * t.Sensitivity
	newRot.X += lookDelta(in.MouseY) * t.Sensitivity
	newRot.X = ClampPitch(newRot.X)
	newRot.Y = NormalizeYaw(newRot.Y)

	move := MovementVector(in, newRot.Y, dt, t)
	return ClampPosition(pos.Add(move)), newRot
}

// MovementVector computes the displacement produced by the directional, sprint
// and jump flags for a player facing yaw.
func MovementVector(in InputState, yaw, dt float32, t Tuning) Vector3 {
	base := t.Speed
	if in.Shift {
		base *= t.SprintMul
	}
	speed := base * dt

	var m Vector3
	if in.W {
		m.X += math32.Sin(yaw) * speed
		m.Z += math32.Cos(yaw) * speed
	}
	if in.S {
		m.X -= math32.Sin(yaw) * speed
		m.Z -= math32.Cos(yaw) * speed
	}
	if in.A {
		m.X += math32.Sin(yaw-halfPi) * speed
		m.Z += math32.Cos(yaw-halfPi) * speed
	}
	if in.D {
		m.X += math32.Sin(yaw+halfPi) * speed
		m.Z += math32.Cos(yaw+halfPi) * speed
	}
	if in.Space {
		m.Y += speed
	}
	return m
}

// ClampPosition keeps a point inside the world bounds.
func ClampPosition(p Vector3) Vector3 {
	return Vector3{
		X: clampAxis(p.X, MinX, MaxX),
		Y: clampAxis(p.Y, MinY, MaxY),
		Z: clampAxis(p.Z, MinZ, MaxZ),
	}
}

func clampAxis(v, lo, hi float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lookDelta drops non-finite mouse input so rotation stays finite.
func lookDelta(d float32) float32 {
	if !finite(d) {
		return 0
	}
	return d
}
