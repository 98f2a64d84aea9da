package world

import "time"

// Movement defaults.
const (
	PlayerSpeed      float32 = 7.5 // units per second
	SprintMultiplier float32 = 1.8
	MouseSensitivity float32 = 0.002 // radians per input unit
)

// World bounds. Positions are clamped per axis after every move.
const (
	MinX, MaxX float32 = -1000, 1000
	MinY, MaxY float32 = -10, 100
	MinZ, MaxZ float32 = -1000, 1000
)

// Significance thresholds for telemetry.
const (
	SignificantDistance float32 = 0.1
	SignificantRotation float32 = 0.05
)

// DefaultInputDelta is the fixed step applied to every accepted input (20 Hz).
const DefaultInputDelta = 50 * time.Millisecond

// Tuning carries the movement constants so they can be overridden from config.
type Tuning struct {
	Speed       float32
	SprintMul   float32
	Sensitivity float32
}

// DefaultTuning returns the stock movement constants.
func DefaultTuning() Tuning {
	return Tuning{
		Speed:       PlayerSpeed,
		SprintMul:   SprintMultiplier,
		Sensitivity: MouseSensitivity,
	}
}
