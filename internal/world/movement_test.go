package world

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-5

func approx(a, b float32) bool {
	return math32.Abs(a-b) <= eps
}

func TestIntegrateForwardAtZeroYaw(t *testing.T) {
	pos, rot := Integrate(Vector3{}, Vector3{}, InputState{W: true, Sequence: 1}, 0.05, DefaultTuning())
	if !approx(pos.X, 0) || !approx(pos.Y, 0) || !approx(pos.Z, 0.375) {
		t.Fatalf("pos = %+v, want (0, 0, 0.375)", pos)
	}
	if rot != (Vector3{}) {
		t.Fatalf("rot = %+v, want zero", rot)
	}
}

func TestIntegrateSprintAndJump(t *testing.T) {
	pos, _ := Integrate(Vector3{}, Vector3{}, InputState{W: true, Shift: true, Space: true}, 0.05, DefaultTuning())
	want := PlayerSpeed * SprintMultiplier * 0.05
	if !approx(pos.Z, want) || !approx(pos.Y, want) {
		t.Fatalf("pos = %+v, want z=y=%f", pos, want)
	}
}

func TestIntegrateDiagonalIsNotNormalized(t *testing.T) {
	pos, _ := Integrate(Vector3{}, Vector3{}, InputState{W: true, D: true}, 1, DefaultTuning())
	// D at yaw 0 strafes along +X.
	if !approx(pos.X, PlayerSpeed) || !approx(pos.Z, PlayerSpeed) {
		t.Fatalf("pos = %+v, want (%f, 0, %f)", pos, PlayerSpeed, PlayerSpeed)
	}
	if d := Distance(Vector3{}, pos); d <= PlayerSpeed {
		t.Fatalf("diagonal distance %f should exceed straight speed %f", d, PlayerSpeed)
	}
}

func TestIntegrateOpposingKeysCancel(t *testing.T) {
	pos, _ := Integrate(Vector3{X: 3, Z: 4}, Vector3{Y: 1.2}, InputState{W: true, S: true, A: true, D: true}, 0.05, DefaultTuning())
	if !approx(pos.X, 3) || !approx(pos.Z, 4) {
		t.Fatalf("pos = %+v, want unchanged (3, 0, 4)", pos)
	}
}

func TestIntegrateStrafeLeftAtZeroYaw(t *testing.T) {
	pos, _ := Integrate(Vector3{}, Vector3{}, InputState{A: true}, 1, DefaultTuning())
	if !approx(pos.X, -PlayerSpeed) || !approx(pos.Z, 0) {
		t.Fatalf("pos = %+v, want (-%f, 0, 0)", pos, PlayerSpeed)
	}
}

func TestIntegrateMouseRotates(t *testing.T) {
	_, rot := Integrate(Vector3{}, Vector3{}, InputState{MouseX: 100, MouseY: -50}, 0.05, DefaultTuning())
	if !approx(rot.Y, 0.2) || !approx(rot.X, -0.1) {
		t.Fatalf("rot = %+v, want x=-0.1 y=0.2", rot)
	}
}

func TestRotationStaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tun := DefaultTuning()
	pos, rot := Vector3{}, Vector3{}
	for i := 0; i < 5000; i++ {
		in := InputState{
			MouseX: (r.Float32()*2 - 1) * 1e6,
			MouseY: (r.Float32()*2 - 1) * 1e4,
		}
		pos, rot = Integrate(pos, rot, in, 0.05, tun)
		if rot.Y <= -math32.Pi || rot.Y > math32.Pi {
			t.Fatalf("step %d: yaw %f outside (-pi, pi]", i, rot.Y)
		}
		if rot.X < -math32.Pi/2 || rot.X > math32.Pi/2 {
			t.Fatalf("step %d: pitch %f outside [-pi/2, pi/2]", i, rot.X)
		}
	}
}

func TestRotationIgnoresNonFiniteMouse(t *testing.T) {
	_, rot := Integrate(Vector3{}, Vector3{Y: 1}, InputState{MouseX: math32.Inf(1), MouseY: math32.NaN()}, 0.05, DefaultTuning())
	if !rot.IsFinite() || !approx(rot.Y, 1) || rot.X != 0 {
		t.Fatalf("rot = %+v, want (0, 1, 0)", rot)
	}
}

func TestNormalizeYaw(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{0, 0},
		{math32.Pi, math32.Pi},
		{-math32.Pi, math32.Pi},
		{3 * math32.Pi / 2, -math32.Pi / 2},
		{-3 * math32.Pi / 2, math32.Pi / 2},
		{10 * math32.Pi, 0},
	}
	for _, c := range cases {
		if got := NormalizeYaw(c.in); !approx(got, c.want) {
			t.Fatalf("NormalizeYaw(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestPositionStaysInBounds(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	tun := DefaultTuning()
	pos, rot := Vector3{X: 995, Y: 99, Z: -995}, Vector3{}
	for i := 0; i < 20000; i++ {
		in := InputState{
			W:      r.Intn(2) == 0,
			S:      r.Intn(4) == 0,
			A:      r.Intn(2) == 0,
			D:      r.Intn(3) == 0,
			Space:  r.Intn(2) == 0,
			Shift:  r.Intn(2) == 0,
			MouseX: (r.Float32()*2 - 1) * 500,
		}
		dt := r.Float32() * 50
		pos, rot = Integrate(pos, rot, in, dt, tun)
		if pos.X < MinX || pos.X > MaxX || pos.Z < MinZ || pos.Z > MaxZ || pos.Y < MinY || pos.Y > MaxY {
			t.Fatalf("step %d: position %+v out of bounds", i, pos)
		}
	}
}

func TestClampPosition(t *testing.T) {
	got := ClampPosition(Vector3{X: 5000, Y: -50, Z: -5000})
	want := Vector3{X: MaxX, Y: MinY, Z: MinZ}
	if got != want {
		t.Fatalf("ClampPosition = %+v, want %+v", got, want)
	}
}
