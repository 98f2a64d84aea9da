package handler

import (
	"context"
	"testing"

	"github.com/infinia/server/internal/core/event"
	"github.com/infinia/server/internal/world"
)

func TestUpdateInputRequiresPlayer(t *testing.T) {
	deps := newTestDeps()
	_, err := UpdatePlayerInput(context.Background(), callAt("nobody", 1), world.InputState{W: true, Sequence: 1}, deps)
	wantInvalid(t, err)
}

func TestStaleInputWritesNothing(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()
	a := callAt("a", 1)
	mustRegister(t, deps, a, "Alice")

	if _, err := UpdatePlayerInput(ctx, callAt("a", 2), world.InputState{W: true, Sequence: 7}, deps); err != nil {
		t.Fatalf("input: %v", err)
	}
	before := *activePlayer(t, deps, a)

	for _, seq := range []uint32{7, 3} {
		out, err := UpdatePlayerInput(ctx, callAt("a", 9), world.InputState{S: true, Sequence: seq}, deps)
		if err != nil || out.Accepted {
			t.Fatalf("seq %d: %+v %v", seq, out, err)
		}
	}
	if after := *activePlayer(t, deps, a); after != before {
		t.Fatalf("stale input changed record:\n%+v\n%+v", before, after)
	}
}

func TestInputUsesConfiguredTuning(t *testing.T) {
	deps := newTestDeps()
	deps.Config.Simulation.PlayerSpeed = 10
	a := callAt("a", 1)
	mustRegister(t, deps, a, "Alice")

	_, err := UpdatePlayerInput(context.Background(), a, world.InputState{W: true, Shift: true, Sequence: 1}, deps)
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	p := activePlayer(t, deps, a)
	// 10 * 1.8 * 0.05
	if !near(p.Position.Z, 0.9) || !p.IsMoving || !p.IsRunning {
		t.Fatalf("player = %+v, want z=0.9 running", p)
	}
}

func TestSignificantInputEmitsMove(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()
	a := callAt("a", 1)
	mustRegister(t, deps, a, "Alice")
	deps.Bus.SwapBuffers() // drop the registration event

	var moves []event.PlayerMoved
	event.Subscribe(deps.Bus, func(ev event.PlayerMoved) { moves = append(moves, ev) })

	// A tiny look nudge is accepted but not significant.
	out, _ := UpdatePlayerInput(ctx, a, world.InputState{MouseX: 1, Sequence: 1}, deps)
	if !out.Accepted || out.Significant {
		t.Fatalf("nudge = %+v", out)
	}
	out, _ = UpdatePlayerInput(ctx, a, world.InputState{W: true, Sequence: 2}, deps)
	if !out.Significant {
		t.Fatalf("forward step = %+v, want significant", out)
	}

	deps.Bus.SwapBuffers()
	deps.Bus.DispatchAll()
	if len(moves) != 1 || moves[0].Sequence != 2 || moves[0].Username != "Alice" {
		t.Fatalf("moves = %+v", moves)
	}
	if moves[0].From != (world.Vector3{}) || moves[0].Position == moves[0].From {
		t.Fatalf("move from %+v to %+v", moves[0].From, moves[0].Position)
	}
}
