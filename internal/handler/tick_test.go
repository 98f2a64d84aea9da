package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/infinia/server/internal/world"
)

func TestRegenClamp(t *testing.T) {
	cases := []struct {
		cur, max, amount, want int32
	}{
		{50, 100, 1, 51},
		{99, 100, 2, 100},
		{100, 100, 5, 100},
		{120, 100, 1, 120},
		{10, 100, 0, 10},
		{10, 100, -3, 10},
	}
	for _, tc := range cases {
		if got := regen(tc.cur, tc.max, tc.amount); got != tc.want {
			t.Fatalf("regen(%d, %d, %d) = %d, want %d", tc.cur, tc.max, tc.amount, got, tc.want)
		}
	}
}

func TestGameTickRegenerates(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()
	a, b := callAt("a", 1), callAt("b", 1)
	mustRegister(t, deps, a, "Alice")
	mustRegister(t, deps, b, "Bob")
	setPlayer(t, deps, a, func(p *world.Player) { p.Health, p.Mana = 50, 99 })

	n, err := GameTick(ctx, callAt("", 2), deps)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if n != 1 {
		t.Fatalf("updated = %d, want 1 (Bob is full)", n)
	}
	p := activePlayer(t, deps, a)
	if p.Health != 51 || p.Mana != 100 {
		t.Fatalf("vitals = %d/%d, want 51/100", p.Health, p.Mana)
	}

	// Full players are not written back.
	setPlayer(t, deps, a, func(p *world.Player) { p.Health = 100 })
	if n, _ := GameTick(ctx, callAt("", 3), deps); n != 0 {
		t.Fatalf("updated = %d with everyone full", n)
	}
}

type countingTicker struct {
	seen []string
}

func (c *countingTicker) TickPlayer(p *world.Player, _ time.Time) bool {
	c.seen = append(c.seen, p.Username)
	p.Mana = 0
	return true
}

func TestGameTickRunsCustomTickers(t *testing.T) {
	deps := newTestDeps()
	ct := &countingTicker{}
	deps.Tickers = []PlayerTicker{ct}
	a := callAt("a", 1)
	mustRegister(t, deps, a, "Alice")
	mustRegister(t, deps, callAt("b", 1), "Bob")
	setPlayer(t, deps, a, func(p *world.Player) { p.Health = 10 })

	n, err := GameTick(context.Background(), callAt("", 2), deps)
	if err != nil || n != 2 {
		t.Fatalf("tick = %d %v, want 2", n, err)
	}
	if len(ct.seen) != 2 || ct.seen[0] != "Alice" || ct.seen[1] != "Bob" {
		t.Fatalf("ticked %v, want [Alice Bob]", ct.seen)
	}
	// Tickers replace regen.
	if p := activePlayer(t, deps, a); p.Health != 10 || p.Mana != 0 {
		t.Fatalf("vitals = %d/%d, want 10/0", p.Health, p.Mana)
	}
}

func TestGameTickRollsBackOnFailure(t *testing.T) {
	deps := newTestDeps()
	a, b := callAt("a", 1), callAt("b", 1)
	mustRegister(t, deps, a, "Alice")
	mustRegister(t, deps, b, "Bob")
	setPlayer(t, deps, a, func(p *world.Player) { p.Health = 10 })
	setPlayer(t, deps, b, func(p *world.Player) { p.Health = 20 })

	base := deps.Store
	deps.Store = failUpdates{base}
	if _, err := GameTick(context.Background(), callAt("", 2), deps); !errors.Is(err, errDisk) {
		t.Fatalf("tick err = %v, want errDisk", err)
	}
	deps.Store = base
	if pa, pb := activePlayer(t, deps, a), activePlayer(t, deps, b); pa.Health != 10 || pb.Health != 20 {
		t.Fatalf("health after failed tick = %d, %d", pa.Health, pb.Health)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	got, err := Init(ctx, callAt("", 1), deps)
	if err != nil || got != 50*time.Millisecond {
		t.Fatalf("first Init = %v %v, want 50ms", got, err)
	}
	deps.Config.Simulation.TickRate = time.Second
	got, err = Init(ctx, callAt("", 2), deps)
	if err != nil || got != 50*time.Millisecond {
		t.Fatalf("second Init = %v %v, want the stored 50ms", got, err)
	}
}
