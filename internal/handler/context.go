// Package handler implements the reducers: every operation a client or the
// game loop can invoke against the world. Each reducer runs as exactly one
// store unit of work and emits events only after that unit commits.
package handler

import (
	"fmt"
	"time"

	"github.com/infinia/server/internal/config"
	"github.com/infinia/server/internal/core/event"
	"github.com/infinia/server/internal/scripting"
	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all reducers.
type Deps struct {
	Store     store.Store
	Config    *config.Config
	Log       *zap.Logger
	Bus       *event.Bus
	Scripting *scripting.Engine // nil uses scripting.DefaultRegen
	Tickers   []PlayerTicker    // nil runs the regen ticker only
}

// Call identifies who invoked a reducer and when. Timestamp is the single
// clock reading the reducer uses for every time field it writes.
type Call struct {
	Sender    world.Identity
	Timestamp time.Time
}

// ValidationError rejects an operation without mutating state.
type ValidationError struct {
	Op  string
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Op + ": " + e.Msg
}

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

func (d *Deps) tuning() world.Tuning {
	sim := d.Config.Simulation
	return world.Tuning{
		Speed:       sim.PlayerSpeed,
		SprintMul:   sim.SprintMultiplier,
		Sensitivity: sim.MouseSensitivity,
	}
}

// inputDelta is the fixed dt in seconds applied to every accepted sample.
func (d *Deps) inputDelta() float32 {
	dt := d.Config.Simulation.InputDelta
	if dt <= 0 {
		dt = world.DefaultInputDelta
	}
	return float32(dt.Seconds())
}

func (d *Deps) tickers() []PlayerTicker {
	if len(d.Tickers) > 0 {
		return d.Tickers
	}
	return []PlayerTicker{RegenTicker{Engine: d.Scripting}}
}

func emit[T any](d *Deps, ev T) {
	if d.Bus != nil {
		event.Emit(d.Bus, ev)
	}
}
