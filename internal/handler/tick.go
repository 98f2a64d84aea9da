package handler

import (
	"context"
	"time"

	"github.com/infinia/server/internal/scripting"
	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

// PlayerTicker is one per-tick hook run against every Active player.
// It reports whether it changed p.
type PlayerTicker interface {
	TickPlayer(p *world.Player, now time.Time) bool
}

// RegenTicker restores health and mana up to their maxima. Amounts come from
// the Lua calc_regen function when Engine is set.
type RegenTicker struct {
	Engine *scripting.Engine
}

func (r RegenTicker) TickPlayer(p *world.Player, _ time.Time) bool {
	amt := scripting.DefaultRegen()
	if r.Engine != nil {
		amt = r.Engine.CalcRegen(scripting.RegenContext{
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Mana:      p.Mana,
			MaxMana:   p.MaxMana,
			IsMoving:  p.IsMoving,
			IsRunning: p.IsRunning,
		})
	}
	health := regen(p.Health, p.MaxHealth, amt.Health)
	mana := regen(p.Mana, p.MaxMana, amt.Mana)
	if health == p.Health && mana == p.Mana {
		return false
	}
	p.Health, p.Mana = health, mana
	return true
}

// regen adds amount without crossing max. Values already above max stay put.
func regen(cur, max, amount int32) int32 {
	if cur >= max || amount <= 0 {
		return cur
	}
	if amount > max-cur {
		return max
	}
	return cur + amount
}

// Init arms the tick schedule if no row exists and returns the interval the
// game loop should tick at. Calling it again keeps the existing row.
func Init(ctx context.Context, c Call, deps *Deps) (time.Duration, error) {
	var interval time.Duration
	created := false
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		created = false
		sched, err := tx.Schedules().First(ctx)
		if err != nil {
			return err
		}
		if sched != nil {
			interval = sched.Interval
			return nil
		}
		row := world.TickSchedule{
			Interval:  deps.Config.Simulation.TickRate,
			CreatedAt: c.Timestamp,
		}
		if err := tx.Schedules().Insert(ctx, &row); err != nil {
			return err
		}
		interval, created = row.Interval, true
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created {
		deps.Log.Info("tick schedule armed", zap.Duration("interval", interval))
	}
	return interval, nil
}

// GameTick runs every ticker once against every Active player and writes back
// the records that changed. Returns the number of records written.
func GameTick(ctx context.Context, c Call, deps *Deps) (int, error) {
	tickers := deps.tickers()
	updated := 0
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		updated = 0
		players, err := tx.Players().All(ctx)
		if err != nil {
			return err
		}
		for _, p := range players {
			changed := false
			for _, t := range tickers {
				if t.TickPlayer(p, c.Timestamp) {
					changed = true
				}
			}
			if !changed {
				continue
			}
			if err := tx.Players().Update(ctx, p); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		deps.Log.Debug("game tick", zap.Int("updated", updated))
	}
	return updated, nil
}
