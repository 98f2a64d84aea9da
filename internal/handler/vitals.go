package handler

import (
	"context"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

// PlayerCounts reports the size of both lifecycle partitions.
type PlayerCounts struct {
	Active    int `json:"active"`
	LoggedOut int `json:"logged_out"`
}

// mutatePlayer loads the caller's Active record, applies fn and writes it back.
func mutatePlayer(ctx context.Context, op string, c Call, deps *Deps, fn func(p *world.Player) error) (*world.Player, error) {
	var out *world.Player
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := tx.Players().Find(ctx, c.Sender)
		if err != nil {
			return err
		}
		if p == nil {
			return invalid(op, "player not found")
		}
		if err := fn(p); err != nil {
			return err
		}
		p.LastUpdate = c.Timestamp
		out = p
		return tx.Players().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePlayerHealth adds delta to health, clamped to [0, max_health].
func UpdatePlayerHealth(ctx context.Context, c Call, delta int32, deps *Deps) (int32, error) {
	p, err := mutatePlayer(ctx, "update_player_health", c, deps, func(p *world.Player) error {
		h := int64(p.Health) + int64(delta)
		h = max(0, min(h, int64(p.MaxHealth)))
		p.Health = int32(h)
		return nil
	})
	if err != nil {
		return 0, err
	}
	deps.Log.Debug("health changed",
		zap.String("username", p.Username),
		zap.Int32("delta", delta),
		zap.Int32("health", p.Health))
	return p.Health, nil
}

// HealPlayer restores health to max_health.
func HealPlayer(ctx context.Context, c Call, deps *Deps) (int32, error) {
	p, err := mutatePlayer(ctx, "heal_player", c, deps, func(p *world.Player) error {
		p.Health = p.MaxHealth
		return nil
	})
	if err != nil {
		return 0, err
	}
	return p.Health, nil
}

// RandomMovePlayer offsets x and z by uniform values in [-maxDistance,
// maxDistance]. The generator is seeded from the call timestamp so replaying
// a call reproduces the move.
func RandomMovePlayer(ctx context.Context, c Call, maxDistance float32, deps *Deps) (world.Vector3, error) {
	const op = "random_move_player"
	if maxDistance < 0 || math32.IsNaN(maxDistance) || math32.IsInf(maxDistance, 0) {
		return world.Vector3{}, invalid(op, "max distance must be a finite non-negative number")
	}
	seed := uint64(c.Timestamp.UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed))

	p, err := mutatePlayer(ctx, op, c, deps, func(p *world.Player) error {
		dx := (rng.Float32()*2 - 1) * maxDistance
		dz := (rng.Float32()*2 - 1) * maxDistance
		p.Position = world.ClampPosition(p.Position.Add(world.Vector3{X: dx, Z: dz}))
		return nil
	})
	if err != nil {
		return world.Vector3{}, err
	}
	return p.Position, nil
}

// GetPlayerCount returns the Active and LoggedOut record counts.
func GetPlayerCount(ctx context.Context, deps *Deps) (PlayerCounts, error) {
	var pc PlayerCounts
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if pc.Active, err = tx.Players().Count(ctx); err != nil {
			return err
		}
		pc.LoggedOut, err = tx.LoggedOut().Count(ctx)
		return err
	})
	return pc, err
}
