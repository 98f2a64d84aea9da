package handler

import (
	"context"

	"github.com/infinia/server/internal/core/event"
	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

// UpdatePlayerInput reconciles one input sample against the caller's record.
// Stale and duplicate samples return Accepted=false with no write and no
// error.
func UpdatePlayerInput(ctx context.Context, c Call, in world.InputState, deps *Deps) (world.Outcome, error) {
	var (
		out world.Outcome
		p   *world.Player
	)
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		p, err = tx.Players().Find(ctx, c.Sender)
		if err != nil {
			return err
		}
		if p == nil {
			return invalid("update_player_input", "player not found")
		}
		out = world.Reconcile(p, in, deps.inputDelta(), deps.tuning(), c.Timestamp)
		if !out.Accepted {
			return nil
		}
		return tx.Players().Update(ctx, p)
	})
	if err != nil {
		return world.Outcome{}, err
	}

	if !out.Accepted {
		deps.Log.Debug("stale input ignored",
			zap.String("identity", c.Sender.Short()),
			zap.Uint32("sequence", in.Sequence),
			zap.Uint32("last_seq", p.LastInputSeq))
		return out, nil
	}
	if out.Significant {
		deps.Log.Debug("player moved",
			zap.String("username", p.Username),
			zap.Float32("x", p.Position.X),
			zap.Float32("y", p.Position.Y),
			zap.Float32("z", p.Position.Z),
			zap.Float32("yaw", p.Rotation.Y))
		emit(deps, event.PlayerMoved{
			Identity:  p.Identity,
			Username:  p.Username,
			From:      out.From,
			Position:  p.Position,
			Rotation:  p.Rotation,
			Sequence:  p.LastInputSeq,
			IsMoving:  p.IsMoving,
			IsRunning: p.IsRunning,
		})
	}
	return out, nil
}
