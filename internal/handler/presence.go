package handler

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/infinia/server/internal/world"
)

// withPresence runs fn on the caller's record when the presence capability
// is enabled.
func withPresence(ctx context.Context, op string, c Call, deps *Deps, fn func(pr *world.Presence) error) (world.Presence, error) {
	if !deps.Config.Simulation.PresenceEnabled {
		return world.Presence{}, invalid(op, "presence updates are disabled")
	}
	p, err := mutatePlayer(ctx, op, c, deps, func(p *world.Player) error {
		return fn(&p.Presence)
	})
	if err != nil {
		return world.Presence{}, err
	}
	return p.Presence, nil
}

// direction rejects non-finite vectors and returns v scaled to unit length.
// The zero vector keeps the previous direction.
func direction(op string, v, prev world.Vector3) (world.Vector3, error) {
	if !v.IsFinite() {
		return prev, invalid(op, "direction must be finite")
	}
	if v.Vec().Len() == 0 {
		return prev, nil
	}
	return world.FromVec(v.Vec().Normalize()), nil
}

func UpdatePlayerAimDirection(ctx context.Context, c Call, dir world.Vector3, deps *Deps) (world.Presence, error) {
	const op = "update_player_aim_direction"
	return withPresence(ctx, op, c, deps, func(pr *world.Presence) error {
		d, err := direction(op, dir, pr.AimDirection)
		pr.AimDirection = d
		return err
	})
}

func UpdatePlayerLookDirection(ctx context.Context, c Call, dir world.Vector3, deps *Deps) (world.Presence, error) {
	const op = "update_player_look_direction"
	return withPresence(ctx, op, c, deps, func(pr *world.Presence) error {
		d, err := direction(op, dir, pr.LookDirection)
		pr.LookDirection = d
		return err
	})
}

// UpdatePlayerAimingState sets the aiming and scoped flags. Scoping implies
// aiming.
func UpdatePlayerAimingState(ctx context.Context, c Call, aiming, scoped bool, deps *Deps) (world.Presence, error) {
	return withPresence(ctx, "update_player_aiming_state", c, deps, func(pr *world.Presence) error {
		pr.IsAiming = aiming || scoped
		pr.IsScoped = scoped
		return nil
	})
}

func UpdatePlayerAnimationState(ctx context.Context, c Call, state string, t float32, deps *Deps) (world.Presence, error) {
	const op = "update_player_animation_state"
	return withPresence(ctx, op, c, deps, func(pr *world.Presence) error {
		if state == "" {
			return invalid(op, "animation state must not be empty")
		}
		if math32.IsNaN(t) || math32.IsInf(t, 0) || t < 0 {
			return invalid(op, "animation time must be a finite non-negative number")
		}
		pr.AnimationState = state
		pr.AnimationTime = t
		return nil
	})
}
