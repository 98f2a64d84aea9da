package handler

import (
	"context"
	"errors"
	"time"

	"github.com/infinia/server/internal/net"
	"github.com/infinia/server/internal/net/packet"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

// Wire names of the client-callable reducers.
const (
	MsgRegisterPlayer             = "register_player"
	MsgUpdatePlayerInput          = "update_player_input"
	MsgStoreTerrainChunk          = "store_terrain_chunk"
	MsgGetTerrainChunk            = "get_terrain_chunk"
	MsgStoreInitialChunks         = "store_initial_chunks_for_planet"
	MsgGetChunkCount              = "get_chunk_count"
	MsgGetPlayerCount             = "get_player_count"
	MsgUpdatePlayerHealth         = "update_player_health"
	MsgHealPlayer                 = "heal_player"
	MsgRandomMovePlayer           = "random_move_player"
	MsgUpdatePlayerAimDirection   = "update_player_aim_direction"
	MsgUpdatePlayerLookDirection  = "update_player_look_direction"
	MsgUpdatePlayerAimingState    = "update_player_aiming_state"
	MsgUpdatePlayerAnimationState = "update_player_animation_state"
)

type registerPayload struct {
	Name string `json:"name"`
}

type chunkKeyPayload struct {
	Key string `json:"chunk_key"`
}

type initialChunksPayload struct {
	PlanetType string `json:"planet_type"`
	Radius     int32  `json:"radius"`
}

type healthPayload struct {
	Delta int32 `json:"delta"`
}

type randomMovePayload struct {
	MaxDistance float32 `json:"max_distance"`
}

type directionPayload struct {
	Direction world.Vector3 `json:"direction"`
}

type aimingPayload struct {
	IsAiming bool `json:"is_aiming"`
	IsScoped bool `json:"is_scoped"`
}

type animationPayload struct {
	State string  `json:"animation_state"`
	Time  float32 `json:"animation_time"`
}

// reducerFunc runs one reducer for sess and returns the result data.
type reducerFunc func(ctx context.Context, sess *net.Session, c Call, env packet.Envelope) (any, error)

// RegisterAll registers every client-callable reducer into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	connected := []packet.SessionState{packet.StateConnected}
	inWorld := []packet.SessionState{packet.StateInWorld}
	both := []packet.SessionState{packet.StateConnected, packet.StateInWorld}

	register := func(typ string, states []packet.SessionState, fn reducerFunc) {
		reg.Register(typ, states, func(sess any, env packet.Envelope) {
			invoke(sess.(*net.Session), env, fn, deps)
		})
	}

	register(MsgRegisterPlayer, connected, func(ctx context.Context, sess *net.Session, c Call, env packet.Envelope) (any, error) {
		var p registerPayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		restored, err := RegisterPlayer(ctx, c, p.Name, deps)
		if err != nil {
			return nil, err
		}
		sess.SetState(packet.StateInWorld)
		return map[string]bool{"restored": restored}, nil
	})

	register(MsgUpdatePlayerInput, inWorld, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var in world.InputState
		if err := bind(env, &in); err != nil {
			return nil, err
		}
		out, err := UpdatePlayerInput(ctx, c, in, deps)
		if err != nil {
			return nil, err
		}
		return map[string]bool{"accepted": out.Accepted, "significant": out.Significant}, nil
	})

	register(MsgStoreTerrainChunk, both, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var in ChunkData
		if err := bind(env, &in); err != nil {
			return nil, err
		}
		return nil, StoreTerrainChunk(ctx, c, in, deps)
	})

	register(MsgGetTerrainChunk, both, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var p chunkKeyPayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		chunk, err := GetTerrainChunk(ctx, c, p.Key, deps)
		if err != nil || chunk == nil {
			return nil, err
		}
		return chunk, nil
	})

	register(MsgStoreInitialChunks, both, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var p initialChunksPayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		n, err := StoreInitialChunksForPlanet(ctx, c, p.PlanetType, p.Radius, deps)
		if err != nil {
			return nil, err
		}
		return map[string]int{"created": n}, nil
	})

	register(MsgGetChunkCount, both, func(ctx context.Context, _ *net.Session, _ Call, _ packet.Envelope) (any, error) {
		n, err := GetChunkCount(ctx, deps)
		if err != nil {
			return nil, err
		}
		return map[string]int{"count": n}, nil
	})

	register(MsgGetPlayerCount, both, func(ctx context.Context, _ *net.Session, _ Call, _ packet.Envelope) (any, error) {
		return GetPlayerCount(ctx, deps)
	})

	register(MsgUpdatePlayerHealth, inWorld, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var p healthPayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		h, err := UpdatePlayerHealth(ctx, c, p.Delta, deps)
		if err != nil {
			return nil, err
		}
		return map[string]int32{"health": h}, nil
	})

	register(MsgHealPlayer, inWorld, func(ctx context.Context, _ *net.Session, c Call, _ packet.Envelope) (any, error) {
		h, err := HealPlayer(ctx, c, deps)
		if err != nil {
			return nil, err
		}
		return map[string]int32{"health": h}, nil
	})

	register(MsgRandomMovePlayer, inWorld, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var p randomMovePayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		return RandomMovePlayer(ctx, c, p.MaxDistance, deps)
	})

	register(MsgUpdatePlayerAimDirection, inWorld, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var p directionPayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		return UpdatePlayerAimDirection(ctx, c, p.Direction, deps)
	})

	register(MsgUpdatePlayerLookDirection, inWorld, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var p directionPayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		return UpdatePlayerLookDirection(ctx, c, p.Direction, deps)
	})

	register(MsgUpdatePlayerAimingState, inWorld, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var p aimingPayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		return UpdatePlayerAimingState(ctx, c, p.IsAiming, p.IsScoped, deps)
	})

	register(MsgUpdatePlayerAnimationState, inWorld, func(ctx context.Context, _ *net.Session, c Call, env packet.Envelope) (any, error) {
		var p animationPayload
		if err := bind(env, &p); err != nil {
			return nil, err
		}
		return UpdatePlayerAnimationState(ctx, c, p.State, p.Time, deps)
	})
}

// invoke runs fn and answers the request. Successful calls are answered only
// when the client set a request id; failures are always answered.
func invoke(sess *net.Session, env packet.Envelope, fn reducerFunc, deps *Deps) {
	c := Call{Sender: sess.Identity, Timestamp: time.Now()}
	data, err := fn(context.Background(), sess, c, env)
	if err == nil && env.ID == 0 {
		return
	}
	SendResult(sess, env, data, err, deps)
}

// SendResult replies to env on sess. Only validation messages reach the
// client; other failures are logged and reported as an internal error.
func SendResult(sess *net.Session, env packet.Envelope, data any, err error, deps *Deps) {
	if err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			deps.Log.Error("reducer failed",
				zap.String("type", env.Type),
				zap.String("identity", sess.Identity.Short()),
				zap.Error(err))
			err = errInternal
		}
	}
	frame, encErr := packet.EncodeResult(env.Type, env.ID, data, err)
	if encErr != nil {
		deps.Log.Error("encode result", zap.String("type", env.Type), zap.Error(encErr))
		return
	}
	sess.Send(frame)
}

var errInternal = errors.New("internal error")

// bind decodes the payload; malformed payloads are the caller's fault.
func bind(env packet.Envelope, v any) error {
	if err := env.Bind(v); err != nil {
		return invalid(env.Type, "%v", err)
	}
	return nil
}
