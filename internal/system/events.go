package system

import (
	"time"

	"github.com/infinia/server/internal/core/event"
	coresys "github.com/infinia/server/internal/core/system"
	"github.com/infinia/server/internal/net"
	"github.com/infinia/server/internal/net/packet"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

// Frames pushed to every session when the world changes.
const (
	TypePlayerJoined = "player_joined"
	TypePlayerLeft   = "player_left"
	TypePlayerMoved  = "player_moved"
)

type playerPayload struct {
	Identity string `json:"identity"`
	Username string `json:"username"`
}

type movedPayload struct {
	Identity  string        `json:"identity"`
	Username  string        `json:"username"`
	Position  world.Vector3 `json:"position"`
	Rotation  world.Vector3 `json:"rotation"`
	Sequence  uint32        `json:"sequence"`
	IsMoving  bool          `json:"is_moving"`
	IsRunning bool          `json:"is_running"`
}

// EventDispatchSystem delivers the queued events and relays them to
// connected clients. Roster changes reach every in-world session; moves reach
// only sessions within the interest radius. Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus      *event.Bus
	sessions *net.SessionStore
	aoi      *world.AOIGrid // nil when every move goes to everyone
	log      *zap.Logger
}

func NewEventDispatchSystem(bus *event.Bus, sessions *net.SessionStore, interestRadius float32, log *zap.Logger) *EventDispatchSystem {
	s := &EventDispatchSystem{bus: bus, sessions: sessions, log: log}
	if interestRadius > 0 {
		s.aoi = world.NewAOIGrid(interestRadius)
	}
	event.Subscribe(bus, func(ev event.PlayerRegistered) {
		s.enter(ev.Identity, ev.Position)
		s.broadcast(TypePlayerJoined, playerPayload{Identity: ev.Identity.Hex(), Username: ev.Username})
	})
	event.Subscribe(bus, func(ev event.PlayerRestored) {
		s.enter(ev.Identity, ev.Position)
		s.broadcast(TypePlayerJoined, playerPayload{Identity: ev.Identity.Hex(), Username: ev.Username})
	})
	event.Subscribe(bus, func(ev event.PlayerLoggedOut) {
		if s.aoi != nil {
			s.aoi.Remove(ev.Identity)
		}
		s.broadcast(TypePlayerLeft, playerPayload{Identity: ev.Identity.Hex(), Username: ev.Username})
	})
	event.Subscribe(bus, func(ev event.PlayerMoved) {
		s.relayMove(ev.Identity, ev.Position, movedPayload{
			Identity:  ev.Identity.Hex(),
			Username:  ev.Username,
			Position:  ev.Position,
			Rotation:  ev.Rotation,
			Sequence:  ev.Sequence,
			IsMoving:  ev.IsMoving,
			IsRunning: ev.IsRunning,
		})
	})
	return s
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	if s.bus.Pending() == 0 {
		return
	}
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

func (s *EventDispatchSystem) enter(id world.Identity, pos world.Vector3) {
	if s.aoi != nil {
		s.aoi.Add(id, pos)
	}
}

// relayMove sends a move to in-world sessions near pos. The mover itself is
// among them.
func (s *EventDispatchSystem) relayMove(id world.Identity, pos world.Vector3, payload movedPayload) {
	if s.aoi == nil {
		s.broadcast(TypePlayerMoved, payload)
		return
	}
	s.aoi.Move(id, pos)
	frame, ok := s.encode(TypePlayerMoved, payload)
	if !ok {
		return
	}
	for _, near := range s.aoi.Nearby(pos) {
		if sess := s.sessions.ByIdentity(near); sess != nil && sess.State() == packet.StateInWorld {
			sess.Send(frame)
		}
	}
}

// broadcast sends one frame to every in-world session.
func (s *EventDispatchSystem) broadcast(typ string, payload any) {
	frame, ok := s.encode(typ, payload)
	if !ok {
		return
	}
	s.sessions.ForEach(func(sess *net.Session) {
		if sess.State() == packet.StateInWorld {
			sess.Send(frame)
		}
	})
}

func (s *EventDispatchSystem) encode(typ string, payload any) ([]byte, bool) {
	frame, err := packet.Encode(typ, 0, payload)
	if err != nil {
		s.log.Error("encode broadcast", zap.String("type", typ), zap.Error(err))
		return nil, false
	}
	return frame, true
}
