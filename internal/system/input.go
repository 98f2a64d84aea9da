package system

import (
	"context"
	"errors"
	"time"

	coresys "github.com/infinia/server/internal/core/system"
	"github.com/infinia/server/internal/handler"
	"github.com/infinia/server/internal/net"
	"github.com/infinia/server/internal/net/packet"
	"go.uber.org/zap"
)

// TypeConnected is pushed to every accepted session with its connect outcome.
const TypeConnected = "connected"

type connectedPayload struct {
	Identity string `json:"identity"`
	Outcome  string `json:"outcome"`
}

// sessionSource hands new sessions to the game loop.
type sessionSource interface {
	NewSessions() <-chan *net.Session
}

// InputSystem accepts new sessions, drains packet queues from all sessions
// and dispatches them through the packet registry. Phase 0 (Input).
type InputSystem struct {
	netServer  sessionSource
	registry   *packet.Registry
	sessions   *net.SessionStore
	maxPerTick int
	deps       *handler.Deps
	log        *zap.Logger
}

func NewInputSystem(
	netServer sessionSource,
	registry *packet.Registry,
	sessions *net.SessionStore,
	maxPerTick int,
	deps *handler.Deps,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		netServer:  netServer,
		registry:   registry,
		sessions:   sessions,
		maxPerTick: maxPerTick,
		deps:       deps,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.handleConnect(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	var closed []*net.Session
	s.sessions.ForEach(func(sess *net.Session) {
		if sess.IsClosed() {
			closed = append(closed, sess)
			return
		}
		s.drain(sess)
	})

	for _, sess := range closed {
		// Frames sent just before the socket dropped still count.
		s.drain(sess)
		sess.FlushOutput()
		s.handleDisconnect(sess)
		s.sessions.Remove(sess.ID)
	}

	// Flush early so replies leave while the later phases run.
	// OutputSystem flushes whatever those phases add.
	s.sessions.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// drain dispatches up to maxPerTick queued frames of sess.
func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			env, err := s.registry.Dispatch(sess, sess.State(), data)
			if err != nil {
				s.log.Debug("dispatch failed",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
				s.replyDispatchError(sess, env, err)
			}
		default:
			return
		}
	}
}

// replyDispatchError answers frames the registry refused. Refusals are the
// client's fault; handler panics are reported as internal errors.
func (s *InputSystem) replyDispatchError(sess *net.Session, env packet.Envelope, err error) {
	if sess.IsClosed() {
		return
	}
	if !errors.Is(err, packet.ErrHandlerPanic) {
		op := env.Type
		if op == "" {
			op = "decode"
		}
		err = &handler.ValidationError{Op: op, Msg: err.Error()}
	}
	handler.SendResult(sess, env, nil, err, s.deps)
}

// handleConnect registers sess and restores the caller's LoggedOut record.
// A second live connection for an identity is refused.
func (s *InputSystem) handleConnect(sess *net.Session) {
	if !s.sessions.Add(sess) {
		s.log.Warn("identity already connected, refusing session",
			zap.Uint64("session", sess.ID),
			zap.String("identity", sess.Identity.Short()))
		sess.Close()
		return
	}

	c := handler.Call{Sender: sess.Identity, Timestamp: time.Now()}
	outcome, err := handler.IdentityConnected(context.Background(), c, s.deps)
	if err != nil {
		s.log.Error("identity connected failed",
			zap.Uint64("session", sess.ID),
			zap.Error(err))
		s.sessions.Remove(sess.ID)
		sess.Close()
		return
	}
	if outcome.Active() {
		sess.SetState(packet.StateInWorld)
	}

	frame, err := packet.Encode(TypeConnected, 0, connectedPayload{
		Identity: sess.Identity.Hex(),
		Outcome:  outcome.String(),
	})
	if err != nil {
		s.log.Error("encode connected", zap.Error(err))
		return
	}
	sess.Send(frame)
}

// handleDisconnect moves the caller's Active record to LoggedOut.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	c := handler.Call{Sender: sess.Identity, Timestamp: time.Now()}
	if err := handler.IdentityDisconnected(context.Background(), c, s.deps); err != nil {
		s.log.Error("identity disconnected failed",
			zap.Uint64("session", sess.ID),
			zap.String("identity", sess.Identity.Short()),
			zap.Error(err))
	}
	s.log.Info("client disconnected",
		zap.Uint64("session", sess.ID),
		zap.String("identity", sess.Identity.Short()))
}
