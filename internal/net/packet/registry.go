package packet

import (
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateConnected     SessionState = iota // socket open, identity known, not Active
	StateInWorld                           // Active player
	StateDisconnecting                     // closed, awaiting lifecycle cleanup
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for packet handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, env Envelope)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps message types to handlers with state-based access control.
type Registry struct {
	handlers map[string]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]*handlerEntry),
		log:      log,
	}
}

// Register maps a message type to a handler, restricted to the given session states.
func (reg *Registry) Register(typ string, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[typ] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Has reports whether typ is registered.
func (reg *Registry) Has(typ string) bool {
	_, ok := reg.handlers[typ]
	return ok
}

// ErrNotAllowed is wrapped by Dispatch when the session state forbids the type.
var ErrNotAllowed = errors.New("message not allowed in this state")

// ErrUnknownType is wrapped by Dispatch for unregistered message types.
var ErrUnknownType = errors.New("unknown message type")

// ErrHandlerPanic is wrapped by Dispatch when a handler panicked.
var ErrHandlerPanic = errors.New("handler panic")

// Dispatch decodes one frame, validates the session state, and calls the
// handler. The decoded envelope is returned so callers can answer errors
// with the request id.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) (Envelope, error) {
	env, err := Decode(data)
	if err != nil {
		return Envelope{}, err
	}
	reg.log.Debug("message received",
		zap.String("type", env.Type),
		zap.Int("size", len(data)),
		zap.String("state", state.String()),
	)

	entry, ok := reg.handlers[env.Type]
	if !ok {
		return env, fmt.Errorf("%w: %s", ErrUnknownType, env.Type)
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("message not allowed in state",
			zap.String("type", env.Type),
			zap.String("state", state.String()),
		)
		return env, fmt.Errorf("%w: %s in %s", ErrNotAllowed, env.Type, state)
	}

	return env, reg.safeCall(entry.fn, sess, env)
}

// safeCall executes a handler with panic recovery so one bad message cannot
// stop the game loop. Panics are reported to Sentry when a client is bound.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, env Envelope) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("type", env.Type),
				zap.Any("panic", rec),
			)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("message_type", env.Type)
			})
			hub.Recover(rec)
			err = fmt.Errorf("%w for %s: %v", ErrHandlerPanic, env.Type, rec)
		}
	}()
	fn(sess, env)
	return nil
}
