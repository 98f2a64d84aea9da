package system

import (
	"time"

	coresys "github.com/infinia/server/internal/core/system"
	"github.com/infinia/server/internal/net"
)

// OutputSystem hands every buffered frame to the session writers.
// Phase 4 (Output).
type OutputSystem struct {
	sessions *net.SessionStore
}

func NewOutputSystem(sessions *net.SessionStore) *OutputSystem {
	return &OutputSystem{sessions: sessions}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.sessions.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}
