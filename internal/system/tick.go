package system

import (
	"context"
	"time"

	coresys "github.com/infinia/server/internal/core/system"
	"github.com/infinia/server/internal/handler"
	"go.uber.org/zap"
)

// TickSystem runs the scheduled game tick. Phase 2 (Update).
type TickSystem struct {
	deps *handler.Deps
	log  *zap.Logger
	now  func() time.Time
}

func NewTickSystem(deps *handler.Deps, log *zap.Logger) *TickSystem {
	return &TickSystem{deps: deps, log: log, now: time.Now}
}

func (s *TickSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TickSystem) Update(_ time.Duration) {
	// The scheduler itself is the caller; it carries no identity.
	c := handler.Call{Timestamp: s.now()}
	if _, err := handler.GameTick(context.Background(), c, s.deps); err != nil {
		s.log.Error("game tick failed", zap.Error(err))
	}
}
