package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session queues, connect/disconnect
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: game tick sweep
	PhasePostUpdate              // 3: reserved
	PhaseOutput                  // 4: flush session output
)

// System is one stage of the game loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
