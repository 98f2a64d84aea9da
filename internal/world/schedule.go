package world

import "time"

// TickSchedule is the persisted row that arms the periodic game tick.
type TickSchedule struct {
	ID        uint64
	Interval  time.Duration
	CreatedAt time.Time
}
