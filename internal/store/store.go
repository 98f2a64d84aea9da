// Package store defines the storage boundary the simulation runs against.
// Every operation executes inside one unit of work obtained from Store.Run;
// implementations guarantee that no two units observe each other's partial
// writes and that a failed unit leaves no writes behind.
package store

import (
	"context"
	"errors"

	"github.com/infinia/server/internal/world"
)

// ErrCollision is returned by Insert when the primary key (or the unique
// active username) is already taken.
var ErrCollision = errors.New("store: key collision")

// Store hands out isolated units of work.
type Store interface {
	// Run executes fn as one serializable unit of work. If fn returns an
	// error every write made through tx is discarded.
	Run(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the view of all tables inside one unit of work.
type Tx interface {
	Players() PlayerTable
	LoggedOut() LoggedOutTable
	Chunks() ChunkTable
	Schedules() ScheduleTable
}

// PlayerTable holds Active players keyed by identity. Find methods return
// (nil, nil) when no record matches.
type PlayerTable interface {
	Find(ctx context.Context, id world.Identity) (*world.Player, error)
	FindByName(ctx context.Context, username string) (*world.Player, error)
	Insert(ctx context.Context, p *world.Player) error
	Update(ctx context.Context, p *world.Player) error
	Delete(ctx context.Context, id world.Identity) error
	All(ctx context.Context) ([]*world.Player, error)
	Count(ctx context.Context) (int, error)
}

// LoggedOutTable holds offline snapshots keyed by identity.
type LoggedOutTable interface {
	Find(ctx context.Context, id world.Identity) (*world.LoggedOutPlayer, error)
	Insert(ctx context.Context, p *world.LoggedOutPlayer) error
	Delete(ctx context.Context, id world.Identity) error
	Count(ctx context.Context) (int, error)
}

// ChunkTable is the terrain chunk cache keyed by chunk key.
type ChunkTable interface {
	Find(ctx context.Context, key string) (*world.TerrainChunk, error)
	Insert(ctx context.Context, c *world.TerrainChunk) error
	Update(ctx context.Context, c *world.TerrainChunk) error
	Count(ctx context.Context) (int, error)
}

// ScheduleTable holds the game tick schedule rows.
type ScheduleTable interface {
	First(ctx context.Context) (*world.TickSchedule, error)
	Insert(ctx context.Context, s *world.TickSchedule) error
}
