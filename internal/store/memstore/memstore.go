// Package memstore is an in-process implementation of store.Store. Units of
// work are serialized by a mutex and rolled back through an undo log.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/world"
)

// Store keeps every table in insertion order so iteration is deterministic.
type Store struct {
	mu        sync.Mutex
	players   *orderedmap.OrderedMap[world.Identity, world.Player]
	names     map[string]world.Identity // active username index
	loggedOut *orderedmap.OrderedMap[world.Identity, world.LoggedOutPlayer]
	chunks    *orderedmap.OrderedMap[string, world.TerrainChunk]
	schedules *orderedmap.OrderedMap[uint64, world.TickSchedule]
	nextSched uint64
}

func New() *Store {
	return &Store{
		players:   orderedmap.NewOrderedMap[world.Identity, world.Player](),
		names:     make(map[string]world.Identity),
		loggedOut: orderedmap.NewOrderedMap[world.Identity, world.LoggedOutPlayer](),
		chunks:    orderedmap.NewOrderedMap[string, world.TerrainChunk](),
		schedules: orderedmap.NewOrderedMap[uint64, world.TickSchedule](),
	}
}

// Run executes fn with exclusive access to all tables. Writes are undone in
// reverse order if fn returns an error or panics.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s}
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	committed = true
	return nil
}

type memTx struct {
	s    *Store
	undo []func()
}

func (tx *memTx) record(fn func()) {
	tx.undo = append(tx.undo, fn)
}

func (tx *memTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *memTx) Players() store.PlayerTable      { return playerTable{tx} }
func (tx *memTx) LoggedOut() store.LoggedOutTable { return loggedOutTable{tx} }
func (tx *memTx) Chunks() store.ChunkTable        { return chunkTable{tx} }
func (tx *memTx) Schedules() store.ScheduleTable  { return scheduleTable{tx} }

// ── players ──

type playerTable struct{ tx *memTx }

func (t playerTable) Find(_ context.Context, id world.Identity) (*world.Player, error) {
	p, ok := t.tx.s.players.Get(id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t playerTable) FindByName(ctx context.Context, username string) (*world.Player, error) {
	id, ok := t.tx.s.names[username]
	if !ok {
		return nil, nil
	}
	return t.Find(ctx, id)
}

func (t playerTable) Insert(_ context.Context, p *world.Player) error {
	s := t.tx.s
	if _, ok := s.players.Get(p.Identity); ok {
		return fmt.Errorf("insert player %s: %w", p.Identity.Short(), store.ErrCollision)
	}
	if _, ok := s.names[p.Username]; ok {
		return fmt.Errorf("insert player name %q: %w", p.Username, store.ErrCollision)
	}
	s.players.Set(p.Identity, *p)
	s.names[p.Username] = p.Identity
	id, name := p.Identity, p.Username
	t.tx.record(func() {
		s.players.Delete(id)
		delete(s.names, name)
	})
	return nil
}

func (t playerTable) Update(_ context.Context, p *world.Player) error {
	s := t.tx.s
	old, ok := s.players.Get(p.Identity)
	if !ok {
		return fmt.Errorf("update player %s: not found", p.Identity.Short())
	}
	if old.Username != p.Username {
		if owner, taken := s.names[p.Username]; taken && owner != p.Identity {
			return fmt.Errorf("update player name %q: %w", p.Username, store.ErrCollision)
		}
		delete(s.names, old.Username)
		s.names[p.Username] = p.Identity
	}
	s.players.Set(p.Identity, *p)
	newName := p.Username
	t.tx.record(func() {
		delete(s.names, newName)
		s.names[old.Username] = old.Identity
		s.players.Set(old.Identity, old)
	})
	return nil
}

func (t playerTable) Delete(_ context.Context, id world.Identity) error {
	s := t.tx.s
	old, ok := s.players.Get(id)
	if !ok {
		return nil
	}
	s.players.Delete(id)
	delete(s.names, old.Username)
	t.tx.record(func() {
		s.players.Set(old.Identity, old)
		s.names[old.Username] = old.Identity
	})
	return nil
}

func (t playerTable) All(_ context.Context) ([]*world.Player, error) {
	out := make([]*world.Player, 0, t.tx.s.players.Len())
	for el := t.tx.s.players.Front(); el != nil; el = el.Next() {
		p := el.Value
		out = append(out, &p)
	}
	return out, nil
}

func (t playerTable) Count(_ context.Context) (int, error) {
	return t.tx.s.players.Len(), nil
}

// ── logged out players ──

type loggedOutTable struct{ tx *memTx }

func (t loggedOutTable) Find(_ context.Context, id world.Identity) (*world.LoggedOutPlayer, error) {
	p, ok := t.tx.s.loggedOut.Get(id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t loggedOutTable) Insert(_ context.Context, p *world.LoggedOutPlayer) error {
	s := t.tx.s
	if _, ok := s.loggedOut.Get(p.Identity); ok {
		return fmt.Errorf("insert logged out %s: %w", p.Identity.Short(), store.ErrCollision)
	}
	s.loggedOut.Set(p.Identity, *p)
	id := p.Identity
	t.tx.record(func() { s.loggedOut.Delete(id) })
	return nil
}

func (t loggedOutTable) Delete(_ context.Context, id world.Identity) error {
	s := t.tx.s
	old, ok := s.loggedOut.Get(id)
	if !ok {
		return nil
	}
	s.loggedOut.Delete(id)
	t.tx.record(func() { s.loggedOut.Set(old.Identity, old) })
	return nil
}

func (t loggedOutTable) Count(_ context.Context) (int, error) {
	return t.tx.s.loggedOut.Len(), nil
}

// ── terrain chunks ──

type chunkTable struct{ tx *memTx }

func (t chunkTable) Find(_ context.Context, key string) (*world.TerrainChunk, error) {
	c, ok := t.tx.s.chunks.Get(key)
	if !ok {
		return nil, nil
	}
	c.NoiseData = slices.Clone(c.NoiseData)
	return &c, nil
}

func (t chunkTable) Insert(_ context.Context, c *world.TerrainChunk) error {
	s := t.tx.s
	if _, ok := s.chunks.Get(c.Key); ok {
		return fmt.Errorf("insert chunk %s: %w", c.Key, store.ErrCollision)
	}
	stored := *c
	stored.NoiseData = slices.Clone(c.NoiseData)
	s.chunks.Set(c.Key, stored)
	key := c.Key
	t.tx.record(func() { s.chunks.Delete(key) })
	return nil
}

func (t chunkTable) Update(_ context.Context, c *world.TerrainChunk) error {
	s := t.tx.s
	old, ok := s.chunks.Get(c.Key)
	if !ok {
		return fmt.Errorf("update chunk %s: not found", c.Key)
	}
	stored := *c
	stored.NoiseData = slices.Clone(c.NoiseData)
	s.chunks.Set(c.Key, stored)
	t.tx.record(func() { s.chunks.Set(old.Key, old) })
	return nil
}

func (t chunkTable) Count(_ context.Context) (int, error) {
	return t.tx.s.chunks.Len(), nil
}

// ── schedules ──

type scheduleTable struct{ tx *memTx }

func (t scheduleTable) First(_ context.Context) (*world.TickSchedule, error) {
	el := t.tx.s.schedules.Front()
	if el == nil {
		return nil, nil
	}
	sched := el.Value
	return &sched, nil
}

// Insert assigns an auto-increment ID when s.ID is zero.
func (t scheduleTable) Insert(_ context.Context, sched *world.TickSchedule) error {
	s := t.tx.s
	prevNext := s.nextSched
	if sched.ID == 0 {
		s.nextSched++
		sched.ID = s.nextSched
	} else if sched.ID > s.nextSched {
		s.nextSched = sched.ID
	}
	if _, ok := s.schedules.Get(sched.ID); ok {
		s.nextSched = prevNext
		return fmt.Errorf("insert schedule %d: %w", sched.ID, store.ErrCollision)
	}
	s.schedules.Set(sched.ID, *sched)
	id := sched.ID
	t.tx.record(func() {
		s.schedules.Delete(id)
		s.nextSched = prevNext
	})
	return nil
}
