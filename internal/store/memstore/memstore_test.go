package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/world"
)

var errBoom = errors.New("boom")

func TestRunRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	alice := world.NewPlayer(world.IdentityFromToken("alice"), "Alice", time.Unix(1, 0))

	if err := s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Players().Insert(ctx, &alice)
	}); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	err := s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		lo := alice.LogOut(time.Unix(2, 0))
		if err := tx.LoggedOut().Insert(ctx, &lo); err != nil {
			return err
		}
		if err := tx.Players().Delete(ctx, alice.Identity); err != nil {
			return err
		}
		bob := world.NewPlayer(world.IdentityFromToken("bob"), "Bob", time.Unix(2, 0))
		if err := tx.Players().Insert(ctx, &bob); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Run error = %v, want %v", err, errBoom)
	}

	s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		if p, _ := tx.Players().Find(ctx, alice.Identity); p == nil {
			t.Fatalf("alice missing after rollback")
		}
		if p, _ := tx.Players().FindByName(ctx, "Alice"); p == nil {
			t.Fatalf("name index lost Alice after rollback")
		}
		if p, _ := tx.Players().FindByName(ctx, "Bob"); p != nil {
			t.Fatalf("bob survived rollback")
		}
		if n, _ := tx.LoggedOut().Count(ctx); n != 0 {
			t.Fatalf("logged out count = %d, want 0", n)
		}
		return nil
	})
}

func TestRunRollsBackOnPanic(t *testing.T) {
	s := New()
	ctx := context.Background()
	func() {
		defer func() { recover() }()
		s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
			c := world.TerrainChunk{Key: "0,0,0_x"}
			tx.Chunks().Insert(ctx, &c)
			panic("handler bug")
		})
	}()
	s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		if n, _ := tx.Chunks().Count(ctx); n != 0 {
			t.Fatalf("chunk count = %d after panic, want 0", n)
		}
		return nil
	})
}

func TestInsertCollisions(t *testing.T) {
	s := New()
	ctx := context.Background()
	err := s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		a := world.NewPlayer(world.IdentityFromToken("a"), "Same", time.Unix(1, 0))
		if err := tx.Players().Insert(ctx, &a); err != nil {
			return err
		}
		b := world.NewPlayer(world.IdentityFromToken("b"), "Same", time.Unix(1, 0))
		return tx.Players().Insert(ctx, &b)
	})
	if !errors.Is(err, store.ErrCollision) {
		t.Fatalf("duplicate name insert error = %v, want ErrCollision", err)
	}
}

func TestUpdateRenamesIndex(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		p := world.NewPlayer(world.IdentityFromToken("a"), "Old", time.Unix(1, 0))
		tx.Players().Insert(ctx, &p)
		p.Username = "New"
		if err := tx.Players().Update(ctx, &p); err != nil {
			t.Fatalf("update: %v", err)
		}
		if got, _ := tx.Players().FindByName(ctx, "Old"); got != nil {
			t.Fatalf("old name still indexed")
		}
		if got, _ := tx.Players().FindByName(ctx, "New"); got == nil {
			t.Fatalf("new name not indexed")
		}
		return nil
	})
}

func TestChunkDataIsCopied(t *testing.T) {
	s := New()
	ctx := context.Background()
	data := []float32{1, 2, 3}
	s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Chunks().Insert(ctx, &world.TerrainChunk{Key: "k", NoiseData: data})
	})
	data[0] = 99
	s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		c, _ := tx.Chunks().Find(ctx, "k")
		if c.NoiseData[0] != 1 {
			t.Fatalf("stored chunk aliased caller slice: %v", c.NoiseData)
		}
		return nil
	})
}

func TestScheduleAutoIncrement(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		a := world.TickSchedule{Interval: time.Second}
		b := world.TickSchedule{Interval: time.Minute}
		tx.Schedules().Insert(ctx, &a)
		tx.Schedules().Insert(ctx, &b)
		if a.ID != 1 || b.ID != 2 {
			t.Fatalf("ids = %d, %d, want 1, 2", a.ID, b.ID)
		}
		first, _ := tx.Schedules().First(ctx)
		if first.Interval != time.Second {
			t.Fatalf("first interval = %v, want 1s", first.Interval)
		}
		return nil
	})
}

func TestRunHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().Run(ctx, func(context.Context, store.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("err = %v called = %v, want context.Canceled and no call", err, called)
	}
}
