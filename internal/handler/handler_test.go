package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/infinia/server/internal/config"
	"github.com/infinia/server/internal/core/event"
	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/store/memstore"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

func newTestDeps() *Deps {
	return &Deps{
		Store:  memstore.New(),
		Config: config.Default(),
		Log:    zap.NewNop(),
		Bus:    event.NewBus(),
	}
}

func callAt(token string, sec int64) Call {
	return Call{Sender: world.IdentityFromToken(token), Timestamp: time.Unix(sec, 0)}
}

func mustRegister(t *testing.T, deps *Deps, c Call, name string) {
	t.Helper()
	if _, err := RegisterPlayer(context.Background(), c, name, deps); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
}

// activePlayer returns the caller's Active record or nil.
func activePlayer(t *testing.T, deps *Deps, c Call) *world.Player {
	t.Helper()
	var p *world.Player
	err := deps.Store.Run(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		p, err = tx.Players().Find(ctx, c.Sender)
		return err
	})
	if err != nil {
		t.Fatalf("find player: %v", err)
	}
	return p
}

func loggedOutPlayer(t *testing.T, deps *Deps, c Call) *world.LoggedOutPlayer {
	t.Helper()
	var p *world.LoggedOutPlayer
	err := deps.Store.Run(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		p, err = tx.LoggedOut().Find(ctx, c.Sender)
		return err
	})
	if err != nil {
		t.Fatalf("find logged out player: %v", err)
	}
	return p
}

// setPlayer overwrites the caller's Active record through fn.
func setPlayer(t *testing.T, deps *Deps, c Call, fn func(p *world.Player)) {
	t.Helper()
	err := deps.Store.Run(context.Background(), func(ctx context.Context, tx store.Tx) error {
		p, err := tx.Players().Find(ctx, c.Sender)
		if err != nil {
			return err
		}
		fn(p)
		return tx.Players().Update(ctx, p)
	})
	if err != nil {
		t.Fatalf("set player: %v", err)
	}
}

func counts(t *testing.T, deps *Deps) PlayerCounts {
	t.Helper()
	pc, err := GetPlayerCount(context.Background(), deps)
	if err != nil {
		t.Fatalf("player count: %v", err)
	}
	return pc
}

func wantInvalid(t *testing.T, err error) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func near(a, b float32) bool {
	d := a - b
	return d < 1e-4 && d > -1e-4
}

// failUpdates wraps a store so every player update fails.
type failUpdates struct{ store.Store }

var errDisk = errors.New("disk full")

func (f failUpdates) Run(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return f.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, failTx{tx})
	})
}

type failTx struct{ store.Tx }

func (t failTx) Players() store.PlayerTable { return failPlayers{t.Tx.Players()} }

type failPlayers struct{ store.PlayerTable }

func (failPlayers) Update(context.Context, *world.Player) error { return errDisk }
