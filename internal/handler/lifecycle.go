package handler

import (
	"context"
	"strings"

	"github.com/infinia/server/internal/core/event"
	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// normalizeName trims and NFC-normalizes a display name so visually equal
// names compare equal.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// RegisterPlayer makes the caller Active under name. A LoggedOut snapshot for
// the caller is consumed and its position, rotation and vitals carried over.
// Returns whether such a snapshot was restored.
func RegisterPlayer(ctx context.Context, c Call, name string, deps *Deps) (bool, error) {
	const op = "register_player"
	name = normalizeName(name)
	if name == "" {
		return false, invalid(op, "username must not be empty")
	}

	var (
		restored bool
		pos      world.Vector3
	)
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		restored = false
		existing, err := tx.Players().Find(ctx, c.Sender)
		if err != nil {
			return err
		}
		if existing != nil {
			return invalid(op, "player already registered as %q", existing.Username)
		}
		holder, err := tx.Players().FindByName(ctx, name)
		if err != nil {
			return err
		}
		if holder != nil {
			return invalid(op, "username %q already taken", name)
		}

		var p world.Player
		lo, err := tx.LoggedOut().Find(ctx, c.Sender)
		if err != nil {
			return err
		}
		if lo != nil {
			p = lo.Restore(name, c.Timestamp)
			if err := tx.LoggedOut().Delete(ctx, c.Sender); err != nil {
				return err
			}
			restored = true
		} else {
			p = world.NewPlayer(c.Sender, name, c.Timestamp)
		}
		pos = p.Position
		return tx.Players().Insert(ctx, &p)
	})
	if err != nil {
		deps.Log.Warn("register rejected", zap.String("identity", c.Sender.Short()), zap.Error(err))
		return false, err
	}

	deps.Log.Info("player registered",
		zap.String("identity", c.Sender.Short()),
		zap.String("username", name),
		zap.Bool("restored", restored))
	emit(deps, event.PlayerRegistered{Identity: c.Sender, Username: name, Position: pos, Restored: restored})
	return restored, nil
}

// ConnectOutcome says what IdentityConnected found for the caller.
type ConnectOutcome int

const (
	ConnectUnregistered  ConnectOutcome = iota // no record, must register
	ConnectRestored                            // LoggedOut moved back to Active
	ConnectAlreadyActive                       // record was already Active
	ConnectNameTaken                           // stored name held by another Active player
)

func (o ConnectOutcome) String() string {
	switch o {
	case ConnectUnregistered:
		return "unregistered"
	case ConnectRestored:
		return "restored"
	case ConnectAlreadyActive:
		return "already_active"
	case ConnectNameTaken:
		return "name_taken"
	default:
		return "unknown"
	}
}

// Active reports whether the caller has an Active record afterwards.
func (o ConnectOutcome) Active() bool {
	return o == ConnectRestored || o == ConnectAlreadyActive
}

// IdentityConnected restores the caller's LoggedOut snapshot into Active.
// If another Active player now holds the stored name, the snapshot stays
// LoggedOut and the client has to register under a new name.
func IdentityConnected(ctx context.Context, c Call, deps *Deps) (ConnectOutcome, error) {
	var (
		outcome  ConnectOutcome
		username string
		pos      world.Vector3
	)
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		outcome = ConnectUnregistered
		active, err := tx.Players().Find(ctx, c.Sender)
		if err != nil {
			return err
		}
		if active != nil {
			outcome = ConnectAlreadyActive
			return nil
		}
		lo, err := tx.LoggedOut().Find(ctx, c.Sender)
		if err != nil || lo == nil {
			return err
		}
		holder, err := tx.Players().FindByName(ctx, lo.Username)
		if err != nil {
			return err
		}
		if holder != nil {
			outcome, username = ConnectNameTaken, lo.Username
			return nil
		}

		p := lo.Restore(lo.Username, c.Timestamp)
		if err := tx.LoggedOut().Delete(ctx, c.Sender); err != nil {
			return err
		}
		if err := tx.Players().Insert(ctx, &p); err != nil {
			return err
		}
		outcome, username, pos = ConnectRestored, p.Username, p.Position
		return nil
	})
	if err != nil {
		return ConnectUnregistered, err
	}

	switch outcome {
	case ConnectRestored:
		deps.Log.Info("player restored",
			zap.String("identity", c.Sender.Short()),
			zap.String("username", username))
		emit(deps, event.PlayerRestored{Identity: c.Sender, Username: username, Position: pos})
	case ConnectNameTaken:
		deps.Log.Warn("stored name taken, player must re-register",
			zap.String("identity", c.Sender.Short()),
			zap.String("username", username))
	}
	return outcome, nil
}

// IdentityDisconnected moves the caller's Active record to LoggedOut. It is a
// no-op when the caller is not Active.
func IdentityDisconnected(ctx context.Context, c Call, deps *Deps) error {
	var username string
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		username = ""
		p, err := tx.Players().Find(ctx, c.Sender)
		if err != nil || p == nil {
			return err
		}
		lo := p.LogOut(c.Timestamp)
		if err := tx.Players().Delete(ctx, c.Sender); err != nil {
			return err
		}
		if err := tx.LoggedOut().Insert(ctx, &lo); err != nil {
			return err
		}
		username = p.Username
		return nil
	})
	if err != nil {
		return err
	}

	if username != "" {
		deps.Log.Info("player logged out",
			zap.String("identity", c.Sender.Short()),
			zap.String("username", username))
		emit(deps, event.PlayerLoggedOut{Identity: c.Sender, Username: username})
	}
	return nil
}
