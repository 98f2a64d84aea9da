package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/infinia/server/internal/world"
	"github.com/jackc/pgx/v5"
)

type LoggedOutRepo struct {
	q querier
}

func (r *LoggedOutRepo) Find(ctx context.Context, id world.Identity) (*world.LoggedOutPlayer, error) {
	var (
		p   world.LoggedOutPlayer
		raw []byte
	)
	err := r.q.QueryRow(ctx,
		`SELECT identity, username, pos_x, pos_y, pos_z, rot_x, rot_y, rot_z,
		        health, max_health, mana, max_mana, logout_time
		 FROM logged_out_players WHERE identity = $1`, id[:],
	).Scan(
		&raw, &p.Username,
		&p.Position.X, &p.Position.Y, &p.Position.Z,
		&p.Rotation.X, &p.Rotation.Y, &p.Rotation.Z,
		&p.Health, &p.MaxHealth, &p.Mana, &p.MaxMana, &p.LogoutTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find logged out player: %w", err)
	}
	copy(p.Identity[:], raw)
	return &p, nil
}

func (r *LoggedOutRepo) Insert(ctx context.Context, p *world.LoggedOutPlayer) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO logged_out_players
		        (identity, username, pos_x, pos_y, pos_z, rot_x, rot_y, rot_z,
		         health, max_health, mana, max_mana, logout_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.Identity[:], p.Username,
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Rotation.X, p.Rotation.Y, p.Rotation.Z,
		p.Health, p.MaxHealth, p.Mana, p.MaxMana, p.LogoutTime,
	)
	if err != nil {
		return mapInsertErr("insert logged out player", err)
	}
	return nil
}

func (r *LoggedOutRepo) Delete(ctx context.Context, id world.Identity) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM logged_out_players WHERE identity = $1`, id[:]); err != nil {
		return fmt.Errorf("delete logged out player: %w", err)
	}
	return nil
}

func (r *LoggedOutRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.q, "logged_out_players")
}
