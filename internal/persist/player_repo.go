package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/infinia/server/internal/world"
	"github.com/jackc/pgx/v5"
)

const playerColumns = `identity, username, pos_x, pos_y, pos_z, rot_x, rot_y, rot_z,
	health, max_health, mana, max_mana, is_moving, is_running,
	last_input_seq, input, last_update, presence`

type PlayerRepo struct {
	q querier
}

func (r *PlayerRepo) Find(ctx context.Context, id world.Identity) (*world.Player, error) {
	row := r.q.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE identity = $1`, id[:])
	return scanPlayer(row)
}

func (r *PlayerRepo) FindByName(ctx context.Context, username string) (*world.Player, error) {
	row := r.q.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE username = $1`, username)
	return scanPlayer(row)
}

func (r *PlayerRepo) Insert(ctx context.Context, p *world.Player) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO players (`+playerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		playerArgs(p)...,
	)
	if err != nil {
		return mapInsertErr("insert player", err)
	}
	return nil
}

func (r *PlayerRepo) Update(ctx context.Context, p *world.Player) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE players SET username = $2,
		        pos_x = $3, pos_y = $4, pos_z = $5, rot_x = $6, rot_y = $7, rot_z = $8,
		        health = $9, max_health = $10, mana = $11, max_mana = $12,
		        is_moving = $13, is_running = $14, last_input_seq = $15,
		        input = $16, last_update = $17, presence = $18
		 WHERE identity = $1`,
		playerArgs(p)...,
	)
	if err != nil {
		return mapInsertErr("update player", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update player %s: not found", p.Identity.Short())
	}
	return nil
}

func (r *PlayerRepo) Delete(ctx context.Context, id world.Identity) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM players WHERE identity = $1`, id[:]); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

func (r *PlayerRepo) All(ctx context.Context) ([]*world.Player, error) {
	rows, err := r.q.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY row_seq`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var result []*world.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PlayerRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.q, "players")
}

func playerArgs(p *world.Player) []any {
	return []any{
		p.Identity[:], p.Username,
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Rotation.X, p.Rotation.Y, p.Rotation.Z,
		p.Health, p.MaxHealth, p.Mana, p.MaxMana,
		p.IsMoving, p.IsRunning, int64(p.LastInputSeq),
		p.Input, p.LastUpdate, p.Presence,
	}
}

func scanPlayer(row pgx.Row) (*world.Player, error) {
	var (
		p   world.Player
		id  []byte
		seq int64
	)
	err := row.Scan(
		&id, &p.Username,
		&p.Position.X, &p.Position.Y, &p.Position.Z,
		&p.Rotation.X, &p.Rotation.Y, &p.Rotation.Z,
		&p.Health, &p.MaxHealth, &p.Mana, &p.MaxMana,
		&p.IsMoving, &p.IsRunning, &seq,
		&p.Input, &p.LastUpdate, &p.Presence,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan player: %w", err)
	}
	copy(p.Identity[:], id)
	p.LastInputSeq = uint32(seq)
	return &p, nil
}
