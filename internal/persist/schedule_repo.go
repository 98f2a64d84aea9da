package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/infinia/server/internal/world"
	"github.com/jackc/pgx/v5"
)

type ScheduleRepo struct {
	q querier
}

func (r *ScheduleRepo) First(ctx context.Context) (*world.TickSchedule, error) {
	var (
		s      world.TickSchedule
		id, ms int64
	)
	err := r.q.QueryRow(ctx,
		`SELECT scheduled_id, interval_ms, created_at
		 FROM game_tick_schedule ORDER BY scheduled_id LIMIT 1`,
	).Scan(&id, &ms, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	s.ID = uint64(id)
	s.Interval = time.Duration(ms) * time.Millisecond
	return &s, nil
}

// Insert lets the sequence assign the ID when s.ID is zero.
func (r *ScheduleRepo) Insert(ctx context.Context, s *world.TickSchedule) error {
	var id int64
	var err error
	if s.ID == 0 {
		err = r.q.QueryRow(ctx,
			`INSERT INTO game_tick_schedule (interval_ms, created_at)
			 VALUES ($1, $2) RETURNING scheduled_id`,
			s.Interval.Milliseconds(), s.CreatedAt,
		).Scan(&id)
	} else {
		err = r.q.QueryRow(ctx,
			`INSERT INTO game_tick_schedule (scheduled_id, interval_ms, created_at)
			 VALUES ($1, $2, $3) RETURNING scheduled_id`,
			int64(s.ID), s.Interval.Milliseconds(), s.CreatedAt,
		).Scan(&id)
	}
	if err != nil {
		return mapInsertErr("insert schedule", err)
	}
	s.ID = uint64(id)
	return nil
}
