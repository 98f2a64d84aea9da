package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/infinia/server/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// Store runs every unit of work as one SERIALIZABLE transaction.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	// no-op after a successful commit
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{
		players:   &PlayerRepo{q: tx},
		loggedOut: &LoggedOutRepo{q: tx},
		chunks:    &ChunkRepo{q: tx},
		schedules: &ScheduleRepo{q: tx},
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		s.db.log.Warn("commit failed", zap.Error(err))
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// querier is the subset of pgx.Tx the repos use.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgTx struct {
	players   *PlayerRepo
	loggedOut *LoggedOutRepo
	chunks    *ChunkRepo
	schedules *ScheduleRepo
}

func (t *pgTx) Players() store.PlayerTable      { return t.players }
func (t *pgTx) LoggedOut() store.LoggedOutTable { return t.loggedOut }
func (t *pgTx) Chunks() store.ChunkTable        { return t.chunks }
func (t *pgTx) Schedules() store.ScheduleTable  { return t.schedules }

// mapInsertErr turns a unique violation into store.ErrCollision.
func mapInsertErr(what string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", what, pgErr.ConstraintName, store.ErrCollision)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func count(ctx context.Context, q querier, table string) (int, error) {
	var n int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return int(n), nil
}
