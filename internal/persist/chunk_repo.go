package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/infinia/server/internal/world"
	"github.com/jackc/pgx/v5"
)

type ChunkRepo struct {
	q querier
}

func (r *ChunkRepo) Find(ctx context.Context, key string) (*world.TerrainChunk, error) {
	var (
		c        world.TerrainChunk
		checksum int64
	)
	err := r.q.QueryRow(ctx,
		`SELECT chunk_key, planet_type, chunk_x, chunk_y, chunk_z,
		        noise_data, checksum, created_at, last_accessed
		 FROM terrain_chunks WHERE chunk_key = $1`, key,
	).Scan(
		&c.Key, &c.PlanetType, &c.X, &c.Y, &c.Z,
		&c.NoiseData, &checksum, &c.CreatedAt, &c.LastAccessed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find chunk: %w", err)
	}
	c.Checksum = uint64(checksum)
	return &c, nil
}

func (r *ChunkRepo) Insert(ctx context.Context, c *world.TerrainChunk) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO terrain_chunks
		        (chunk_key, planet_type, chunk_x, chunk_y, chunk_z,
		         noise_data, checksum, created_at, last_accessed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.Key, c.PlanetType, c.X, c.Y, c.Z,
		c.NoiseData, int64(c.Checksum), c.CreatedAt, c.LastAccessed,
	)
	if err != nil {
		return mapInsertErr("insert chunk", err)
	}
	return nil
}

func (r *ChunkRepo) Update(ctx context.Context, c *world.TerrainChunk) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE terrain_chunks SET planet_type = $2, chunk_x = $3, chunk_y = $4, chunk_z = $5,
		        noise_data = $6, checksum = $7, created_at = $8, last_accessed = $9
		 WHERE chunk_key = $1`,
		c.Key, c.PlanetType, c.X, c.Y, c.Z,
		c.NoiseData, int64(c.Checksum), c.CreatedAt, c.LastAccessed,
	)
	if err != nil {
		return fmt.Errorf("update chunk: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update chunk %s: not found", c.Key)
	}
	return nil
}

func (r *ChunkRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.q, "terrain_chunks")
}
