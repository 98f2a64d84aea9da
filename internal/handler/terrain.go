package handler

import (
	"context"

	"github.com/infinia/server/internal/store"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

// ChunkData is the payload of StoreTerrainChunk.
type ChunkData struct {
	Key        string    `json:"chunk_key"`
	PlanetType string    `json:"planet_type"`
	X          int32     `json:"x"`
	Y          int32     `json:"y"`
	Z          int32     `json:"z"`
	NoiseData  []float32 `json:"noise_data"`
}

// StoreTerrainChunk inserts the chunk or, when the key exists, replaces its
// noise data and touches last_accessed.
func StoreTerrainChunk(ctx context.Context, c Call, in ChunkData, deps *Deps) error {
	if in.Key == "" {
		return invalid("store_terrain_chunk", "chunk key must not be empty")
	}
	sum := world.NoiseChecksum(in.NoiseData)
	updated := false
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		existing, err := tx.Chunks().Find(ctx, in.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.NoiseData = in.NoiseData
			existing.Checksum = sum
			existing.LastAccessed = c.Timestamp
			updated = true
			return tx.Chunks().Update(ctx, existing)
		}
		updated = false
		return tx.Chunks().Insert(ctx, &world.TerrainChunk{
			Key:          in.Key,
			PlanetType:   in.PlanetType,
			X:            in.X,
			Y:            in.Y,
			Z:            in.Z,
			NoiseData:    in.NoiseData,
			Checksum:     sum,
			CreatedAt:    c.Timestamp,
			LastAccessed: c.Timestamp,
		})
	})
	if err != nil {
		return err
	}
	deps.Log.Debug("terrain chunk stored",
		zap.String("key", in.Key),
		zap.Bool("updated", updated),
		zap.Int("samples", len(in.NoiseData)))
	return nil
}

// GetTerrainChunk returns the chunk and touches last_accessed. A missing key
// returns nil without error.
func GetTerrainChunk(ctx context.Context, c Call, key string, deps *Deps) (*world.TerrainChunk, error) {
	var chunk *world.TerrainChunk
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		chunk, err = tx.Chunks().Find(ctx, key)
		if err != nil || chunk == nil {
			return err
		}
		chunk.LastAccessed = c.Timestamp
		return tx.Chunks().Update(ctx, chunk)
	})
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		deps.Log.Debug("terrain chunk not found", zap.String("key", key))
	}
	return chunk, nil
}

// StoreInitialChunksForPlanet fills the (2r+1)^2 columns around the origin on
// layers -1 and 0 with zero placeholders. Existing keys are kept. Returns the
// number of chunks created.
func StoreInitialChunksForPlanet(ctx context.Context, c Call, planet string, radius int32, deps *Deps) (int, error) {
	const op = "store_initial_chunks_for_planet"
	if planet == "" {
		return 0, invalid(op, "planet type must not be empty")
	}
	if radius < 0 {
		return 0, invalid(op, "radius must not be negative, got %d", radius)
	}

	placeholder := world.PlaceholderNoise()
	sum := world.NoiseChecksum(placeholder)
	created := 0
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		created = 0
		for x := -radius; x <= radius; x++ {
			for z := -radius; z <= radius; z++ {
				for _, y := range world.InitialLayers {
					key := world.ChunkKey(x, y, z, planet)
					existing, err := tx.Chunks().Find(ctx, key)
					if err != nil {
						return err
					}
					if existing != nil {
						continue
					}
					if err := tx.Chunks().Insert(ctx, &world.TerrainChunk{
						Key:          key,
						PlanetType:   planet,
						X:            x,
						Y:            y,
						Z:            z,
						NoiseData:    placeholder,
						Checksum:     sum,
						CreatedAt:    c.Timestamp,
						LastAccessed: c.Timestamp,
					}); err != nil {
						return err
					}
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	deps.Log.Info("initial chunks stored",
		zap.String("planet", planet),
		zap.Int32("radius", radius),
		zap.Int("created", created))
	return created, nil
}

// GetChunkCount returns the number of cached terrain chunks.
func GetChunkCount(ctx context.Context, deps *Deps) (int, error) {
	var n int
	err := deps.Store.Run(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		n, err = tx.Chunks().Count(ctx)
		return err
	})
	return n, err
}
