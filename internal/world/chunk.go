package world

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/zeebo/xxh3"
)

// ChunkSize is the edge length of a terrain chunk in cells. Noise maps carry
// one extra sample per axis.
const ChunkSize = 32

// PlaceholderSamples is the length of a flattened (ChunkSize+1)^3 noise map.
const PlaceholderSamples = (ChunkSize + 1) * (ChunkSize + 1) * (ChunkSize + 1)

// InitialLayers are the vertical chunk layers seeded around a planet origin.
var InitialLayers = [2]int32{-1, 0}

// TerrainChunk is a cached noise field for one chunk of a planet.
type TerrainChunk struct {
	Key          string    `json:"chunk_key"`
	PlanetType   string    `json:"planet_type"`
	X            int32     `json:"x"`
	Y            int32     `json:"y"`
	Z            int32     `json:"z"`
	NoiseData    []float32 `json:"noise_data"`
	Checksum     uint64    `json:"checksum"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
}

// ChunkKey formats the composite key "x,y,z_planet".
func ChunkKey(x, y, z int32, planet string) string {
	return fmt.Sprintf("%d,%d,%d_%s", x, y, z, planet)
}

// NoiseChecksum hashes the raw IEEE-754 bytes of a noise field so clients can
// skip downloading chunks they already hold.
func NoiseChecksum(data []float32) uint64 {
	buf := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return xxh3.Hash(buf)
}

// PlaceholderNoise returns an all-zero noise field; real noise is generated
// client side.
func PlaceholderNoise() []float32 {
	return make([]float32, PlaceholderSamples)
}
