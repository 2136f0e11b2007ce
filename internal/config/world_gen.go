package config

import "sync"

// WorldGenSettings holds world generation configuration
type WorldGenSettings struct {
	mu      sync.RWMutex
	seed    int64
	radius  int // in chunks
	extents [3]int
}

// MaxWorldRadius is the largest generation radius in chunks.
const MaxWorldRadius = 32

var globalWorldGenSettings = &WorldGenSettings{
	seed:    1337,
	radius:  4,
	extents: [3]int{16, 32, 16},
}

// Seed returns the terrain seed
func Seed() int64 {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seed
}

// SetSeed sets the terrain seed
func SetSeed(seed int64) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seed = seed
}

// WorldRadius returns the generation radius in chunks
func WorldRadius() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.radius
}

// SetWorldRadius sets the generation radius in chunks
func SetWorldRadius(radius int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()

	if radius < 0 {
		radius = 0
	}
	if radius > MaxWorldRadius {
		radius = MaxWorldRadius
	}

	globalWorldGenSettings.radius = radius
}

// ChunkExtents returns the chunk extents used for new worlds
func ChunkExtents() [3]int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.extents
}

// SetChunkExtents sets the chunk extents used for new worlds. Callers
// validate the values first.
func SetChunkExtents(extents [3]int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.extents = extents
}
