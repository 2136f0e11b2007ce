package world

import (
	"sort"
	"sync"

	"voxmesh/internal/profiling"
)

// Neighbor slots. The order is fixed: the mesher indexes it positionally per axis.
const (
	NeighborWest  = 0 // -X
	NeighborEast  = 1 // +X
	NeighborNorth = 2 // +Z
	NeighborSouth = 3 // -Z
)

// Neighbors holds up to four horizontal neighbor chunks, nil where absent.
type Neighbors [4]*Chunk

// ChunkStore is the arena of loaded chunks keyed by chunk coordinate.
type ChunkStore struct {
	extents  [3]int
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates a store whose chunks all share extents.
func NewChunkStore(extents [3]int) *ChunkStore {
	checkExtents(extents)
	return &ChunkStore{
		extents: extents,
		chunks:  make(map[ChunkCoord]*Chunk),
	}
}

// Extents returns the chunk extents used by this store.
func (cs *ChunkStore) Extents() [3]int {
	return cs.extents
}

// GetChunk returns the chunk at coord, or nil.
func (cs *ChunkStore) GetChunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// GetOrCreateChunk returns the chunk at coord, creating an all-air chunk if needed.
func (cs *ChunkStore) GetOrCreateChunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	chunk, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	if exists {
		return chunk
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Double-check: another goroutine might have created it while we were waiting for the lock
	if existing, ok := cs.chunks[coord]; ok {
		return existing
	}
	chunk = NewChunk(coord, cs.extents)
	cs.chunks[coord] = chunk
	cs.modCount++
	cs.markNeighborsDirtyLocked(coord)
	return chunk
}

// AddChunk adds a populated chunk, replacing any chunk at the same coordinate.
// The chunk's extents must match the store.
func (cs *ChunkStore) AddChunk(chunk *Chunk) {
	if chunk.Extents != cs.extents {
		panic("world: chunk extents do not match store")
	}
	chunk.Validate()

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.chunks[chunk.Coord] = chunk
	cs.modCount++
	cs.markNeighborsDirtyLocked(chunk.Coord)
}

// RemoveChunk drops the chunk at coord. Returns false if none was loaded.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[coord]; !ok {
		return false
	}
	delete(cs.chunks, coord)
	cs.modCount++
	cs.markNeighborsDirtyLocked(coord)
	return true
}

// Neighbors returns the loaded horizontal neighbors of coord.
func (cs *ChunkStore) Neighbors(coord ChunkCoord) Neighbors {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.neighborsLocked(coord)
}

func (cs *ChunkStore) neighborsLocked(coord ChunkCoord) Neighbors {
	var n Neighbors
	n[NeighborWest] = cs.chunks[ChunkCoord{X: coord.X - 1, Z: coord.Z}]
	n[NeighborEast] = cs.chunks[ChunkCoord{X: coord.X + 1, Z: coord.Z}]
	n[NeighborNorth] = cs.chunks[ChunkCoord{X: coord.X, Z: coord.Z + 1}]
	n[NeighborSouth] = cs.chunks[ChunkCoord{X: coord.X, Z: coord.Z - 1}]
	return n
}

// Loading or unloading a chunk changes what its neighbors see at their borders.
func (cs *ChunkStore) markNeighborsDirtyLocked(coord ChunkCoord) {
	for _, nb := range cs.neighborsLocked(coord) {
		if nb != nil {
			nb.MarkDirty()
		}
	}
}

// ChunkAt returns the chunk containing world block coordinates and the local position inside it.
func (cs *ChunkStore) ChunkAt(x, y, z int) (*Chunk, [3]int) {
	coord := ChunkCoord{X: floorDiv(x, cs.extents[0]), Z: floorDiv(z, cs.extents[2])}
	local := [3]int{mod(x, cs.extents[0]), y, mod(z, cs.extents[2])}
	return cs.GetChunk(coord), local
}

// Get returns the block at world coordinates. Unloaded chunks and out-of-range Y read as air.
func (cs *ChunkStore) Get(x, y, z int) Block {
	chunk, local := cs.ChunkAt(x, y, z)
	if chunk == nil {
		return BlockAir
	}
	return chunk.GetBlock(local[0], local[1], local[2])
}

// Set sets the block at world coordinates, creating the chunk if needed.
// Border edits mark the touching neighbor dirty.
func (cs *ChunkStore) Set(x, y, z int, b Block) {
	if y < 0 || y >= cs.extents[1] {
		return
	}
	coord := ChunkCoord{X: floorDiv(x, cs.extents[0]), Z: floorDiv(z, cs.extents[2])}
	chunk := cs.GetOrCreateChunk(coord)
	lx, lz := mod(x, cs.extents[0]), mod(z, cs.extents[2])
	chunk.SetBlock(lx, y, lz, b)

	nbs := cs.Neighbors(coord)
	if lx == 0 && nbs[NeighborWest] != nil {
		nbs[NeighborWest].MarkDirty()
	} else if lx == cs.extents[0]-1 && nbs[NeighborEast] != nil {
		nbs[NeighborEast].MarkDirty()
	}
	if lz == 0 && nbs[NeighborSouth] != nil {
		nbs[NeighborSouth].MarkDirty()
	} else if lz == cs.extents[2]-1 && nbs[NeighborNorth] != nil {
		nbs[NeighborNorth].MarkDirty()
	}
}

// AllChunks returns every loaded chunk ordered by coordinate.
func (cs *ChunkStore) AllChunks() []*Chunk {
	cs.mu.RLock()
	chunks := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		chunks = append(chunks, c)
	}
	cs.mu.RUnlock()
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Coord.Less(chunks[j].Coord) })
	return chunks
}

// DirtyChunks returns the coordinates of chunks that need remeshing, ordered by coordinate.
func (cs *ChunkStore) DirtyChunks() []ChunkCoord {
	defer profiling.Track("world.DirtyChunks")()
	var out []ChunkCoord
	for _, c := range cs.AllChunks() {
		if c.IsDirty() {
			out = append(out, c.Coord)
		}
	}
	return out
}

// Len returns the number of loaded chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// EvictFarChunks removes chunks outside the given radius from the store.
// Returns number of removed chunks.
func (cs *ChunkStore) EvictFarChunks(cx, cz, radius int) int {
	defer profiling.Track("world.EvictFarChunks")()
	var removed []ChunkCoord
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for coord := range cs.chunks {
		dx := coord.X - cx
		dz := coord.Z - cz
		if dx*dx+dz*dz > radius*radius {
			delete(cs.chunks, coord)
			cs.modCount++
			removed = append(removed, coord)
		}
	}
	// Survivors that lost a neighbor now expose a different border.
	for _, coord := range removed {
		cs.markNeighborsDirtyLocked(coord)
	}
	return len(removed)
}

// LockForMeshing read-locks the chunk and its neighbors in coordinate order
// and returns the matching unlock function.
func LockForMeshing(chunk *Chunk, neighbors Neighbors) func() {
	locked := make([]*Chunk, 0, 5)
	locked = append(locked, chunk)
	for _, nb := range neighbors {
		if nb != nil && nb != chunk {
			locked = append(locked, nb)
		}
	}
	sort.Slice(locked, func(i, j int) bool { return locked[i].Coord.Less(locked[j].Coord) })
	for _, c := range locked {
		c.RLock()
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].RUnlock()
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
