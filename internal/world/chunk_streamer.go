package world

import (
	"sync"

	"voxmesh/internal/profiling"
)

// ChunkStreamer manages asynchronous chunk generation around a center chunk.
type ChunkStreamer struct {
	jobs       chan ChunkCoord
	pending    map[ChunkCoord]struct{}
	pendingMu  sync.Mutex
	maxPending int
	inflight   sync.WaitGroup
	closeOnce  sync.Once

	maxJobsPerCall int

	// Dependencies
	store *ChunkStore
	gen   *Generator
}

// NewChunkStreamer creates a streamer with the given number of generation workers.
func NewChunkStreamer(store *ChunkStore, gen *Generator, workers int) *ChunkStreamer {
	cs := &ChunkStreamer{
		jobs:           make(chan ChunkCoord, 1024),
		pending:        make(map[ChunkCoord]struct{}),
		maxJobsPerCall: 1024,
		maxPending:     4096,
		store:          store,
		gen:            gen,
	}

	for i := 0; i < max(workers, 1); i++ {
		go cs.worker()
	}

	return cs
}

// Close stops the background generation workers.
func (cs *ChunkStreamer) Close() {
	cs.closeOnce.Do(func() { close(cs.jobs) })
}

// Wait blocks until every queued chunk has been generated.
func (cs *ChunkStreamer) Wait() {
	cs.inflight.Wait()
}

func (cs *ChunkStreamer) worker() {
	for coord := range cs.jobs {
		cs.generateChunkSync(coord)
		cs.pendingMu.Lock()
		delete(cs.pending, coord)
		cs.pendingMu.Unlock()
		cs.inflight.Done()
	}
}

// generateChunkSync builds and installs a chunk if missing.
func (cs *ChunkStreamer) generateChunkSync(coord ChunkCoord) bool {
	if cs.store.GetChunk(coord) != nil {
		return false
	}

	chunk := NewChunk(coord, cs.store.Extents())
	cs.gen.PopulateChunk(chunk)

	cs.store.AddChunk(chunk)
	return true
}

// StreamChunksAroundSync generates every missing chunk within radius of center
// and returns how many were created.
func (cs *ChunkStreamer) StreamChunksAroundSync(center ChunkCoord, radius int) int {
	defer profiling.Track("world.StreamChunksAroundSync")()
	n := 0
	cs.forEachRing(center, radius, func(coord ChunkCoord) bool {
		if cs.generateChunkSync(coord) {
			n++
		}
		return true
	})
	return n
}

// StreamChunksAroundAsync queues missing chunks nearest-first and returns how
// many were queued. Call Wait to block until they are in the store.
func (cs *ChunkStreamer) StreamChunksAroundAsync(center ChunkCoord, radius int) int {
	defer profiling.Track("world.StreamChunksAroundAsync")()
	jobsPushed := 0
	cs.forEachRing(center, radius, func(coord ChunkCoord) bool {
		if cs.requestChunkLimited(coord) {
			jobsPushed++
		}
		return jobsPushed < cs.maxJobsPerCall
	})
	return jobsPushed
}

// forEachRing visits the chunks within radius ring by ring, starting at
// center. It stops early when fn returns false.
func (cs *ChunkStreamer) forEachRing(center ChunkCoord, radius int, fn func(ChunkCoord) bool) {
	cx, cz := center.X, center.Z
	visit := func(x, z int) bool {
		dx, dz := x-cx, z-cz
		if dx*dx+dz*dz > radius*radius {
			return true
		}
		return fn(ChunkCoord{X: x, Z: z})
	}

	for r := 0; r <= radius; r++ {
		if r == 0 {
			if !visit(cx, cz) {
				return
			}
			continue
		}

		x0 := cx - r
		x1 := cx + r
		z0 := cz - r
		z1 := cz + r

		for xk := x0; xk <= x1; xk++ {
			if !visit(xk, z0) {
				return
			}
		}
		for zk := z0 + 1; zk <= z1-1; zk++ {
			if !visit(x1, zk) {
				return
			}
		}
		for xk := x1; xk >= x0; xk-- {
			if !visit(xk, z1) {
				return
			}
		}
		for zk := z1 - 1; zk >= z0+1; zk-- {
			if !visit(x0, zk) {
				return
			}
		}
	}
}

// requestChunkLimited respects pending cap and returns true if enqueued.
func (cs *ChunkStreamer) requestChunkLimited(coord ChunkCoord) bool {
	// already present?
	if cs.store.GetChunk(coord) != nil {
		return false
	}

	// pending check + cap
	cs.pendingMu.Lock()
	if _, ok := cs.pending[coord]; ok {
		cs.pendingMu.Unlock()
		return false
	}
	if cs.maxPending > 0 && len(cs.pending) >= cs.maxPending {
		cs.pendingMu.Unlock()
		return false
	}
	cs.pending[coord] = struct{}{}
	cs.pendingMu.Unlock()

	cs.inflight.Add(1)
	select {
	case cs.jobs <- coord:
		return true
	default:
		// queue full: rollback
		cs.inflight.Done()
		cs.pendingMu.Lock()
		delete(cs.pending, coord)
		cs.pendingMu.Unlock()
		return false
	}
}

// EvictFarChunks removes chunks outside radius of center.
func (cs *ChunkStreamer) EvictFarChunks(center ChunkCoord, radius int) int {
	return cs.store.EvictFarChunks(center.X, center.Z, radius)
}
