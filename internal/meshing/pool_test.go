package meshing

import (
	"context"
	"errors"
	"testing"
	"time"

	"voxmesh/internal/registry"
	"voxmesh/internal/world"
)

func newTestStore(t *testing.T) *world.ChunkStore {
	t.Helper()
	store := world.NewChunkStore(cube8)
	gen := world.NewGenerator(42)
	gen.GenerateArea(store, world.ChunkCoord{}, 1)
	return store
}

func TestWorkerPoolMatchesDirectMeshing(t *testing.T) {
	store := newTestStore(t)
	reg := registry.Default()
	pool := NewWorkerPool(store, reg, 4, 16)
	defer pool.Shutdown()

	coords := []world.ChunkCoord{}
	for _, c := range store.AllChunks() {
		coords = append(coords, c.Coord)
	}
	results := make(chan MeshResult, len(coords))
	for _, coord := range coords {
		if err := pool.SubmitJobBlocking(context.Background(), MeshJob{Coord: coord, ResultChan: results}); err != nil {
			t.Fatalf("submit %v: %v", coord, err)
		}
	}

	got := make(map[world.ChunkCoord]MeshResult)
	for range coords {
		select {
		case r := <-results:
			if r.Error != nil {
				t.Fatalf("mesh %v: %v", r.Coord, r.Error)
			}
			got[r.Coord] = r
		case <-time.After(10 * time.Second):
			t.Fatalf("timed out waiting for mesh results")
		}
	}

	for _, coord := range coords {
		chunk := store.GetChunk(coord)
		if chunk.IsDirty() {
			t.Fatalf("chunk %v still dirty after meshing", coord)
		}
		// Mesh a copy so the stored mesh is left alone.
		ref := world.NewChunkFromBlocks(coord, chunk.Extents, append([]world.Block(nil), chunk.Blocks...))
		MeshChunk(ref, store.Neighbors(coord), reg)

		r := got[coord]
		if len(r.Vertices) != len(ref.Mesh) {
			t.Fatalf("chunk %v: pool produced %d vertices, direct %d", coord, len(r.Vertices), len(ref.Mesh))
		}
		for i := range ref.Mesh {
			if r.Vertices[i] != ref.Mesh[i] {
				t.Fatalf("chunk %v: vertex %d differs", coord, i)
			}
		}
		if r.Stats.Quads != len(ref.Mesh)/4 {
			t.Fatalf("chunk %v: stats report %d quads, want %d", coord, r.Stats.Quads, len(ref.Mesh)/4)
		}
	}
}

func TestWorkerPoolMissingChunk(t *testing.T) {
	pool := NewWorkerPool(world.NewChunkStore(cube8), nil, 1, 4)
	defer pool.Shutdown()

	results := make(chan MeshResult, 1)
	coord := world.ChunkCoord{X: 9, Z: 9}
	if !pool.SubmitJob(MeshJob{Coord: coord, ResultChan: results}) {
		t.Fatalf("SubmitJob refused")
	}
	select {
	case r := <-results:
		if r.Error == nil {
			t.Fatalf("expected error for missing chunk")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out")
	}
}

func TestWorkerPoolPendingSet(t *testing.T) {
	pool := &WorkerPool{pending: make(map[world.ChunkCoord]struct{})}
	coord := world.ChunkCoord{X: 1, Z: 2}

	if !pool.reserve(coord) {
		t.Fatalf("first reserve failed")
	}
	if !pool.Pending(coord) {
		t.Fatalf("coord not pending after reserve")
	}
	if pool.reserve(coord) {
		t.Fatalf("second reserve succeeded while pending")
	}
	pool.release(coord)
	if pool.Pending(coord) {
		t.Fatalf("coord pending after release")
	}
	if !pool.reserve(coord) {
		t.Fatalf("reserve after release failed")
	}
}

func TestWorkerPoolRejectsDuplicate(t *testing.T) {
	store := world.NewChunkStore(cube8)
	store.GetOrCreateChunk(world.ChunkCoord{})
	// No workers are started, so jobs stay queued.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool := &WorkerPool{
		store:    store,
		jobQueue: make(chan MeshJob, 1),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[world.ChunkCoord]struct{}),
	}

	job := MeshJob{Coord: world.ChunkCoord{}}
	if !pool.SubmitJob(job) {
		t.Fatalf("first submit refused")
	}
	if pool.SubmitJob(job) {
		t.Fatalf("duplicate submit accepted")
	}
	err := pool.SubmitJobBlocking(context.Background(), job)
	if !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("blocking duplicate: got %v, want ErrAlreadyPending", err)
	}

	other := MeshJob{Coord: world.ChunkCoord{X: 1}}
	if pool.SubmitJob(other) {
		t.Fatalf("submit to full queue accepted")
	}
	if pool.Pending(other.Coord) {
		t.Fatalf("rejected job left pending")
	}
	if pool.QueueLength() != 1 {
		t.Fatalf("queue length = %d, want 1", pool.QueueLength())
	}
}

func TestWorkerPoolShutdownClearsPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// No workers are started, so the job is still queued at shutdown.
	pool := &WorkerPool{
		store:    world.NewChunkStore(cube8),
		jobQueue: make(chan MeshJob, 4),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[world.ChunkCoord]struct{}),
	}
	coord := world.ChunkCoord{X: 3, Z: 4}
	if !pool.SubmitJob(MeshJob{Coord: coord}) {
		t.Fatalf("submit refused")
	}
	if !pool.Pending(coord) {
		t.Fatalf("coord not pending after submit")
	}
	pool.Shutdown()
	if pool.Pending(coord) {
		t.Fatalf("dropped job still pending after shutdown")
	}
}

func TestWorkerPoolShutdown(t *testing.T) {
	pool := NewWorkerPool(world.NewChunkStore(cube8), nil, 2, 4)
	pool.Shutdown()
	if pool.SubmitJob(MeshJob{}) {
		t.Fatalf("submit after shutdown accepted")
	}
	if err := pool.SubmitJobBlocking(context.Background(), MeshJob{}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("blocking submit after shutdown: got %v", err)
	}
}
