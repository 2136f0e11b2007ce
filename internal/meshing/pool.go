package meshing

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"voxmesh/internal/logging"
	"voxmesh/internal/profiling"
	"voxmesh/internal/world"
)

var log = logging.Component("pool")

var (
	jobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxmesh",
		Subsystem: "mesher",
		Name:      "jobs_total",
		Help:      "Mesh jobs processed, by outcome.",
	}, []string{"outcome"})
	quadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "voxmesh",
		Subsystem: "mesher",
		Name:      "quads_total",
		Help:      "Quads emitted by mesh workers.",
	})
	rejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "voxmesh",
		Subsystem: "mesher",
		Name:      "rejected_total",
		Help:      "Jobs refused because the queue was full or the chunk was already pending.",
	})
)

func init() {
	prometheus.MustRegister(jobsTotal, quadsTotal, rejectedTotal)
}

// ErrPoolClosed is returned when submitting to a pool that has shut down.
var ErrPoolClosed = errors.New("meshing: worker pool is shut down")

// ErrAlreadyPending is returned when a chunk already has a job in flight.
var ErrAlreadyPending = errors.New("meshing: chunk already pending")

// MeshJob represents a meshing job request
type MeshJob struct {
	Coord world.ChunkCoord
	// Result channel - will be sent the result when done
	ResultChan chan MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord world.ChunkCoord
	// Vertices is a copy of the chunk's mesh taken while it was locked.
	Vertices []Vertex
	Stats    Stats
	Duration time.Duration
	Error    error
}

// WorkerPool manages goroutines for mesh generation. At most one job per
// chunk is queued or running at a time.
type WorkerPool struct {
	store    *world.ChunkStore
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	pendingMu sync.Mutex
	pending   map[world.ChunkCoord]struct{}
}

// NewWorkerPool creates a new mesh worker pool over store
func NewWorkerPool(store *world.ChunkStore, textures TextureLookup, workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		store:    store,
		jobQueue: make(chan MeshJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[world.ChunkCoord]struct{}),
	}

	// Start worker goroutines
	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i, NewMesher(textures))
	}
	log.Debugf("started %d workers, queue size %d", workers, queueSize)

	return pool
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if the queue is full,
// the chunk is already pending or the pool is shut down
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	if p.ctx.Err() != nil || !p.reserve(job.Coord) {
		rejectedTotal.Inc()
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		p.release(job.Coord)
		rejectedTotal.Inc()
		return false // Queue is full
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued, ctx is done
// or the pool shuts down
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job MeshJob) error {
	if p.ctx.Err() != nil {
		return ErrPoolClosed
	}
	if !p.reserve(job.Coord) {
		rejectedTotal.Inc()
		return errors.Wrapf(ErrAlreadyPending, "chunk %v", job.Coord)
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		p.release(job.Coord)
		return ctx.Err()
	case <-p.ctx.Done():
		p.release(job.Coord)
		return ErrPoolClosed
	}
}

// Pending reports whether a job for coord is queued or running.
func (p *WorkerPool) Pending(coord world.ChunkCoord) bool {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	_, ok := p.pending[coord]
	return ok
}

func (p *WorkerPool) reserve(coord world.ChunkCoord) bool {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	if _, ok := p.pending[coord]; ok {
		return false
	}
	p.pending[coord] = struct{}{}
	return true
}

func (p *WorkerPool) release(coord world.ChunkCoord) {
	p.pendingMu.Lock()
	delete(p.pending, coord)
	p.pendingMu.Unlock()
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker(id int, m *Mesher) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			result := p.process(m, job.Coord)
			p.release(job.Coord)
			if result.Error != nil {
				log.Warnf("worker %d: %v", id, result.Error)
			}

			// Send result back
			if job.ResultChan == nil {
				continue
			}
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// process meshes one chunk while it and its neighbors are read-locked.
func (p *WorkerPool) process(m *Mesher, coord world.ChunkCoord) MeshResult {
	defer profiling.Track("meshing.Job")()
	start := time.Now()

	chunk := p.store.GetChunk(coord)
	if chunk == nil {
		jobsTotal.WithLabelValues("missing").Inc()
		return MeshResult{Coord: coord, Error: errors.Errorf("chunk %v not loaded", coord)}
	}
	neighbors := p.store.Neighbors(coord)

	unlock := world.LockForMeshing(chunk, neighbors)
	// Cleared before meshing so an edit that lands after unlock marks it dirty again.
	chunk.SetClean()
	m.MeshChunk(chunk, neighbors)
	vertices := make([]Vertex, len(chunk.Mesh))
	copy(vertices, chunk.Mesh)
	unlock()

	stats := Summarize(vertices)
	jobsTotal.WithLabelValues("ok").Inc()
	quadsTotal.Add(float64(stats.Quads))
	return MeshResult{
		Coord:    coord,
		Vertices: vertices,
		Stats:    stats,
		Duration: time.Since(start),
	}
}

// Shutdown stops the workers and waits for them to exit. Queued jobs that
// have not started are dropped and no longer count as pending.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()

	p.pendingMu.Lock()
	clear(p.pending)
	p.pendingMu.Unlock()
}

// QueueLength returns the current number of jobs in the queue
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
