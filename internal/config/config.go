package config

import "sync"

// MesherSettings holds mesh worker configuration
type MesherSettings struct {
	mu        sync.RWMutex
	workers   int
	queueSize int
}

var globalMesherSettings = &MesherSettings{
	workers:   4,   // default value
	queueSize: 256, // default value
}

// MeshWorkers returns the number of mesh worker goroutines
func MeshWorkers() int {
	globalMesherSettings.mu.RLock()
	defer globalMesherSettings.mu.RUnlock()
	return globalMesherSettings.workers
}

// SetMeshWorkers sets the number of mesh worker goroutines
func SetMeshWorkers(workers int) {
	globalMesherSettings.mu.Lock()
	defer globalMesherSettings.mu.Unlock()

	// Clamp to reasonable values
	if workers < 1 {
		workers = 1
	}
	if workers > 64 {
		workers = 64
	}

	globalMesherSettings.workers = workers
}

// QueueSize returns the capacity of the mesh job queue
func QueueSize() int {
	globalMesherSettings.mu.RLock()
	defer globalMesherSettings.mu.RUnlock()
	return globalMesherSettings.queueSize
}

// SetQueueSize sets the capacity of the mesh job queue
func SetQueueSize(size int) {
	globalMesherSettings.mu.Lock()
	defer globalMesherSettings.mu.Unlock()

	if size < 16 {
		size = 16
	}
	if size > 4096 {
		size = 4096
	}

	globalMesherSettings.queueSize = size
}
