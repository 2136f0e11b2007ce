package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testExtents = [3]int{8, 8, 8}

func cleanAll(cs *ChunkStore) {
	for _, c := range cs.AllChunks() {
		c.SetClean()
	}
}

func TestChunkStoreNeighborSlots(t *testing.T) {
	cs := NewChunkStore(testExtents)
	center := cs.GetOrCreateChunk(ChunkCoord{})
	west := cs.GetOrCreateChunk(ChunkCoord{X: -1})
	east := cs.GetOrCreateChunk(ChunkCoord{X: 1})
	north := cs.GetOrCreateChunk(ChunkCoord{Z: 1})

	nb := cs.Neighbors(center.Coord)
	assert.Same(t, west, nb[NeighborWest])
	assert.Same(t, east, nb[NeighborEast])
	assert.Same(t, north, nb[NeighborNorth])
	assert.Nil(t, nb[NeighborSouth])
}

func TestChunkStoreWorldCoordinates(t *testing.T) {
	cs := NewChunkStore(testExtents)

	cs.Set(-1, 2, -9, BlockStone)
	chunk, local := cs.ChunkAt(-1, 2, -9)
	require.NotNil(t, chunk)
	assert.Equal(t, ChunkCoord{X: -1, Z: -2}, chunk.Coord)
	assert.Equal(t, [3]int{7, 2, 7}, local)
	assert.Equal(t, BlockStone, cs.Get(-1, 2, -9))
	assert.Equal(t, BlockAir, cs.Get(100, 2, 100), "unloaded chunk reads as air")

	cs.Set(0, -1, 0, BlockStone)
	cs.Set(0, 8, 0, BlockStone)
	assert.Equal(t, 1, cs.Len(), "out-of-range y creates nothing")
}

func TestChunkStoreBorderEditMarksNeighborDirty(t *testing.T) {
	cs := NewChunkStore(testExtents)
	cs.GetOrCreateChunk(ChunkCoord{})
	cs.GetOrCreateChunk(ChunkCoord{X: 1})
	cs.GetOrCreateChunk(ChunkCoord{Z: -1})
	cleanAll(cs)

	cs.Set(3, 1, 3, BlockDirt)
	assert.Equal(t, []ChunkCoord{{}}, cs.DirtyChunks(), "interior edit only dirties its own chunk")

	cleanAll(cs)
	cs.Set(7, 1, 0, BlockDirt)
	assert.ElementsMatch(t, []ChunkCoord{{}, {X: 1}, {Z: -1}}, cs.DirtyChunks())
}

func TestChunkStoreLoadMarksNeighborsDirty(t *testing.T) {
	cs := NewChunkStore(testExtents)
	cs.GetOrCreateChunk(ChunkCoord{})
	cleanAll(cs)

	cs.AddChunk(NewChunk(ChunkCoord{X: 1}, testExtents))
	assert.True(t, cs.GetChunk(ChunkCoord{}).IsDirty())

	cleanAll(cs)
	assert.True(t, cs.RemoveChunk(ChunkCoord{X: 1}))
	assert.False(t, cs.RemoveChunk(ChunkCoord{X: 1}))
	assert.True(t, cs.GetChunk(ChunkCoord{}).IsDirty())
}

func TestChunkStoreRejectsForeignExtents(t *testing.T) {
	cs := NewChunkStore(testExtents)
	assert.Panics(t, func() { cs.AddChunk(NewChunk(ChunkCoord{}, [3]int{4, 4, 4})) })
}

func TestChunkStoreEvictFarChunks(t *testing.T) {
	cs := NewChunkStore(testExtents)
	for x := -3; x <= 3; x++ {
		cs.GetOrCreateChunk(ChunkCoord{X: x})
	}
	cleanAll(cs)
	before := cs.GetModCount()

	removed := cs.EvictFarChunks(0, 0, 2)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 5, cs.Len())
	assert.Equal(t, before+2, cs.GetModCount())
	assert.ElementsMatch(t, []ChunkCoord{{X: -2}, {X: 2}}, cs.DirtyChunks())
}

func TestChunkStoreAllChunksSorted(t *testing.T) {
	cs := NewChunkStore(testExtents)
	cs.GetOrCreateChunk(ChunkCoord{X: 1, Z: 0})
	cs.GetOrCreateChunk(ChunkCoord{X: -1, Z: 4})
	cs.GetOrCreateChunk(ChunkCoord{X: 1, Z: -2})

	var coords []ChunkCoord
	for _, c := range cs.AllChunks() {
		coords = append(coords, c.Coord)
	}
	assert.Equal(t, []ChunkCoord{{X: -1, Z: 4}, {X: 1, Z: -2}, {X: 1, Z: 0}}, coords)
}

func TestChunkStoreConcurrentCreate(t *testing.T) {
	cs := NewChunkStore(testExtents)
	var wg sync.WaitGroup
	got := make([]*Chunk, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = cs.GetOrCreateChunk(ChunkCoord{X: 5, Z: 5})
		}(i)
	}
	wg.Wait()
	for _, c := range got {
		assert.Same(t, got[0], c)
	}
	assert.Equal(t, 1, cs.Len())
}

func TestLockForMeshingBlocksWriters(t *testing.T) {
	cs := NewChunkStore(testExtents)
	center := cs.GetOrCreateChunk(ChunkCoord{})
	east := cs.GetOrCreateChunk(ChunkCoord{X: 1})

	unlock := LockForMeshing(center, cs.Neighbors(center.Coord))
	done := make(chan struct{})
	go func() {
		east.SetBlock(0, 0, 0, BlockStone)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("write to neighbor went through while it was locked for meshing")
	default:
	}
	unlock()
	<-done
	assert.Equal(t, BlockStone, east.GetBlock(0, 0, 0))
}
