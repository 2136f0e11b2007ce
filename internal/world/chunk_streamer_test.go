package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamChunksAroundSync(t *testing.T) {
	store := NewChunkStore(testExtents)
	cs := NewChunkStreamer(store, NewGenerator(11), 2)
	defer cs.Close()

	// 13 chunks lie within a radius of 2
	assert.Equal(t, 13, cs.StreamChunksAroundSync(ChunkCoord{X: 3, Z: -3}, 2))
	assert.Equal(t, 13, store.Len())
	assert.NotNil(t, store.GetChunk(ChunkCoord{X: 5, Z: -3}))
	assert.Nil(t, store.GetChunk(ChunkCoord{X: 5, Z: -1}))

	assert.Zero(t, cs.StreamChunksAroundSync(ChunkCoord{X: 3, Z: -3}, 2), "loaded chunks are skipped")
}

func TestStreamChunksAroundAsync(t *testing.T) {
	store := NewChunkStore(testExtents)
	cs := NewChunkStreamer(store, NewGenerator(11), 4)
	defer cs.Close()

	queued := cs.StreamChunksAroundAsync(ChunkCoord{}, 3)
	cs.Wait()
	assert.Equal(t, 29, queued)
	assert.Equal(t, 29, store.Len())

	ref := NewChunk(ChunkCoord{X: 1, Z: 2}, testExtents)
	NewGenerator(11).PopulateChunk(ref)
	assert.Equal(t, ref.Blocks, store.GetChunk(ChunkCoord{X: 1, Z: 2}).Blocks, "async chunks match direct generation")

	assert.Equal(t, 24, cs.EvictFarChunks(ChunkCoord{}, 1))
	assert.Equal(t, 5, store.Len())
}

func TestForEachRingVisitsNearestFirst(t *testing.T) {
	cs := &ChunkStreamer{}
	var order []ChunkCoord
	cs.forEachRing(ChunkCoord{}, 1, func(c ChunkCoord) bool {
		order = append(order, c)
		return true
	})
	assert.Equal(t, ChunkCoord{}, order[0])
	assert.Len(t, order, 5)
}
