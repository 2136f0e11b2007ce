package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	a := NewChunk(ChunkCoord{X: 3, Z: -2}, DefaultExtents)
	b := NewChunk(ChunkCoord{X: 3, Z: -2}, DefaultExtents)
	NewGenerator(7).PopulateChunk(a)
	NewGenerator(7).PopulateChunk(b)
	assert.Equal(t, a.Blocks, b.Blocks)
}

func TestGeneratorColumns(t *testing.T) {
	g := NewGenerator(99)
	c := NewChunk(ChunkCoord{X: -1, Z: 1}, DefaultExtents)
	g.PopulateChunk(c)
	require.True(t, c.IsDirty())

	for x := 0; x < ChunkSizeX; x++ {
		for z := 0; z < ChunkSizeZ; z++ {
			top := g.HeightAt(c.Coord.X*ChunkSizeX+x, c.Coord.Z*ChunkSizeZ+z, ChunkSizeY)
			require.GreaterOrEqual(t, top, 1)
			require.LessOrEqual(t, top, ChunkSizeY-2)

			assert.Equal(t, BlockBedrock, c.GetBlock(x, 0, z))
			assert.Equal(t, BlockGrass, c.GetBlock(x, top, z))
			above := c.GetBlock(x, top+1, z)
			assert.Contains(t, []Block{BlockAir, BlockFlower}, above)
			for y := top + 2; y < ChunkSizeY; y++ {
				require.Equal(t, BlockAir, c.GetBlock(x, y, z), "column (%d,%d) y=%d", x, z, y)
			}
		}
	}
}

func TestGeneratorShortChunkStaysEmpty(t *testing.T) {
	c := NewChunk(ChunkCoord{}, [3]int{4, 2, 4})
	NewGenerator(1).PopulateChunk(c)
	assert.Zero(t, c.SolidCount())
}

func TestGenerateArea(t *testing.T) {
	cs := NewChunkStore(DefaultExtents)
	n := NewGenerator(5).GenerateArea(cs, ChunkCoord{X: 10, Z: 10}, 1)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, cs.Len())
	assert.NotNil(t, cs.GetChunk(ChunkCoord{X: 11, Z: 10}))
	assert.Nil(t, cs.GetChunk(ChunkCoord{X: 11, Z: 11}), "corner lies outside radius 1")
}

func BenchmarkPopulateChunk(b *testing.B) {
	g := NewGenerator(1)
	ch := NewChunk(ChunkCoord{}, DefaultExtents)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.PopulateChunk(ch)
	}
}

func BenchmarkHeightAt(b *testing.B) {
	g := NewGenerator(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.HeightAt(i%1024, (i*31)%1024, ChunkSizeY)
	}
}
