package world

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Generator handles terrain generation logic.
type Generator struct {
	seed       int64
	noise      *perlin.Perlin
	scale      float64
	baseHeight float64 // fraction of chunk height
	amp        float64 // fraction of chunk height
	dirtDepth  int
}

// NewGenerator creates a new generator with default settings.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:       seed,
		noise:      perlin.NewPerlin(2.0, 2.0, 3, seed),
		scale:      1.0 / 48.0,
		baseHeight: 0.45,
		amp:        0.3,
		dirtDepth:  3,
	}
}

// Seed returns the generator seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// HeightAt computes the surface height (block Y) at world X,Z for a world
// maxY blocks tall. The result is in [1, maxY-2] so every column keeps
// bedrock below and at least one air cell above.
func (g *Generator) HeightAt(worldX, worldZ, maxY int) int {
	n := g.noise.Noise2D(float64(worldX)*g.scale, float64(worldZ)*g.scale)
	height := int(math.Floor(float64(maxY) * (g.baseHeight + n*g.amp)))
	if height < 1 {
		height = 1
	}
	if height > maxY-2 {
		height = maxY - 2
	}
	return height
}

// PopulateChunk fills a chunk using the noise heightmap.
func (g *Generator) PopulateChunk(c *Chunk) {
	sx, sy, sz := c.Extents[0], c.Extents[1], c.Extents[2]
	if sy < 3 {
		return
	}
	for lx := 0; lx < sx; lx++ {
		for lz := 0; lz < sz; lz++ {
			worldX := c.Coord.X*sx + lx
			worldZ := c.Coord.Z*sz + lz
			top := g.HeightAt(worldX, worldZ, sy)
			for ly := 0; ly <= top; ly++ {
				var b Block
				switch {
				case ly == 0:
					b = BlockBedrock
				case ly == top:
					b = BlockGrass
				case ly >= top-g.dirtDepth:
					b = BlockDirt
				default:
					b = BlockStone
				}
				c.Blocks[c.Index(lx, ly, lz)] = b
			}
			if g.hasFlower(worldX, worldZ) {
				c.Blocks[c.Index(lx, top+1, lz)] = BlockFlower
			}
		}
	}
	c.MarkDirty()
}

// hasFlower scatters decoration blocks deterministically per column.
func (g *Generator) hasFlower(worldX, worldZ int) bool {
	h := uint64(worldX)*0x9E3779B97F4A7C15 ^ uint64(worldZ)*0xC2B2AE3D27D4EB4F ^ uint64(g.seed)
	h ^= h >> 31
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 29
	return h%29 == 0
}

// GenerateArea creates and populates every chunk within radius (in chunks)
// of the center chunk and adds them to the store.
func (g *Generator) GenerateArea(store *ChunkStore, center ChunkCoord, radius int) int {
	n := 0
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if dx*dx+dz*dz > radius*radius {
				continue
			}
			c := NewChunk(ChunkCoord{X: center.X + dx, Z: center.Z + dz}, store.Extents())
			g.PopulateChunk(c)
			store.AddChunk(c)
			n++
		}
	}
	return n
}
