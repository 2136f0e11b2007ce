package world

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Default chunk dimensions
	ChunkSizeX = 16
	ChunkSizeY = 32
	ChunkSizeZ = 16

	// MaxExtent is the largest extent along any axis. Quad corners lie on
	// 0..extent and must fit the 6-bit vertex position fields.
	MaxExtent = 63
)

// DefaultExtents are the extents used by the generator and the CLI unless configured otherwise.
var DefaultExtents = [3]int{ChunkSizeX, ChunkSizeY, ChunkSizeZ}

// ChunkCoord is a chunk position on the horizontal chunk grid.
type ChunkCoord struct {
	X, Z int
}

// Less orders coordinates by X then Z.
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Z < o.Z
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Vertex is a packed mesh vertex: a core word (position, texture, corner,
// face) and a dims word (quad width and height).
type Vertex struct {
	Core uint32
	Dims uint32
}

// Chunk is a fixed-size block grid stored row-major with X fastest, then Z, then Y.
type Chunk struct {
	Coord   ChunkCoord
	Extents [3]int
	Blocks  []Block

	// Mesh is rebuilt in place by the mesher. Only one mesh call may
	// target a chunk at a time.
	Mesh []Vertex

	mu    sync.RWMutex
	dirty atomic.Bool
}

// NewChunk creates an all-air chunk.
func NewChunk(coord ChunkCoord, extents [3]int) *Chunk {
	checkExtents(extents)
	c := &Chunk{
		Coord:   coord,
		Extents: extents,
		Blocks:  make([]Block, extents[0]*extents[1]*extents[2]),
	}
	c.dirty.Store(true)
	return c
}

// NewChunkFromBlocks wraps an existing block array. It panics if the
// array size does not match the extents.
func NewChunkFromBlocks(coord ChunkCoord, extents [3]int, blocks []Block) *Chunk {
	checkExtents(extents)
	if want := extents[0] * extents[1] * extents[2]; len(blocks) != want {
		panic(fmt.Sprintf("world: chunk %v has %d blocks, want %d", coord, len(blocks), want))
	}
	c := &Chunk{
		Coord:   coord,
		Extents: extents,
		Blocks:  blocks,
	}
	c.dirty.Store(true)
	return c
}

func checkExtents(extents [3]int) {
	for axis, e := range extents {
		if e < 1 || e > MaxExtent {
			panic(fmt.Sprintf("world: extent %d on axis %d out of range 1..%d", e, axis, MaxExtent))
		}
	}
}

// Validate panics unless the block array matches the extents.
func (c *Chunk) Validate() {
	checkExtents(c.Extents)
	if want := c.Extents[0] * c.Extents[1] * c.Extents[2]; len(c.Blocks) != want {
		panic(fmt.Sprintf("world: chunk %v has %d blocks, want %d", c.Coord, len(c.Blocks), want))
	}
}

// Index converts local coordinates to a flat index.
func (c *Chunk) Index(x, y, z int) int {
	return x + z*c.Extents[0] + y*c.Extents[0]*c.Extents[2]
}

// Contains reports whether local coordinates are inside the chunk.
func (c *Chunk) Contains(x, y, z int) bool {
	return x >= 0 && x < c.Extents[0] && y >= 0 && y < c.Extents[1] && z >= 0 && z < c.Extents[2]
}

// At returns the block at p. Out-of-range positions panic.
func (c *Chunk) At(p [3]int) Block {
	if !c.Contains(p[0], p[1], p[2]) {
		panic(fmt.Sprintf("world: position %v outside chunk %v with extents %v", p, c.Coord, c.Extents))
	}
	return c.Blocks[c.Index(p[0], p[1], p[2])]
}

// GetBlock returns the block at local coordinates, or air when out of range.
func (c *Chunk) GetBlock(x, y, z int) Block {
	if !c.Contains(x, y, z) {
		return BlockAir
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Blocks[c.Index(x, y, z)]
}

// SetBlock sets the block at local coordinates. It waits for any mesh call
// reading this chunk to finish.
func (c *Chunk) SetBlock(x, y, z int, b Block) {
	if !c.Contains(x, y, z) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.Index(x, y, z)
	if c.Blocks[idx] != b {
		c.Blocks[idx] = b
		c.dirty.Store(true)
	}
}

// Fill sets every block to b.
func (c *Chunk) Fill(b Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.Blocks {
		c.Blocks[i] = b
	}
	c.dirty.Store(true)
}

// RLock holds off block writes while the chunk is read as a mesh target or neighbor.
func (c *Chunk) RLock() { c.mu.RLock() }

// RUnlock releases RLock.
func (c *Chunk) RUnlock() { c.mu.RUnlock() }

// IsDirty returns whether the chunk has been modified since it was last meshed
func (c *Chunk) IsDirty() bool {
	return c.dirty.Load()
}

// SetClean marks the chunk as meshed
func (c *Chunk) SetClean() {
	c.dirty.Store(false)
}

// MarkDirty flags the chunk for remeshing
func (c *Chunk) MarkDirty() {
	c.dirty.Store(true)
}

// Origin returns the world-space position of local (0,0,0).
func (c *Chunk) Origin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.Coord.X * c.Extents[0]),
		0,
		float32(c.Coord.Z * c.Extents[2]),
	}
}

// SolidCount returns the number of non-air blocks.
func (c *Chunk) SolidCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, b := range c.Blocks {
		if b.IsSolid() {
			n++
		}
	}
	return n
}
