package meshing

import (
	"voxmesh/internal/world"
)

// BlockState classifies a queried grid cell.
type BlockState uint8

const (
	// StateEmpty means the query fell outside defined data. It never
	// produces a face, unlike air.
	StateEmpty BlockState = iota
	StateAir
	StateSolid
)

func (s BlockState) String() string {
	switch s {
	case StateSolid:
		return "solid"
	case StateAir:
		return "air"
	default:
		return "empty"
	}
}

func stateOf(b world.Block) BlockState {
	if b.IsSolid() {
		return StateSolid
	}
	return StateAir
}

// neighbor slots per axis: index 0 holds the -axis neighbor, index 1 the +axis one.
// Y has none.
var axisSlots = [3][2]int{
	world.AxisX: {world.NeighborWest, world.NeighborEast},
	world.AxisY: {-1, -1},
	world.AxisZ: {world.NeighborSouth, world.NeighborNorth},
}

// classifier resolves positions one step outside the chunk against its neighbors.
type classifier struct {
	chunk     *world.Chunk
	neighbors world.Neighbors
}

// state classifies p. At most one coordinate of p may lie outside the chunk,
// and only by one step.
func (cl *classifier) state(p [3]int) BlockState {
	ext := cl.chunk.Extents
	if p[world.AxisY] < 0 || p[world.AxisY] >= ext[world.AxisY] {
		return StateEmpty
	}
	for _, a := range [2]int{world.AxisX, world.AxisZ} {
		switch p[a] {
		case -1:
			nb := cl.neighbors[axisSlots[a][0]]
			if nb == nil {
				return StateEmpty
			}
			q := p
			q[a] = ext[a] - 1
			return stateOf(nb.At(q))
		case ext[a]:
			nb := cl.neighbors[axisSlots[a][1]]
			if nb == nil {
				return StateEmpty
			}
			q := p
			q[a] = 0
			return stateOf(nb.At(q))
		}
	}
	return stateOf(cl.chunk.At(p))
}

// representativeBlock returns the block a face at q (plane coordinate q[d])
// is attributed to: the cell behind the plane, clamped to the chunk, or the
// cell at the plane when the one behind is air and q is still inside the
// chunk. Only the current chunk is read.
func representativeBlock(c *world.Chunk, d int, q [3]int) world.Block {
	p := q
	if p[d] > 0 {
		p[d]--
	}
	b := c.At(p)
	if b == world.BlockAir && q[d] < c.Extents[d] {
		b = c.At(q)
	}
	return b
}
