package meshing

import (
	"fmt"

	"voxmesh/internal/registry"
	"voxmesh/internal/world"
)

// FallbackTextureID is used for blocks without usable texture data.
const FallbackTextureID = 7

// TextureLookup resolves block IDs to texture descriptors. *registry.Registry implements it.
type TextureLookup interface {
	Texture(b world.Block) (registry.TextureData, bool)
}

// faceCell is the mask payload for one visible face. Cells merge only when
// both block and facing match.
type faceCell struct {
	block world.Block
	// back is set when the solid side is at the plane, i.e. the face points toward -d.
	back bool
}

// Mesher builds greedy meshes. It owns the per-plane scratch buffers and
// reuses them across planes and calls, so a Mesher must not be shared
// between goroutines. Use one per worker.
type Mesher struct {
	textures TextureLookup
	mask     []bool
	cells    []faceCell
}

// NewMesher returns a mesher resolving textures through textures, which may be nil.
func NewMesher(textures TextureLookup) *Mesher {
	return &Mesher{textures: textures}
}

// MeshChunk rebuilds the chunk's mesh from its blocks and up to four
// horizontal neighbors ordered {-X, +X, +Z, -Z}. The mesh buffer is cleared
// once and the X, Y and Z passes append to it in that order.
//
// Neighbors are only read. The caller must keep blocks of the chunk and its
// neighbors unchanged for the duration of the call.
func (m *Mesher) MeshChunk(c *world.Chunk, neighbors world.Neighbors) {
	c.Validate()
	for slot, nb := range neighbors {
		if nb != nil && nb.Extents != c.Extents {
			panic(fmt.Sprintf("meshing: neighbor %d of chunk %v has extents %v, want %v", slot, c.Coord, nb.Extents, c.Extents))
		}
	}

	c.Mesh = c.Mesh[:0]
	m.reserve(c.Extents)

	cl := classifier{chunk: c, neighbors: neighbors}
	for d := 0; d < 3; d++ {
		m.sweepAxis(&cl, d)
	}
}

// MeshChunk meshes a single chunk with a throwaway Mesher.
func MeshChunk(c *world.Chunk, neighbors world.Neighbors, textures TextureLookup) {
	NewMesher(textures).MeshChunk(c, neighbors)
}

// reserve grows the scratch buffers to the largest plane of the extents.
func (m *Mesher) reserve(ext [3]int) {
	size := 0
	for d := 0; d < 3; d++ {
		if n := ext[(d+1)%3] * ext[(d+2)%3]; n > size {
			size = n
		}
	}
	if cap(m.mask) < size {
		m.mask = make([]bool, size)
		m.cells = make([]faceCell, size)
	}
	m.mask = m.mask[:size]
	m.cells = m.cells[:size]
}

// sweepAxis walks the face planes perpendicular to axis d, from the plane
// before the first layer to the plane after the last one.
func (m *Mesher) sweepAxis(cl *classifier, d int) {
	ext := cl.chunk.Extents
	for plane := -1; plane < ext[d]; plane++ {
		if m.fillMask(cl, d, plane) {
			m.extractQuads(cl.chunk, d, plane+1)
		}
	}
}

// fillMask marks the visible faces between layer plane and plane+1.
// Returns false when the plane has no faces.
func (m *Mesher) fillMask(cl *classifier, d, plane int) bool {
	ext := cl.chunk.Extents
	u, v := (d+1)%3, (d+2)%3

	found := false
	n := 0
	var a, b [3]int
	for j := 0; j < ext[v]; j++ {
		for i := 0; i < ext[u]; i++ {
			a[d], a[u], a[v] = plane, i, j
			b = a
			b[d]++

			visible, back := faceBetween(cl, d, a, b)
			m.mask[n] = visible
			if visible {
				m.cells[n] = faceCell{block: representativeBlock(cl.chunk, d, b), back: back}
				found = true
			}
			n++
		}
	}
	return found
}

// faceBetween decides whether a face separates cell a from cell b (b is a
// one step further along d) and whether it faces toward -d.
func faceBetween(cl *classifier, d int, a, b [3]int) (visible, back bool) {
	ext := cl.chunk.Extents

	// world floor and ceiling are never drawn
	if d == world.AxisY && (a[d] < 0 || b[d] >= ext[d]) {
		return false, false
	}

	sa, sb := cl.state(a), cl.state(b)
	if sa == StateEmpty || sb == StateEmpty {
		return false, false
	}
	if (sa == StateSolid) == (sb == StateSolid) {
		return false, false
	}

	// On a boundary plane the face belongs to whichever chunk owns the
	// solid cell.
	if a[d] < 0 && sa == StateSolid {
		return false, false
	}
	if b[d] >= ext[d] && sb == StateSolid {
		return false, false
	}
	return true, sb == StateSolid
}

// extractQuads greedily merges the mask into rectangles and emits one quad
// per rectangle. q is the plane coordinate along d.
func (m *Mesher) extractQuads(c *world.Chunk, d, q int) {
	ext := c.Extents
	u, v := (d+1)%3, (d+2)%3
	su, sv := ext[u], ext[v]

	n := 0
	for j := 0; j < sv; j++ {
		for i := 0; i < su; {
			if !m.mask[n] {
				i++
				n++
				continue
			}
			cell := m.cells[n]

			w := 1
			for i+w < su && m.matches(n+w, cell) {
				w++
			}

			h := 1
		grow:
			for j+h < sv {
				for k := 0; k < w; k++ {
					if !m.matches(n+k+h*su, cell) {
						break grow
					}
				}
				h++
			}

			var x [3]int
			x[d], x[u], x[v] = q, i, j
			m.emitQuad(c, d, x, w, h, cell)

			for l := 0; l < h; l++ {
				for k := 0; k < w; k++ {
					m.mask[n+k+l*su] = false
				}
			}
			i += w
			n += w
		}
	}
}

func (m *Mesher) matches(n int, cell faceCell) bool {
	return m.mask[n] && m.cells[n] == cell
}
