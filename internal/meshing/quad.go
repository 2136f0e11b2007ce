package meshing

import (
	"voxmesh/internal/world"
)

// emitQuad appends the four vertices of a w×h rectangle with origin x on
// plane x[d]. w runs along axis (d+1)%3 and h along (d+2)%3.
func (m *Mesher) emitQuad(c *world.Chunk, d int, x [3]int, w, h int, cell faceCell) {
	u, v := (d+1)%3, (d+2)%3

	var du, dv [3]int
	du[u] = w
	dv[v] = h

	// X faces are emitted with their basis swapped; the renderer's winding depends on it.
	if d == world.AxisX {
		w, h = h, w
		du, dv = dv, du
	}

	face := world.FaceFor(d, !cell.back)
	tex := m.textureID(cell.block, face)

	corners := [4][3]int{
		CornerTopLeft:     x,
		CornerTopRight:    {x[0] + du[0], x[1] + du[1], x[2] + du[2]},
		CornerBottomLeft:  {x[0] + dv[0], x[1] + dv[1], x[2] + dv[2]},
		CornerBottomRight: {x[0] + du[0] + dv[0], x[1] + du[1] + dv[1], x[2] + du[2] + dv[2]},
	}
	for corner, p := range corners {
		c.Mesh = append(c.Mesh, Pack(VertexFields{
			X: p[0], Y: p[1], Z: p[2],
			Texture: tex,
			Corner:  uint8(corner),
			Face:    face,
			Width:   w,
			Height:  h,
		}))
	}
}

// textureID resolves the atlas texture for one face of b.
func (m *Mesher) textureID(b world.Block, face world.Face) uint32 {
	if m.textures == nil {
		return FallbackTextureID
	}
	data, ok := m.textures.Texture(b)
	if !ok {
		return FallbackTextureID
	}
	id, ok := data.TextureID(face)
	if !ok {
		return FallbackTextureID
	}
	return id
}
