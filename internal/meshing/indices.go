package meshing

import (
	"fmt"

	"voxmesh/internal/world"
)

// VerticesPerQuad is the number of vertices emitted per quad.
const VerticesPerQuad = 4

// quadIndexPattern draws a quad as triangles (0,1,3) and (0,3,2).
var quadIndexPattern = [6]uint32{0, 1, 3, 0, 3, 2}

// QuadIndices builds the index buffer for vertexCount vertices laid out as
// consecutive quads.
func QuadIndices(vertexCount int) []uint32 {
	if vertexCount%VerticesPerQuad != 0 {
		panic(fmt.Sprintf("meshing: %d vertices is not a whole number of quads", vertexCount))
	}
	quads := vertexCount / VerticesPerQuad
	indices := make([]uint32, 0, quads*len(quadIndexPattern))
	for q := 0; q < quads; q++ {
		base := uint32(q * VerticesPerQuad)
		for _, i := range quadIndexPattern {
			indices = append(indices, base+i)
		}
	}
	return indices
}

// Stats summarises a mesh.
type Stats struct {
	Quads   int
	PerFace [world.NumFaces]int
	// Area is the number of unit block faces covered by all quads.
	Area int
}

// Summarize counts the quads in a mesh.
func Summarize(mesh []Vertex) Stats {
	var s Stats
	for i := 0; i+VerticesPerQuad <= len(mesh); i += VerticesPerQuad {
		f := Unpack(mesh[i])
		s.Quads++
		s.PerFace[f.Face]++
		s.Area += f.Width * f.Height
	}
	return s
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Quads += o.Quads
	s.Area += o.Area
	for i := range s.PerFace {
		s.PerFace[i] += o.PerFace[i]
	}
}
