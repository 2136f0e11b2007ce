package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"voxmesh/internal/meshing"
	"voxmesh/internal/world"
)

// WriteOBJ writes the current meshes of chunks as a Wavefront OBJ in world
// space, one object per chunk. Chunks must already be meshed.
func WriteOBJ(w io.Writer, chunks []*world.Chunk) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# voxmesh")
	for f := world.Face(0); f < world.NumFaces; f++ {
		n := f.Normal()
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X(), n.Y(), n.Z())
	}

	base := 1 // OBJ indices are 1-based
	for _, c := range chunks {
		if len(c.Mesh) == 0 {
			continue
		}
		fmt.Fprintf(bw, "o chunk_%d_%d\n", c.Coord.X, c.Coord.Z)
		origin := c.Origin()
		for _, v := range c.Mesh {
			p := origin.Add(meshing.Position(v))
			fmt.Fprintf(bw, "v %g %g %g\n", p.X(), p.Y(), p.Z())
		}

		indices := meshing.QuadIndices(len(c.Mesh))
		for i := 0; i < len(indices); i += 3 {
			normal := int(meshing.Unpack(c.Mesh[indices[i]]).Face) + 1
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n",
				base+int(indices[i]), normal,
				base+int(indices[i+1]), normal,
				base+int(indices[i+2]), normal)
		}
		base += len(c.Mesh)
	}

	return errors.Wrap(bw.Flush(), "write obj")
}
