package export

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"voxmesh/internal/meshing"
	"voxmesh/internal/world"
)

// WritePreviewPNG renders a top-down map of the top faces in chunks, one
// pixel per block column scaled up by scale, and encodes it as PNG. Columns
// are coloured by texture ID and shaded by height. Chunks must share extents
// and already be meshed.
func WritePreviewPNG(w io.Writer, chunks []*world.Chunk, scale int) error {
	if len(chunks) == 0 {
		return errors.New("preview: no chunks")
	}
	if scale < 1 {
		scale = 1
	}
	ext := chunks[0].Extents

	minCX, maxCX := chunks[0].Coord.X, chunks[0].Coord.X
	minCZ, maxCZ := chunks[0].Coord.Z, chunks[0].Coord.Z
	for _, c := range chunks[1:] {
		if c.Extents != ext {
			return errors.Errorf("preview: chunk %v has extents %v, want %v", c.Coord, c.Extents, ext)
		}
		minCX, maxCX = min(minCX, c.Coord.X), max(maxCX, c.Coord.X)
		minCZ, maxCZ = min(minCZ, c.Coord.Z), max(maxCZ, c.Coord.Z)
	}

	width := (maxCX - minCX + 1) * ext[0]
	depth := (maxCZ - minCZ + 1) * ext[2]
	img := image.NewNRGBA(image.Rect(0, 0, width, depth))
	heights := make([]int, width*depth)
	for i := range heights {
		heights[i] = -1
	}

	for _, c := range chunks {
		ox := (c.Coord.X - minCX) * ext[0]
		oz := (c.Coord.Z - minCZ) * ext[2]
		for i := 0; i+meshing.VerticesPerQuad <= len(c.Mesh); i += meshing.VerticesPerQuad {
			first := meshing.Unpack(c.Mesh[i])
			if first.Face != world.FaceTop {
				continue
			}
			x0, x1, z0, z1 := first.X, first.X, first.Z, first.Z
			for _, v := range c.Mesh[i+1 : i+meshing.VerticesPerQuad] {
				f := meshing.Unpack(v)
				x0, x1 = min(x0, f.X), max(x1, f.X)
				z0, z1 = min(z0, f.Z), max(z1, f.Z)
			}
			col := shade(textureColor(first.Texture), first.Y, ext[1])
			for z := z0; z < z1; z++ {
				for x := x0; x < x1; x++ {
					px, pz := ox+x, oz+z
					if first.Y <= heights[pz*width+px] {
						continue
					}
					heights[pz*width+px] = first.Y
					img.SetNRGBA(px, pz, col)
				}
			}
		}
	}

	var out image.Image = img
	if scale > 1 {
		scaled := image.NewNRGBA(image.Rect(0, 0, width*scale, depth*scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		out = scaled
	}
	return errors.Wrap(png.Encode(w, out), "encode preview")
}

// textureColor spreads texture IDs over distinct colours.
func textureColor(tex uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(64 + tex*97%192),
		G: uint8(64 + tex*57%192),
		B: uint8(64 + tex*23%192),
		A: 255,
	}
}

// shade darkens low columns; the top of the chunk keeps the full colour.
func shade(c color.NRGBA, y, maxY int) color.NRGBA {
	f := 0.4 + 0.6*float64(y)/float64(maxY)
	if f > 1 {
		f = 1
	}
	c.R = uint8(float64(c.R) * f)
	c.G = uint8(float64(c.G) * f)
	c.B = uint8(float64(c.B) * f)
	return c
}
