package meshing

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxmesh/internal/registry"
	"voxmesh/internal/world"
)

// Vertex is a packed mesh vertex.
//
//	Core: X(6) Y(6) Z(6) Tex(9) Corner(2) Face(3)
//	Dims: Width(16) Height(16)
type Vertex = world.Vertex

const (
	posBits    = 6
	texBits    = 9
	cornerBits = 2
	faceBits   = 3
	dimBits    = 16

	yShift      = posBits
	zShift      = 2 * posBits
	texShift    = 3 * posBits
	cornerShift = texShift + texBits
	faceShift   = cornerShift + cornerBits
	heightShift = dimBits

	posMask    = 1<<posBits - 1
	texMask    = 1<<texBits - 1
	cornerMask = 1<<cornerBits - 1
	faceMask   = 1<<faceBits - 1
	dimMask    = 1<<dimBits - 1

	// MaxPosition is the largest local coordinate a vertex can carry.
	MaxPosition = posMask
	// MaxDim is the largest quad width or height.
	MaxDim = dimMask
)

// Corner order of the four vertices of every quad.
const (
	CornerTopLeft uint8 = iota
	CornerTopRight
	CornerBottomLeft
	CornerBottomRight
)

// VertexFields is the unpacked form of a Vertex.
type VertexFields struct {
	X, Y, Z       int
	Texture       uint32
	Corner        uint8
	Face          world.Face
	Width, Height int
}

// Pack encodes f. Fields outside their legal range panic.
func Pack(f VertexFields) Vertex {
	for _, p := range [3]int{f.X, f.Y, f.Z} {
		if p < 0 || p > MaxPosition {
			panic(fmt.Sprintf("meshing: vertex position (%d,%d,%d) out of range 0..%d", f.X, f.Y, f.Z, MaxPosition))
		}
	}
	if f.Texture > registry.MaxTextureID {
		panic(fmt.Sprintf("meshing: texture ID %d out of range 0..%d", f.Texture, registry.MaxTextureID))
	}
	if f.Corner > cornerMask {
		panic(fmt.Sprintf("meshing: corner %d out of range 0..3", f.Corner))
	}
	if int(f.Face) >= world.NumFaces {
		panic(fmt.Sprintf("meshing: face %d out of range 0..5", f.Face))
	}
	if f.Width < 0 || f.Width > MaxDim || f.Height < 0 || f.Height > MaxDim {
		panic(fmt.Sprintf("meshing: quad size %dx%d out of range 0..%d", f.Width, f.Height, MaxDim))
	}

	core := uint32(f.X) |
		uint32(f.Y)<<yShift |
		uint32(f.Z)<<zShift |
		f.Texture<<texShift |
		uint32(f.Corner)<<cornerShift |
		uint32(f.Face)<<faceShift
	dims := uint32(f.Width) | uint32(f.Height)<<heightShift
	return Vertex{Core: core, Dims: dims}
}

// Unpack decodes v.
func Unpack(v Vertex) VertexFields {
	return VertexFields{
		X:       int(v.Core & posMask),
		Y:       int(v.Core >> yShift & posMask),
		Z:       int(v.Core >> zShift & posMask),
		Texture: v.Core >> texShift & texMask,
		Corner:  uint8(v.Core >> cornerShift & cornerMask),
		Face:    world.Face(v.Core >> faceShift & faceMask),
		Width:   int(v.Dims & dimMask),
		Height:  int(v.Dims >> heightShift & dimMask),
	}
}

// Position returns the local-space corner position of v.
func Position(v Vertex) mgl32.Vec3 {
	f := Unpack(v)
	return mgl32.Vec3{float32(f.X), float32(f.Y), float32(f.Z)}
}
