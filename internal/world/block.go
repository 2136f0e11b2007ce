package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Block is a single-byte block identifier. Zero is always air.
type Block uint8

const (
	BlockAir Block = iota
	BlockStone
	BlockDirt
	BlockGrass
	BlockSand
	BlockPlanks
	BlockBedrock
	BlockFlower
)

// IsSolid reports whether the block takes part in face generation.
func (b Block) IsSolid() bool {
	return b != BlockAir
}

// Face identifies a face of a block. The numeric value is the face ID
// packed into mesh vertices.
type Face uint8

const (
	FaceNorth  Face = iota // +Z
	FaceSouth              // -Z
	FaceEast               // +X
	FaceWest               // -X
	FaceTop                // +Y
	FaceBottom             // -Y
)

// NumFaces is the number of block faces.
const NumFaces = 6

// Axis indices used for [3]int positions.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// FaceFor returns the face perpendicular to axis that points in the
// positive or negative direction.
func FaceFor(axis int, positive bool) Face {
	switch axis {
	case AxisX:
		if positive {
			return FaceEast
		}
		return FaceWest
	case AxisY:
		if positive {
			return FaceTop
		}
		return FaceBottom
	case AxisZ:
		if positive {
			return FaceNorth
		}
		return FaceSouth
	}
	panic("world: axis out of range")
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 {
	switch f {
	case FaceNorth:
		return mgl32.Vec3{0, 0, 1}
	case FaceSouth:
		return mgl32.Vec3{0, 0, -1}
	case FaceEast:
		return mgl32.Vec3{1, 0, 0}
	case FaceWest:
		return mgl32.Vec3{-1, 0, 0}
	case FaceTop:
		return mgl32.Vec3{0, 1, 0}
	case FaceBottom:
		return mgl32.Vec3{0, -1, 0}
	default:
		return mgl32.Vec3{}
	}
}

func (f Face) String() string {
	switch f {
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceEast:
		return "east"
	case FaceWest:
		return "west"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	default:
		return "invalid"
	}
}
