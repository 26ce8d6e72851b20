// Package voxel holds the small shared types the chunk, mesh and world
// packages all need: face enumeration and integer chunk coordinates.
package voxel

import "fmt"

// Face identifies one of the six sides of a voxel.
type Face uint8

const (
	FaceEast  Face = iota // +X
	FaceWest              // -X
	FaceUp                // +Y
	FaceDown              // -Y
	FaceNorth             // +Z
	FaceSouth             // -Z

	FaceCount = 6
)

var faceNames = [FaceCount]string{"east", "west", "up", "down", "north", "south"}

var faceDeltas = [FaceCount][3]int{
	{+1, 0, 0},
	{-1, 0, 0},
	{0, +1, 0},
	{0, -1, 0},
	{0, 0, +1},
	{0, 0, -1},
}

func (f Face) String() string {
	if int(f) < len(faceNames) {
		return faceNames[f]
	}
	return fmt.Sprintf("face(%d)", uint8(f))
}

// Delta returns the unit offset to the neighboring voxel across f.
func (f Face) Delta() (dx, dy, dz int) {
	d := faceDeltas[f]
	return d[0], d[1], d[2]
}

// Opposite returns the face on the other side of the voxel.
func (f Face) Opposite() Face {
	return f ^ 1
}

// Faces lists all six faces in emission order.
func Faces() [FaceCount]Face {
	return [FaceCount]Face{FaceEast, FaceWest, FaceUp, FaceDown, FaceNorth, FaceSouth}
}

// ChunkCoord is an integer chunk-grid coordinate.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Offset returns the coordinate shifted by the given chunk deltas.
func (c ChunkCoord) Offset(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Neighbor returns the chunk coordinate across the given face.
func (c ChunkCoord) Neighbor(f Face) ChunkCoord {
	dx, dy, dz := f.Delta()
	return c.Offset(dx, dy, dz)
}

// FloorDiv divides rounding toward negative infinity. b must be positive.
func FloorDiv(a, b int) int {
	q := a / b
	if r := a % b; r < 0 {
		q--
	}
	return q
}

// Mod returns the non-negative remainder of a/b. b must be positive.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
