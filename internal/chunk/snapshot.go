package chunk

import (
	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/voxel"
)

// Snapshot is a frozen copy of a chunk's voxel data, safe to hand to worker
// goroutines while the live chunk keeps mutating on the owner thread.
type Snapshot struct {
	Coords voxel.ChunkCoord
	Size   int
	Height int

	Blocks      []uint16
	LightLevels []byte
	LightColors []block.Color // nil when the source chunk had no tints
}

// Snapshot deep-copies the chunk's voxel data.
func (c *Chunk) Snapshot() *Snapshot {
	s := &Snapshot{
		Coords:      c.coords,
		Size:        c.size,
		Height:      c.height,
		Blocks:      make([]uint16, len(c.blocks)),
		LightLevels: make([]byte, len(c.lightLevels)),
	}
	copy(s.Blocks, c.blocks)
	copy(s.LightLevels, c.lightLevels)
	if c.lightColors != nil {
		s.LightColors = make([]block.Color, len(c.lightColors))
		copy(s.LightColors, c.lightColors)
	}
	return s
}

// Block reads a block ID from the snapshot. Bounds are the caller's
// responsibility (the mesher iterates the known grid).
func (s *Snapshot) Block(x, y, z int) uint16 {
	return s.Blocks[x+y*s.Size+z*s.Size*s.Height]
}

// LightLevel reads a light level from the snapshot.
func (s *Snapshot) LightLevel(x, y, z int) byte {
	return s.LightLevels[x+y*s.Size+z*s.Size*s.Height]
}

// LightColor reads a tint from the snapshot, defaulting to white.
func (s *Snapshot) LightColor(x, y, z int) block.Color {
	if s.LightColors == nil {
		return block.White
	}
	return s.LightColors[x+y*s.Size+z*s.Size*s.Height]
}

// BorderPlane copies the single plane of blocks this chunk exposes toward
// the given face. The mesher uses these planes as the cross-chunk view: for
// east/west the plane is indexed [y + z*height], for up/down [x + z*size],
// for north/south [x + y*size].
func (c *Chunk) BorderPlane(f voxel.Face) []uint16 {
	switch f {
	case voxel.FaceEast, voxel.FaceWest:
		x := 0
		if f == voxel.FaceEast {
			x = c.size - 1
		}
		out := make([]uint16, c.height*c.size)
		for z := 0; z < c.size; z++ {
			for y := 0; y < c.height; y++ {
				out[y+z*c.height] = c.BlockUnsafe(x, y, z)
			}
		}
		return out
	case voxel.FaceUp, voxel.FaceDown:
		y := 0
		if f == voxel.FaceUp {
			y = c.height - 1
		}
		out := make([]uint16, c.size*c.size)
		for z := 0; z < c.size; z++ {
			for x := 0; x < c.size; x++ {
				out[x+z*c.size] = c.BlockUnsafe(x, y, z)
			}
		}
		return out
	default: // north, south
		z := 0
		if f == voxel.FaceNorth {
			z = c.size - 1
		}
		out := make([]uint16, c.size*c.height)
		for y := 0; y < c.height; y++ {
			for x := 0; x < c.size; x++ {
				out[x+y*c.size] = c.BlockUnsafe(x, y, z)
			}
		}
		return out
	}
}
