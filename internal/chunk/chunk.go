// Package chunk implements the chunk entity: a fixed-size 3D grid of block
// IDs with per-voxel lighting, lifecycle state and dirty tracking.
//
// A chunk has a single owner (the world manager goroutine). Mesh build jobs
// never touch a live chunk; they work on a Snapshot taken at schedule time.
package chunk

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/voxel"
)

// State is the chunk lifecycle phase. Transitions are strictly sequential:
// Unloaded -> Loading -> Loaded -> Unloading -> Unloaded. Skipping a phase is
// a programming error.
type State uint8

const (
	Unloaded State = iota
	Loading
	Loaded
	Unloading
)

var stateNames = [...]string{"unloaded", "loading", "loaded", "unloading"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// next returns the only state s may legally transition to.
func (s State) next() State {
	return State((uint8(s) + 1) % 4)
}

// Chunk owns the block and lighting data for one cubic region of the world.
type Chunk struct {
	size   int // horizontal dimension (X and Z)
	height int // vertical dimension (Y)

	coords   voxel.ChunkCoord
	position mgl32.Vec3

	blocks      []uint16
	lightLevels []byte
	lightColors []block.Color // nil until the first non-white write

	state         State
	meshDirty     bool
	lightingDirty bool
	modified      bool
}

// MaxLight is the full sunlight level every voxel starts at.
const MaxLight byte = 15

// New allocates a chunk at the given grid coordinates. All storage is
// allocated here, once; blocks start as air and light at full brightness.
func New(coords voxel.ChunkCoord, size, height int) *Chunk {
	if size <= 0 || height <= 0 {
		panic(fmt.Sprintf("chunk: invalid dimensions %dx%d", size, height))
	}
	n := size * size * height
	c := &Chunk{
		size:   size,
		height: height,
		coords: coords,
		position: mgl32.Vec3{
			float32(coords.X * size),
			float32(coords.Y * height),
			float32(coords.Z * size),
		},
		blocks:      make([]uint16, n),
		lightLevels: make([]byte, n),
	}
	for i := range c.lightLevels {
		c.lightLevels[i] = MaxLight
	}
	return c
}

// Size returns the horizontal dimension.
func (c *Chunk) Size() int { return c.size }

// Height returns the vertical dimension.
func (c *Chunk) Height() int { return c.height }

// VoxelCount returns the number of voxels in the chunk.
func (c *Chunk) VoxelCount() int { return len(c.blocks) }

// Coordinates returns the integer chunk-grid coordinates.
func (c *Chunk) Coordinates() voxel.ChunkCoord { return c.coords }

// Position returns the world-space anchor of the chunk origin.
func (c *Chunk) Position() mgl32.Vec3 { return c.position }

// Index converts local voxel coordinates to the flat array index. It panics
// on out-of-range coordinates: callers on hot paths that have already proven
// their bounds use the Unsafe accessors instead.
func (c *Chunk) Index(x, y, z int) int {
	c.checkBounds(x, y, z)
	return x + y*c.size + z*c.size*c.height
}

func (c *Chunk) checkBounds(x, y, z int) {
	if x < 0 || x >= c.size || y < 0 || y >= c.height || z < 0 || z >= c.size {
		panic(fmt.Sprintf("chunk %v: voxel (%d,%d,%d) out of range %dx%dx%d",
			c.coords, x, y, z, c.size, c.height, c.size))
	}
}

// InBounds reports whether the local coordinates lie inside the chunk.
func (c *Chunk) InBounds(x, y, z int) bool {
	return x >= 0 && x < c.size && y >= 0 && y < c.height && z >= 0 && z < c.size
}

// Block returns the block ID at (x,y,z). Panics on out-of-range coordinates.
func (c *Chunk) Block(x, y, z int) uint16 {
	return c.blocks[c.Index(x, y, z)]
}

// BlockUnsafe reads without bounds checking; the caller guarantees bounds.
func (c *Chunk) BlockUnsafe(x, y, z int) uint16 {
	return c.blocks[x+y*c.size+z*c.size*c.height]
}

// BlockAt returns the block ID at a flat index. Panics on a bad index.
func (c *Chunk) BlockAt(i int) uint16 {
	if i < 0 || i >= len(c.blocks) {
		panic(fmt.Sprintf("chunk %v: flat index %d out of range %d", c.coords, i, len(c.blocks)))
	}
	return c.blocks[i]
}

// SetBlock writes a block ID and marks the mesh dirty and the chunk
// modified. Panics on out-of-range coordinates.
func (c *Chunk) SetBlock(x, y, z int, id uint16) {
	c.blocks[c.Index(x, y, z)] = id
	c.meshDirty = true
	c.lightingDirty = true
	c.modified = true
}

// SetBlockUnsafe writes without bounds checking but with the same dirty
// semantics as SetBlock.
func (c *Chunk) SetBlockUnsafe(x, y, z int, id uint16) {
	c.blocks[x+y*c.size+z*c.size*c.height] = id
	c.meshDirty = true
	c.lightingDirty = true
	c.modified = true
}

// Fill overwrites every voxel with the given block ID.
func (c *Chunk) Fill(id uint16) {
	for i := range c.blocks {
		c.blocks[i] = id
	}
	c.meshDirty = true
	c.lightingDirty = true
	c.modified = true
}

// Clear resets every block to air and marks the mesh dirty.
func (c *Chunk) Clear() {
	c.Fill(block.Air)
}

// LightLevel returns the 0-15 light level at (x,y,z).
func (c *Chunk) LightLevel(x, y, z int) byte {
	return c.lightLevels[c.Index(x, y, z)]
}

// LightLevelUnsafe reads the light level without bounds checking.
func (c *Chunk) LightLevelUnsafe(x, y, z int) byte {
	return c.lightLevels[x+y*c.size+z*c.size*c.height]
}

// SetLightLevel writes a light level, clamped to MaxLight, and marks the
// mesh dirty (lighting is baked into vertices).
func (c *Chunk) SetLightLevel(x, y, z int, level byte) {
	if level > MaxLight {
		level = MaxLight
	}
	c.lightLevels[c.Index(x, y, z)] = level
	c.meshDirty = true
}

// LightColor returns the tint at (x,y,z); white when no tint was ever set.
func (c *Chunk) LightColor(x, y, z int) block.Color {
	i := c.Index(x, y, z)
	if c.lightColors == nil {
		return block.White
	}
	return c.lightColors[i]
}

// SetLightColor writes a tint. The color array is only materialized on the
// first non-white write; setting white on an unallocated chunk is a no-op.
func (c *Chunk) SetLightColor(x, y, z int, col block.Color) {
	i := c.Index(x, y, z)
	if c.lightColors == nil {
		if col == block.White {
			return
		}
		c.lightColors = make([]block.Color, len(c.blocks))
		for j := range c.lightColors {
			c.lightColors[j] = block.White
		}
	}
	c.lightColors[i] = col
	c.meshDirty = true
}

// HasLightColors reports whether the tint array was ever materialized.
func (c *Chunk) HasLightColors() bool {
	return c.lightColors != nil
}

// CopyBlockData copies the block array into dst, which must hold VoxelCount
// entries. Used by persistence; live code reads through the accessors.
func (c *Chunk) CopyBlockData(dst []uint16) {
	if len(dst) != len(c.blocks) {
		panic(fmt.Sprintf("chunk %v: block copy size %d, want %d", c.coords, len(dst), len(c.blocks)))
	}
	copy(dst, c.blocks)
}

// CopyLightData copies the light level array into dst.
func (c *Chunk) CopyLightData(dst []byte) {
	if len(dst) != len(c.lightLevels) {
		panic(fmt.Sprintf("chunk %v: light copy size %d, want %d", c.coords, len(dst), len(c.lightLevels)))
	}
	copy(dst, c.lightLevels)
}

// LoadData replaces the chunk's blocks and light levels wholesale, marking
// the mesh dirty but NOT the chunk modified: restored save data is the
// baseline, not an edit.
func (c *Chunk) LoadData(blocks []uint16, lights []byte) {
	if len(blocks) != len(c.blocks) || len(lights) != len(c.lightLevels) {
		panic(fmt.Sprintf("chunk %v: load size %d/%d, want %d", c.coords, len(blocks), len(lights), len(c.blocks)))
	}
	copy(c.blocks, blocks)
	copy(c.lightLevels, lights)
	c.meshDirty = true
	c.lightingDirty = true
	c.modified = false
}

// AdjacentBlock resolves the neighbor of (x,y,z) across the given face.
// When the neighbor lies inside this chunk it returns (id, true); when it
// crosses into an adjacent chunk it returns (air, false) and the caller
// decides whether to consult neighbor-chunk data.
func (c *Chunk) AdjacentBlock(x, y, z int, f voxel.Face) (uint16, bool) {
	c.checkBounds(x, y, z)
	dx, dy, dz := f.Delta()
	nx, ny, nz := x+dx, y+dy, z+dz
	if !c.InBounds(nx, ny, nz) {
		return block.Air, false
	}
	return c.BlockUnsafe(nx, ny, nz), true
}
