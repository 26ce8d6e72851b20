package world

import (
	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/chunk"
	"voxelforge.dev/internal/voxel"
)

// locate maps world block coordinates to the owning chunk and local
// coordinates. The world is a single layer of full-height chunk columns.
func (m *Manager) locate(wx, wy, wz int) (*entry, int, int, int, bool) {
	if wy < 0 || wy >= m.cfg.ChunkHeight {
		return nil, 0, 0, 0, false
	}
	coord := voxel.ChunkCoord{
		X: voxel.FloorDiv(wx, m.cfg.ChunkSize),
		Z: voxel.FloorDiv(wz, m.cfg.ChunkSize),
	}
	e, ok := m.chunks[coord]
	if !ok || e.c.State() != chunk.Loaded {
		return nil, 0, 0, 0, false
	}
	return e, voxel.Mod(wx, m.cfg.ChunkSize), wy, voxel.Mod(wz, m.cfg.ChunkSize), true
}

// Block returns the block at world coordinates, or air for unloaded space.
func (m *Manager) Block(wx, wy, wz int) uint16 {
	e, x, y, z, ok := m.locate(wx, wy, wz)
	if !ok {
		return block.Air
	}
	return e.c.Block(x, y, z)
}

// SetBlock places a block at world coordinates. The owning chunk is marked
// mesh-dirty and modified; edits on a chunk border also dirty the adjacent
// chunk so its shared face re-culls. Returns false for unloaded space.
func (m *Manager) SetBlock(wx, wy, wz int, id uint16) bool {
	e, x, y, z, ok := m.locate(wx, wy, wz)
	if !ok {
		return false
	}
	e.c.SetBlock(x, y, z, id)
	m.dirtyBorderNeighbors(e.c, x, y, z)
	return true
}

// RemoveBlock clears a block to air. Returns false for unloaded space or a
// block type that is not breakable.
func (m *Manager) RemoveBlock(wx, wy, wz int) bool {
	e, x, y, z, ok := m.locate(wx, wy, wz)
	if !ok {
		return false
	}
	if t, known := m.reg.Lookup(e.c.Block(x, y, z)); !known || !t.Breakable {
		return false
	}
	e.c.SetBlock(x, y, z, block.Air)
	m.dirtyBorderNeighbors(e.c, x, y, z)
	return true
}

func (m *Manager) dirtyBorderNeighbors(c *chunk.Chunk, x, y, z int) {
	for _, f := range voxel.Faces() {
		dx, dy, dz := f.Delta()
		nx, ny, nz := x+dx, y+dy, z+dz
		if c.InBounds(nx, ny, nz) {
			continue
		}
		if dy != 0 {
			continue // no vertical chunk neighbors in a column world
		}
		if nb, ok := m.chunks[c.Coordinates().Neighbor(f)]; ok && nb.c.State() == chunk.Loaded {
			nb.c.MarkMeshDirty()
		}
	}
}
