package chunk

import "fmt"

// State returns the current lifecycle phase.
func (c *Chunk) State() State { return c.state }

// TransitionTo advances the lifecycle. Only the single next phase in the
// Unloaded -> Loading -> Loaded -> Unloading -> Unloaded cycle is legal; any
// other target is a programming error and panics.
func (c *Chunk) TransitionTo(next State) {
	if next != c.state.next() {
		panic(fmt.Sprintf("chunk %v: illegal state transition %v -> %v", c.coords, c.state, next))
	}
	c.state = next
}

// MeshDirty reports whether the mesh needs rebuilding.
func (c *Chunk) MeshDirty() bool { return c.meshDirty }

// LightingDirty reports whether lighting needs recomputing.
func (c *Chunk) LightingDirty() bool { return c.lightingDirty }

// Modified reports whether the chunk diverged from generated content and
// needs persisting.
func (c *Chunk) Modified() bool { return c.modified }

// MarkMeshDirty forces a mesh rebuild (used when a neighbor's border edit
// invalidates this chunk's boundary faces).
func (c *Chunk) MarkMeshDirty() { c.meshDirty = true }

// ClearMeshDirty acknowledges that a rebuild was scheduled against the
// current content.
func (c *Chunk) ClearMeshDirty() { c.meshDirty = false }

// ClearLightingDirty acknowledges a lighting recompute.
func (c *Chunk) ClearLightingDirty() { c.lightingDirty = false }

// ClearModified acknowledges that the chunk was persisted.
func (c *Chunk) ClearModified() { c.modified = false }
