package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// VisibleSet is the per-frame result of culling. Opaque entities are sorted
// front to back for early-z, transparent entities back to front so blending
// composes correctly.
type VisibleSet struct {
	Opaque      []Entity
	Transparent []Entity
	Tested      int // entities reaching the narrow phase
	Culled      int // entities rejected this frame
}

// Culler runs frustum culling over an entity set. It keeps no state between
// frames except its tuning knobs; the octree is rebuilt per call.
type Culler struct {
	MaxDepth  int
	LeafSize  int
	Looseness float32
}

func NewCuller() *Culler {
	return &Culler{MaxDepth: 8, LeafSize: 8, Looseness: 1.5}
}

// Process culls entities against the camera frustum and returns the visible
// set, partitioned and depth-sorted.
func (c *Culler) Process(cam *Camera, entities []Entity) VisibleSet {
	var out VisibleSet
	if cam == nil || len(entities) == 0 {
		return out
	}

	f := ExtractFrustum(cam.ViewProjection())
	tree := NewOctree(entities, c.MaxDepth, c.LeafSize, c.Looseness)

	tree.Query(f, func(e Entity) {
		out.Tested++
		if !f.IntersectsAABB(e.Bounds()) {
			return
		}
		if e.Transparent() {
			out.Transparent = append(out.Transparent, e)
		} else {
			out.Opaque = append(out.Opaque, e)
		}
	})
	out.Culled = len(entities) - len(out.Opaque) - len(out.Transparent)

	sortByDistance(out.Opaque, cam.Position, false)
	sortByDistance(out.Transparent, cam.Position, true)
	return out
}

func sortByDistance(entities []Entity, from mgl32.Vec3, farthestFirst bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		di := entities[i].Bounds().DistSq(from)
		dj := entities[j].Bounds().DistSq(from)
		if farthestFirst {
			return di > dj
		}
		return di < dj
	})
}
