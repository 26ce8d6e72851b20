package scene

// Entity is anything the culler can test against the frustum.
type Entity interface {
	// Bounds returns the world-space box enclosing the entity.
	Bounds() AABB
	// Transparent reports whether the entity renders in the blended pass.
	Transparent() bool
}

// octreeNode is one cell of the spatial subdivision. Entities whose bounds
// straddle the child split stay at the node that last fully contained them;
// the loose factor widens each cell so most entities sink to a leaf anyway.
type octreeNode struct {
	box      AABB // tight cell bounds; looseBox is what queries test
	looseBox AABB
	entities []Entity
	children *[8]octreeNode
}

// Octree is a bounding-volume hierarchy over a frame's entity set. It is
// rebuilt from scratch each frame, so there is no removal path.
type Octree struct {
	root      octreeNode
	maxDepth  int
	leafSize  int
	looseness float32
}

// NewOctree builds a tree over the given entities. maxDepth bounds recursion,
// leafSize is the entity count above which a node splits, looseness scales
// each cell's query box (1 = tight, 1.5 is a reasonable default).
func NewOctree(entities []Entity, maxDepth, leafSize int, looseness float32) *Octree {
	if maxDepth < 1 {
		maxDepth = 1
	}
	if leafSize < 1 {
		leafSize = 1
	}
	if looseness < 1 {
		looseness = 1
	}
	t := &Octree{maxDepth: maxDepth, leafSize: leafSize, looseness: looseness}
	if len(entities) == 0 {
		return t
	}

	bounds := entities[0].Bounds()
	for _, e := range entities[1:] {
		bounds = bounds.Union(e.Bounds())
	}
	t.root = octreeNode{box: bounds, looseBox: bounds.Expanded(looseness)}
	t.root.entities = append(t.root.entities, entities...)
	t.split(&t.root, 1)
	return t
}

func (t *Octree) split(n *octreeNode, depth int) {
	if len(n.entities) <= t.leafSize || depth >= t.maxDepth {
		return
	}

	c := n.box.Center()
	var children [8]octreeNode
	for i := range children {
		min, max := n.box.Min, n.box.Max
		if i&1 != 0 {
			min[0] = c.X()
		} else {
			max[0] = c.X()
		}
		if i&2 != 0 {
			min[1] = c.Y()
		} else {
			max[1] = c.Y()
		}
		if i&4 != 0 {
			min[2] = c.Z()
		} else {
			max[2] = c.Z()
		}
		box := AABB{Min: min, Max: max}
		children[i] = octreeNode{box: box, looseBox: box.Expanded(t.looseness)}
	}

	keep := n.entities[:0]
	for _, e := range n.entities {
		placed := false
		for i := range children {
			if children[i].looseBox.Contains(e.Bounds()) {
				children[i].entities = append(children[i].entities, e)
				placed = true
				break
			}
		}
		if !placed {
			keep = append(keep, e)
		}
	}
	n.entities = keep
	n.children = &children
	for i := range children {
		if len(children[i].entities) > 0 {
			t.split(&children[i], depth+1)
		}
	}
}

// Query walks the tree, skipping every subtree whose loose box misses the
// frustum, and calls visit for each entity that survives the broad phase.
// The caller still narrow-phase tests the entity's own bounds.
func (t *Octree) Query(f Frustum, visit func(Entity)) {
	t.query(&t.root, f, visit)
}

func (t *Octree) query(n *octreeNode, f Frustum, visit func(Entity)) {
	if len(n.entities) == 0 && n.children == nil {
		return
	}
	if !f.IntersectsAABB(n.looseBox) {
		return
	}
	for _, e := range n.entities {
		visit(e)
	}
	if n.children != nil {
		for i := range n.children {
			t.query(&n.children[i], f, visit)
		}
	}
}

// Len returns the number of entities stored in the tree.
func (t *Octree) Len() int {
	n := 0
	t.count(&t.root, &n)
	return n
}

func (t *Octree) count(node *octreeNode, n *int) {
	*n += len(node.entities)
	if node.children != nil {
		for i := range node.children {
			t.count(&node.children[i], n)
		}
	}
}
