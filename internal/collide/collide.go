package collide

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/chunk"
)

// Box is one solid collision volume in chunk-local block coordinates.
type Box struct {
	Min, Max mgl32.Vec3
}

// ColliderData is the collision shape of one chunk: a set of merged boxes
// covering every solid block. Built alongside the mesh in background jobs.
type ColliderData struct {
	Boxes []Box
}

// Empty reports whether the chunk has no solid volume.
func (d *ColliderData) Empty() bool {
	return d == nil || len(d.Boxes) == 0
}

// BuildCollider merges the chunk's solid blocks into axis-aligned boxes.
// Runs of solid blocks are merged along X, matching runs along Z, then
// matching slabs along Y, so flat terrain collapses into a handful of boxes
// instead of one per block.
func BuildCollider(snap *chunk.Snapshot, reg *block.Registry) *ColliderData {
	size, height := snap.Size, snap.Height
	solid := func(x, y, z int) bool {
		t, ok := reg.Lookup(snap.Block(x, y, z))
		return ok && t.Solid && !t.Liquid
	}
	consumed := make([]bool, size*height*size)
	used := func(x, y, z int) bool { return consumed[x+y*size+z*size*height] }
	mark := func(x0, x1, y0, y1, z0, z1 int) {
		for z := z0; z < z1; z++ {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					consumed[x+y*size+z*size*height] = true
				}
			}
		}
	}

	data := &ColliderData{}
	for y := 0; y < height; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				if used(x, y, z) || !solid(x, y, z) {
					continue
				}

				// Extend along X.
				x1 := x + 1
				for x1 < size && !used(x1, y, z) && solid(x1, y, z) {
					x1++
				}
				// Extend the X run along Z.
				z1 := z + 1
				for z1 < size && rowClear(x, x1, y, z1, used, solid) {
					z1++
				}
				// Extend the XZ slab along Y.
				y1 := y + 1
				for y1 < height && slabClear(x, x1, y1, z, z1, used, solid) {
					y1++
				}

				mark(x, x1, y, y1, z, z1)
				data.Boxes = append(data.Boxes, Box{
					Min: mgl32.Vec3{float32(x), float32(y), float32(z)},
					Max: mgl32.Vec3{float32(x1), float32(y1), float32(z1)},
				})
			}
		}
	}
	return data
}

func rowClear(x0, x1, y, z int, used, solid func(x, y, z int) bool) bool {
	for x := x0; x < x1; x++ {
		if used(x, y, z) || !solid(x, y, z) {
			return false
		}
	}
	return true
}

func slabClear(x0, x1, y, z0, z1 int, used, solid func(x, y, z int) bool) bool {
	for z := z0; z < z1; z++ {
		if !rowClear(x0, x1, y, z, used, solid) {
			return false
		}
	}
	return true
}
