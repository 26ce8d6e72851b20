package collide

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/chunk"
	"voxelforge.dev/internal/voxel"
)

func colliderFixture(t *testing.T) (*block.Registry, uint16, uint16) {
	t.Helper()
	reg := block.NewRegistry()
	stone, err := reg.Register("stone", func(b *block.Type) {
		b.Solid = true
		b.Opaque = true
	})
	if err != nil {
		t.Fatalf("register stone: %v", err)
	}
	water, err := reg.Register("water", func(b *block.Type) {
		b.Liquid = true
	})
	if err != nil {
		t.Fatalf("register water: %v", err)
	}
	return reg, stone.ID, water.ID
}

func TestBuildColliderEmptyChunk(t *testing.T) {
	reg, _, _ := colliderFixture(t)
	c := chunk.New(voxel.ChunkCoord{}, 8, 8)
	d := BuildCollider(c.Snapshot(), reg)
	if !d.Empty() {
		t.Fatalf("air chunk produced %d boxes", len(d.Boxes))
	}
}

func TestBuildColliderMergesFullChunk(t *testing.T) {
	reg, stone, _ := colliderFixture(t)
	c := chunk.New(voxel.ChunkCoord{}, 8, 8)
	c.Fill(stone)
	d := BuildCollider(c.Snapshot(), reg)
	if len(d.Boxes) != 1 {
		t.Fatalf("full chunk = %d boxes, want 1", len(d.Boxes))
	}
	b := d.Boxes[0]
	if b.Min != (mgl32.Vec3{0, 0, 0}) || b.Max != (mgl32.Vec3{8, 8, 8}) {
		t.Fatalf("box = %+v", b)
	}
}

func TestBuildColliderFlatSlab(t *testing.T) {
	reg, stone, _ := colliderFixture(t)
	c := chunk.New(voxel.ChunkCoord{}, 16, 32)
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			c.SetBlock(x, 0, z, stone)
			c.SetBlock(x, 1, z, stone)
		}
	}
	d := BuildCollider(c.Snapshot(), reg)
	if len(d.Boxes) != 1 {
		t.Fatalf("flat slab = %d boxes, want 1", len(d.Boxes))
	}
	if d.Boxes[0].Max != (mgl32.Vec3{16, 2, 16}) {
		t.Fatalf("slab box = %+v", d.Boxes[0])
	}
}

func TestBuildColliderSkipsLiquid(t *testing.T) {
	reg, stone, water := colliderFixture(t)
	c := chunk.New(voxel.ChunkCoord{}, 8, 8)
	c.SetBlock(0, 0, 0, stone)
	c.SetBlock(2, 0, 0, water)
	d := BuildCollider(c.Snapshot(), reg)
	if len(d.Boxes) != 1 {
		t.Fatalf("boxes = %d, want 1 (water is not solid)", len(d.Boxes))
	}
	if d.Boxes[0].Max != (mgl32.Vec3{1, 1, 1}) {
		t.Fatalf("box = %+v", d.Boxes[0])
	}
}

func TestBuildColliderCoversEverySolidBlockOnce(t *testing.T) {
	reg, stone, _ := colliderFixture(t)
	c := chunk.New(voxel.ChunkCoord{}, 8, 8)
	// An L-shape that cannot merge into one box.
	for x := 0; x < 5; x++ {
		c.SetBlock(x, 0, 0, stone)
	}
	for z := 1; z < 4; z++ {
		c.SetBlock(0, 0, z, stone)
	}
	d := BuildCollider(c.Snapshot(), reg)

	covered := 0
	for _, b := range d.Boxes {
		vol := int(b.Max.X()-b.Min.X()) * int(b.Max.Y()-b.Min.Y()) * int(b.Max.Z()-b.Min.Z())
		covered += vol
	}
	if covered != 8 {
		t.Fatalf("boxes cover %d blocks, want 8", covered)
	}
	// No box overlaps another.
	for i := range d.Boxes {
		for j := i + 1; j < len(d.Boxes); j++ {
			a, b := d.Boxes[i], d.Boxes[j]
			if a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
				a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y() &&
				a.Min.Z() < b.Max.Z() && a.Max.Z() > b.Min.Z() {
				t.Fatalf("boxes %d and %d overlap", i, j)
			}
		}
	}
}
