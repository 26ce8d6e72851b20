package chunk

import (
	"testing"

	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/voxel"
)

func newTestChunk() *Chunk {
	return New(voxel.ChunkCoord{}, 16, 16)
}

func TestBlockRoundTrip(t *testing.T) {
	c := newTestChunk()
	id := uint16(7)
	for z := 0; z < c.Size(); z++ {
		for y := 0; y < c.Height(); y++ {
			for x := 0; x < c.Size(); x++ {
				c.SetBlock(x, y, z, id)
				if got := c.Block(x, y, z); got != id {
					t.Fatalf("block (%d,%d,%d) = %d, want %d", x, y, z, got, id)
				}
			}
		}
	}
}

func TestFlatIndexLayout(t *testing.T) {
	c := New(voxel.ChunkCoord{}, 4, 8)
	// Index layout is x + y*Size + z*Size*Height.
	if got := c.Index(1, 2, 3); got != 1+2*4+3*4*8 {
		t.Fatalf("Index(1,2,3) = %d", got)
	}
	c.SetBlock(1, 2, 3, 42)
	if got := c.BlockAt(1 + 2*4 + 3*4*8); got != 42 {
		t.Fatalf("BlockAt = %d, want 42", got)
	}
}

func TestOutOfRangePanics(t *testing.T) {
	c := newTestChunk()
	cases := [][3]int{
		{-1, 0, 0}, {16, 0, 0},
		{0, -1, 0}, {0, 16, 0},
		{0, 0, -1}, {0, 0, 16},
	}
	for _, p := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("Block(%d,%d,%d) did not panic", p[0], p[1], p[2])
				}
			}()
			c.Block(p[0], p[1], p[2])
		}()
	}
}

func TestDirtyPropagation(t *testing.T) {
	c := newTestChunk()
	if c.MeshDirty() {
		t.Fatal("fresh chunk must start clean")
	}
	c.SetBlock(0, 0, 0, 1)
	if !c.MeshDirty() || !c.Modified() {
		t.Fatal("SetBlock must set mesh-dirty and modified")
	}

	c.ClearMeshDirty()
	c.Clear()
	if !c.MeshDirty() {
		t.Fatal("Clear must set mesh-dirty")
	}
	for i := 0; i < c.VoxelCount(); i++ {
		if c.BlockAt(i) != block.Air {
			t.Fatalf("voxel %d not air after Clear", i)
		}
	}

	c.ClearMeshDirty()
	c.SetLightLevel(1, 1, 1, 7)
	if !c.MeshDirty() {
		t.Fatal("SetLightLevel must set mesh-dirty")
	}
}

func TestLightDefaultsAndClamp(t *testing.T) {
	c := newTestChunk()
	if got := c.LightLevel(3, 3, 3); got != MaxLight {
		t.Fatalf("default light = %d, want %d", got, MaxLight)
	}
	c.SetLightLevel(3, 3, 3, 200)
	if got := c.LightLevel(3, 3, 3); got != MaxLight {
		t.Fatalf("clamped light = %d, want %d", got, MaxLight)
	}
}

func TestLightColorsLazyAllocation(t *testing.T) {
	c := newTestChunk()
	if c.HasLightColors() {
		t.Fatal("colors must not be allocated up front")
	}
	if got := c.LightColor(0, 0, 0); got != block.White {
		t.Fatalf("default color = %+v, want white", got)
	}

	// Writing white must not materialize the array.
	c.SetLightColor(0, 0, 0, block.White)
	if c.HasLightColors() {
		t.Fatal("white write must not allocate")
	}

	tint := block.Color{R: 255, G: 120, B: 40}
	c.SetLightColor(2, 3, 4, tint)
	if !c.HasLightColors() {
		t.Fatal("non-white write must allocate")
	}
	if got := c.LightColor(2, 3, 4); got != tint {
		t.Fatalf("color = %+v, want %+v", got, tint)
	}
	if got := c.LightColor(0, 0, 0); got != block.White {
		t.Fatalf("untouched voxel color = %+v, want white", got)
	}
}

func TestAdjacentBlock(t *testing.T) {
	c := newTestChunk()
	c.SetBlock(5, 5, 5, 9)

	if id, in := c.AdjacentBlock(4, 5, 5, voxel.FaceEast); !in || id != 9 {
		t.Fatalf("east neighbor = (%d,%v), want (9,true)", id, in)
	}
	if id, in := c.AdjacentBlock(0, 5, 5, voxel.FaceWest); in || id != block.Air {
		t.Fatalf("border crossing = (%d,%v), want (air,false)", id, in)
	}
	if _, in := c.AdjacentBlock(15, 5, 5, voxel.FaceEast); in {
		t.Fatal("east border must cross out of the chunk")
	}
}

func TestStateMachine(t *testing.T) {
	c := newTestChunk()
	if c.State() != Unloaded {
		t.Fatalf("initial state = %v", c.State())
	}
	c.TransitionTo(Loading)
	c.TransitionTo(Loaded)
	c.TransitionTo(Unloading)
	c.TransitionTo(Unloaded)

	c.TransitionTo(Loading)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("skipping Loaded must panic")
			}
		}()
		c.TransitionTo(Unloading)
	}()
}

func TestSnapshotIsFrozen(t *testing.T) {
	c := newTestChunk()
	c.SetBlock(1, 1, 1, 3)
	s := c.Snapshot()
	c.SetBlock(1, 1, 1, 8)
	if got := s.Block(1, 1, 1); got != 3 {
		t.Fatalf("snapshot block = %d, want 3 (pre-mutation value)", got)
	}
}

func TestBorderPlane(t *testing.T) {
	c := newTestChunk()
	c.SetBlock(15, 2, 3, 5) // on the east border
	plane := c.BorderPlane(voxel.FaceEast)
	if got := plane[2+3*c.Height()]; got != 5 {
		t.Fatalf("east plane [y=2,z=3] = %d, want 5", got)
	}
	c.SetBlock(4, 15, 6, 7) // on the top border
	top := c.BorderPlane(voxel.FaceUp)
	if got := top[4+6*c.Size()]; got != 7 {
		t.Fatalf("top plane [x=4,z=6] = %d, want 7", got)
	}
}
