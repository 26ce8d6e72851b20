package script

import (
	"errors"
	"testing"

	"voxelforge.dev/internal/block"
)

// fakeWorld is a tiny in-memory block map covering loaded space y in [0,16).
type fakeWorld struct {
	blocks map[[3]int]uint16
	reg    *block.Registry
}

func newFakeWorld(reg *block.Registry) *fakeWorld {
	return &fakeWorld{blocks: make(map[[3]int]uint16), reg: reg}
}

func (w *fakeWorld) loaded(y int) bool { return y >= 0 && y < 16 }

func (w *fakeWorld) Block(x, y, z int) uint16 {
	return w.blocks[[3]int{x, y, z}]
}

func (w *fakeWorld) SetBlock(x, y, z int, id uint16) bool {
	if !w.loaded(y) {
		return false
	}
	w.blocks[[3]int{x, y, z}] = id
	return true
}

func (w *fakeWorld) RemoveBlock(x, y, z int) bool {
	if !w.loaded(y) {
		return false
	}
	id := w.blocks[[3]int{x, y, z}]
	if t, ok := w.reg.Lookup(id); !ok || !t.Breakable {
		return false
	}
	delete(w.blocks, [3]int{x, y, z})
	return true
}

func scriptFixture(t *testing.T) (*Table, *fakeWorld, *block.Registry) {
	t.Helper()
	reg := block.NewRegistry()
	if _, err := reg.Register("stone", func(b *block.Type) {
		b.Solid = true
		b.Opaque = true
		b.Breakable = true
	}); err != nil {
		t.Fatalf("register stone: %v", err)
	}
	w := newFakeWorld(reg)
	tbl := NewTable()
	Bind(tbl, w, reg, func() any {
		return map[string]any{"chunks_loaded": 9}
	})
	return tbl, w, reg
}

func TestSetAndGetBlock(t *testing.T) {
	tbl, _, _ := scriptFixture(t)

	if _, err := tbl.Call("world.set_block", []any{1.0, 2.0, 3.0, "stone"}); err != nil {
		t.Fatalf("set_block: %v", err)
	}
	name, err := tbl.Call("world.block", []any{1.0, 2.0, 3.0})
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if name != "stone" {
		t.Fatalf("block name = %v, want stone", name)
	}
}

func TestRemoveBlock(t *testing.T) {
	tbl, _, _ := scriptFixture(t)
	if _, err := tbl.Call("world.set_block", []any{0.0, 0.0, 0.0, "stone"}); err != nil {
		t.Fatalf("set_block: %v", err)
	}
	removed, err := tbl.Call("world.remove_block", []any{0.0, 0.0, 0.0})
	if err != nil {
		t.Fatalf("remove_block: %v", err)
	}
	if removed != true {
		t.Fatalf("remove_block = %v, want true", removed)
	}
	name, _ := tbl.Call("world.block", []any{0.0, 0.0, 0.0})
	if name != "air" {
		t.Fatalf("after removal = %v, want air", name)
	}
}

func TestRegisterAndGetBlock(t *testing.T) {
	tbl, _, reg := scriptFixture(t)

	id, err := tbl.Call("block_registry.register_block", []any{
		"glass", map[string]any{"solid": true, "transparent": true, "hardness": 0.5},
	})
	if err != nil {
		t.Fatalf("register_block: %v", err)
	}
	if reg.GetByName("glass") == nil {
		t.Fatal("glass not in registry")
	}
	props, err := tbl.Call("block_registry.get_block", []any{"glass"})
	if err != nil {
		t.Fatalf("get_block: %v", err)
	}
	m := props.(map[string]any)
	if m["id"] != id || m["transparent"] != true || m["render_type"] != "transparent" {
		t.Fatalf("props = %v", m)
	}
}

func TestEngineStats(t *testing.T) {
	tbl, _, _ := scriptFixture(t)
	v, err := tbl.Call("engine.stats", nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if v.(map[string]any)["chunks_loaded"] != 9 {
		t.Fatalf("stats = %v", v)
	}
}

func TestCallErrors(t *testing.T) {
	tbl, _, _ := scriptFixture(t)

	if _, err := tbl.Call("world.nope", nil); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("unknown function err = %v", err)
	}
	// Wrong arg type.
	if _, err := tbl.Call("world.set_block", []any{"a", 0.0, 0.0, "stone"}); err == nil {
		t.Fatal("expected type error")
	}
	// Non-integer coordinate.
	if _, err := tbl.Call("world.block", []any{1.5, 0.0, 0.0}); err == nil {
		t.Fatal("expected non-integer error")
	}
	// Unknown block name.
	if _, err := tbl.Call("world.set_block", []any{0.0, 0.0, 0.0, "mithril"}); err == nil {
		t.Fatal("expected unknown block error")
	}
	// Unloaded space.
	if _, err := tbl.Call("world.set_block", []any{0.0, 99.0, 0.0, "stone"}); err == nil {
		t.Fatal("expected unloaded space error")
	}
}

func TestNamesSorted(t *testing.T) {
	tbl, _, _ := scriptFixture(t)
	names := tbl.Names()
	want := []string{
		"block_registry.get_block",
		"block_registry.register_block",
		"engine.stats",
		"world.block",
		"world.remove_block",
		"world.set_block",
	}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
