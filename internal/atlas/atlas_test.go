package atlas

import "testing"

func TestRegionPlainGrid(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("terrain", 16, 16, 256, 256, 0, 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Tile 0 is the top-left 16x16 tile of a 256x256 texture.
	reg, err := r.Region("terrain", 0)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	want := Region{U0: 0, V0: 0, U1: 0.0625, V1: 0.0625}
	if reg != want {
		t.Fatalf("tile 0 region = %+v, want %+v", reg, want)
	}

	// Tile 17 is one row down, one column over (16 tiles per row).
	reg, err = r.Region("terrain", 17)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	want = Region{U0: 0.0625, V0: 0.0625, U1: 0.125, V1: 0.125}
	if reg != want {
		t.Fatalf("tile 17 region = %+v, want %+v", reg, want)
	}
}

func TestRegionMarginSpacing(t *testing.T) {
	r := NewRegistry()
	a, err := r.Register("padded", 16, 16, 140, 140, 2, 4)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	// (140 - 4 + 4) / (16 + 4) = 7 columns.
	if a.Tiles() != 49 {
		t.Fatalf("tiles = %d, want 49", a.Tiles())
	}
	reg, err := r.Region("padded", 8) // col 1, row 1
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	// Pixel origin = margin + col*(tile+spacing) = 2 + 20 = 22.
	if got, want := reg.U0, float32(22)/140; got != want {
		t.Fatalf("U0 = %v, want %v", got, want)
	}
}

func TestRegionErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Region("missing", 0); err == nil {
		t.Fatal("expected error for unknown atlas")
	}
	if _, err := r.Register("t", 16, 16, 64, 64, 0, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Region("t", 16); err == nil {
		t.Fatal("expected error for tile out of range")
	}
	if _, err := r.Register("t", 16, 16, 64, 64, 0, 0); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}
