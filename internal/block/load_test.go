package block

import (
	"os"
	"path/filepath"
	"testing"

	"voxelforge.dev/internal/voxel"
)

const sampleDefs = `[
  {
    "name": "stone",
    "solid": true, "opaque": true, "breakable": true,
    "hardness": 1.5,
    "textures": {"all": "terrain@1"}
  },
  {
    "name": "grass",
    "solid": true, "opaque": true, "breakable": true,
    "hardness": 0.6,
    "textures": {"top": "terrain@0", "bottom": "terrain@2", "sides": {"atlas": "terrain", "index": 3}}
  },
  {
    "name": "water",
    "liquid": true,
    "textures": {"all": "terrain@14"}
  },
  {
    "name": "torch",
    "billboard": true, "breakable": true,
    "emits_light": 0.9,
    "emits_color": [255, 200, 120],
    "textures": {"all": "sprites@4"}
  }
]`

func writeDefs(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "blocks.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write defs: %v", err)
	}
	return p
}

func repoSchema(t *testing.T) string {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", "blocks.schema.json")
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("schema missing: %v", err)
	}
	return p
}

func TestLoadDefinitions(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadDefinitions(writeDefs(t, sampleDefs), repoSchema(t)); err != nil {
		t.Fatalf("load: %v", err)
	}

	if r.Len() != 5 { // air + 4
		t.Fatalf("len = %d, want 5", r.Len())
	}

	grass := r.GetByName("grass")
	if grass == nil {
		t.Fatal("grass not registered")
	}
	if grass.RenderType() != RenderSolid {
		t.Fatalf("grass render type = %v", grass.RenderType())
	}
	if got := grass.Textures[voxel.FaceUp]; got != (TextureRef{Atlas: "terrain", Tile: 0}) {
		t.Fatalf("grass top = %+v", got)
	}
	if got := grass.Textures[voxel.FaceNorth]; got != (TextureRef{Atlas: "terrain", Tile: 3}) {
		t.Fatalf("grass north = %+v", got)
	}

	torch := r.GetByName("torch")
	if torch.RenderType() != RenderBillboard {
		t.Fatalf("torch render type = %v", torch.RenderType())
	}
	if torch.EmitsColor != (Color{R: 255, G: 200, B: 120}) {
		t.Fatalf("torch color = %+v", torch.EmitsColor)
	}

	water := r.GetByName("water")
	if water.RenderType() != RenderFluid {
		t.Fatalf("water render type = %v", water.RenderType())
	}
}

func TestLoadDefinitionsRejectsBadRef(t *testing.T) {
	r := NewRegistry()
	err := r.LoadDefinitions(writeDefs(t, `[{"name":"x","textures":{"all":"noindex"}}]`), "")
	if err == nil {
		t.Fatal("expected error for malformed texture ref")
	}
}

func TestLoadDefinitionsSchemaRejectsMissingName(t *testing.T) {
	r := NewRegistry()
	err := r.LoadDefinitions(writeDefs(t, `[{"solid": true}]`), repoSchema(t))
	if err == nil {
		t.Fatal("expected schema validation error")
	}
}
