package block

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelforge.dev/internal/voxel"
)

// definition mirrors one entry of the blocks data file.
type definition struct {
	Name        string   `json:"name"`
	Solid       bool     `json:"solid"`
	Liquid      bool     `json:"liquid"`
	Opaque      bool     `json:"opaque"`
	Transparent bool     `json:"transparent"`
	Breakable   bool     `json:"breakable"`
	Billboard   bool     `json:"billboard"`
	Item        bool     `json:"item"`
	Hardness    float32  `json:"hardness"`
	EmitsLight  float32  `json:"emits_light"`
	EmitsColor  []uint8  `json:"emits_color"`
	Textures    texGroup `json:"textures"`
}

// texGroup accepts either per-face texture refs or the top/bottom/sides
// grouping; "all" applies to every face and is overridden by more specific
// keys.
type texGroup struct {
	All    *texRef `json:"all"`
	Top    *texRef `json:"top"`
	Bottom *texRef `json:"bottom"`
	Sides  *texRef `json:"sides"`
	East   *texRef `json:"east"`
	West   *texRef `json:"west"`
	North  *texRef `json:"north"`
	South  *texRef `json:"south"`
}

// texRef decodes either the compact "atlas@index" string form or an explicit
// {"atlas": ..., "index": ...} object.
type texRef struct {
	Atlas string `json:"atlas"`
	Index int    `json:"index"`
}

func (t *texRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		at := strings.LastIndexByte(s, '@')
		if at <= 0 || at == len(s)-1 {
			return fmt.Errorf("texture ref %q: want \"atlas@index\"", s)
		}
		idx, err := strconv.Atoi(s[at+1:])
		if err != nil {
			return fmt.Errorf("texture ref %q: bad index: %w", s, err)
		}
		t.Atlas = s[:at]
		t.Index = idx
		return nil
	}
	type plain texRef
	return json.Unmarshal(b, (*plain)(t))
}

func (g *texGroup) apply(ts *TextureSet) {
	set := func(f voxel.Face, r *texRef) {
		if r != nil {
			ts[f] = TextureRef{Atlas: r.Atlas, Tile: r.Index}
		}
	}
	if g.All != nil {
		ts.SetAll(TextureRef{Atlas: g.All.Atlas, Tile: g.All.Index})
	}
	if g.Sides != nil {
		side := TextureRef{Atlas: g.Sides.Atlas, Tile: g.Sides.Index}
		ts[voxel.FaceEast] = side
		ts[voxel.FaceWest] = side
		ts[voxel.FaceNorth] = side
		ts[voxel.FaceSouth] = side
	}
	set(voxel.FaceUp, g.Top)
	set(voxel.FaceDown, g.Bottom)
	set(voxel.FaceEast, g.East)
	set(voxel.FaceWest, g.West)
	set(voxel.FaceNorth, g.North)
	set(voxel.FaceSouth, g.South)
}

// LoadDefinitions merges a JSON block-definitions file into the registry.
// When schemaPath is non-empty the raw document is validated against it
// before decoding, so malformed content fails with a schema error instead of
// a half-registered palette.
func (r *Registry) LoadDefinitions(path, schemaPath string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if schemaPath != "" {
		schema, err := jsonschema.Compile(schemaPath)
		if err != nil {
			return fmt.Errorf("compile %s: %w", schemaPath, err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := schema.Validate(doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	var defs []definition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, d := range defs {
		if d.Name == "" {
			return fmt.Errorf("%s: entry with empty name", path)
		}
		_, err := r.Register(d.Name, func(t *Type) {
			t.Solid = d.Solid
			t.Liquid = d.Liquid
			t.Opaque = d.Opaque
			t.Transparent = d.Transparent
			t.Breakable = d.Breakable
			t.Billboard = d.Billboard
			t.Item = d.Item
			t.Hardness = d.Hardness
			t.EmitsLight = d.EmitsLight
			if len(d.EmitsColor) == 3 {
				t.EmitsColor = Color{R: d.EmitsColor[0], G: d.EmitsColor[1], B: d.EmitsColor[2]}
			}
			d.Textures.apply(&t.Textures)
		})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
