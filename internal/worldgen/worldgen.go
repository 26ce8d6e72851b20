package worldgen

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/chunk"
)

// Generator fills an empty chunk with terrain. Implementations must be
// deterministic: the same seed and chunk coordinates always produce the
// same blocks.
type Generator interface {
	Generate(c *chunk.Chunk)
}

// Params tunes the terrain shape. Zero values are replaced by DefaultParams.
type Params struct {
	Seed        int64
	SeaLevel    int
	Amplitude   float32
	Octaves     int
	Lacunarity  float32
	Persistence float32
	Scale       float32

	CaveScale     float32
	CaveThreshold float32
}

func DefaultParams(seed int64) Params {
	return Params{
		Seed:          seed,
		SeaLevel:      62,
		Amplitude:     24,
		Octaves:       4,
		Lacunarity:    1.5,
		Persistence:   0.5,
		Scale:         96,
		CaveScale:     0.06,
		CaveThreshold: 0.62,
	}
}

// Terrain is a heightmap generator with a 3D cave carve pass.
type Terrain struct {
	noise  opensimplex.Noise32
	params Params

	stone, dirt, grass, sand, water uint16
}

// NewTerrain resolves the block IDs it places from the registry. The five
// terrain blocks must already be registered.
func NewTerrain(params Params, reg *block.Registry) (*Terrain, error) {
	t := &Terrain{
		noise:  opensimplex.New32(params.Seed),
		params: params,
	}
	for _, b := range []struct {
		name string
		id   *uint16
	}{
		{"stone", &t.stone},
		{"dirt", &t.dirt},
		{"grass", &t.grass},
		{"sand", &t.sand},
		{"water", &t.water},
	} {
		typ := reg.GetByName(b.name)
		if typ == nil {
			return nil, fmt.Errorf("worldgen: block %q not registered", b.name)
		}
		*b.id = typ.ID
	}
	return t, nil
}

// Generate fills the chunk column by column: fractal heightmap, soil layers,
// water up to sea level, then a cave carve below the surface.
func (t *Terrain) Generate(c *chunk.Chunk) {
	coords := c.Coordinates()
	size, height := c.Size(), c.Height()
	baseX := coords.X * size
	baseY := coords.Y * height
	baseZ := coords.Z * size

	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			wx, wz := baseX+x, baseZ+z
			surface := t.surfaceHeight(wx, wz)

			for y := 0; y < height; y++ {
				wy := baseY + y
				id := t.blockAt(wx, wy, wz, surface)
				if id != block.Air {
					c.SetBlock(x, y, z, id)
				}
			}
		}
	}
	// Generation output is the baseline, not an edit.
	c.ClearModified()
}

func (t *Terrain) surfaceHeight(wx, wz int) int {
	p := t.params
	var val float32
	amp := p.Amplitude
	freq := float32(1)
	for i := 0; i < p.Octaves; i++ {
		val += t.noise.Eval2(float32(wx)*freq/p.Scale, float32(wz)*freq/p.Scale) * amp
		amp *= p.Persistence
		freq *= p.Lacunarity
	}
	return p.SeaLevel + int(val)
}

func (t *Terrain) blockAt(wx, wy, wz, surface int) uint16 {
	p := t.params
	if wy > surface {
		if wy <= p.SeaLevel {
			return t.water
		}
		return block.Air
	}

	// Carve caves in the solid body. The floor row stays solid so columns
	// never open into the void.
	if wy > 0 && wy < surface-1 {
		carve := t.noise.Eval3(
			float32(wx)*p.CaveScale,
			float32(wy)*p.CaveScale,
			float32(wz)*p.CaveScale,
		)
		if carve > p.CaveThreshold {
			return block.Air
		}
	}

	switch {
	case wy == surface && surface <= p.SeaLevel+1:
		return t.sand
	case wy == surface:
		return t.grass
	case wy >= surface-3:
		return t.dirt
	default:
		return t.stone
	}
}
