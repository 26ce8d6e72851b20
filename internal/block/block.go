// Package block defines block types and the registry that maps numeric
// block IDs (the values stored in chunk data) to their definitions.
package block

import (
	"voxelforge.dev/internal/voxel"
)

// Air is the reserved empty-block ID. It is always registered first.
const Air uint16 = 0

// RenderType selects the geometry stream a block's faces are emitted into.
type RenderType uint8

const (
	RenderSolid RenderType = iota
	RenderTransparent
	RenderCutout
	RenderFluid
	RenderItem
	RenderBillboard
	RenderClouds
)

var renderTypeNames = [...]string{
	"solid", "transparent", "cutout", "fluid", "item", "billboard", "clouds",
}

func (rt RenderType) String() string {
	if int(rt) < len(renderTypeNames) {
		return renderTypeNames[rt]
	}
	return "unknown"
}

// TextureRef names one atlas tile.
type TextureRef struct {
	Atlas string
	Tile  int
}

// TextureSet assigns a texture to each of the six faces.
type TextureSet [voxel.FaceCount]TextureRef

// SetAll assigns the same texture to every face.
func (ts *TextureSet) SetAll(ref TextureRef) {
	for i := range ts {
		ts[i] = ref
	}
}

// SetColumn assigns top, bottom and side textures (the common grass-block
// grouping).
func (ts *TextureSet) SetColumn(top, bottom, sides TextureRef) {
	ts[voxel.FaceUp] = top
	ts[voxel.FaceDown] = bottom
	ts[voxel.FaceEast] = sides
	ts[voxel.FaceWest] = sides
	ts[voxel.FaceNorth] = sides
	ts[voxel.FaceSouth] = sides
}

// Color is an 8-bit RGB triple used for light emission tints.
type Color struct {
	R, G, B uint8
}

// White is the neutral "no tint" color.
var White = Color{R: 255, G: 255, B: 255}

// Type is an immutable-after-registration block definition.
type Type struct {
	ID   uint16
	Name string

	Solid       bool
	Liquid      bool
	Opaque      bool
	Transparent bool
	Breakable   bool
	Billboard   bool
	Item        bool

	Hardness   float32
	EmitsLight float32
	EmitsColor Color

	Textures TextureSet

	renderType RenderType
}

// RenderType reports the stream this block's geometry belongs to. The value
// is derived once at registration from the boolean flags; the precedence
// order below decides ambiguous flag combinations and must not change, since
// existing content relies on it.
func (t *Type) RenderType() RenderType {
	return t.renderType
}

// IsAir reports whether this is the reserved empty block.
func (t *Type) IsAir() bool {
	return t.ID == Air
}

// deriveRenderType computes the geometry stream from the flags. Precedence:
// Transparent, Solid, Opaque (cutout), Liquid (fluid), Item, Billboard,
// then transparent as the fallback.
func deriveRenderType(t *Type) RenderType {
	switch {
	case t.Transparent:
		return RenderTransparent
	case t.Solid:
		return RenderSolid
	case t.Opaque:
		return RenderCutout
	case t.Liquid:
		return RenderFluid
	case t.Item:
		return RenderItem
	case t.Billboard:
		return RenderBillboard
	default:
		return RenderTransparent
	}
}

// Occludes reports whether a voxel of this type fully hides the touching
// face of an adjacent voxel of type other. Air never occludes; an opaque
// solid hides any neighbor face; a liquid hides faces of the same liquid so
// fluid bodies do not mesh interior surfaces.
func (t *Type) Occludes(other *Type) bool {
	if t.IsAir() {
		return false
	}
	if t.Opaque && t.Solid {
		return true
	}
	if t.Liquid && other != nil && other.ID == t.ID {
		return true
	}
	return false
}
