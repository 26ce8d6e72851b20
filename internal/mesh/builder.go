package mesh

import (
	"log"

	"voxelforge.dev/internal/atlas"
	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/chunk"
	"voxelforge.dev/internal/voxel"
)

// NeighborLookup resolves the voxel adjacent to local (x,y,z) across a face
// when that voxel lies in a bordering chunk. Implementations return air when
// no neighbor chunk exists; they must be safe for concurrent reads (the
// world hands the builder frozen border copies).
type NeighborLookup func(f voxel.Face, x, y, z int) uint16

// NoNeighbors treats every border crossing as air, rendering the full outer
// shell. Used for isolated chunks and in tests.
func NoNeighbors(voxel.Face, int, int, int) uint16 {
	return block.Air
}

// Builder constructs chunk meshes against a fixed registry and atlas set.
// It holds no per-build state, so one Builder serves all workers.
type Builder struct {
	reg *block.Registry
	atl *atlas.Registry
	log *log.Logger
}

func NewBuilder(reg *block.Registry, atl *atlas.Registry, logger *log.Logger) *Builder {
	return &Builder{reg: reg, atl: atl, log: logger}
}

// faceCorners holds the four CCW corner offsets of every cube face, ordered
// so the winding faces outward.
var faceCorners = [voxel.FaceCount][4][3]float32{
	voxel.FaceEast:  {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	voxel.FaceWest:  {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	voxel.FaceUp:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	voxel.FaceDown:  {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	voxel.FaceNorth: {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	voxel.FaceSouth: {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
}

var faceNormals = [voxel.FaceCount][3]float32{
	voxel.FaceEast:  {1, 0, 0},
	voxel.FaceWest:  {-1, 0, 0},
	voxel.FaceUp:    {0, 1, 0},
	voxel.FaceDown:  {0, -1, 0},
	voxel.FaceNorth: {0, 0, 1},
	voxel.FaceSouth: {0, 0, -1},
}

// fluidSurfaceDrop lowers fluid top surfaces slightly below the cell top.
const fluidSurfaceDrop = 0.125

// buildState accumulates one build. The warned set makes the mixed-atlas
// diagnostic fire once per stream per build instead of per face.
type buildState struct {
	b      *Builder
	snap   *chunk.Snapshot
	out    *ChunkMeshData
	warned map[string]bool
}

// Build meshes a chunk snapshot. Face by face, every non-air voxel emits a
// quad into the stream its render type selects, unless the adjacent voxel
// (same chunk, or the bordering chunk via neighbors) fully occludes that
// face. Unknown block IDs read as air and are skipped; a snapshot from a
// mismatched save never fails the build.
func (b *Builder) Build(snap *chunk.Snapshot, neighbors NeighborLookup) *ChunkMeshData {
	if neighbors == nil {
		neighbors = NoNeighbors
	}
	st := &buildState{
		b:    b,
		snap: snap,
		out: &ChunkMeshData{
			Solid:     Stream{Layout: SolidLayout},
			Billboard: Stream{Layout: BillboardLayout},
			Item:      Stream{Layout: ItemLayout},
			Fluid:     Stream{Layout: FluidLayout},
		},
		warned: make(map[string]bool),
	}

	for z := 0; z < snap.Size; z++ {
		for y := 0; y < snap.Height; y++ {
			for x := 0; x < snap.Size; x++ {
				id := snap.Block(x, y, z)
				if id == block.Air {
					continue
				}
				bt, ok := b.reg.Lookup(id)
				if !ok || bt.IsAir() {
					// Defensive default: malformed save data meshes as air.
					continue
				}
				switch bt.RenderType() {
				case block.RenderBillboard:
					st.emitBillboard(x, y, z, bt)
				case block.RenderItem:
					st.emitItem(x, y, z, bt)
				default:
					st.emitCube(x, y, z, bt, neighbors)
				}
			}
		}
	}
	return st.out
}

// emitCube emits the culled cube faces of solid, cutout, transparent and
// fluid blocks.
func (st *buildState) emitCube(x, y, z int, bt *block.Type, neighbors NeighborLookup) {
	fluid := bt.RenderType() == block.RenderFluid
	for _, f := range voxel.Faces() {
		nbID, inChunk := st.adjacent(x, y, z, f)
		if !inChunk {
			nbID = neighbors(f, x, y, z)
		}
		nbType := st.b.reg.Get(nbID)
		if nbType.Occludes(bt) {
			continue
		}

		region, ok := st.region(bt, f)
		if !ok {
			continue
		}
		light := st.light(x, y, z)

		corners := faceCorners[f]
		n := faceNormals[f]
		if fluid {
			st.appendFluidQuad(x, y, z, f, corners, n, region, light)
			continue
		}
		tint := st.tint(x, y, z)
		stream := &st.out.Solid
		if !st.bindAtlas(stream, "solid", bt.Name, bt.Textures[f].Atlas) {
			continue
		}
		base := uint32(stream.VertexCount())
		for _, c := range corners {
			stream.Data = append(stream.Data,
				float32(x)+c[0], float32(y)+c[1], float32(z)+c[2],
				n[0], n[1], n[2])
			stream.Data = append(stream.Data, 0, 0) // uv patched below
			stream.Data = append(stream.Data, light, tint[0], tint[1], tint[2])
		}
		patchQuadUVs(stream, base, region)
		appendQuadIndices(stream, base)
	}
}

func (st *buildState) appendFluidQuad(x, y, z int, f voxel.Face, corners [4][3]float32, n [3]float32, region atlas.Region, light float32) {
	stream := &st.out.Fluid
	bt := st.b.reg.Get(st.snap.Block(x, y, z))
	if !st.bindAtlas(stream, "fluid", bt.Name, bt.Textures[f].Atlas) {
		return
	}
	base := uint32(stream.VertexCount())
	for _, c := range corners {
		cy := c[1]
		// Drop the fluid surface below the cell top unless more fluid sits above.
		if cy == 1 {
			if above, in := st.adjacent(x, y, z, voxel.FaceUp); !in || st.b.reg.Get(above).ID != bt.ID {
				cy = 1 - fluidSurfaceDrop
			}
		}
		stream.Data = append(stream.Data,
			float32(x)+c[0], float32(y)+cy, float32(z)+c[2],
			n[0], n[1], n[2],
			0, 0, // uv patched below
			light)
	}
	patchQuadUVs(stream, base, region)
	appendQuadIndices(stream, base)
}

// billboardQuads are the two crossed quads a vegetation-style block emits
// instead of cube faces.
var billboardQuads = [2][4][3]float32{
	{{0, 0, 0}, {1, 0, 1}, {1, 1, 1}, {0, 1, 0}},
	{{1, 0, 0}, {0, 0, 1}, {0, 1, 1}, {1, 1, 0}},
}

func (st *buildState) emitBillboard(x, y, z int, bt *block.Type) {
	region, ok := st.region(bt, voxel.FaceNorth)
	if !ok {
		return
	}
	stream := &st.out.Billboard
	if !st.bindAtlas(stream, "billboard", bt.Name, bt.Textures[voxel.FaceNorth].Atlas) {
		return
	}
	light := st.light(x, y, z)
	for _, quad := range billboardQuads {
		base := uint32(stream.VertexCount())
		for _, c := range quad {
			stream.Data = append(stream.Data,
				float32(x)+c[0], float32(y)+c[1], float32(z)+c[2],
				0, 0, // uv patched below
				light)
		}
		patchQuadUVs(stream, base, region)
		appendQuadIndices(stream, base)
	}
}

// itemScale shrinks item blocks toward the cell center; neighbors can never
// occlude them, so all six faces are emitted unconditionally.
const itemScale float32 = 0.5

func (st *buildState) emitItem(x, y, z int, bt *block.Type) {
	stream := &st.out.Item
	off := (1 - itemScale) / 2
	for _, f := range voxel.Faces() {
		region, ok := st.region(bt, f)
		if !ok {
			continue
		}
		if !st.bindAtlas(stream, "item", bt.Name, bt.Textures[f].Atlas) {
			continue
		}
		base := uint32(stream.VertexCount())
		for _, c := range faceCorners[f] {
			stream.Data = append(stream.Data,
				float32(x)+off+c[0]*itemScale,
				float32(y)+off+c[1]*itemScale,
				float32(z)+off+c[2]*itemScale,
				0, 0) // uv patched below
		}
		patchQuadUVs(stream, base, region)
		appendQuadIndices(stream, base)
	}
}

// adjacent resolves a same-chunk neighbor from the snapshot. Returns false
// when the neighbor crosses the chunk border.
func (st *buildState) adjacent(x, y, z int, f voxel.Face) (uint16, bool) {
	dx, dy, dz := f.Delta()
	nx, ny, nz := x+dx, y+dy, z+dz
	if nx < 0 || nx >= st.snap.Size || ny < 0 || ny >= st.snap.Height || nz < 0 || nz >= st.snap.Size {
		return block.Air, false
	}
	return st.snap.Block(nx, ny, nz), true
}

func (st *buildState) light(x, y, z int) float32 {
	return float32(st.snap.LightLevel(x, y, z)) / float32(chunk.MaxLight)
}

func (st *buildState) tint(x, y, z int) [3]float32 {
	c := st.snap.LightColor(x, y, z)
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

// region resolves a face's atlas tile to UVs. A missing atlas or tile is a
// content configuration error: logged once per build, face skipped.
func (st *buildState) region(bt *block.Type, f voxel.Face) (atlas.Region, bool) {
	ref := bt.Textures[f]
	region, err := st.b.atl.Region(ref.Atlas, ref.Tile)
	if err != nil {
		key := "region:" + bt.Name + ":" + ref.Atlas
		if !st.warned[key] && st.b.log != nil {
			st.warned[key] = true
			st.b.log.Printf("chunk %v: block %q face %v: %v (face skipped)", st.snap.Coords, bt.Name, f, err)
		}
		return atlas.Region{}, false
	}
	return region, true
}

// bindAtlas pins a stream to the first atlas a face references. A second
// atlas within the same stream is a configuration error: the face is logged
// once per build and skipped, deterministically, so a bad definition never
// silently loses geometry without a trace. The caller passes the atlas of
// the specific face being emitted; a block may legally mix atlases across
// faces as long as each stream stays on one.
func (st *buildState) bindAtlas(s *Stream, streamName, blockName, atlasName string) bool {
	if s.Atlas == "" {
		s.Atlas = atlasName
		return true
	}
	if s.Atlas == atlasName {
		return true
	}
	key := "atlas:" + streamName + ":" + atlasName
	if !st.warned[key] && st.b.log != nil {
		st.warned[key] = true
		st.b.log.Printf("chunk %v: %s stream bound to atlas %q, block %q face wants %q (face skipped)",
			st.snap.Coords, streamName, s.Atlas, blockName, atlasName)
	}
	return false
}

// quadUVs maps the four quad corners onto a tile region.
func patchQuadUVs(s *Stream, base uint32, r atlas.Region) {
	stride := s.Layout.Stride()
	uvOff := 0
	for _, a := range s.Layout.Attributes {
		if a.Name == "uv" {
			break
		}
		uvOff += a.Size
	}
	uv := [4][2]float32{{r.U0, r.V1}, {r.U1, r.V1}, {r.U1, r.V0}, {r.U0, r.V0}}
	for i := 0; i < 4; i++ {
		at := (int(base)+i)*stride + uvOff
		s.Data[at] = uv[i][0]
		s.Data[at+1] = uv[i][1]
	}
}

func appendQuadIndices(s *Stream, base uint32) {
	s.Indices = append(s.Indices,
		base, base+1, base+2,
		base+2, base+3, base)
}
