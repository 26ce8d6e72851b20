// Package mesh turns chunk voxel data into renderable geometry. Building is
// a pure transform over a chunk snapshot and is safe on any goroutine; the
// resulting ChunkMeshData is immutable once returned.
package mesh

// VertexAttribute describes one interleaved float32 attribute.
type VertexAttribute struct {
	Name string
	Size int // float32 components
}

// VertexLayout describes the interleaved format of a geometry stream.
type VertexLayout struct {
	Name       string
	Attributes []VertexAttribute
}

// Stride returns the per-vertex float32 count.
func (l VertexLayout) Stride() int {
	n := 0
	for _, a := range l.Attributes {
		n += a.Size
	}
	return n
}

// The four stream layouts. Billboards carry no normal (they are lit flat),
// items carry positions and UVs only, fluids skip tinting.
var (
	SolidLayout = VertexLayout{Name: "solid", Attributes: []VertexAttribute{
		{"position", 3}, {"normal", 3}, {"uv", 2}, {"light", 1}, {"tint", 3},
	}}
	BillboardLayout = VertexLayout{Name: "billboard", Attributes: []VertexAttribute{
		{"position", 3}, {"uv", 2}, {"light", 1},
	}}
	ItemLayout = VertexLayout{Name: "item", Attributes: []VertexAttribute{
		{"position", 3}, {"uv", 2},
	}}
	FluidLayout = VertexLayout{Name: "fluid", Attributes: []VertexAttribute{
		{"position", 3}, {"normal", 3}, {"uv", 2}, {"light", 1},
	}}
)

// Stream is one geometry category of a chunk mesh: interleaved vertex data,
// a triangle-list index array and the single atlas the UVs refer to.
type Stream struct {
	Layout  VertexLayout
	Data    []float32
	Indices []uint32
	Atlas   string
}

// HasGeometry reports whether the stream holds any triangles.
func (s *Stream) HasGeometry() bool {
	return len(s.Data) > 0 && len(s.Indices) > 0
}

// VertexCount returns the number of vertices in the stream.
func (s *Stream) VertexCount() int {
	stride := s.Layout.Stride()
	if stride == 0 {
		return 0
	}
	return len(s.Data) / stride
}

// QuadCount returns the number of quads (two triangles each).
func (s *Stream) QuadCount() int {
	return len(s.Indices) / 6
}

// ChunkMeshData is the atomically-produced output of one mesh build: four
// independent geometry streams. A consumer sees either a previous complete
// mesh or this one, never a partial mix.
type ChunkMeshData struct {
	Solid     Stream
	Billboard Stream
	Item      Stream
	Fluid     Stream
}

func (m *ChunkMeshData) HasSolidGeometry() bool     { return m.Solid.HasGeometry() }
func (m *ChunkMeshData) HasBillboardGeometry() bool { return m.Billboard.HasGeometry() }
func (m *ChunkMeshData) HasItemGeometry() bool      { return m.Item.HasGeometry() }
func (m *ChunkMeshData) HasFluidGeometry() bool     { return m.Fluid.HasGeometry() }

// Empty reports whether no stream holds geometry.
func (m *ChunkMeshData) Empty() bool {
	return !m.HasSolidGeometry() && !m.HasBillboardGeometry() &&
		!m.HasItemGeometry() && !m.HasFluidGeometry()
}
