package world

import (
	"voxelforge.dev/internal/mesh"
	"voxelforge.dev/internal/render"
)

// streamBuffers holds the GPU handles for one geometry stream.
type streamBuffers struct {
	vertices   render.BufferHandle
	indices    render.BufferHandle
	indexCount int
	atlas      string
}

func (s *streamBuffers) live() bool { return s.indexCount > 0 }

// chunkBuffers holds a chunk's uploaded geometry, one entry per stream.
type chunkBuffers struct {
	solid     streamBuffers
	billboard streamBuffers
	item      streamBuffers
	fluid     streamBuffers
}

// uploadMesh pushes every non-empty stream to the backend. On failure the
// partially created buffers are returned so the caller can release them.
func uploadMesh(b render.Backend, data *mesh.ChunkMeshData) (*chunkBuffers, error) {
	out := &chunkBuffers{}
	for _, s := range []struct {
		src *mesh.Stream
		dst *streamBuffers
	}{
		{&data.Solid, &out.solid},
		{&data.Billboard, &out.billboard},
		{&data.Item, &out.item},
		{&data.Fluid, &out.fluid},
	} {
		if !s.src.HasGeometry() {
			continue
		}
		v, err := b.CreateVertexBuffer(s.src.Data)
		if err != nil {
			return out, err
		}
		i, err := b.CreateIndexBuffer(s.src.Indices)
		if err != nil {
			s.dst.vertices = v
			return out, err
		}
		*s.dst = streamBuffers{
			vertices:   v,
			indices:    i,
			indexCount: len(s.src.Indices),
			atlas:      s.src.Atlas,
		}
	}
	return out, nil
}

// release frees every buffer. Safe on partially uploaded sets.
func (c *chunkBuffers) release(b render.Backend) {
	if c == nil {
		return
	}
	for _, s := range []*streamBuffers{&c.solid, &c.billboard, &c.item, &c.fluid} {
		b.ReleaseBuffer(s.vertices)
		b.ReleaseBuffer(s.indices)
		*s = streamBuffers{}
	}
}
