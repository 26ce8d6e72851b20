package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelforge.dev/internal/render"
	"voxelforge.dev/internal/scene"
)

// ChunkEntity is one chunk's geometry for a single pass, as seen by the
// culler. A chunk with both solid and fluid geometry yields two entities so
// opaque and transparent content sort independently.
type ChunkEntity struct {
	bounds      scene.AABB
	transparent bool
	streams     []streamBuffers
}

func (e *ChunkEntity) Bounds() scene.AABB { return e.bounds }
func (e *ChunkEntity) Transparent() bool  { return e.transparent }

// Entities returns the drawable chunk entities for this frame. Call from
// the manager goroutine.
func (m *Manager) Entities() []scene.Entity {
	out := make([]scene.Entity, 0, len(m.chunks))
	size := float32(m.cfg.ChunkSize)
	height := float32(m.cfg.ChunkHeight)
	for coord, e := range m.chunks {
		if e.gpu == nil {
			continue
		}
		min := mgl32.Vec3{float32(coord.X) * size, 0, float32(coord.Z) * size}
		bounds := scene.AABB{Min: min, Max: min.Add(mgl32.Vec3{size, height, size})}

		var opaque []streamBuffers
		for _, s := range []streamBuffers{e.gpu.solid, e.gpu.billboard, e.gpu.item} {
			if s.live() {
				opaque = append(opaque, s)
			}
		}
		if len(opaque) > 0 {
			out = append(out, &ChunkEntity{bounds: bounds, streams: opaque})
		}
		if e.gpu.fluid.live() {
			out = append(out, &ChunkEntity{bounds: bounds, transparent: true,
				streams: []streamBuffers{e.gpu.fluid}})
		}
	}
	return out
}

// LayerConfig binds the chunk layer to GPU programs and atlas textures.
type LayerConfig struct {
	OpaqueShader render.ShaderHandle
	FluidShader  render.ShaderHandle
	Textures     map[string]render.TextureHandle
}

// ChunkLayer culls the manager's entities and emits the frame's chunk draw
// commands: opaque front-to-back with depth writes, then transparent
// back-to-front with writes off.
type ChunkLayer struct {
	m      *Manager
	cam    *scene.Camera
	culler *scene.Culler
	cfg    LayerConfig

	lastVisible scene.VisibleSet
}

func NewChunkLayer(m *Manager, cam *scene.Camera, culler *scene.Culler, cfg LayerConfig) *ChunkLayer {
	return &ChunkLayer{m: m, cam: cam, culler: culler, cfg: cfg}
}

// LastVisible returns the previous frame's cull result, for stats.
func (l *ChunkLayer) LastVisible() scene.VisibleSet { return l.lastVisible }

func (l *ChunkLayer) CollectRenderCommands(frameTime float64) []render.Command {
	vis := l.culler.Process(l.cam, l.m.Entities())
	l.lastVisible = vis
	if len(vis.Opaque) == 0 && len(vis.Transparent) == 0 {
		return nil
	}

	var cmds []render.Command
	if len(vis.Opaque) > 0 {
		cmds = append(cmds,
			render.SetDepthState{Test: true, Write: true},
			render.SetCullMode{Mode: render.CullBack},
			render.UseShader{Shader: l.cfg.OpaqueShader})
		for _, e := range vis.Opaque {
			cmds = l.appendDraws(cmds, e.(*ChunkEntity), l.cfg.OpaqueShader)
		}
	}
	if len(vis.Transparent) > 0 {
		cmds = append(cmds,
			render.SetDepthState{Test: true, Write: false},
			render.SetCullMode{Mode: render.CullNone},
			render.UseShader{Shader: l.cfg.FluidShader})
		for _, e := range vis.Transparent {
			cmds = l.appendDraws(cmds, e.(*ChunkEntity), l.cfg.FluidShader)
		}
	}
	return cmds
}

func (l *ChunkLayer) appendDraws(cmds []render.Command, e *ChunkEntity, shader render.ShaderHandle) []render.Command {
	for _, s := range e.streams {
		cmds = append(cmds, render.DrawElements{
			Shader:   shader,
			Vertices: s.vertices,
			Indices:  s.indices,
			Texture:  l.cfg.Textures[s.atlas],
			Mode:     render.Triangles,
			Count:    s.indexCount,
		})
	}
	return cmds
}
