package render

import (
	"log"
	"sort"
	"sync"
)

// Layer is a source of render commands. Layers are collected in registration
// order each frame; a layer may return nil when it has nothing to draw.
type Layer interface {
	CollectRenderCommands(frameTime float64) []Command
}

// LayerFunc adapts a function to the Layer interface.
type LayerFunc func(frameTime float64) []Command

func (f LayerFunc) CollectRenderCommands(frameTime float64) []Command {
	return f(frameTime)
}

type layerEntry struct {
	name string
	l    Layer
	// stateSort reorders the layer's draw commands by shader then texture to
	// cut state changes. Only safe for depth-tested opaque content.
	stateSort bool
}

// Pipeline gathers per-layer command streams in order and submits the frame
// to the backend. Backend errors are logged and dropped; a bad frame must
// not take the loop down.
type Pipeline struct {
	mu      sync.Mutex
	backend Backend
	layers  []layerEntry
	log     *log.Logger

	frames    uint64
	submitted uint64
}

func NewPipeline(backend Backend, logger *log.Logger) *Pipeline {
	return &Pipeline{backend: backend, log: logger}
}

// AddLayer appends a layer to the frame order. stateSort enables opaque
// draw reordering within this layer.
func (p *Pipeline) AddLayer(name string, l Layer, stateSort bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.layers = append(p.layers, layerEntry{name: name, l: l, stateSort: stateSort})
}

// RemoveLayer drops the named layer. Unknown names are ignored.
func (p *Pipeline) RemoveLayer(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.layers {
		if e.name == name {
			p.layers = append(p.layers[:i], p.layers[i+1:]...)
			return
		}
	}
}

// Frame collects commands from every layer and submits them. Returns the
// number of commands submitted.
func (p *Pipeline) Frame(frameTime float64) int {
	p.mu.Lock()
	layers := make([]layerEntry, len(p.layers))
	copy(layers, p.layers)
	p.mu.Unlock()

	var cmds []Command
	for _, e := range layers {
		layerCmds := e.l.CollectRenderCommands(frameTime)
		if len(layerCmds) == 0 {
			continue
		}
		if e.stateSort {
			sortDrawRuns(layerCmds)
		}
		cmds = append(cmds, layerCmds...)
	}

	if err := p.backend.Submit(cmds); err != nil {
		p.log.Printf("frame submit failed (%d commands): %v", len(cmds), err)
		return 0
	}
	p.mu.Lock()
	p.frames++
	p.submitted += uint64(len(cmds))
	p.mu.Unlock()
	return len(cmds)
}

// ViewportResize forwards the new surface size to the backend.
func (p *Pipeline) ViewportResize(width, height int) {
	p.backend.Viewport(width, height)
}

// Stats returns cumulative frame and command counts.
func (p *Pipeline) Stats() (frames, commands uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames, p.submitted
}

// sortDrawRuns reorders contiguous runs of draw commands by shader then
// texture. State commands (depth, cull, scissor, clear) act as barriers so
// reordering never crosses a state change. Runs drawn with depth writes off
// are left alone: those are transparent passes whose back-to-front order is
// load-bearing.
func sortDrawRuns(cmds []Command) {
	start := -1
	depthWrite := true
	for i := 0; i <= len(cmds); i++ {
		isDraw := false
		if i < len(cmds) {
			switch cmds[i].(type) {
			case DrawArray, DrawElements:
				isDraw = true
			}
		}
		if isDraw {
			if start < 0 {
				start = i
			}
			continue
		}
		// The run that just ended was drawn under the current depth state.
		if start >= 0 && i-start > 1 && depthWrite {
			run := cmds[start:i]
			sort.SliceStable(run, func(a, b int) bool {
				sa, ta := drawKey(run[a])
				sb, tb := drawKey(run[b])
				if sa != sb {
					return sa < sb
				}
				return ta < tb
			})
		}
		start = -1
		if i < len(cmds) {
			if ds, ok := cmds[i].(SetDepthState); ok {
				depthWrite = ds.Write
			}
		}
	}
}

func drawKey(c Command) (ShaderHandle, TextureHandle) {
	switch d := c.(type) {
	case DrawArray:
		return d.Shader, d.Texture
	case DrawElements:
		return d.Shader, d.Texture
	}
	return 0, 0
}
