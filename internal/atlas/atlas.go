// Package atlas tracks texture atlases and resolves tile indices into
// normalized UV regions for the mesher.
package atlas

import (
	"fmt"
	"sort"
	"sync"
)

// Atlas describes one texture image subdivided into a grid of tiles.
type Atlas struct {
	Name    string
	TileW   int // tile width in pixels
	TileH   int // tile height in pixels
	TexW    int // full texture width in pixels
	TexH    int // full texture height in pixels
	Margin  int // pixels before the first tile on each axis
	Spacing int // pixels between adjacent tiles

	cols int
	rows int
}

// Tiles returns how many tiles the atlas holds.
func (a *Atlas) Tiles() int {
	return a.cols * a.rows
}

// Region is a normalized UV rectangle within an atlas texture.
type Region struct {
	U0, V0 float32
	U1, V1 float32
}

// Registry holds all registered atlases by name. Registration happens at
// content-load time; lookups afterwards are read-only.
type Registry struct {
	mu      sync.RWMutex
	atlases map[string]*Atlas
}

func NewRegistry() *Registry {
	return &Registry{atlases: make(map[string]*Atlas)}
}

// Register adds an atlas. The grid geometry is derived from the texture and
// tile dimensions; a geometry that fits no whole tile is rejected.
func (r *Registry) Register(name string, tileW, tileH, texW, texH, margin, spacing int) (*Atlas, error) {
	if name == "" {
		return nil, fmt.Errorf("atlas: empty name")
	}
	if tileW <= 0 || tileH <= 0 || texW <= 0 || texH <= 0 {
		return nil, fmt.Errorf("atlas %q: non-positive dimensions", name)
	}
	cols := (texW - 2*margin + spacing) / (tileW + spacing)
	rows := (texH - 2*margin + spacing) / (tileH + spacing)
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("atlas %q: %dx%d texture holds no %dx%d tiles", name, texW, texH, tileW, tileH)
	}

	a := &Atlas{
		Name: name, TileW: tileW, TileH: tileH,
		TexW: texW, TexH: texH,
		Margin: margin, Spacing: spacing,
		cols: cols, rows: rows,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.atlases[name]; dup {
		return nil, fmt.Errorf("atlas %q: already registered", name)
	}
	r.atlases[name] = a
	return a, nil
}

// Get returns the named atlas, or nil if unknown.
func (r *Registry) Get(name string) *Atlas {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.atlases[name]
}

// Names returns the registered atlas names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.atlases))
	for n := range r.atlases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Region resolves a tile index within the named atlas to normalized UVs.
// Tiles are numbered left to right, top to bottom.
func (r *Registry) Region(name string, tile int) (Region, error) {
	a := r.Get(name)
	if a == nil {
		return Region{}, fmt.Errorf("atlas %q: not registered", name)
	}
	if tile < 0 || tile >= a.Tiles() {
		return Region{}, fmt.Errorf("atlas %q: tile %d out of range [0,%d)", name, tile, a.Tiles())
	}
	col := tile % a.cols
	row := tile / a.cols
	px := a.Margin + col*(a.TileW+a.Spacing)
	py := a.Margin + row*(a.TileH+a.Spacing)
	return Region{
		U0: float32(px) / float32(a.TexW),
		V0: float32(py) / float32(a.TexH),
		U1: float32(px+a.TileW) / float32(a.TexW),
		V1: float32(py+a.TileH) / float32(a.TexH),
	}, nil
}
