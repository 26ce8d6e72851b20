package block

import (
	"fmt"
	"sync"
)

// Registry maps block IDs and names to their definitions. IDs are assigned
// sequentially at registration and are stable for the lifetime of a world
// save; re-registering content in a different order against existing save
// data silently reinterprets stored blocks and is not defended against here.
//
// Registration happens at startup/content load. During gameplay the registry
// is read-only, so lookups on the meshing hot path take no locks.
type Registry struct {
	mu     sync.Mutex // guards registration only
	byID   []*Type
	byName map[string]*Type
}

// NewRegistry creates a registry with air pre-registered as ID 0.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Type)}
	air := &Type{ID: Air, Name: "air", Transparent: true}
	air.renderType = deriveRenderType(air)
	r.byID = append(r.byID, air)
	r.byName["air"] = air
	return r
}

// Register creates a block type under the next free ID, hands it to the
// configurator to fill in flags and textures, then freezes it. The name must
// be unique.
func (r *Registry) Register(name string, configure func(*Type)) (*Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return nil, fmt.Errorf("block: empty name")
	}
	if _, dup := r.byName[name]; dup {
		return nil, fmt.Errorf("block %q: already registered", name)
	}
	if len(r.byID) > 0xFFFF {
		return nil, fmt.Errorf("block %q: ID space exhausted", name)
	}

	t := &Type{ID: uint16(len(r.byID)), Name: name}
	if configure != nil {
		configure(t)
	}
	t.renderType = deriveRenderType(t)

	r.byID = append(r.byID, t)
	r.byName[name] = t
	return t, nil
}

// Get returns the type for id. Unknown IDs resolve to air: chunk data from a
// save written against different content must never crash the mesher.
func (r *Registry) Get(id uint16) *Type {
	if int(id) >= len(r.byID) {
		return r.byID[Air]
	}
	return r.byID[id]
}

// Lookup returns the type for id and whether it is registered.
func (r *Registry) Lookup(id uint16) (*Type, bool) {
	if int(id) >= len(r.byID) {
		return nil, false
	}
	return r.byID[id], true
}

// GetByName returns the type registered under name, or nil.
func (r *Registry) GetByName(name string) *Type {
	return r.byName[name]
}

// Len returns the number of registered types, air included.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Palette returns the registered names indexed by ID.
func (r *Registry) Palette() []string {
	out := make([]string, len(r.byID))
	for i, t := range r.byID {
		out[i] = t.Name
	}
	return out
}
