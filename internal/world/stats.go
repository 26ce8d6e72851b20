package world

// Stats is a point-in-time view of the manager's counters. Safe to call
// from any goroutine.
type Stats struct {
	ChunksLoaded  int64  `json:"chunks_loaded"`
	MeshesBuilt   uint64 `json:"meshes_built"`
	BuildsDropped uint64 `json:"builds_dropped"`
}

func (m *Manager) Stats() Stats {
	return Stats{
		ChunksLoaded:  m.loaded.Load(),
		MeshesBuilt:   m.meshesBuilt.Load(),
		BuildsDropped: m.buildsDropped.Load(),
	}
}

// Flush saves every modified loaded chunk. Call on the manager goroutine,
// typically at shutdown or on a snapshot interval.
func (m *Manager) Flush() error {
	if m.store == nil {
		return nil
	}
	var firstErr error
	for coord, e := range m.chunks {
		if !e.c.Modified() {
			continue
		}
		if err := m.store.SaveChunk(e.c); err != nil {
			m.log.Printf("chunk %v flush failed: %v", coord, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.c.ClearModified()
	}
	return firstErr
}

// ChunkCount returns the number of tracked chunks including ones still
// loading. Manager goroutine only.
func (m *Manager) ChunkCount() int {
	return len(m.chunks)
}
