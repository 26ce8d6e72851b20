package world

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/chunk"
	"voxelforge.dev/internal/collide"
	"voxelforge.dev/internal/job"
	"voxelforge.dev/internal/mesh"
	"voxelforge.dev/internal/render"
	"voxelforge.dev/internal/voxel"
	"voxelforge.dev/internal/worldgen"
)

// Store persists modified chunks. Load fills the chunk from saved data and
// reports whether a save existed; a saved chunk takes precedence over the
// generator.
type Store interface {
	LoadChunk(c *chunk.Chunk) (bool, error)
	SaveChunk(c *chunk.Chunk) error
}

// Config sizes the managed world.
type Config struct {
	ChunkSize     int
	ChunkHeight   int
	LoadRadius    int
	BuildCollider bool
}

// BuildResult is what a mesh build job resolves to.
type BuildResult struct {
	Coords   voxel.ChunkCoord
	Mesh     *mesh.ChunkMeshData
	Collider *collide.ColliderData
}

// entry tracks one managed chunk and its in-flight work. All fields are
// owned by the manager goroutine; jobs only ever see frozen snapshots.
type entry struct {
	c        *chunk.Chunk
	loadJob  *job.Handle
	buildJob *job.Handle
	buildSeq uint64
	gpu      *chunkBuffers
	collider *collide.ColliderData
	// dying marks an entry whose load job is still resolving after the
	// chunk left the radius; it is torn down when the job settles.
	dying bool
}

// Manager owns the chunk set. Single-owner discipline: every method except
// Stats must be called from the same goroutine (the frame loop); background
// jobs communicate back through the main-thread queue.
type Manager struct {
	cfg     Config
	reg     *block.Registry
	gen     worldgen.Generator
	builder *mesh.Builder
	sched   *job.Scheduler
	mainQ   *job.MainQueue
	backend render.Backend
	store   Store
	log     *log.Logger

	chunks map[voxel.ChunkCoord]*entry

	loaded        atomic.Int64
	meshesBuilt   atomic.Uint64
	buildsDropped atomic.Uint64
}

func NewManager(cfg Config, reg *block.Registry, gen worldgen.Generator, builder *mesh.Builder,
	sched *job.Scheduler, mainQ *job.MainQueue, backend render.Backend, store Store, logger *log.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		reg:     reg,
		gen:     gen,
		builder: builder,
		sched:   sched,
		mainQ:   mainQ,
		backend: backend,
		store:   store,
		log:     logger,
		chunks:  make(map[voxel.ChunkCoord]*entry),
	}
}

// Update maintains the load radius around the center chunk and schedules
// mesh builds for dirty chunks. Call once per frame before draining the
// main-thread queue.
func (m *Manager) Update(center voxel.ChunkCoord) {
	r := m.cfg.LoadRadius

	// Load chunks entering the radius.
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			coord := voxel.ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			if _, ok := m.chunks[coord]; !ok {
				m.load(coord, center)
			}
		}
	}

	// Unload chunks that left the radius.
	for coord, e := range m.chunks {
		if abs(coord.X-center.X) <= r && abs(coord.Z-center.Z) <= r {
			continue
		}
		m.unload(coord, e)
	}

	// Schedule builds for dirty loaded chunks.
	for coord, e := range m.chunks {
		if e.c.State() == chunk.Loaded && e.c.MeshDirty() && e.buildJob == nil {
			m.scheduleBuild(coord, e, center)
		}
	}
}

func (m *Manager) load(coord voxel.ChunkCoord, center voxel.ChunkCoord) {
	e := &entry{c: chunk.New(coord, m.cfg.ChunkSize, m.cfg.ChunkHeight)}
	e.c.TransitionTo(chunk.Loading)
	m.chunks[coord] = e

	// The job owns the chunk exclusively until onLoadDone runs on the
	// manager goroutine.
	c := e.c
	h := m.sched.Schedule(job.Job{
		Name:     fmt.Sprintf("load %v", coord),
		Priority: loadPriority(coord, center),
		Run: func(ctx context.Context) (any, error) {
			if m.store != nil {
				ok, err := m.store.LoadChunk(c)
				if err != nil {
					return nil, fmt.Errorf("load %v: %w", coord, err)
				}
				if ok {
					return nil, nil
				}
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			m.gen.Generate(c)
			return nil, nil
		},
	})
	e.loadJob = h
	go func() {
		_, err := h.Wait(context.Background())
		m.mainQ.RunOnMain(func() { m.onLoadDone(coord, err) })
	}()
}

func (m *Manager) onLoadDone(coord voxel.ChunkCoord, err error) {
	e, ok := m.chunks[coord]
	if !ok {
		return
	}
	e.loadJob = nil

	if e.dying {
		// The chunk left the radius before its load resolved. Walk the
		// remaining lifecycle and drop it.
		if err == nil {
			e.c.TransitionTo(chunk.Loaded)
			e.c.TransitionTo(chunk.Unloading)
			e.c.TransitionTo(chunk.Unloaded)
		}
		delete(m.chunks, coord)
		return
	}
	if err != nil {
		m.log.Printf("chunk %v load failed: %v", coord, err)
		delete(m.chunks, coord)
		return
	}
	e.c.TransitionTo(chunk.Loaded)
	e.c.MarkMeshDirty()
	m.loaded.Add(1)
}

func (m *Manager) unload(coord voxel.ChunkCoord, e *entry) {
	switch e.c.State() {
	case chunk.Loading:
		// Cancel the load and let onLoadDone finish the teardown.
		if e.loadJob != nil {
			e.loadJob.Cancel()
		}
		e.dying = true
		return
	case chunk.Loaded:
	default:
		return
	}

	if e.buildJob != nil {
		e.buildJob.Cancel()
		e.buildJob = nil
	}
	e.buildSeq++ // any in-flight result is now stale

	e.c.TransitionTo(chunk.Unloading)
	if e.c.Modified() && m.store != nil {
		if err := m.store.SaveChunk(e.c); err != nil {
			m.log.Printf("chunk %v save failed: %v", coord, err)
		}
	}
	if e.gpu != nil {
		gpu := e.gpu
		m.mainQ.RunOnMain(func() { gpu.release(m.backend) })
		e.gpu = nil
	}
	e.c.TransitionTo(chunk.Unloaded)
	delete(m.chunks, coord)
	m.loaded.Add(-1)
}

func (m *Manager) scheduleBuild(coord voxel.ChunkCoord, e *entry, center voxel.ChunkCoord) {
	e.c.ClearMeshDirty()
	e.buildSeq++
	seq := e.buildSeq

	snap := e.c.Snapshot()
	neighbors := m.neighborLookup(coord)
	buildCollider := m.cfg.BuildCollider

	h := m.sched.Schedule(job.Job{
		Name:     fmt.Sprintf("mesh %v", coord),
		Priority: loadPriority(coord, center),
		Run: func(ctx context.Context) (any, error) {
			res := &BuildResult{
				Coords: coord,
				Mesh:   m.builder.Build(snap, neighbors),
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if buildCollider {
				res.Collider = collide.BuildCollider(snap, m.reg)
			}
			return res, nil
		},
	})
	e.buildJob = h
	go func() {
		v, err := h.Wait(context.Background())
		m.mainQ.RunOnMain(func() { m.onBuildDone(coord, seq, v, err) })
	}()
}

func (m *Manager) onBuildDone(coord voxel.ChunkCoord, seq uint64, v any, err error) {
	e, ok := m.chunks[coord]
	if !ok || e.buildSeq != seq || e.c.State() != chunk.Loaded {
		// The chunk left the radius or was re-scheduled; drop the result.
		m.buildsDropped.Add(1)
		return
	}
	e.buildJob = nil
	if err != nil {
		if err != job.ErrCancelled {
			m.log.Printf("chunk %v mesh build failed: %v", coord, err)
		}
		// No mesh was produced; leave the chunk dirty so the next Update
		// schedules a retry instead of stranding it meshless.
		e.c.MarkMeshDirty()
		return
	}
	res := v.(*BuildResult)

	old := e.gpu
	gpu, upErr := uploadMesh(m.backend, res.Mesh)
	if upErr != nil {
		m.log.Printf("chunk %v mesh upload failed: %v", coord, upErr)
		gpu.release(m.backend)
		return
	}
	e.gpu = gpu
	e.collider = res.Collider
	if old != nil {
		old.release(m.backend)
	}
	m.meshesBuilt.Add(1)
}

// neighborLookup freezes the six neighbor border planes for a background
// build. Missing or unloaded neighbors read as air; a stale-by-one-frame
// plane only costs one extra rebuild, never a race.
func (m *Manager) neighborLookup(coord voxel.ChunkCoord) mesh.NeighborLookup {
	var planes [voxel.FaceCount][]uint16
	for _, f := range voxel.Faces() {
		nb, ok := m.chunks[coord.Neighbor(f)]
		if !ok || nb.c.State() != chunk.Loaded {
			continue
		}
		planes[f] = nb.c.BorderPlane(f.Opposite())
	}

	size, height := m.cfg.ChunkSize, m.cfg.ChunkHeight
	return func(f voxel.Face, x, y, z int) uint16 {
		p := planes[f]
		if p == nil {
			return block.Air
		}
		switch f {
		case voxel.FaceEast, voxel.FaceWest:
			return p[y+z*height]
		case voxel.FaceUp, voxel.FaceDown:
			return p[x+z*size]
		default:
			return p[x+y*size]
		}
	}
}

func loadPriority(coord, center voxel.ChunkCoord) int {
	// Nearest chunks first.
	d := abs(coord.X-center.X)
	if dz := abs(coord.Z - center.Z); dz > d {
		d = dz
	}
	return -d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
