package render

import (
	"fmt"
	"sync"
)

// Backend is the GPU abstraction the pipeline submits to. Resource creation
// and Submit must be called from the main thread; the chunk manager routes
// uploads through the main-thread queue to honor that.
type Backend interface {
	// CreateVertexBuffer uploads interleaved float data and returns a handle.
	CreateVertexBuffer(data []float32) (BufferHandle, error)
	// CreateIndexBuffer uploads index data and returns a handle.
	CreateIndexBuffer(data []uint32) (BufferHandle, error)
	// ReleaseBuffer frees a buffer. Releasing the zero handle is a no-op.
	ReleaseBuffer(h BufferHandle)
	// Submit executes one frame's command stream.
	Submit(cmds []Command) error
	// Viewport resizes the output surface.
	Viewport(width, height int)
}

// RecordingBackend is a Backend that records everything submitted to it.
// Buffers get sequential handles and hold copies of the uploaded data.
type RecordingBackend struct {
	mu sync.Mutex

	nextHandle    BufferHandle
	VertexBuffers map[BufferHandle][]float32
	IndexBuffers  map[BufferHandle][]uint32
	Released      []BufferHandle
	Frames        [][]Command
	Width, Height int

	// FailSubmit, when set, makes every Submit return an error. Exercises
	// the pipeline's report-and-continue path.
	FailSubmit bool
}

var _ Backend = (*RecordingBackend)(nil)

func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{
		nextHandle:    1,
		VertexBuffers: make(map[BufferHandle][]float32),
		IndexBuffers:  make(map[BufferHandle][]uint32),
	}
}

func (b *RecordingBackend) CreateVertexBuffer(data []float32) (BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.nextHandle
	b.nextHandle++
	b.VertexBuffers[h] = append([]float32(nil), data...)
	return h, nil
}

func (b *RecordingBackend) CreateIndexBuffer(data []uint32) (BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.nextHandle
	b.nextHandle++
	b.IndexBuffers[h] = append([]uint32(nil), data...)
	return h, nil
}

func (b *RecordingBackend) ReleaseBuffer(h BufferHandle) {
	if h == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.VertexBuffers, h)
	delete(b.IndexBuffers, h)
	b.Released = append(b.Released, h)
}

func (b *RecordingBackend) Submit(cmds []Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailSubmit {
		return fmt.Errorf("render: submit failed")
	}
	b.Frames = append(b.Frames, append([]Command(nil), cmds...))
	return nil
}

func (b *RecordingBackend) Viewport(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Width, b.Height = width, height
}

// LastFrame returns the most recently submitted command stream, or nil.
func (b *RecordingBackend) LastFrame() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Frames) == 0 {
		return nil
	}
	return b.Frames[len(b.Frames)-1]
}

// BufferCount returns the number of live buffers.
func (b *RecordingBackend) BufferCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.VertexBuffers) + len(b.IndexBuffers)
}

// NullBackend accepts everything and draws nothing. Used for headless runs
// where the engine should exercise the full pipeline without a GPU.
type NullBackend struct {
	mu sync.Mutex

	nextHandle BufferHandle
	live       map[BufferHandle]struct{}
	frames     uint64
}

var _ Backend = (*NullBackend)(nil)

func NewNullBackend() *NullBackend {
	return &NullBackend{nextHandle: 1, live: make(map[BufferHandle]struct{})}
}

func (b *NullBackend) CreateVertexBuffer(data []float32) (BufferHandle, error) {
	return b.alloc(), nil
}

func (b *NullBackend) CreateIndexBuffer(data []uint32) (BufferHandle, error) {
	return b.alloc(), nil
}

func (b *NullBackend) alloc() BufferHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.nextHandle
	b.nextHandle++
	b.live[h] = struct{}{}
	return h
}

func (b *NullBackend) ReleaseBuffer(h BufferHandle) {
	if h == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.live, h)
}

func (b *NullBackend) Submit(cmds []Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames++
	return nil
}

func (b *NullBackend) Viewport(width, height int) {}

// LiveBuffers returns the number of allocated, unreleased buffers.
func (b *NullBackend) LiveBuffers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}
