package persist

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voxelforge.dev/internal/chunk"
	"voxelforge.dev/internal/voxel"
)

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func testChunk(coords voxel.ChunkCoord) *chunk.Chunk {
	c := chunk.New(coords, 8, 16)
	for x := 0; x < 8; x++ {
		for z := 0; z < 8; z++ {
			c.SetBlock(x, 0, z, 1)
			c.SetBlock(x, 1, z, uint16(2+(x+z)%3))
			c.SetLightLevel(x, 15, z, byte(x+z))
		}
	}
	return c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	coords := voxel.ChunkCoord{X: -3, Z: 7}
	src := testChunk(coords)

	var buf bytes.Buffer
	if err := EncodeChunk(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	dst := chunk.New(coords, 8, 16)
	if err := DecodeChunk(&buf, dst); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for i := 0; i < src.VoxelCount(); i++ {
		if src.BlockAt(i) != dst.BlockAt(i) {
			t.Fatalf("block %d: got %d, want %d", i, dst.BlockAt(i), src.BlockAt(i))
		}
	}
	if dst.LightLevel(3, 15, 4) != src.LightLevel(3, 15, 4) {
		t.Fatalf("light levels not restored")
	}
	if dst.Modified() {
		t.Fatalf("restored chunk should not be marked modified")
	}
	if !dst.MeshDirty() {
		t.Fatalf("restored chunk should need a mesh build")
	}
}

func TestDecodeRejectsCoordMismatch(t *testing.T) {
	src := testChunk(voxel.ChunkCoord{X: 1, Z: 1})
	var buf bytes.Buffer
	if err := EncodeChunk(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	dst := chunk.New(voxel.ChunkCoord{X: 2, Z: 1}, 8, 16)
	if err := DecodeChunk(&buf, dst); err == nil {
		t.Fatalf("expected coord mismatch error")
	}
}

func TestDecodeRejectsDimensionMismatch(t *testing.T) {
	coords := voxel.ChunkCoord{X: 0, Z: 0}
	src := testChunk(coords)
	var buf bytes.Buffer
	if err := EncodeChunk(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	dst := chunk.New(coords, 16, 16)
	if err := DecodeChunk(&buf, dst); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	coords := voxel.ChunkCoord{X: 4, Z: -2}
	missing := chunk.New(coords, 8, 16)
	ok, err := store.LoadChunk(missing)
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if ok {
		t.Fatalf("load of unsaved chunk reported a hit")
	}

	src := testChunk(coords)
	if err := store.SaveChunk(src); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "chunks", "c.4.0.-2.zst")); err != nil {
		t.Fatalf("save file: %v", err)
	}

	dst := chunk.New(coords, 8, 16)
	ok, err = store.LoadChunk(dst)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("load of saved chunk reported a miss")
	}
	if dst.Block(3, 1, 5) != src.Block(3, 1, 5) {
		t.Fatalf("loaded chunk differs from saved chunk")
	}
}

func TestCorruptSaveFallsBackToMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	path := filepath.Join(dir, "chunks", "c.0.0.0.zst")
	if err := os.WriteFile(path, []byte("not a chunk"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	c := chunk.New(voxel.ChunkCoord{}, 8, 16)
	ok, err := store.LoadChunk(c)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("corrupt save should read as a miss")
	}
}

func TestIndexRecordsSaves(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	coords := voxel.ChunkCoord{X: 1, Z: 2}
	if err := store.SaveChunk(testChunk(coords)); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The index writer is async; poll until the row lands.
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec, ok, err := store.Index().Lookup(coords)
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if ok {
			if rec.Bytes <= 0 || rec.Digest == "" || rec.Path == "" {
				t.Fatalf("incomplete index row: %+v", rec)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("index row never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}

	n, err := store.Index().Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("index count = %d, want 1", n)
	}
}

func TestIndexCloseFlushesPendingRows(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	coords := voxel.ChunkCoord{X: 3, Z: -1}
	if err := store.SaveChunk(testChunk(coords)); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Close without polling; the writer must drain the queued row before
	// the database shuts down.
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Recording after close is a silent drop, and closing twice is fine.
	store.Index().RecordSave(coords, "chunks/c.3.0.-1.zst", 1, "00")
	if err := store.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	reopened, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	rec, ok, err := reopened.Index().Lookup(coords)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !ok {
		t.Fatalf("row queued before close was lost")
	}
	if rec.Bytes <= 0 || rec.Digest == "" {
		t.Fatalf("incomplete index row: %+v", rec)
	}
}
