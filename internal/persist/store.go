package persist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"voxelforge.dev/internal/chunk"
	"voxelforge.dev/internal/voxel"
)

// Store keeps chunk saves as one zstd file per chunk under dataDir/chunks,
// with a SQLite index alongside for tooling. LoadChunk is called from worker
// goroutines and only reads files; SaveChunk must stay on one goroutine (the
// world manager calls it from the frame loop), since concurrent saves of the
// same chunk would race on the rename.
type Store struct {
	dataDir string
	index   *Index
	log     *log.Logger
}

func NewStore(dataDir string, logger *log.Logger) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("empty data dir")
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "chunks"), 0o755); err != nil {
		return nil, err
	}
	idx, err := OpenIndex(filepath.Join(dataDir, "index.db"))
	if err != nil {
		return nil, err
	}
	return &Store{dataDir: dataDir, index: idx, log: logger}, nil
}

func (s *Store) Close() error {
	return s.index.Close()
}

func (s *Store) chunkPath(coords voxel.ChunkCoord) string {
	return filepath.Join(s.dataDir, "chunks",
		fmt.Sprintf("c.%d.%d.%d.zst", coords.X, coords.Y, coords.Z))
}

// LoadChunk fills the chunk from its save file. Returns false when no save
// exists, so the caller falls back to terrain generation.
func (s *Store) LoadChunk(c *chunk.Chunk) (bool, error) {
	path := s.chunkPath(c.Coordinates())
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()
	if err := DecodeChunk(f, c); err != nil {
		// A corrupt save is treated as a miss so the world can regenerate
		// the chunk instead of refusing to load it.
		s.log.Printf("[persist] corrupt save %s: %v", path, err)
		return false, nil
	}
	return true, nil
}

// SaveChunk writes the chunk to a temp file and renames it into place, so a
// crash mid-write never leaves a truncated save behind.
func (s *Store) SaveChunk(c *chunk.Chunk) error {
	var buf bytes.Buffer
	if err := EncodeChunk(&buf, c); err != nil {
		return err
	}

	path := s.chunkPath(c.Coordinates())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	sum := sha256.Sum256(buf.Bytes())
	s.index.RecordSave(c.Coordinates(), path, int64(buf.Len()), hex.EncodeToString(sum[:]))
	return nil
}

// Index exposes the save index for inspection.
func (s *Store) Index() *Index { return s.index }
