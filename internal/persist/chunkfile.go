package persist

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"voxelforge.dev/internal/chunk"
	"voxelforge.dev/internal/voxel"
)

// header is the JSON first line of a chunk file, before the binary payload.
// Kept readable so a save can be inspected with zstd -d | head -1.
type header struct {
	Version int `json:"version"`
	CX      int `json:"cx"`
	CY      int `json:"cy"`
	CZ      int `json:"cz"`
	Size    int `json:"size"`
	Height  int `json:"height"`
}

const formatVersion = 1

// EncodeChunk serializes a chunk: zstd stream holding the header line, then
// the block array and light levels, little-endian.
func EncodeChunk(w io.Writer, c *chunk.Chunk) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 64*1024)
	defer bw.Flush()

	coords := c.Coordinates()
	hb, _ := json.Marshal(header{
		Version: formatVersion,
		CX:      coords.X,
		CY:      coords.Y,
		CZ:      coords.Z,
		Size:    c.Size(),
		Height:  c.Height(),
	})
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	n := c.VoxelCount()
	blocks := make([]uint16, n)
	c.CopyBlockData(blocks)
	raw := make([]byte, 2*n)
	for i, b := range blocks {
		binary.LittleEndian.PutUint16(raw[2*i:], b)
	}
	if _, err := bw.Write(raw); err != nil {
		return err
	}

	lights := make([]byte, n)
	c.CopyLightData(lights)
	if _, err := bw.Write(lights); err != nil {
		return err
	}
	return nil
}

// DecodeChunk fills an allocated chunk from its serialized form. The chunk's
// coordinates and dimensions must match the save; a mismatch is an error,
// never a silent reinterpretation.
func DecodeChunk(r io.Reader, c *chunk.Chunk) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("chunk header: %w", err)
	}
	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return fmt.Errorf("chunk header: %w", err)
	}
	if h.Version != formatVersion {
		return fmt.Errorf("chunk format version %d not supported", h.Version)
	}
	coords := c.Coordinates()
	if (voxel.ChunkCoord{X: h.CX, Y: h.CY, Z: h.CZ}) != coords {
		return fmt.Errorf("chunk coords %v do not match save (%d,%d,%d)", coords, h.CX, h.CY, h.CZ)
	}
	if h.Size != c.Size() || h.Height != c.Height() {
		return fmt.Errorf("chunk dimensions %dx%d do not match save %dx%d",
			c.Size(), c.Height(), h.Size, h.Height)
	}

	n := c.VoxelCount()
	raw := make([]byte, 2*n)
	if _, err := io.ReadFull(br, raw); err != nil {
		return fmt.Errorf("chunk blocks: %w", err)
	}
	lights := make([]byte, n)
	if _, err := io.ReadFull(br, lights); err != nil {
		return fmt.Errorf("chunk light levels: %w", err)
	}

	blocks := make([]uint16, n)
	for i := range blocks {
		blocks[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	c.LoadData(blocks, lights)
	return nil
}
