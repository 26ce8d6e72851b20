package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelforge.dev/internal/voxel"
)

// Index is a secondary SQLite index over chunk save files. The files on disk
// remain the source of truth; the index exists for inspection and tooling.
// Writes go through a single goroutine so the engine never blocks on SQLite.
type Index struct {
	db *sql.DB

	// ch is never closed; done signals the writer to drain and stop. This
	// keeps a RecordSave racing Close from sending on a closed channel.
	ch   chan indexReq
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type indexReq struct {
	coords  voxel.ChunkCoord
	path    string
	bytes   int64
	digest  string
	savedAt string
}

// SaveRecord is one row of the chunk save index.
type SaveRecord struct {
	Coords  voxel.ChunkCoord
	Path    string
	Bytes   int64
	Digest  string
	SavedAt string
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	idx := &Index{
		db:   db,
		ch:   make(chan indexReq, 4096),
		done: make(chan struct{}),
	}
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		idx.loop()
	}()
	return idx, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			cx INTEGER NOT NULL,
			cy INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			path TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			digest TEXT NOT NULL,
			saved_at TEXT NOT NULL,
			PRIMARY KEY (cx, cy, cz)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) Close() error {
	var err error
	idx.once.Do(func() {
		idx.closed.Store(true)
		close(idx.done)
		idx.wg.Wait()
		err = idx.db.Close()
	})
	return err
}

// RecordSave queues an index row for a freshly written chunk file. Drops the
// row rather than stall when the indexer falls behind; the file on disk is
// still there either way.
func (idx *Index) RecordSave(coords voxel.ChunkCoord, path string, bytes int64, digest string) {
	if idx == nil || idx.closed.Load() {
		return
	}
	r := indexReq{
		coords:  coords,
		path:    path,
		bytes:   bytes,
		digest:  digest,
		savedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case idx.ch <- r:
	default:
	}
}

// Lookup returns the indexed record for a chunk, or false when none exists.
func (idx *Index) Lookup(coords voxel.ChunkCoord) (SaveRecord, bool, error) {
	var rec SaveRecord
	rec.Coords = coords
	row := idx.db.QueryRow(
		`SELECT path, bytes, digest, saved_at FROM chunks WHERE cx=? AND cy=? AND cz=?`,
		coords.X, coords.Y, coords.Z,
	)
	err := row.Scan(&rec.Path, &rec.Bytes, &rec.Digest, &rec.SavedAt)
	if err == sql.ErrNoRows {
		return SaveRecord{}, false, nil
	}
	if err != nil {
		return SaveRecord{}, false, err
	}
	return rec, true, nil
}

// Count returns the number of indexed chunk saves.
func (idx *Index) Count() (int, error) {
	var n int
	err := idx.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

func (idx *Index) loop() {
	ctx := context.Background()

	insert, _ := idx.db.Prepare(
		`INSERT OR REPLACE INTO chunks(cx,cy,cz,path,bytes,digest,saved_at) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insert != nil {
			_ = insert.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = 500 * time.Millisecond
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := idx.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	handle := func(r indexReq) {
		begin()
		if tx == nil || insert == nil {
			return
		}
		if _, err := tx.Stmt(insert).Exec(
			r.coords.X, r.coords.Y, r.coords.Z,
			r.path, r.bytes, r.digest, r.savedAt,
		); err != nil {
			rollback()
			return
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for {
		select {
		case r := <-idx.ch:
			handle(r)
		case <-idx.done:
			// Drain whatever made it into the buffer, then stop.
			for {
				select {
				case r := <-idx.ch:
					handle(r)
				default:
					commit()
					return
				}
			}
		}
	}
}
