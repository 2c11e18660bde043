package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/repochat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// fileExt is the extension of index database files.
const fileExt = ".db"

// Meta table keys.
const (
	metaName       = "name"
	metaModel      = "model"
	metaDimensions = "dimensions"
	metaChunks     = "chunks"
	metaCreatedAt  = "created_at"
)

// IndexStore keeps one SQLite database per repository under a root directory.
type IndexStore struct {
	root string
}

// NewIndexStore creates an index store rooted at dir, creating it if needed.
func NewIndexStore(dir string) (*IndexStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: index root is empty", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	return &IndexStore{root: dir}, nil
}

// Root returns the index directory.
func (s *IndexStore) Root() string {
	return s.root
}

// Path returns the database file for the index called name.
func (s *IndexStore) Path(name string) string {
	return filepath.Join(s.root, name+fileExt)
}

// Save writes idx to a temporary database and renames it into place.
func (s *IndexStore) Save(ctx context.Context, idx *domain.Index) error {
	if err := validName(idx.Name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, "."+idx.Name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp index: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if err := writeIndex(ctx, tmpPath, idx); err != nil {
		return fmt.Errorf("writing index %s: %w", idx.Name, err)
	}
	if err := syncFile(tmpPath); err != nil {
		return fmt.Errorf("syncing index %s: %w", idx.Name, err)
	}
	if err := os.Rename(tmpPath, s.Path(idx.Name)); err != nil {
		return fmt.Errorf("replacing index %s: %w", idx.Name, err)
	}
	committed = true

	if err := syncFile(s.root); err != nil {
		logger.Debug("Index store: syncing %s: %v", s.root, err)
	}
	logger.Debug("Index store: saved %s (%d chunks)", idx.Name, idx.Len())
	return nil
}

// Load reads the index called name.
func (s *IndexStore) Load(ctx context.Context, name string) (*domain.Index, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	db, err := s.open(name)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	idx, err := readMeta(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("reading index %s: %w", name, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT chunk_id, position, content, metadata, vector FROM chunks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks of %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry    domain.IndexEntry
			metaJSON string
			vector   []byte
		)
		if err := rows.Scan(&entry.Chunk.ID, &entry.Chunk.Position, &entry.Chunk.Content, &metaJSON, &vector); err != nil {
			return nil, fmt.Errorf("scanning chunk of %s: %w", name, err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &entry.Chunk.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of chunk %s: %w", entry.Chunk.ID, err)
		}
		entry.Vector = bytesToFloat32Slice(vector)
		if len(entry.Vector) != idx.Dimensions {
			return nil, fmt.Errorf("%w: chunk %s of %s has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, entry.Chunk.ID, name, len(entry.Vector), idx.Dimensions)
		}
		idx.Entries = append(idx.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunks of %s: %w", name, err)
	}
	return idx, nil
}

// List returns summaries of every readable index, sorted by name.
// Unreadable files are skipped with a warning.
func (s *IndexStore) List(ctx context.Context) ([]domain.IndexInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading index directory: %w", err)
	}

	var infos []domain.IndexInfo
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileExt)
		if !ok || e.IsDir() {
			continue
		}
		info, err := s.info(ctx, name)
		if err != nil {
			logger.Warn("Skipping unreadable index %s: %v", e.Name(), err)
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes the index called name.
func (s *IndexStore) Delete(_ context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting index %s: %w", name, err)
	}
	return nil
}

func (s *IndexStore) info(ctx context.Context, name string) (domain.IndexInfo, error) {
	db, err := s.open(name)
	if err != nil {
		return domain.IndexInfo{}, err
	}
	defer db.Close()

	idx, err := readMeta(ctx, db)
	if err != nil {
		return domain.IndexInfo{}, err
	}
	var chunks int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&chunks); err != nil {
		return domain.IndexInfo{}, fmt.Errorf("counting chunks: %w", err)
	}
	return domain.IndexInfo{
		Name:       idx.Name,
		Model:      idx.Model,
		Dimensions: idx.Dimensions,
		Chunks:     chunks,
		CreatedAt:  idx.CreatedAt,
	}, nil
}

// open opens an existing index read-only.
func (s *IndexStore) open(name string) (*sql.DB, error) {
	path := s.Path(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, name)
		}
		return nil, fmt.Errorf("stat index %s: %w", name, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", name, err)
	}
	return db, nil
}

// writeIndex creates a fresh database at path and fills it with idx in
// one transaction.
func writeIndex(ctx context.Context, path string, idx *domain.Index) error {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(DELETE)&_pragma=synchronous(FULL)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	meta := map[string]string{
		metaName:       idx.Name,
		metaModel:      idx.Model,
		metaDimensions: strconv.Itoa(idx.Dimensions),
		metaChunks:     strconv.Itoa(idx.Len()),
		metaCreatedAt:  idx.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (seq, chunk_id, position, content, metadata, vector) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range idx.Entries {
		if len(e.Vector) != idx.Dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, e.Chunk.ID, len(e.Vector), idx.Dimensions)
		}
		metaJSON, err := json.Marshal(e.Chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, i, e.Chunk.ID, e.Chunk.Position, e.Chunk.Content,
			string(metaJSON), float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// readMeta reads the meta table into an Index without entries.
func readMeta(ctx context.Context, db *sql.DB) (*domain.Index, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("querying meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dims, err := strconv.Atoi(meta[metaDimensions])
	if err != nil {
		return nil, fmt.Errorf("invalid dimensions %q: %w", meta[metaDimensions], err)
	}
	created, err := time.Parse(time.RFC3339Nano, meta[metaCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", meta[metaCreatedAt], err)
	}
	return &domain.Index{
		Name:       meta[metaName],
		Model:      meta[metaModel],
		Dimensions: dims,
		CreatedAt:  created,
	}, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys fs.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// validName rejects names that would escape the index directory.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid index name %q", domain.ErrInvalidInput, name)
	}
	return nil
}

// syncFile flushes a file or directory to stable storage.
func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
