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

	"github.com/custodia-labs/tfask/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tfask/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/tfask/internal/core/domain"
	"github.com/custodia-labs/tfask/internal/core/ports/driven"
	"github.com/custodia-labs/tfask/internal/logger"
)

// DatabaseFile is the name of the index database inside the storage directory.
const DatabaseFile = "index.db"

// Index metadata keys.
const (
	metaEmbeddingModel = "embedding_model"
	metaDimensions     = "dimensions"
	metaChunkSize      = "chunk_size"
	metaChunkOverlap   = "chunk_overlap"
	metaRecords        = "records"
	metaBuiltAt        = "built_at"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store persists a vector index in a SQLite database under a storage directory.
type Store struct {
	dir  string
	path string
}

// NewStore creates a store for the index in dataDir.
// Nothing is created on disk until Build.
func NewStore(dataDir string) *Store {
	return &Store{
		dir:  dataDir,
		path: filepath.Join(dataDir, DatabaseFile),
	}
}

// Location returns the database file path.
func (s *Store) Location() string {
	return s.path
}

// Exists reports whether a completed index is present.
// Missing, unreadable or partially written databases report false.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat index: %w", err)
	}

	db, err := openDB(s.path)
	if err != nil {
		logger.Warn("index at %s is unreadable: %v", s.path, err)
		return false, nil
	}
	defer db.Close()

	var builtAt string
	err = db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", metaBuiltAt).Scan(&builtAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Debug("index at %s is incomplete: %v", s.path, err)
		}
		return false, nil
	}
	return builtAt != "", nil
}

// Build replaces any existing index with records and returns it opened.
// On failure nothing is left behind, so the next run rebuilds.
func (s *Store) Build(
	ctx context.Context,
	records []domain.EmbeddingRecord,
	meta domain.IndexMeta,
) (driven.VectorIndex, error) {
	dims, err := memory.ValidateRecords(records)
	if err != nil {
		return nil, err
	}
	meta.Dimensions = dims
	meta.Records = len(records)
	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = time.Now().UTC()
	}

	if err := s.Remove(ctx); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	if err := s.write(ctx, records, meta); err != nil {
		if rmErr := s.Remove(context.WithoutCancel(ctx)); rmErr != nil {
			logger.Warn("remove partial index: %v", rmErr)
		}
		return nil, err
	}

	logger.Info("persisted %d records to %s", len(records), s.path)
	return s.Open(ctx)
}

// write creates the database and stores records and meta in one transaction.
func (s *Store) write(ctx context.Context, records []domain.EmbeddingRecord, meta domain.IndexMeta) error {
	db, err := openDB(s.path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (chunk_id, document_id, uri, position, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadataJSON, err := json.Marshal(r.Chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for chunk %s: %w", r.Chunk.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			r.Chunk.ID, r.Chunk.DocumentID, r.Chunk.URI, r.Chunk.Position,
			r.Chunk.Content, string(metadataJSON), float32SliceToBytes(r.Vector),
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", r.Chunk.ID, err)
		}
	}

	// built_at is written last; its presence marks a complete index.
	values := [][2]string{
		{metaEmbeddingModel, meta.EmbeddingModel},
		{metaDimensions, strconv.Itoa(meta.Dimensions)},
		{metaChunkSize, strconv.Itoa(meta.ChunkSize)},
		{metaChunkOverlap, strconv.Itoa(meta.ChunkOverlap)},
		{metaRecords, strconv.Itoa(meta.Records)},
		{metaBuiltAt, meta.BuiltAt.UTC().Format(time.RFC3339Nano)},
	}
	for _, kv := range values {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO index_meta (key, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			return fmt.Errorf("writing %s: %w", kv[0], err)
		}
	}

	var stored int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&stored); err != nil {
		return fmt.Errorf("counting records: %w", err)
	}
	if stored == 0 {
		return domain.ErrEmptyIndex
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// Open loads a previously built index into memory.
// It never creates files; a missing or incomplete index is domain.ErrIndexNotFound.
func (s *Store) Open(ctx context.Context) (driven.VectorIndex, error) {
	exists, err := s.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w at %s", domain.ErrIndexNotFound, s.path)
	}

	db, err := openDB(s.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, err
	}

	records, err := readRecords(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s holds no records", domain.ErrIndexNotFound, s.path)
	}

	idx, err := memory.NewIndex(records, meta)
	if err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}

	logger.Debug("opened index %s: %d records, %d dimensions", s.path, len(records), idx.Meta().Dimensions)
	return idx, nil
}

// Remove deletes the database and its WAL files. A missing index is not an error.
func (s *Store) Remove(_ context.Context) error {
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		if err := os.Remove(s.path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", s.path+suffix, err)
		}
	}
	return nil
}

// openDB opens the database with WAL mode and a busy timeout.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
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
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
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

// readMeta loads the build parameters.
func readMeta(ctx context.Context, db *sql.DB) (domain.IndexMeta, error) {
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM index_meta")
	if err != nil {
		return domain.IndexMeta{}, fmt.Errorf("querying index meta: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.IndexMeta{}, fmt.Errorf("scanning index meta: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return domain.IndexMeta{}, fmt.Errorf("iterating index meta: %w", err)
	}

	meta := domain.IndexMeta{
		EmbeddingModel: values[metaEmbeddingModel],
		Dimensions:     atoi(values[metaDimensions]),
		ChunkSize:      atoi(values[metaChunkSize]),
		ChunkOverlap:   atoi(values[metaChunkOverlap]),
		Records:        atoi(values[metaRecords]),
	}
	if builtAt, err := time.Parse(time.RFC3339Nano, values[metaBuiltAt]); err == nil {
		meta.BuiltAt = builtAt
	}
	return meta, nil
}

// readRecords loads every record in insertion order.
func readRecords(ctx context.Context, db *sql.DB) ([]domain.EmbeddingRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT chunk_id, document_id, uri, position, content, metadata, embedding
		FROM records ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.EmbeddingRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// scanRecord scans a record from *sql.Rows.
func scanRecord(rows *sql.Rows) (*domain.EmbeddingRecord, error) {
	var record domain.EmbeddingRecord
	var metadataJSON string
	var embeddingBlob []byte

	chunk := &record.Chunk
	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.URI, &chunk.Position,
		&chunk.Content, &metadataJSON, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	record.Vector = bytesToFloat32Slice(embeddingBlob)
	return &record, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
