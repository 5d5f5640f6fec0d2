// Package sqlite provides the persistent message index backed by a
// single SQLite database file. Vectors are stored as little-endian
// float32 BLOBs and searched with a brute-force cosine scan, which is
// comfortably fast for personal mailbox volumes.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/epistle-labs/epistle/internal/adapters/driven/index/sqlite/migrations"
	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driven"
)

// dbFileName is the index database file inside the data directory.
const dbFileName = "index.db"

var _ driven.MessageIndex = (*Index)(nil)

// Index is a SQLite-backed implementation of driven.MessageIndex
// scoped to one named collection.
type Index struct {
	db         *sql.DB
	path       string
	collection string
}

// Create opens the index at dataDir, creating the database and the
// collection row when missing. The embedding model name is recorded on
// first creation and left untouched afterwards.
func Create(dataDir, collection, embeddingModel string) (*Index, error) {
	ix, err := open(dataDir, collection)
	if err != nil {
		return nil, err
	}

	_, err = ix.db.Exec(`
		INSERT INTO collections (name, embedding_model)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, collection, embeddingModel)
	if err != nil {
		ix.db.Close()
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return ix, nil
}

// Open opens an existing index at dataDir. It returns
// domain.ErrIndexNotFound when the database file or the collection row
// does not exist.
func Open(dataDir, collection string) (*Index, error) {
	dbPath := filepath.Join(dataDir, dbFileName)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: no index at %s", domain.ErrIndexNotFound, dbPath)
	}

	ix, err := open(dataDir, collection)
	if err != nil {
		return nil, err
	}

	var name string
	row := ix.db.QueryRow("SELECT name FROM collections WHERE name = ?", collection)
	if err := row.Scan(&name); err != nil {
		ix.db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection %q", domain.ErrIndexNotFound, collection)
		}
		return nil, fmt.Errorf("checking collection: %w", err)
	}

	return ix, nil
}

// open opens the database, creating the directory, and runs migrations.
func open(dataDir, collection string) (*Index, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	ix := &Index{
		db:         db,
		path:       dbPath,
		collection: collection,
	}

	if err := ix.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return ix, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Path returns the database file path.
func (ix *Index) Path() string {
	return ix.path
}

// Add inserts one document with its embedding vector.
func (ix *Index) Add(ctx context.Context, doc domain.Document, embedding []float32) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO documents (id, collection, sender, subject, date, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.Metadata.ID, ix.collection, doc.Metadata.Sender, doc.Metadata.Subject,
		doc.Metadata.Date, doc.Text, float32SliceToBytes(embedding))

	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// Search returns the k nearest documents by cosine similarity, nearest
// first. Fewer than k are returned when the collection is smaller.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredDocument, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT id, sender, subject, date, text, embedding
		FROM documents WHERE collection = ?
		ORDER BY rowid
	`, ix.collection)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var scored []domain.ScoredDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var embeddingBlob []byte
		if err := rows.Scan(&doc.Metadata.ID, &doc.Metadata.Sender, &doc.Metadata.Subject,
			&doc.Metadata.Date, &doc.Text, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		scored = append(scored, domain.ScoredDocument{
			Document:   doc,
			Similarity: cosineSimilarity(query, bytesToFloat32Slice(embeddingBlob)),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Count returns the number of stored documents in the collection.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var count int
	err := ix.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", ix.collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Info returns the collection metadata recorded at creation time.
func (ix *Index) Info(ctx context.Context) (driven.IndexInfo, error) {
	var info driven.IndexInfo
	row := ix.db.QueryRowContext(ctx,
		"SELECT name, embedding_model FROM collections WHERE name = ?", ix.collection)
	if err := row.Scan(&info.Collection, &info.EmbeddingModel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return driven.IndexInfo{}, fmt.Errorf("%w: collection %q", domain.ErrIndexNotFound, ix.collection)
		}
		return driven.IndexInfo{}, fmt.Errorf("scanning collection: %w", err)
	}
	return info, nil
}

// migrate runs all pending migrations.
func (ix *Index) migrate(fsys embed.FS) error {
	_, err := ix.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := ix.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
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

		if _, err := ix.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := ix.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
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

// cosineSimilarity returns the cosine of the angle between two
// vectors; 0 when either has zero magnitude or lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
