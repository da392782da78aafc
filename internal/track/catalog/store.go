// Package catalog persists built track layouts and their validation
// reports in a local SQLite database so a host process can skip
// re-parsing and re-validating an unchanged legacy file on every load.
//
// Nothing under internal/track/{shape,area,portal,profile,geometry,
// route,layout,cue,branch,validate,legacy,controller} depends on this
// package; it is a pure side-table, written behind the model rather
// than consulted by it. No SQL leaks past this package's API.
package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/diamondStar35/top-speed-sub005/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// CatalogueEntry describes one previously built layout.
type CatalogueEntry struct {
	ContentHash          string // sha256 hex digest of the canonical source bytes
	SourceKind           string // "legacy" or "native"
	Name                 string
	ImportedAt           time.Time
	ValidatedAt          *time.Time
	ValidationReportJSON []byte // optional, raw JSON
	LayoutJSON           []byte // required, raw JSON snapshot of the built layout
}

// HashSource returns the content hash used to key a CatalogueEntry,
// computed over the canonical source bytes (e.g. the raw legacy file).
func HashSource(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// Store is a typed wrapper over a SQLite-backed catalogue database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies any pending migrations. path may be ":memory:" for tests.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: ping %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog: apply %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("catalog: migration source: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("catalog: migration driver: %w", err)
	}
	// m.Close() is not called: the sqlite driver's Close() would close the
	// underlying *sql.DB, which Store manages separately for its own lifetime.
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("catalog: migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("catalog: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts an entry by its ContentHash. If ContentHash is empty it
// is computed from LayoutJSON.
func (s *Store) Put(ctx context.Context, e CatalogueEntry) error {
	if len(e.LayoutJSON) == 0 {
		return fmt.Errorf("catalog: put %q: empty layout JSON", e.Name)
	}
	if e.ContentHash == "" {
		e.ContentHash = HashSource(e.LayoutJSON)
	}
	if e.ImportedAt.IsZero() {
		return fmt.Errorf("catalog: put %q: ImportedAt must be set", e.Name)
	}

	blob, err := gzipBytes(e.LayoutJSON)
	if err != nil {
		return fmt.Errorf("catalog: compress layout: %w", err)
	}

	var validatedNanos sql.NullInt64
	if e.ValidatedAt != nil {
		validatedNanos = sql.NullInt64{Int64: e.ValidatedAt.UnixNano(), Valid: true}
	}
	var reportJSON sql.NullString
	if len(e.ValidationReportJSON) > 0 {
		reportJSON = sql.NullString{String: string(e.ValidationReportJSON), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO layout_catalogue
			(content_hash, source_kind, name, imported_unix_nanos, validated_unix_nanos, validation_report_json, layout_blob)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			source_kind             = excluded.source_kind,
			name                    = excluded.name,
			imported_unix_nanos     = excluded.imported_unix_nanos,
			validated_unix_nanos    = excluded.validated_unix_nanos,
			validation_report_json  = excluded.validation_report_json,
			layout_blob             = excluded.layout_blob
	`, e.ContentHash, e.SourceKind, e.Name, e.ImportedAt.UnixNano(), validatedNanos, reportJSON, blob)
	if err != nil {
		return fmt.Errorf("catalog: put %q: %w", e.ContentHash, err)
	}
	monitoring.Logf("catalog: stored layout %q (hash=%s)", e.Name, e.ContentHash)
	return nil
}

// Get fetches the entry for hash. The second return value is false if
// no such entry exists.
func (s *Store) Get(ctx context.Context, hash string) (*CatalogueEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT content_hash, source_kind, name, imported_unix_nanos, validated_unix_nanos, validation_report_json, layout_blob
		FROM layout_catalogue WHERE content_hash = ?`, hash)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		monitoring.Logf("catalog: miss for hash=%s", hash)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog: get %q: %w", hash, err)
	}
	monitoring.Logf("catalog: hit for hash=%s", hash)
	return e, true, nil
}

// ListRecent returns up to limit entries, most recently imported first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]CatalogueEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_hash, source_kind, name, imported_unix_nanos, validated_unix_nanos, validation_report_json, layout_blob
		FROM layout_catalogue ORDER BY imported_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list recent: %w", err)
	}
	defer rows.Close()

	var out []CatalogueEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// DeleteOlderThan removes entries imported before t, returning the count removed.
func (s *Store) DeleteOlderThan(ctx context.Context, t time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM layout_catalogue WHERE imported_unix_nanos < ?`, t.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("catalog: delete older than %s: %w", t, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("catalog: rows affected: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*CatalogueEntry, error) {
	var (
		hash, kind, name string
		importedNanos    int64
		validatedNanos   sql.NullInt64
		reportJSON       sql.NullString
		blob             []byte
	)
	if err := row.Scan(&hash, &kind, &name, &importedNanos, &validatedNanos, &reportJSON, &blob); err != nil {
		return nil, err
	}
	layoutJSON, err := gunzipBytes(blob)
	if err != nil {
		return nil, fmt.Errorf("decompress layout blob: %w", err)
	}
	e := &CatalogueEntry{
		ContentHash: hash,
		SourceKind:  kind,
		Name:        name,
		ImportedAt:  time.Unix(0, importedNanos).UTC(),
		LayoutJSON:  layoutJSON,
	}
	if validatedNanos.Valid {
		t := time.Unix(0, validatedNanos.Int64).UTC()
		e.ValidatedAt = &t
	}
	if reportJSON.Valid {
		e.ValidationReportJSON = []byte(reportJSON.String)
	}
	return e, nil
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
