// Package sqlite implements the local shadow store on SQLite.
//
// The shadow copy keeps normalised text and content hashes beside the
// vector store so change detection and the keyword fallback survive
// store outages. It uses modernc.org/sqlite, a pure Go driver that
// needs no CGO.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ShadowStore = (*Store)(nil)

// snippetRadius is how many characters of context surround a keyword
// match in the returned snippet.
const snippetRadius = 120

const schema = `
CREATE TABLE IF NOT EXISTS shadow_documents (
	owner_id     TEXT NOT NULL,
	filename     TEXT NOT NULL,
	text         TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	is_tabular   INTEGER NOT NULL DEFAULT 0,
	updated_at   TEXT NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (owner_id, filename)
);
`

// Store is the SQLite-backed shadow store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the shadow database under dataDir.
// If dataDir is empty, defaults to ~/.grounder/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".grounder", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "shadow.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save upserts the normalised text and hash for (owner, filename).
func (s *Store) Save(ctx context.Context, owner, filename, text, hash string) error {
	isTabular := 0
	if looksTabular(text) {
		isTabular = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shadow_documents (owner_id, filename, text, content_hash, is_tabular, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(owner_id, filename) DO UPDATE SET
			text = excluded.text,
			content_hash = excluded.content_hash,
			is_tabular = excluded.is_tabular,
			updated_at = excluded.updated_at
	`, owner, filename, text, hash, isTabular)
	if err != nil {
		return fmt.Errorf("saving shadow row: %w", err)
	}
	return nil
}

// GetHash returns the stored content hash.
func (s *Store) GetHash(ctx context.Context, owner, filename string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash FROM shadow_documents
		WHERE owner_id = ? AND filename = ?
	`, owner, filename).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading shadow hash: %w", err)
	}
	if hash == "" {
		return "", domain.ErrNotFound
	}
	return hash, nil
}

// InvalidateHash clears the stored hash so the next indexing call
// reindexes unconditionally. The text stays usable for keyword scans.
func (s *Store) InvalidateHash(ctx context.Context, owner, filename string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE shadow_documents SET content_hash = ''
		WHERE owner_id = ? AND filename = ?
	`, owner, filename)
	if err != nil {
		return fmt.Errorf("invalidating shadow hash: %w", err)
	}
	return nil
}

// ScanKeyword performs a case-insensitive literal substring scan over
// the owner's texts. The LIKE pre-filter narrows rows in SQL; the
// snippet window is computed in Go.
func (s *Store) ScanKeyword(
	ctx context.Context, owner, query string, limit int,
) ([]driven.KeywordHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, text, is_tabular FROM shadow_documents
		WHERE owner_id = ?
		  AND lower(text) LIKE '%' || lower(?) || '%' ESCAPE '\'
		ORDER BY filename
		LIMIT ?
	`, owner, escapeLike(query), limit)
	if err != nil {
		return nil, fmt.Errorf("scanning shadow texts: %w", err)
	}
	defer rows.Close()

	var hits []driven.KeywordHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var filename, text string
		var isTabular int
		if err := rows.Scan(&filename, &text, &isTabular); err != nil {
			return nil, fmt.Errorf("scanning shadow row: %w", err)
		}
		hits = append(hits, driven.KeywordHit{
			Filename:  filename,
			Snippet:   snippetAround(text, query),
			IsTabular: isTabular != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shadow rows: %w", err)
	}
	return hits, nil
}

// Delete removes the row for (owner, filename).
func (s *Store) Delete(ctx context.Context, owner, filename string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM shadow_documents WHERE owner_id = ? AND filename = ?
	`, owner, filename)
	if err != nil {
		return fmt.Errorf("deleting shadow row: %w", err)
	}
	return nil
}

// DeleteAll removes every row belonging to owner.
func (s *Store) DeleteAll(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM shadow_documents WHERE owner_id = ?
	`, owner)
	if err != nil {
		return fmt.Errorf("deleting shadow rows: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// snippetAround returns the text window surrounding the first
// case-insensitive occurrence of needle.
func snippetAround(text, needle string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(needle))
	if idx < 0 {
		return clampRunes(text, 2*snippetRadius)
	}

	start := idx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := idx + len(needle) + snippetRadius
	if end > len(text) {
		end = len(text)
	}

	// Stay on rune boundaries.
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}
	return text[start:end]
}

func clampRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// escapeLike escapes LIKE wildcards so the scan stays literal.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// looksTabular is a cheap structural check for markdown-style tables
// so degraded-mode hits can keep the table flag.
func looksTabular(text string) bool {
	firstLine, _, _ := strings.Cut(text, "\n")
	return strings.HasPrefix(strings.TrimSpace(firstLine), "|")
}
