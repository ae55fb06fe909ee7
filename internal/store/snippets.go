package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lanyardhq/lanyard/internal/models"
)

// SnippetStore handles fenced code blocks extracted from notes.
type SnippetStore struct {
	db *DB
}

func NewSnippetStore(db *DB) *SnippetStore {
	return &SnippetStore{db: db}
}

// ReplaceForNote swaps in the current set of snippets for a note.
func (s *SnippetStore) ReplaceForNote(noteID string, snippets []models.Snippet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace snippets: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM snippets WHERE note_id = ?", noteID); err != nil {
		return fmt.Errorf("clear snippets: %w", err)
	}

	for _, sn := range snippets {
		_, err := tx.Exec(`
			INSERT INTO snippets (id, note_id, language, tangle_path, content, line, kind)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, sn.ID, noteID, sn.Language, sn.TanglePath, sn.Content, sn.Line, string(sn.Kind))
		if err != nil {
			return fmt.Errorf("insert snippet: %w", err)
		}
	}

	return tx.Commit()
}

// ListByNote returns the snippets of one note in document order.
func (s *SnippetStore) ListByNote(noteID string) ([]models.Snippet, error) {
	return s.list("WHERE note_id = ?", noteID)
}

// List returns snippets with optional language and note filters.
func (s *SnippetStore) List(language, noteID string) ([]models.Snippet, error) {
	var conds []string
	var args []any
	if language != "" {
		conds = append(conds, "language = ?")
		args = append(args, language)
	}
	if noteID != "" {
		conds = append(conds, "note_id = ?")
		args = append(args, noteID)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return s.list(where, args...)
}

// ListTangleable returns code snippets carrying a tangle directive, in
// note-path then document order, which fixes concatenation order for
// snippets that share an output file.
func (s *SnippetStore) ListTangleable() ([]models.Snippet, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.note_id, s.language, s.tangle_path, s.content, s.line, s.kind
		FROM snippets s
		JOIN notes n ON n.id = s.note_id
		WHERE s.kind = 'code' AND s.tangle_path != ''
		ORDER BY n.rel_path, s.line, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list tangleable snippets: %w", err)
	}
	defer rows.Close()
	return scanSnippets(rows)
}

func (s *SnippetStore) list(where string, args ...any) ([]models.Snippet, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT id, note_id, language, tangle_path, content, line, kind
		FROM snippets %s ORDER BY note_id, line, id
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	defer rows.Close()
	return scanSnippets(rows)
}

func scanSnippets(rows *sql.Rows) ([]models.Snippet, error) {
	var out []models.Snippet
	for rows.Next() {
		var sn models.Snippet
		var language, tanglePath sql.NullString
		err := rows.Scan(&sn.ID, &sn.NoteID, &language, &tanglePath, &sn.Content, &sn.Line, &sn.Kind)
		if err != nil {
			return nil, fmt.Errorf("scan snippet: %w", err)
		}
		sn.Language = language.String
		sn.TanglePath = tanglePath.String
		out = append(out, sn)
	}
	return out, rows.Err()
}
