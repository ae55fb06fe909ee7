package store

import (
	"database/sql"
	"fmt"

	"github.com/lanyardhq/lanyard/internal/models"
)

// LinkStore handles hyperlink rows extracted from notes.
type LinkStore struct {
	db *DB
}

func NewLinkStore(db *DB) *LinkStore {
	return &LinkStore{db: db}
}

// ReplaceForNote swaps in the current set of links for a note. Runs in a
// transaction so a rescan never leaves a note half-linked.
func (s *LinkStore) ReplaceForNote(noteID string, links []models.Link) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace links: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM links WHERE note_id = ?", noteID); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}

	for _, l := range links {
		_, err := tx.Exec(`
			INSERT INTO links (note_id, target, kind, line)
			VALUES (?, ?, ?, ?)
		`, noteID, l.Target, string(l.Kind), l.Line)
		if err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
	}

	return tx.Commit()
}

// ListByNote returns the links found in one note.
func (s *LinkStore) ListByNote(noteID string) ([]models.Link, error) {
	rows, err := s.db.Query(`
		SELECT id, note_id, target, kind, line, resolved, checked_at, status_code, check_error
		FROM links WHERE note_id = ? ORDER BY line, id
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var out []models.Link
	for rows.Next() {
		l, err := scanLink(rows, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// NoteLink pairs a link with the rel_path of its containing note.
type NoteLink struct {
	models.Link
	NotePath string
}

// ListAll returns every link joined with its note's path, for check runs.
func (s *LinkStore) ListAll() ([]NoteLink, error) {
	rows, err := s.db.Query(`
		SELECT l.id, l.note_id, l.target, l.kind, l.line,
		       l.resolved, l.checked_at, l.status_code, l.check_error,
		       n.rel_path
		FROM links l
		JOIN notes n ON n.id = l.note_id
		ORDER BY n.rel_path, l.line, l.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list all links: %w", err)
	}
	defer rows.Close()

	var out []NoteLink
	for rows.Next() {
		var notePath string
		l, err := scanLink(rows, &notePath)
		if err != nil {
			return nil, err
		}
		out = append(out, NoteLink{Link: l, NotePath: notePath})
	}
	return out, rows.Err()
}

// RecordCheck persists the outcome of checking one link.
func (s *LinkStore) RecordCheck(id int64, resolved bool, statusCode int, checkErr string, checkedAt int64) error {
	_, err := s.db.Exec(`
		UPDATE links SET resolved = ?, status_code = ?, check_error = ?, checked_at = ?
		WHERE id = ?
	`, resolved, statusCode, checkErr, checkedAt, id)
	if err != nil {
		return fmt.Errorf("record link check: %w", err)
	}
	return nil
}

// scanLink reads one link row. When notePath is non-nil the row is expected
// to carry the joined rel_path as its final column.
func scanLink(rows *sql.Rows, notePath *string) (models.Link, error) {
	var l models.Link
	var resolved sql.NullBool
	var checkedAt, statusCode sql.NullInt64
	var checkErr sql.NullString

	dest := []any{
		&l.ID, &l.NoteID, &l.Target, &l.Kind, &l.Line,
		&resolved, &checkedAt, &statusCode, &checkErr,
	}
	if notePath != nil {
		dest = append(dest, notePath)
	}
	if err := rows.Scan(dest...); err != nil {
		return models.Link{}, fmt.Errorf("scan link: %w", err)
	}

	if resolved.Valid {
		v := resolved.Bool
		l.Resolved = &v
	}
	if checkedAt.Valid {
		v := checkedAt.Int64
		l.CheckedAt = &v
	}
	l.StatusCode = int(statusCode.Int64)
	l.CheckError = checkErr.String
	return l, nil
}
