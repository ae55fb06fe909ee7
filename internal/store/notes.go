package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lanyardhq/lanyard/internal/models"
)

// noteColumns is the canonical column list for all SELECT queries.
// Order must match scanOne/scanMany.
const noteColumns = `id, rel_path, title, speaker, date, category, tags,
	summary, content_hash, word_count, scanned_at, updated_at`

// validSorts whitelists ORDER BY columns for List.
var validSorts = map[string]bool{
	"title":      true,
	"rel_path":   true,
	"updated_at": true,
	"scanned_at": true,
	"word_count": true,
}

// NoteStore handles Note CRUD operations on SQLite.
type NoteStore struct {
	db *DB
}

func NewNoteStore(db *DB) *NoteStore {
	return &NoteStore{db: db}
}

// Insert stores a new note. The caller must set all required fields
// including ID and ContentHash. The body feeds the FTS index and is not
// part of the Note model.
func (s *NoteStore) Insert(n *models.Note, body string) error {
	tagsJSON, _ := json.Marshal(n.Tags)

	_, err := s.db.Exec(`
		INSERT INTO notes (
			id, rel_path, title, speaker, date, category, tags,
			summary, body, content_hash, word_count, scanned_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID, n.RelPath, n.Title, n.Speaker, n.Date, n.Category, string(tagsJSON),
		n.Summary, body, n.ContentHash, n.WordCount, n.ScannedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// Update rewrites a note's scanned fields after its file changed on disk.
func (s *NoteStore) Update(n *models.Note, body string) error {
	tagsJSON, _ := json.Marshal(n.Tags)

	res, err := s.db.Exec(`
		UPDATE notes SET
			title = ?, speaker = ?, date = ?, category = ?, tags = ?,
			summary = ?, body = ?, content_hash = ?, word_count = ?,
			scanned_at = ?, updated_at = ?
		WHERE id = ?
	`,
		n.Title, n.Speaker, n.Date, n.Category, string(tagsJSON),
		n.Summary, body, n.ContentHash, n.WordCount,
		n.ScannedAt, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return fmt.Errorf("note not found: %s", n.ID)
	}
	return nil
}

// GetByID fetches a single note by ID.
func (s *NoteStore) GetByID(id string) (*models.Note, error) {
	n, err := s.scanOne(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM notes WHERE id = ?`, noteColumns), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

// GetByRelPath fetches a single note by its path relative to the scan root.
func (s *NoteStore) GetByRelPath(relPath string) (*models.Note, error) {
	n, err := s.scanOne(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM notes WHERE rel_path = ?`, noteColumns), relPath))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

// Delete removes a note by ID. Links and snippets cascade.
func (s *NoteStore) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return fmt.Errorf("note not found: %s", id)
	}
	return nil
}

// ListAll returns every note ordered by rel_path, for index generation and
// catalog reconciliation.
func (s *NoteStore) ListAll() ([]*models.Note, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM notes ORDER BY rel_path`, noteColumns))
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()
	return s.scanMany(rows)
}

// List returns a page of notes with optional filters.
func (s *NoteStore) List(req *models.ListRequest) ([]*models.Note, int, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}
	sortCol := req.Sort
	if !validSorts[sortCol] {
		sortCol = "rel_path"
	}
	order := "ASC"
	if strings.EqualFold(req.Order, "desc") {
		order = "DESC"
	}

	var conds []string
	var args []any
	if req.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, req.Category)
	}
	if req.Speaker != "" {
		conds = append(conds, "speaker = ?")
		args = append(args, req.Speaker)
	}
	if req.Tag != "" {
		// Tags are stored as a JSON array; match the quoted element.
		conds = append(conds, "tags LIKE ?")
		args = append(args, `%"`+req.Tag+`"%`)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM notes %s", where), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM notes %s ORDER BY %s %s LIMIT ? OFFSET ?`,
			noteColumns, where, sortCol, order),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	list, err := s.scanMany(rows)
	return list, total, err
}

// Categories returns the distinct non-empty categories in use.
func (s *NoteStore) Categories() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT category FROM notes WHERE category IS NOT NULL AND category != '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *NoteStore) scanOne(row *sql.Row) (*models.Note, error) {
	var n models.Note
	var speaker, date, category, summary sql.NullString
	var tagsJSON sql.NullString

	err := row.Scan(
		&n.ID, &n.RelPath, &n.Title, &speaker, &date, &category, &tagsJSON,
		&summary, &n.ContentHash, &n.WordCount, &n.ScannedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Speaker = speaker.String
	n.Date = date.String
	n.Category = category.String
	n.Summary = summary.String
	if tagsJSON.Valid && tagsJSON.String != "" {
		_ = json.Unmarshal([]byte(tagsJSON.String), &n.Tags)
	}
	return &n, nil
}

func (s *NoteStore) scanMany(rows *sql.Rows) ([]*models.Note, error) {
	var notes []*models.Note
	for rows.Next() {
		var n models.Note
		var speaker, date, category, summary sql.NullString
		var tagsJSON sql.NullString

		err := rows.Scan(
			&n.ID, &n.RelPath, &n.Title, &speaker, &date, &category, &tagsJSON,
			&summary, &n.ContentHash, &n.WordCount, &n.ScannedAt, &n.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}

		n.Speaker = speaker.String
		n.Date = date.String
		n.Category = category.String
		n.Summary = summary.String
		if tagsJSON.Valid && tagsJSON.String != "" {
			_ = json.Unmarshal([]byte(tagsJSON.String), &n.Tags)
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
