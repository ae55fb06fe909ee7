package store

import (
	"fmt"
	"strings"
)

// FTSResult holds an FTS5 match result.
type FTSResult struct {
	RowID     int64
	ID        string
	Title     string
	RelPath   string
	Category  string
	Rank      float64
	Preview   string
	UpdatedAt int64
}

// SearchStore handles full-text search via SQLite FTS5.
type SearchStore struct {
	db *DB
}

func NewSearchStore(db *DB) *SearchStore {
	return &SearchStore{db: db}
}

// Search performs BM25 full-text search over note titles, bodies, and tags.
// Returns results ranked by BM25 score (higher = better match), with a
// snippet() preview around the first body hit.
func (s *SearchStore) Search(query, category, tag string, limit int) ([]FTSResult, error) {
	if query == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = 10
	}

	conds := []string{"notes_fts MATCH ?"}
	args := []any{query}
	if category != "" {
		conds = append(conds, "n.category = ?")
		args = append(args, category)
	}
	if tag != "" {
		conds = append(conds, "n.tags LIKE ?")
		args = append(args, `%"`+tag+`"%`)
	}
	args = append(args, limit)

	// bm25() returns negative values where more negative = better match,
	// so we negate to get positive scores where higher = better.
	q := fmt.Sprintf(`
		SELECT n.rowid, n.id, n.title, n.rel_path, COALESCE(n.category, ''),
		       -rank AS score,
		       snippet(notes_fts, 1, '', '', ' … ', 12),
		       n.updated_at
		FROM notes_fts
		JOIN notes n ON n.rowid = notes_fts.rowid
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conds, " AND "))

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()

	var results []FTSResult
	for rows.Next() {
		var r FTSResult
		if err := rows.Scan(&r.RowID, &r.ID, &r.Title, &r.RelPath, &r.Category, &r.Rank, &r.Preview, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fts result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
