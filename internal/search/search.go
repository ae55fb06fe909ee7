// Package search answers full-text queries over the note catalog.
package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/store"
)

// recencyWindow is how far back the recency boost reaches. Notes edited
// longer ago than this get no boost at all.
const recencyWindow = 30 * 24 * time.Hour

// Searcher runs BM25 queries and shapes the scores: normalization to 0..1
// against the best match, plus a small boost for recently edited notes.
type Searcher struct {
	searchStore  *store.SearchStore
	minScore     float64
	maxResults   int
	recencyBoost float64
}

func NewSearcher(searchStore *store.SearchStore, minScore float64, maxResults int, recencyBoost float64) *Searcher {
	return &Searcher{
		searchStore:  searchStore,
		minScore:     minScore,
		maxResults:   maxResults,
		recencyBoost: recencyBoost,
	}
}

// Search executes a query with the request's filters, falling back to the
// configured defaults for unset limits.
func (s *Searcher) Search(req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()

	maxResults := req.MaxResults
	if maxResults < 1 {
		maxResults = s.maxResults
	}
	minScore := s.minScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	// Over-fetch so normalization and the score floor still leave a full
	// page of results.
	raw, err := s.searchStore.Search(ftsQuery(req.Query), req.Category, req.Tag, maxResults*3)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	resp := &models.SearchResponse{Results: []models.SearchResult{}}

	var best float64
	for _, r := range raw {
		if r.Rank > best {
			best = r.Rank
		}
	}

	now := time.Now()
	for _, r := range raw {
		score := 0.0
		if best > 0 {
			score = r.Rank / best
		}
		score *= 1 + s.recencyBoost*recencyFactor(now, r.UpdatedAt)
		if score > 1 {
			score = 1
		}
		if score < minScore {
			continue
		}

		resp.Results = append(resp.Results, models.SearchResult{
			ID:        r.ID,
			Title:     r.Title,
			RelPath:   r.RelPath,
			Category:  r.Category,
			Score:     score,
			Preview:   strings.TrimSpace(r.Preview),
			UpdatedAt: r.UpdatedAt,
		})
		if len(resp.Results) == maxResults {
			break
		}
	}

	resp.Meta = models.SearchMeta{
		TotalResults: len(resp.Results),
		SearchTimeMs: int(time.Since(start).Milliseconds()),
	}
	return resp, nil
}

// recencyFactor decays linearly from 1 (edited now) to 0 (edited at or
// beyond the window).
func recencyFactor(now time.Time, updatedAt int64) float64 {
	age := now.Sub(time.Unix(updatedAt, 0))
	if age < 0 {
		return 1
	}
	if age >= recencyWindow {
		return 0
	}
	return 1 - float64(age)/float64(recencyWindow)
}

// ftsQuery quotes each term so user input with FTS5 operators ("-", NEAR)
// cannot break the MATCH expression.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, ``) + `"`
	}
	return strings.Join(fields, " ")
}
