// Package index generates and validates the top-level index document that
// groups session notes by topic category.
package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lanyardhq/lanyard/internal/models"
)

// Uncategorized is the heading used for notes without a category.
const Uncategorized = "Uncategorized"

// Build renders the index document from the note catalog. Output is
// deterministic: categories follow categoryOrder, categories not named
// there come after in alphabetical order, and sessions within a category
// sort by title (path as tiebreak).
func Build(notes []*models.Note, categoryOrder []string) string {
	byCategory := make(map[string][]*models.Note)
	for _, n := range notes {
		cat := n.Category
		if cat == "" {
			cat = Uncategorized
		}
		byCategory[cat] = append(byCategory[cat], n)
	}

	var b strings.Builder
	b.WriteString("# Session Notes\n")

	for _, cat := range orderedCategories(byCategory, categoryOrder) {
		group := byCategory[cat]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Title != group[j].Title {
				return group[i].Title < group[j].Title
			}
			return group[i].RelPath < group[j].RelPath
		})

		b.WriteString("\n## " + cat + "\n\n")
		for _, n := range group {
			fmt.Fprintf(&b, "- [%s](%s)\n", n.Title, n.RelPath)
		}
	}

	return b.String()
}

func orderedCategories(byCategory map[string][]*models.Note, categoryOrder []string) []string {
	used := make(map[string]bool)
	var out []string
	for _, cat := range categoryOrder {
		if len(byCategory[cat]) > 0 {
			out = append(out, cat)
			used[cat] = true
		}
	}

	var rest []string
	for cat := range byCategory {
		if !used[cat] && cat != Uncategorized {
			rest = append(rest, cat)
		}
	}
	sort.Strings(rest)
	out = append(out, rest...)

	// Uncategorized always trails, so stray notes stand out.
	if len(byCategory[Uncategorized]) > 0 {
		out = append(out, Uncategorized)
	}
	return out
}
