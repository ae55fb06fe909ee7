package index

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/notes"
)

// Entry is one session listed in the index document.
type Entry struct {
	Title    string
	Target   string // link destination normalized to a note rel_path
	Category string // nearest heading above the link, "" at top level
}

var md = goldmark.New()

// ParseEntries extracts the session entries from an index document. Only
// internal markdown links count; external citations in the index are not
// session entries.
func ParseEntries(src []byte) ([]Entry, error) {
	root := md.Parser().Parse(text.NewReader(src))

	var entries []Entry
	category := ""

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level >= 2 {
				category = innerText(node, src)
			}
		case *ast.Link:
			target := normalizeTarget(string(node.Destination))
			if target == "" || notes.ClassifyLink(target) != models.LinkInternal {
				return ast.WalkContinue, nil
			}
			if !strings.HasSuffix(strings.ToLower(target), ".md") {
				return ast.WalkContinue, nil
			}
			entries = append(entries, Entry{
				Title:    innerText(node, src),
				Target:   target,
				Category: category,
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk index: %w", err)
	}

	return entries, nil
}

// Validate checks the index document against the scanned note catalog:
// every note listed exactly once, every index link backed by a real note,
// every session under exactly one category, and index placement agreeing
// with the note's own frontmatter.
func Validate(src []byte, catalog []*models.Note) (*models.ValidationReport, error) {
	entries, err := ParseEntries(src)
	if err != nil {
		return nil, err
	}

	report := &models.ValidationReport{Entries: len(entries)}

	byPath := make(map[string]*models.Note, len(catalog))
	for _, n := range catalog {
		byPath[n.RelPath] = n
	}

	listed := make(map[string][]string) // rel_path -> categories seen
	for _, e := range entries {
		listed[e.Target] = append(listed[e.Target], e.Category)
	}

	for target, cats := range listed {
		note := byPath[target]
		if note == nil {
			report.Violations = append(report.Violations, models.Violation{
				Kind:    models.ViolationDangling,
				RelPath: target,
				Detail:  "index links to a file that is not a scanned note",
			})
			continue
		}
		if len(cats) > 1 {
			report.Violations = append(report.Violations, models.Violation{
				Kind:    models.ViolationDuplicate,
				RelPath: target,
				Detail:  fmt.Sprintf("listed %d times (categories: %s)", len(cats), strings.Join(cats, ", ")),
			})
			continue
		}

		cat := cats[0]
		switch {
		case note.Category != "" && cat != "" && note.Category != cat:
			report.Violations = append(report.Violations, models.Violation{
				Kind:     models.ViolationMiscategory,
				RelPath:  target,
				Category: cat,
				Detail:   fmt.Sprintf("frontmatter says %q", note.Category),
			})
		case note.Category == "" && cat == "":
			report.Violations = append(report.Violations, models.Violation{
				Kind:    models.ViolationUncategorized,
				RelPath: target,
			})
		}
	}

	for _, n := range catalog {
		if _, ok := listed[n.RelPath]; !ok {
			report.Violations = append(report.Violations, models.Violation{
				Kind:     models.ViolationMissing,
				RelPath:  n.RelPath,
				Category: n.Category,
				Detail:   "note exists on disk but is not in the index",
			})
		}
	}

	return report, nil
}

// normalizeTarget maps an index link destination onto a note rel_path:
// leading "./" stripped, anchor suffix dropped.
func normalizeTarget(target string) string {
	target = strings.TrimPrefix(target, "./")
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	return target
}

func innerText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		} else {
			b.WriteString(innerText(c, src))
		}
	}
	return strings.TrimSpace(b.String())
}
