// Package tangle extracts embedded tutorial snippets into runnable demo
// project trees, so the code shown in a session note can be compiled and
// run outside of it.
package tangle

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/store"
)

// Tangler writes snippets carrying a tangle directive out to files.
type Tangler struct {
	snippetStore *store.SnippetStore
	logger       *slog.Logger
}

func New(snippetStore *store.SnippetStore, logger *slog.Logger) *Tangler {
	return &Tangler{snippetStore: snippetStore, logger: logger}
}

// Run extracts every tangleable snippet under outDir. Snippets naming the
// same output file concatenate in note order with a blank line between
// them. Directive paths that escape outDir are skipped. With dryRun the
// plan is reported and nothing is written.
func (t *Tangler) Run(outDir string, dryRun bool) (*models.TangleResult, error) {
	snippets, err := t.snippetStore.ListTangleable()
	if err != nil {
		return nil, fmt.Errorf("load snippets: %w", err)
	}

	result := &models.TangleResult{DryRun: dryRun}

	// Group by output path, preserving first-seen order.
	var paths []string
	grouped := make(map[string][]models.Snippet)
	for _, sn := range snippets {
		rel, ok := safeRel(sn.TanglePath)
		if !ok {
			t.logger.Warn("skipping snippet with unsafe tangle path", "path", sn.TanglePath)
			result.Skipped++
			continue
		}
		if _, seen := grouped[rel]; !seen {
			paths = append(paths, rel)
		}
		grouped[rel] = append(grouped[rel], sn)
	}

	for _, rel := range paths {
		group := grouped[rel]
		content := assemble(group)
		out := filepath.Join(outDir, filepath.FromSlash(rel))

		if !dryRun {
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return nil, fmt.Errorf("create output dir for %s: %w", rel, err)
			}
			if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", rel, err)
			}
		}

		result.Files = append(result.Files, models.TangledFile{
			Path:     rel,
			Snippets: len(group),
			Bytes:    len(content),
		})
	}

	t.logger.Info("tangle complete",
		"files", len(result.Files),
		"skipped", result.Skipped,
		"dryRun", dryRun,
	)
	return result, nil
}

// assemble joins a file's snippets with one blank line between them.
func assemble(group []models.Snippet) string {
	parts := make([]string, len(group))
	for i, sn := range group {
		parts[i] = strings.TrimRight(sn.Content, "\n") + "\n"
	}
	return strings.Join(parts, "\n")
}

// safeRel cleans a tangle directive path and rejects anything that would
// land outside the output root.
func safeRel(p string) (string, bool) {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return "", false
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}
