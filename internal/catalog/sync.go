package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/notes"
	"github.com/lanyardhq/lanyard/internal/store"
)

// Events receives notifications as the catalog changes. Implemented by the
// websocket broadcaster; nil-safe via the noopEvents default.
type Events interface {
	NoteAdded(n *models.Note)
	NoteUpdated(n *models.Note)
	NoteRemoved(relPath string)
	ScanDone(res *models.SyncResult)
}

type noopEvents struct{}

func (noopEvents) NoteAdded(*models.Note)      {}
func (noopEvents) NoteUpdated(*models.Note)    {}
func (noopEvents) NoteRemoved(string)          {}
func (noopEvents) ScanDone(*models.SyncResult) {}

// Service keeps the note database in sync with the markdown files on disk.
type Service struct {
	noteStore    *store.NoteStore
	linkStore    *store.LinkStore
	snippetStore *store.SnippetStore
	dirs         []string
	indexPath    string
	events       Events
	logger       *slog.Logger
}

func NewService(
	noteStore *store.NoteStore,
	linkStore *store.LinkStore,
	snippetStore *store.SnippetStore,
	dirs []string,
	indexPath string,
	events Events,
	logger *slog.Logger,
) *Service {
	if events == nil {
		events = noopEvents{}
	}
	return &Service{
		noteStore:    noteStore,
		linkStore:    linkStore,
		snippetStore: snippetStore,
		dirs:         dirs,
		indexPath:    indexPath,
		events:       events,
		logger:       logger,
	}
}

// Dirs returns the configured note directories.
func (s *Service) Dirs() []string { return s.dirs }

// Sync scans the note directories and reconciles the database: new files
// are inserted, files whose content hash changed are rewritten, and rows
// for files that disappeared are removed. Unchanged files are skipped.
func (s *Service) Sync() (*models.SyncResult, error) {
	indexRel := filepath.ToSlash(s.indexPath)
	files, scanErrs, err := notes.ScanDirs(s.dirs, func(rel string) bool {
		return rel == indexRel
	})
	if err != nil {
		return nil, fmt.Errorf("scan notes: %w", err)
	}

	for _, se := range scanErrs {
		s.logger.Warn("skipping unparseable note", "path", se.Path, "error", se.Err)
	}

	existing, err := s.noteStore.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list existing notes: %w", err)
	}
	byPath := make(map[string]*models.Note, len(existing))
	for _, n := range existing {
		byPath[n.RelPath] = n
	}

	result := &models.SyncResult{Found: len(files), Errors: len(scanErrs)}
	seen := make(map[string]bool, len(files))
	now := time.Now().Unix()

	for _, f := range files {
		seen[f.RelPath] = true
		prev := byPath[f.RelPath]

		switch {
		case prev == nil:
			n := noteFromDoc(f, now)
			n.ID = uuid.New().String()
			if err := s.storeNote(n, f, true); err != nil {
				s.logger.Error("failed to store note", "path", f.RelPath, "error", err)
				result.Errors++
				continue
			}
			result.Added++
			s.events.NoteAdded(n)

		case prev.ContentHash != f.Doc.ContentHash:
			n := noteFromDoc(f, now)
			n.ID = prev.ID
			if err := s.storeNote(n, f, false); err != nil {
				s.logger.Error("failed to update note", "path", f.RelPath, "error", err)
				result.Errors++
				continue
			}
			result.Updated++
			s.events.NoteUpdated(n)
		}
	}

	for _, n := range existing {
		if seen[n.RelPath] {
			continue
		}
		if err := s.noteStore.Delete(n.ID); err != nil {
			s.logger.Error("failed to remove note", "path", n.RelPath, "error", err)
			result.Errors++
			continue
		}
		result.Removed++
		s.events.NoteRemoved(n.RelPath)
	}

	s.logger.Info("catalog sync complete",
		"found", result.Found,
		"added", result.Added,
		"updated", result.Updated,
		"removed", result.Removed,
		"errors", result.Errors,
	)
	s.events.ScanDone(result)

	return result, nil
}

func (s *Service) storeNote(n *models.Note, f *notes.File, insert bool) error {
	if insert {
		if err := s.noteStore.Insert(n, f.Doc.Body); err != nil {
			return err
		}
	} else {
		if err := s.noteStore.Update(n, f.Doc.Body); err != nil {
			return err
		}
	}

	if err := s.linkStore.ReplaceForNote(n.ID, f.Doc.Links); err != nil {
		return fmt.Errorf("replace links: %w", err)
	}

	snippets := make([]models.Snippet, len(f.Doc.Snippets))
	copy(snippets, f.Doc.Snippets)
	for i := range snippets {
		snippets[i].ID = uuid.New().String()
		snippets[i].NoteID = n.ID
	}
	if err := s.snippetStore.ReplaceForNote(n.ID, snippets); err != nil {
		return fmt.Errorf("replace snippets: %w", err)
	}
	return nil
}

// Detail loads a note's stored row plus its outline re-parsed from disk.
func (s *Service) Detail(id string) (*models.NoteDetail, error) {
	n, err := s.noteStore.GetByID(id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}

	detail := &models.NoteDetail{Note: n}

	if abs := s.locate(n.RelPath); abs != "" {
		data, err := os.ReadFile(abs)
		if err == nil {
			if doc, err := notes.Parse(data); err == nil {
				detail.Sections = doc.Sections
			}
		}
	}

	detail.Snippets, err = s.snippetStore.ListByNote(n.ID)
	if err != nil {
		return nil, fmt.Errorf("load snippets: %w", err)
	}
	detail.Links, err = s.linkStore.ListByNote(n.ID)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	return detail, nil
}

// Locate resolves a stored rel_path back to a file on disk, trying each
// configured directory in order.
func (s *Service) Locate(relPath string) string { return s.locate(relPath) }

func (s *Service) locate(relPath string) string {
	for _, dir := range s.dirs {
		abs := filepath.Join(dir, filepath.FromSlash(relPath))
		if _, err := os.Stat(abs); err == nil {
			return abs
		}
	}
	return ""
}

func noteFromDoc(f *notes.File, now int64) *models.Note {
	return &models.Note{
		RelPath:     f.RelPath,
		Title:       f.Doc.Title,
		Speaker:     f.Doc.Meta.Speaker,
		Date:        f.Doc.Meta.Date,
		Category:    f.Doc.Meta.Category,
		Tags:        f.Doc.Meta.Tags,
		Summary:     f.Doc.Meta.Summary,
		ContentHash: f.Doc.ContentHash,
		WordCount:   f.Doc.WordCount,
		ScannedAt:   now,
		UpdatedAt:   now,
	}
}
