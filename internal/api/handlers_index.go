package api

import (
	"net/http"
	"os"

	"github.com/lanyardhq/lanyard/internal/index"
	"github.com/lanyardhq/lanyard/internal/store"
)

type IndexHandler struct {
	noteStore     *store.NoteStore
	locate        func(relPath string) string
	indexPath     string
	categoryOrder []string
}

func NewIndexHandler(noteStore *store.NoteStore, locate func(string) string, indexPath string, categoryOrder []string) *IndexHandler {
	return &IndexHandler{
		noteStore:     noteStore,
		locate:        locate,
		indexPath:     indexPath,
		categoryOrder: categoryOrder,
	}
}

// Get handles GET /index: the index document generated from the catalog.
func (h *IndexHandler) Get(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteStore.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc := index.Build(notes, h.categoryOrder)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Validate handles GET /index/validate: the authored index document checked
// against the scanned catalog.
func (h *IndexHandler) Validate(w http.ResponseWriter, r *http.Request) {
	abs := h.locate(h.indexPath)
	if abs == "" {
		writeError(w, http.StatusNotFound, "index document not found: "+h.indexPath)
		return
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	notes, err := h.noteStore.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	report, err := index.Validate(src, notes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
