package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/store"
	"github.com/lanyardhq/lanyard/internal/tangle"
)

type SnippetHandler struct {
	snippetStore *store.SnippetStore
	tangler      *tangle.Tangler
	defaultOut   string
}

func NewSnippetHandler(snippetStore *store.SnippetStore, tangler *tangle.Tangler, defaultOut string) *SnippetHandler {
	return &SnippetHandler{snippetStore: snippetStore, tangler: tangler, defaultOut: defaultOut}
}

// List handles GET /snippets
func (h *SnippetHandler) List(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	noteID := r.URL.Query().Get("note_id")

	snippets, err := h.snippetStore.List(language, noteID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snippets == nil {
		snippets = []models.Snippet{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snippets": snippets,
	})
}

// Tangle handles POST /snippets/tangle.
func (h *SnippetHandler) Tangle(w http.ResponseWriter, r *http.Request) {
	var req models.TangleRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = h.defaultOut
	}

	result, err := h.tangler.Run(outDir, req.DryRun)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
