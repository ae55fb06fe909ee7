package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lanyardhq/lanyard/internal/catalog"
	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/search"
	"github.com/lanyardhq/lanyard/internal/store"
)

type NoteHandler struct {
	noteStore *store.NoteStore
	catalog   *catalog.Service
	searcher  *search.Searcher
}

func NewNoteHandler(noteStore *store.NoteStore, catalogSvc *catalog.Service, searcher *search.Searcher) *NoteHandler {
	return &NoteHandler{noteStore: noteStore, catalog: catalogSvc, searcher: searcher}
}

// List handles GET /notes
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	req := &models.ListRequest{
		Page:     page,
		Limit:    limit,
		Sort:     r.URL.Query().Get("sort"),
		Order:    r.URL.Query().Get("order"),
		Category: r.URL.Query().Get("category"),
		Speaker:  r.URL.Query().Get("speaker"),
		Tag:      r.URL.Query().Get("tag"),
	}

	notes, total, err := h.noteStore.List(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}

	limit = req.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit

	writeJSON(w, http.StatusOK, models.ListResponse{
		Notes: notes,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Get handles GET /notes/{id}
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.catalog.Detail(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// Search handles POST /notes/search
func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := h.searcher.Search(&req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Scan handles POST /scan
func (h *NoteHandler) Scan(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.Sync()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
