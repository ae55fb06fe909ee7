package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/store"
)

type HealthHandler struct {
	db       *store.DB
	noteDirs []string
}

func NewHealthHandler(db *store.DB, noteDirs []string) *HealthHandler {
	return &HealthHandler{db: db, noteDirs: noteDirs}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status: "ok",
	}

	// Check DB
	count, err := h.db.NoteCount()
	if err != nil {
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.DB = models.ServiceCheck{Status: "ok"}
		resp.NoteCount = count
	}

	// Check note directories
	missing := 0
	for _, dir := range h.noteDirs {
		if _, err := os.Stat(dir); err != nil {
			missing++
		}
	}
	if missing == len(h.noteDirs) {
		resp.NoteDirs = models.ServiceCheck{
			Status:  "error",
			Message: "no note directory exists",
		}
		resp.Status = "degraded"
	} else if missing > 0 {
		resp.NoteDirs = models.ServiceCheck{
			Status:  "ok",
			Message: fmt.Sprintf("%d of %d directories missing", missing, len(h.noteDirs)),
		}
	} else {
		resp.NoteDirs = models.ServiceCheck{Status: "ok"}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
