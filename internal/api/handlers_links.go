package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/lanyardhq/lanyard/internal/linkcheck"
	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/ws"
)

type LinkHandler struct {
	checker         *linkcheck.Checker
	broadcaster     *ws.Broadcaster
	externalDefault bool
}

func NewLinkHandler(checker *linkcheck.Checker, broadcaster *ws.Broadcaster, externalDefault bool) *LinkHandler {
	return &LinkHandler{checker: checker, broadcaster: broadcaster, externalDefault: externalDefault}
}

// Check handles POST /links/check. An empty body runs with the configured
// default for external checking.
func (h *LinkHandler) Check(w http.ResponseWriter, r *http.Request) {
	req := models.CheckRequest{External: h.externalDefault}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, err := h.checker.Run(r.Context(), req.External)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.CheckDone(report)
	}

	writeJSON(w, http.StatusOK, report)
}
