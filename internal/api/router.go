package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/lanyardhq/lanyard/internal/catalog"
	"github.com/lanyardhq/lanyard/internal/config"
	"github.com/lanyardhq/lanyard/internal/linkcheck"
	"github.com/lanyardhq/lanyard/internal/search"
	"github.com/lanyardhq/lanyard/internal/store"
	"github.com/lanyardhq/lanyard/internal/tangle"
	"github.com/lanyardhq/lanyard/internal/ws"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	db *store.DB,
	catalogSvc *catalog.Service,
	searcher *search.Searcher,
	checker *linkcheck.Checker,
	tangler *tangle.Tangler,
	noteStore *store.NoteStore,
	snippetStore *store.SnippetStore,
	broadcaster *ws.Broadcaster,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	// Handlers
	healthH := NewHealthHandler(db, cfg.NoteDirs)
	noteH := NewNoteHandler(noteStore, catalogSvc, searcher)
	indexH := NewIndexHandler(noteStore, catalogSvc.Locate, cfg.IndexPath, cfg.CategoryOrder)
	linkH := NewLinkHandler(checker, broadcaster, cfg.ExternalChecks)
	snippetH := NewSnippetHandler(snippetStore, tangler, cfg.TangleOutDir)

	// Unauthenticated routes
	r.Get("/health", healthH.Health)
	if broadcaster != nil {
		r.Get("/ws", broadcaster.Handler)
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(cfg.APIKey))

		r.Post("/scan", noteH.Scan)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", noteH.List)
			r.Post("/search", noteH.Search)
			r.Get("/{id}", noteH.Get)
		})

		r.Route("/index", func(r chi.Router) {
			r.Get("/", indexH.Get)
			r.Get("/validate", indexH.Validate)
		})

		r.Post("/links/check", linkH.Check)

		r.Route("/snippets", func(r chi.Router) {
			r.Get("/", snippetH.List)
			r.Post("/tangle", snippetH.Tangle)
		})
	})

	return r
}
