package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hostelgrub/api/internal/menu"
	"github.com/hostelgrub/api/internal/store"
)

// MenuSource reads the current document.
// Satisfied by *store.Store.
type MenuSource interface {
	Snapshot(ctx context.Context) (*store.Document, error)
}

// MenuHandler serves the catalog.
type MenuHandler struct {
	source MenuSource
}

func NewMenuHandler(source MenuSource) *MenuHandler {
	return &MenuHandler{source: source}
}

func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
}

type menuResponse struct {
	Items []store.MenuItem `json:"items"`
}

// List handles GET /menu.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	doc, err := h.source.Snapshot(r.Context())
	if err != nil {
		writeError(w, "list menu", err)
		return
	}
	writeJSON(w, http.StatusOK, menuResponse{Items: menu.NewCatalog(doc.Menu).Items()})
}
