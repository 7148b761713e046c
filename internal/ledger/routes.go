package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes registers the open item endpoints under /parties.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/{id}/open-items", h.OpenItems)
	r.Post("/open-items/suggest", h.Suggest)
}
