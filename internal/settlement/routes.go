package settlement

import "github.com/go-chi/chi/v5"

// MountRoutes registers the settlement endpoints.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/{id}/void", h.Void)
}
