package zones

import "github.com/go-chi/chi/v5"

// MountRoutes registers the zone endpoints.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.List)
	r.Post("/detect", h.Detect)
	r.Post("/{id}/verify", h.Verify)
}
