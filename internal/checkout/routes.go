package checkout

import "github.com/go-chi/chi/v5"

// MountRoutes registers the checkout endpoints.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/quote", h.Quote)
	r.Post("/orders", h.CreateOrder)
	r.Post("/zone-check", h.ZoneCheck)
	r.Get("/payment-options", h.PaymentOptions)
}
