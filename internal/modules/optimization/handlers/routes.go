package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all optimization routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/objectives", h.HandleListObjectives)
	r.Post("/optimize", h.HandleOptimize)
}
