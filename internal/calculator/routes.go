package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/digit", h.AppendDigit)
			r.Post("/operation", h.SelectOperation)
			r.Post("/compute", h.Compute)
			r.Post("/clear", h.Clear)
			r.Post("/reset", h.Reset)
			r.Post("/keys", h.Keys)
		})
	})
}
