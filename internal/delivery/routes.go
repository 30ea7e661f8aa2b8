package delivery

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *GalleryHandler, adminToken string) {

	// public
	r.Get("/api/gallery", h.List)
	r.Get("/api/gallery/{id}", h.GetByID)
	r.Get("/health", h.Health)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("KMV Gallery Backend is Running!"))
	})

	// admin only
	r.Group(func(admin chi.Router) {
		admin.Use(AdminOnly(adminToken))

		admin.Post("/api/gallery", h.Create)
		admin.Post("/api/gallery/upload", h.Upload)
		admin.Delete("/api/gallery/{id}", h.Delete)
	})
}
