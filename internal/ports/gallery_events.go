package ports

import "github.com/kmv-events/gallery-backend/internal/models"

// GalleryEvent carries the full newest-first photo list after a mutation.
type GalleryEvent struct {
	Photos []models.Photo
}
