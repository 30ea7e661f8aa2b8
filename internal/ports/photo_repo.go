package ports

import (
	"context"

	"github.com/kmv-events/gallery-backend/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type PhotoRepository interface {
	Insert(ctx context.Context, photo *models.Photo) (*models.Photo, error)

	// List returns every photo, newest first.
	List(ctx context.Context) ([]models.Photo, error)

	// GetByID returns (nil, nil) when no photo has that id.
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Photo, error)

	DeleteByID(ctx context.Context, id bson.ObjectID) error

	Ping(ctx context.Context) error
}
