package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kmv-events/gallery-backend/internal/models"
	"github.com/kmv-events/gallery-backend/internal/ports"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type MongoPhotoRepo struct {
	col *mongo.Collection
}

func NewMongoPhotoRepo(db *mongo.Database) ports.PhotoRepository {
	return &MongoPhotoRepo{col: db.Collection("photos")}
}

func (r *MongoPhotoRepo) Insert(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert photo: unexpected inserted id type %T", res.InsertedID)
	}
	photo.ID = id

	return photo, nil
}

func (r *MongoPhotoRepo) List(ctx context.Context) ([]models.Photo, error) {
	// ties on createdAt come back in whatever order the store yields
	cursor, err := r.col.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	photos := make([]models.Photo, 0)
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}

	return photos, nil
}

func (r *MongoPhotoRepo) GetByID(ctx context.Context, id bson.ObjectID) (*models.Photo, error) {
	var p models.Photo

	err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get photo by id: %w", err)
	}

	return &p, nil
}

func (r *MongoPhotoRepo) DeleteByID(ctx context.Context, id bson.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

func (r *MongoPhotoRepo) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, readpref.Primary())
}
