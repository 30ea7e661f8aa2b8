package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Photo is a gallery entry. The binary lives in the asset store; this
// record only carries its public URL and the asset id needed to delete it.
type Photo struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	AssetURL  string        `bson:"photoUrl" json:"photoUrl"`
	AssetID   string        `bson:"publicId" json:"publicId"` // empty for externally hosted photos
	Caption   string        `bson:"caption" json:"caption"`
	Uploader  string        `bson:"uploader" json:"uploader"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
