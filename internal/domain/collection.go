package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCollectionIcon is used when the caller supplies no icon.
const DefaultCollectionIcon = "📁"

type Collection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id"       json:"userId"` // always stamped from the resolved principal
	Name        string             `bson:"name"          json:"name"`
	Icon        string             `bson:"icon"          json:"icon"`
	Description string             `bson:"description"   json:"description"`
	CreatedAt   time.Time          `bson:"created_at"    json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at"    json:"updatedAt"`
}
