package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Bookmark struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"           json:"id"`
	UserID       string             `bson:"user_id"                 json:"userId"` // always stamped from the resolved principal
	Title        string             `bson:"title"                   json:"title"`
	URL          string             `bson:"url"                     json:"url"`
	Description  string             `bson:"description"             json:"description"`
	CollectionID *string            `bson:"collection_id,omitempty" json:"collectionId"` // nil = unassigned
	Tags         []string           `bson:"tags"                    json:"tags"`
	Favicon      string             `bson:"favicon"                 json:"favicon"`
	IsFavorite   bool               `bson:"is_favorite"             json:"isFavorite"`
	Order        int                `bson:"order"                   json:"order"`
	CreatedAt    time.Time          `bson:"created_at"              json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at"              json:"updatedAt"`
}
