package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
)

func (s *Store) InsertBookmark(ctx context.Context, b *domain.Bookmark) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Tags == nil {
		b.Tags = []string{}
	}
	res, err := s.colBookmarks.InsertOne(ctx, b)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

// ListBookmarks filters by user and, when collectionID is non-nil,
// additionally by collection. No sort is applied here; the relay sorts by
// order client-side with insertion order preserved for ties.
func (s *Store) ListBookmarks(ctx context.Context, userID string, collectionID *string) ([]domain.Bookmark, error) {
	filter := bson.M{"user_id": userID}
	if collectionID != nil {
		filter["collection_id"] = *collectionID
	}
	cur, err := s.colBookmarks.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Bookmark
	for cur.Next(ctx) {
		var b domain.Bookmark
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cur.Err()
}
