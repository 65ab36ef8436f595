package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
)

// InsertCollection stamps the server clock and writes. Ownership (UserID)
// must already be set by the caller from the resolved principal.
func (s *Store) InsertCollection(ctx context.Context, c *domain.Collection) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	res, err := s.colCollections.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

// ListCollections returns the user's collections unsorted; ordering is the
// caller's concern (sorted client-side, not delegated to the store query).
func (s *Store) ListCollections(ctx context.Context, userID string) ([]domain.Collection, error) {
	cur, err := s.colCollections.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Collection
	for cur.Next(ctx) {
		var c domain.Collection
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, cur.Err()
}
