package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
)

// FindNotificationSettings returns (nil, nil) when the user has never
// written settings. Callers default absent documents to all-enabled.
func (s *Store) FindNotificationSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	var ns domain.NotificationSettings
	err := s.colSettings.FindOne(ctx, bson.M{"user_id": userID}).Decode(&ns)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ns, nil
}

func (s *Store) InsertNotification(ctx context.Context, n *domain.Notification) error {
	n.CreatedAt = time.Now().UTC()
	res, err := s.colNotifications.InsertOne(ctx, n)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}
