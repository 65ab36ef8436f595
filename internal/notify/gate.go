// Package notify implements the notification side-effect gate: a
// preference-gated, best-effort notification write that must never fail
// the mutation that triggered it.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
	"github.com/raincoat98/bookmarkle-bridge/internal/queue"
)

type Store interface {
	FindNotificationSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	InsertNotification(ctx context.Context, n *domain.Notification) error
}

type Gate struct {
	store  Store
	events queue.Publisher
	source string
	log    *zap.Logger
}

func NewGate(store Store, events queue.Publisher, log *zap.Logger) *Gate {
	if events == nil {
		events = queue.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{store: store, events: events, source: "bookmarkle-bridge", log: log}
}

// MaybeNotify reads the user's notification preferences and, if the type
// is enabled, writes a notification record and returns its id. Preference
// read failures fail open: absence of settings or a transient read error
// must not silently suppress notifications. A write failure on the final
// insert is returned to the caller, which is expected to wrap this gate
// defensively.
//
// Returns ("", nil) when the preference gate suppressed the notification.
func (g *Gate) MaybeNotify(ctx context.Context, userID, typ, title, message string, bookmarkID string) (string, error) {
	settings, err := g.store.FindNotificationSettings(ctx, userID)
	if err != nil {
		g.log.Warn("notification settings read failed, failing open",
			zap.String("user_id", userID), zap.Error(err))
		settings = nil
	}
	resolved := domain.ResolveNotificationSettings(settings)

	if !resolved.NotificationsEnabled {
		return "", nil
	}
	if domain.IsBookmarkNotification(typ) && !resolved.BookmarkNotificationsEnabled {
		return "", nil
	}
	if typ == domain.NotificationSystem && !resolved.SystemNotificationsEnabled {
		return "", nil
	}

	n := &domain.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		IsRead:  false,
		Metadata: domain.NotificationMetadata{
			Source:    g.source,
			Timestamp: time.Now().UTC(),
		},
	}
	if bookmarkID != "" {
		n.BookmarkID = &bookmarkID
	}
	if err := g.store.InsertNotification(ctx, n); err != nil {
		return "", err
	}

	id := n.ID.Hex()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := g.events.Publish(ctx, queue.Exchange, queue.KeyNotificationCreated,
			queue.NotificationCreated{UserID: userID, NotificationID: id, Type: typ}, ""); err != nil {
			g.log.Warn("notification event publish failed", zap.Error(err))
		}
	}()
	return id, nil
}
