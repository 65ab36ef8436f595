package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationBookmarkAdded   = "bookmark_added"
	NotificationBookmarkUpdated = "bookmark_updated"
	NotificationBookmarkDeleted = "bookmark_deleted"
	NotificationSystem          = "system"
)

// IsBookmarkNotification reports whether typ is one of the bookmark
// lifecycle notification types.
func IsBookmarkNotification(typ string) bool {
	switch typ {
	case NotificationBookmarkAdded, NotificationBookmarkUpdated, NotificationBookmarkDeleted:
		return true
	}
	return false
}

type NotificationMetadata struct {
	Source    string    `bson:"source"    json:"source"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type Notification struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"         json:"id"`
	UserID     string               `bson:"user_id"               json:"userId"`
	Type       string               `bson:"type"                  json:"type"`
	Title      string               `bson:"title"                 json:"title"`
	Message    string               `bson:"message"               json:"message"`
	IsRead     bool                 `bson:"is_read"               json:"isRead"`
	BookmarkID *string              `bson:"bookmark_id,omitempty" json:"bookmarkId,omitempty"`
	Metadata   NotificationMetadata `bson:"metadata"              json:"metadata"`
	CreatedAt  time.Time            `bson:"created_at"            json:"createdAt"`
}

// NotificationSettings is the per-user preference document. Flags are
// tri-state: an absent flag falls back per ResolveNotificationSettings, it
// is not the same as an explicit false.
type NotificationSettings struct {
	ID                           primitive.ObjectID `bson:"_id,omitempty"                            json:"-"`
	UserID                       string             `bson:"user_id"                                  json:"-"`
	NotificationsEnabled         *bool              `bson:"notifications_enabled,omitempty"          json:"notificationsEnabled,omitempty"`
	SystemNotificationsEnabled   *bool              `bson:"system_notifications_enabled,omitempty"   json:"systemNotificationsEnabled,omitempty"`
	BookmarkNotificationsEnabled *bool              `bson:"bookmark_notifications_enabled,omitempty" json:"bookmarkNotificationsEnabled,omitempty"`
}

// ResolvedNotificationSettings is the fully-defaulted view handed to
// clients and to the notification gate.
type ResolvedNotificationSettings struct {
	NotificationsEnabled         bool `json:"notificationsEnabled"`
	SystemNotificationsEnabled   bool `json:"systemNotificationsEnabled"`
	BookmarkNotificationsEnabled bool `json:"bookmarkNotificationsEnabled"`
}

// ResolveNotificationSettings applies the three-level override: the master
// flag defaults to true when absent, and the per-category flags fall back
// to the master value when individually unset. A nil document (settings
// never written, or read failed upstream) resolves to all-enabled.
func ResolveNotificationSettings(s *NotificationSettings) ResolvedNotificationSettings {
	master := true
	if s != nil && s.NotificationsEnabled != nil {
		master = *s.NotificationsEnabled
	}
	system := master
	if s != nil && s.SystemNotificationsEnabled != nil {
		system = *s.SystemNotificationsEnabled
	}
	bookmark := master
	if s != nil && s.BookmarkNotificationsEnabled != nil {
		bookmark = *s.BookmarkNotificationsEnabled
	}
	return ResolvedNotificationSettings{
		NotificationsEnabled:         master,
		SystemNotificationsEnabled:   system,
		BookmarkNotificationsEnabled: bookmark,
	}
}
