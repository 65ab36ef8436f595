package queue

// Routing keys under the bookmarkle.events topic exchange.
const (
	KeyUserSignedIn        = "user.signed_in"
	KeyUserSignedOut       = "user.signed_out"
	KeyBookmarkSaved       = "bookmark.saved"
	KeyNotificationCreated = "notification.created"
)

type UserSignedIn struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type UserSignedOut struct {
	ClientID string `json:"client_id"`
}

type BookmarkSaved struct {
	UserID     string `json:"user_id"`
	BookmarkID string `json:"bookmark_id"`
	Title      string `json:"title"`
}

type NotificationCreated struct {
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id"`
	Type           string `json:"type"`
}
