package relay

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
)

// Result type tags.
const (
	TypeAuthURL              = "AUTH_URL"
	TypeCollectionCreated    = "COLLECTION_CREATED"
	TypeCollections          = "COLLECTIONS_RESULT"
	TypeBookmarks            = "BOOKMARKS_RESULT"
	TypeBookmarkSaved        = "BOOKMARK_SAVED"
	TypeNotificationSettings = "NOTIFICATION_SETTINGS_RESULT"
	TypeLogoutSuccess        = "LOGOUT_SUCCESS"

	TypeAuthError                 = "AUTH_ERROR"
	TypeCollectionCreateError     = "COLLECTION_CREATE_ERROR"
	TypeCollectionsError          = "COLLECTIONS_ERROR"
	TypeBookmarksError            = "BOOKMARKS_ERROR"
	TypeBookmarkSaveError         = "BOOKMARK_SAVE_ERROR"
	TypeNotificationSettingsError = "NOTIFICATION_SETTINGS_ERROR"
	TypeLogoutError               = "LOGOUT_ERROR"
	TypeBadRequest                = "BAD_REQUEST"
)

const CodeNotAuthenticated = "auth/not-authenticated"

// Result is the single response emitted per handled envelope. Success
// variants populate the handler-specific fields; error variants populate
// Name/Code/Message.
type Result struct {
	Type string `json:"type"`

	URL          string                               `json:"url,omitempty"`
	State        string                               `json:"state,omitempty"`
	CollectionID string                               `json:"collectionId,omitempty"`
	BookmarkID   string                               `json:"bookmarkId,omitempty"`
	Collections  []domain.Collection                  `json:"collections,omitempty"`
	Bookmarks    []domain.Bookmark                    `json:"bookmarks,omitempty"`
	Settings     *domain.ResolvedNotificationSettings `json:"settings,omitempty"`

	Name    string `json:"name,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// IsError reports whether the result is an error variant.
func (r Result) IsError() bool { return r.Code != "" }

func authErrorResult(typ string) Result {
	return Result{
		Type:    typ,
		Name:    "AuthError",
		Code:    CodeNotAuthenticated,
		Message: "no authenticated session",
	}
}

// storeErrorResult mirrors the underlying failure's code/message into the
// uniform error shape, passing provider-native codes through where the
// driver exposes them.
func storeErrorResult(typ string, err error) Result {
	name := "StoreError"
	code := "store/write-failed"

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		code = ce.Name
	}
	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 {
		code = "store/write-error"
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		code = "store/not-found"
	}

	return Result{Type: typ, Name: name, Code: code, Message: err.Error()}
}

func badRequestResult(err error) Result {
	return Result{
		Type:    TypeBadRequest,
		Name:    "ValidationError",
		Code:    "relay/bad-request",
		Message: err.Error(),
	}
}
