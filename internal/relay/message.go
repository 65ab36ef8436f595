// Package relay implements the cross-context message bridge: one untyped
// JSON envelope in, exactly one result out.
package relay

import (
	"encoding/json"
	"errors"
	"strings"
)

// Request kinds, in dispatch order. Logout is tested first and
// short-circuits everything else.
const (
	KindLogout                  = "logout"
	KindInitAuth                = "initAuth"
	KindCreateCollection        = "createCollection"
	KindGetCollections          = "getCollections"
	KindGetBookmarks            = "getBookmarks"
	KindSaveBookmark            = "saveBookmark"
	KindGetNotificationSettings = "getNotificationSettings"
)

var (
	ErrNoRequest        = errors.New("no request set")
	ErrMultipleRequests = errors.New("multiple requests set")
	ErrMissingClientID  = errors.New("missing clientId")
)

// Envelope is the inbound message: a closed tagged union with exactly one
// variant set. Decode rejects zero or multiple discriminators rather than
// taking the first match.
type Envelope struct {
	ClientID string `json:"clientId"`

	InitAuth                *InitAuthRequest        `json:"initAuth,omitempty"`
	CreateCollection        *CreateCollectionReq    `json:"createCollection,omitempty"`
	GetCollections          *GetCollectionsReq      `json:"getCollections,omitempty"`
	GetBookmarks            *GetBookmarksReq        `json:"getBookmarks,omitempty"`
	SaveBookmark            *SaveBookmarkReq        `json:"saveBookmark,omitempty"`
	GetNotificationSettings *GetSettingsReq         `json:"getNotificationSettings,omitempty"`
	Logout                  *LogoutRequest          `json:"logout,omitempty"`
}

type InitAuthRequest struct{}

type LogoutRequest struct{}

type CollectionData struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type CreateCollectionReq struct {
	Data CollectionData `json:"collectionData"`
}

type GetCollectionsReq struct {
	IDToken string `json:"idToken,omitempty"`
}

type GetBookmarksReq struct {
	CollectionID string `json:"collectionId,omitempty"`
	IDToken      string `json:"idToken,omitempty"`
}

type BookmarkData struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	// Collection and CollectionID are aliases on the wire; CollectionID
	// wins when both are set.
	Collection   string   `json:"collection,omitempty"`
	CollectionID string   `json:"collectionId,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Favicon      string   `json:"favicon,omitempty"`
	FavIconURL   string   `json:"favIconUrl,omitempty"` // browser-API spelling, fallback for Favicon
	IsFavorite   bool     `json:"isFavorite,omitempty"`
	Order        *int     `json:"order,omitempty"`
}

type SaveBookmarkReq struct {
	Data    BookmarkData `json:"bookmarkData"`
	IDToken string       `json:"idToken,omitempty"`
}

type GetSettingsReq struct {
	IDToken string `json:"idToken,omitempty"`
}

// Decode parses an envelope and validates the tagged-union contract.
// The returned kind is the single set discriminator.
func Decode(raw []byte) (*Envelope, string, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(env.ClientID) == "" {
		return nil, "", ErrMissingClientID
	}

	var kinds []string
	if env.Logout != nil {
		kinds = append(kinds, KindLogout)
	}
	if env.InitAuth != nil {
		kinds = append(kinds, KindInitAuth)
	}
	if env.CreateCollection != nil {
		kinds = append(kinds, KindCreateCollection)
	}
	if env.GetCollections != nil {
		kinds = append(kinds, KindGetCollections)
	}
	if env.GetBookmarks != nil {
		kinds = append(kinds, KindGetBookmarks)
	}
	if env.SaveBookmark != nil {
		kinds = append(kinds, KindSaveBookmark)
	}
	if env.GetNotificationSettings != nil {
		kinds = append(kinds, KindGetNotificationSettings)
	}

	switch len(kinds) {
	case 0:
		return nil, "", ErrNoRequest
	case 1:
		return &env, kinds[0], nil
	default:
		return nil, "", ErrMultipleRequests
	}
}
