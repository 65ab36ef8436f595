package relay

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
	"github.com/raincoat98/bookmarkle-bridge/internal/metrics"
	"github.com/raincoat98/bookmarkle-bridge/internal/queue"
)

type Store interface {
	InsertCollection(ctx context.Context, c *domain.Collection) error
	ListCollections(ctx context.Context, userID string) ([]domain.Collection, error)
	InsertBookmark(ctx context.Context, b *domain.Bookmark) error
	ListBookmarks(ctx context.Context, userID string, collectionID *string) ([]domain.Bookmark, error)
	FindNotificationSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error)
}

type Sessions interface {
	// Resolve blocks up to the restoration tier and returns nil on hard
	// auth failure.
	Resolve(ctx context.Context, clientID, bearer string) *domain.Principal
	End(ctx context.Context, clientID string) error
}

type Notifier interface {
	MaybeNotify(ctx context.Context, userID, typ, title, message, bookmarkID string) (string, error)
}

type AuthProvider interface {
	StartSignIn(clientID string) (authURL, state string, err error)
}

// Status is the externally observable relay state. Advisory only: nothing
// on the request path reads it.
type Status struct {
	State  string `json:"state"` // "idle" | "logging_out"
	Origin string `json:"origin"`
}

type Router struct {
	store    Store
	sessions Sessions
	notifier Notifier
	auth     AuthProvider
	events   queue.Publisher

	origin     string
	loggingOut atomic.Int32
	log        *zap.Logger
}

func NewRouter(store Store, sessions Sessions, notifier Notifier, auth AuthProvider, events queue.Publisher, allowedOrigin string, log *zap.Logger) *Router {
	if events == nil {
		events = queue.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	origin := allowedOrigin
	if origin == "" {
		// deliberate trust relaxation; loud so a hardened deployment
		// can't miss it
		origin = "*"
		log.Warn("no allowed origin configured, relay results are addressed to any origin")
	}
	return &Router{
		store:    store,
		sessions: sessions,
		notifier: notifier,
		auth:     auth,
		events:   events,
		origin:   origin,
		log:      log,
	}
}

// Origin is the single target origin resolved at startup.
func (r *Router) Origin() string { return r.origin }

func (r *Router) Status() Status {
	state := "idle"
	if r.loggingOut.Load() != 0 {
		state = "logging_out"
	}
	return Status{State: state, Origin: r.origin}
}

// Handle processes one inbound envelope and returns exactly one result.
// Handlers that fail still produce an (error-shaped) result; the caller is
// never left hanging.
func (r *Router) Handle(ctx context.Context, reqID string, raw []byte) Result {
	env, kind, err := Decode(raw)
	if err != nil {
		metrics.RelayMessagesTotal.WithLabelValues("invalid", "rejected").Inc()
		return badRequestResult(err)
	}

	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()
	start := time.Now()
	defer func() {
		metrics.RelayDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	var res Result
	switch kind {
	case KindLogout:
		// must never fall through to any other handler
		res = r.handleLogout(ctx, reqID, env)
	case KindInitAuth:
		res = r.handleInitAuth(env)
	case KindCreateCollection:
		res = r.handleCreateCollection(ctx, env)
	case KindGetCollections:
		res = r.handleGetCollections(ctx, env)
	case KindGetBookmarks:
		res = r.handleGetBookmarks(ctx, env)
	case KindSaveBookmark:
		res = r.handleSaveBookmark(ctx, reqID, env)
	case KindGetNotificationSettings:
		res = r.handleGetNotificationSettings(ctx, env)
	}

	outcome := "ok"
	if res.IsError() {
		outcome = "error"
	}
	metrics.RelayMessagesTotal.WithLabelValues(kind, outcome).Inc()
	return res
}

func (r *Router) handleInitAuth(env *Envelope) Result {
	url, state, err := r.auth.StartSignIn(env.ClientID)
	if err != nil {
		r.log.Error("init auth failed", zap.String("client_id", env.ClientID), zap.Error(err))
		return Result{Type: TypeAuthError, Name: "AuthError", Code: "auth/init-failed", Message: err.Error()}
	}
	return Result{Type: TypeAuthURL, URL: url, State: state}
}

func (r *Router) handleCreateCollection(ctx context.Context, env *Envelope) Result {
	p := r.sessions.Resolve(ctx, env.ClientID, "")
	if p == nil {
		return authErrorResult(TypeCollectionCreateError)
	}

	data := env.CreateCollection.Data
	icon := data.Icon
	if icon == "" {
		icon = domain.DefaultCollectionIcon
	}
	c := &domain.Collection{
		UserID:      p.ID, // never trusted from the caller
		Name:        data.Name,
		Icon:        icon,
		Description: data.Description,
	}
	if err := r.store.InsertCollection(ctx, c); err != nil {
		r.log.Error("collection insert failed", zap.String("user_id", p.ID), zap.Error(err))
		return storeErrorResult(TypeCollectionCreateError, err)
	}
	return Result{Type: TypeCollectionCreated, CollectionID: c.ID.Hex()}
}

func (r *Router) handleGetCollections(ctx context.Context, env *Envelope) Result {
	p := r.sessions.Resolve(ctx, env.ClientID, env.GetCollections.IDToken)
	if p == nil {
		return authErrorResult(TypeCollectionsError)
	}

	cols, err := r.store.ListCollections(ctx, p.ID)
	if err != nil {
		return storeErrorResult(TypeCollectionsError, err)
	}
	sortCollectionsByName(cols)
	if cols == nil {
		cols = []domain.Collection{}
	}
	return Result{Type: TypeCollections, Collections: cols}
}

func (r *Router) handleGetBookmarks(ctx context.Context, env *Envelope) Result {
	p := r.sessions.Resolve(ctx, env.ClientID, env.GetBookmarks.IDToken)
	if p == nil {
		return authErrorResult(TypeBookmarksError)
	}

	var collectionID *string
	if id := strings.TrimSpace(env.GetBookmarks.CollectionID); id != "" {
		collectionID = &id
	}
	bms, err := r.store.ListBookmarks(ctx, p.ID, collectionID)
	if err != nil {
		return storeErrorResult(TypeBookmarksError, err)
	}
	// stable: ties keep insertion order
	sort.SliceStable(bms, func(i, j int) bool { return bms[i].Order < bms[j].Order })
	if bms == nil {
		bms = []domain.Bookmark{}
	}
	return Result{Type: TypeBookmarks, Bookmarks: bms}
}

func (r *Router) handleSaveBookmark(ctx context.Context, reqID string, env *Envelope) Result {
	p := r.sessions.Resolve(ctx, env.ClientID, env.SaveBookmark.IDToken)
	if p == nil {
		return authErrorResult(TypeBookmarkSaveError)
	}

	b := normalizeBookmark(env.SaveBookmark.Data)
	b.UserID = p.ID // forcibly overwritten, regardless of payload
	if err := r.store.InsertBookmark(ctx, b); err != nil {
		r.log.Error("bookmark insert failed", zap.String("user_id", p.ID), zap.Error(err))
		return storeErrorResult(TypeBookmarkSaveError, err)
	}
	id := b.ID.Hex()

	// best-effort side effect: any failure is logged and must not alter
	// the primary outcome
	if _, err := r.notifier.MaybeNotify(ctx, p.ID, domain.NotificationBookmarkAdded,
		"Bookmark added", fmt.Sprintf("Bookmark %q was added", b.Title), id); err != nil {
		r.log.Warn("bookmark notification failed",
			zap.String("user_id", p.ID), zap.String("bookmark_id", id), zap.Error(err))
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.events.Publish(ctx, queue.Exchange, queue.KeyBookmarkSaved,
			queue.BookmarkSaved{UserID: p.ID, BookmarkID: id, Title: b.Title}, reqID); err != nil {
			r.log.Warn("bookmark event publish failed", zap.Error(err))
		}
	}()

	return Result{Type: TypeBookmarkSaved, BookmarkID: id}
}

func (r *Router) handleGetNotificationSettings(ctx context.Context, env *Envelope) Result {
	p := r.sessions.Resolve(ctx, env.ClientID, env.GetNotificationSettings.IDToken)
	if p == nil {
		return authErrorResult(TypeNotificationSettingsError)
	}

	settings, err := r.store.FindNotificationSettings(ctx, p.ID)
	if err != nil {
		// same fail-open resolution the notification gate applies
		r.log.Warn("notification settings read failed, resolving defaults",
			zap.String("user_id", p.ID), zap.Error(err))
		settings = nil
	}
	resolved := domain.ResolveNotificationSettings(settings)
	return Result{Type: TypeNotificationSettings, Settings: &resolved}
}

func (r *Router) handleLogout(ctx context.Context, reqID string, env *Envelope) Result {
	r.loggingOut.Store(1)
	defer r.loggingOut.Store(0)

	if err := r.sessions.End(ctx, env.ClientID); err != nil {
		r.log.Error("logout failed", zap.String("client_id", env.ClientID), zap.Error(err))
		return storeErrorResult(TypeLogoutError, err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.events.Publish(ctx, queue.Exchange, queue.KeyUserSignedOut,
			queue.UserSignedOut{ClientID: env.ClientID}, reqID); err != nil {
			r.log.Warn("sign-out event publish failed", zap.Error(err))
		}
	}()

	return Result{Type: TypeLogoutSuccess}
}

// normalizeBookmark applies the wire-level defaulting: collection id from
// either alias with whitespace collapsed to unassigned, favicon falling
// back to the browser-API field, order defaulting to 0.
func normalizeBookmark(data BookmarkData) *domain.Bookmark {
	raw := data.CollectionID
	if raw == "" {
		raw = data.Collection
	}
	var collectionID *string
	if id := strings.TrimSpace(raw); id != "" {
		collectionID = &id
	}

	favicon := data.Favicon
	if favicon == "" {
		favicon = data.FavIconURL
	}

	order := 0
	if data.Order != nil {
		order = *data.Order
	}

	tags := data.Tags
	if tags == nil {
		tags = []string{}
	}

	return &domain.Bookmark{
		Title:        data.Title,
		URL:          data.URL,
		Description:  data.Description,
		CollectionID: collectionID,
		Tags:         tags,
		Favicon:      favicon,
		IsFavorite:   data.IsFavorite,
		Order:        order,
	}
}

// sortCollectionsByName sorts ascending with locale-aware comparison.
func sortCollectionsByName(cols []domain.Collection) {
	c := collate.New(language.Und)
	sort.SliceStable(cols, func(i, j int) bool {
		return c.CompareString(cols[i].Name, cols[j].Name) < 0
	})
}
