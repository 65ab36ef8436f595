package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
	api "github.com/raincoat98/bookmarkle-bridge/internal/http"
	"github.com/raincoat98/bookmarkle-bridge/internal/oauth"
	"github.com/raincoat98/bookmarkle-bridge/internal/relay"
)

type memStore struct {
	bookmarks []domain.Bookmark
	pingErr   error
}

func (s *memStore) InsertCollection(_ context.Context, c *domain.Collection) error {
	c.ID = primitive.NewObjectID()
	return nil
}
func (s *memStore) ListCollections(_ context.Context, _ string) ([]domain.Collection, error) {
	return nil, nil
}
func (s *memStore) InsertBookmark(_ context.Context, b *domain.Bookmark) error {
	b.ID = primitive.NewObjectID()
	s.bookmarks = append(s.bookmarks, *b)
	return nil
}
func (s *memStore) ListBookmarks(_ context.Context, _ string, _ *string) ([]domain.Bookmark, error) {
	return s.bookmarks, nil
}
func (s *memStore) FindNotificationSettings(_ context.Context, _ string) (*domain.NotificationSettings, error) {
	return nil, nil
}
func (s *memStore) Ping(_ context.Context) error { return s.pingErr }

type memSessions struct {
	principal   *domain.Principal
	established map[string]*domain.Principal
}

func (m *memSessions) Resolve(_ context.Context, _, _ string) *domain.Principal { return m.principal }
func (m *memSessions) End(_ context.Context, _ string) error                    { return nil }
func (m *memSessions) Establish(_ context.Context, clientID string, p *domain.Principal) error {
	if m.established == nil {
		m.established = map[string]*domain.Principal{}
	}
	m.established[clientID] = p
	return nil
}

type noNotify struct{}

func (noNotify) MaybeNotify(_ context.Context, _, _, _, _, _ string) (string, error) {
	return "", nil
}

type stubAuth struct{}

func (stubAuth) StartSignIn(clientID string) (string, string, error) {
	return "https://accounts.example/auth", "state-" + clientID, nil
}

func newTestServer(store *memStore, sessions *memSessions, origin string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := relay.NewRouter(store, sessions, noNotify{}, stubAuth{}, nil, origin, nil)
	google := oauth.NewGoogle("cid", "sec", "http://localhost/cb", "state-secret")
	h := api.NewHandler(router, sessions, google, "jwt-secret", time.Hour, store, nil, nil, nil)
	return api.NewRouter(h)
}

func TestRelayEndpoint_OneShotRoundTrip(t *testing.T) {
	store := &memStore{}
	sessions := &memSessions{principal: &domain.Principal{ID: "u1"}}
	r := newTestServer(store, sessions, "https://popup.example")

	body := `{"clientId":"c1","saveBookmark":{"bookmarkData":{"title":"Example","url":"https://example.com"}}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/relay", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://popup.example" {
		t.Fatalf("origin header=%q", got)
	}
	var res relay.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("result parse: %v; body=%s", err, w.Body.String())
	}
	if res.Type != relay.TypeBookmarkSaved || res.BookmarkID == "" {
		t.Fatalf("result: %+v", res)
	}
	if len(store.bookmarks) != 1 || store.bookmarks[0].UserID != "u1" {
		t.Fatalf("persisted: %+v", store.bookmarks)
	}
}

func TestRelayEndpoint_ErrorsStillAnswer(t *testing.T) {
	r := newTestServer(&memStore{}, &memSessions{principal: nil}, "")

	// auth failure: structured error result, same channel, HTTP 200
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/relay",
		bytes.NewBufferString(`{"clientId":"c1","getBookmarks":{}}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var res relay.Result
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Type != relay.TypeBookmarksError || res.Code != relay.CodeNotAuthenticated {
		t.Fatalf("result: %+v", res)
	}

	// wildcard fallback when no origin configured
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("origin header=%q", got)
	}

	// rejected envelope: one BAD_REQUEST result, never a hang
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/relay", bytes.NewBufferString(`{"clientId":"c1"}`))
	r.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Type != relay.TypeBadRequest {
		t.Fatalf("result: %+v", res)
	}
}

func TestStatusEndpoint(t *testing.T) {
	r := newTestServer(&memStore{}, &memSessions{}, "https://popup.example")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var st relay.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.State != "idle" || st.Origin != "https://popup.example" {
		t.Fatalf("status: %+v", st)
	}
}

func TestHealthz(t *testing.T) {
	store := &memStore{}
	r := newTestServer(store, &memSessions{}, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}

	store.pingErr = errors.New("mongo down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("code=%d", w.Code)
	}
}

func TestGoogleCallback_RejectsBadState(t *testing.T) {
	r := newTestServer(&memStore{}, &memSessions{}, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/google/callback?state=tampered&code=x", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
}
