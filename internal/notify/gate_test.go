package notify_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
	"github.com/raincoat98/bookmarkle-bridge/internal/notify"
)

type fakeGateStore struct {
	settings    *domain.NotificationSettings
	settingsErr error
	insertErr   error
	inserted    []domain.Notification
}

func (s *fakeGateStore) FindNotificationSettings(_ context.Context, _ string) (*domain.NotificationSettings, error) {
	if s.settingsErr != nil {
		return nil, s.settingsErr
	}
	return s.settings, nil
}

func (s *fakeGateStore) InsertNotification(_ context.Context, n *domain.Notification) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	n.ID = primitive.NewObjectID()
	s.inserted = append(s.inserted, *n)
	return nil
}

func b(v bool) *bool { return &v }

func TestMaybeNotify_WritesRecordWhenEnabled(t *testing.T) {
	store := &fakeGateStore{}
	g := notify.NewGate(store, nil, nil)

	id, err := g.MaybeNotify(context.Background(), "u1", domain.NotificationBookmarkAdded,
		"Bookmark added", `Bookmark "Example" was added`, "bm-1")
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if id == "" {
		t.Fatal("expected notification id")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted=%d", len(store.inserted))
	}
	n := store.inserted[0]
	if n.UserID != "u1" || n.Type != domain.NotificationBookmarkAdded || n.IsRead {
		t.Fatalf("record: %+v", n)
	}
	if n.BookmarkID == nil || *n.BookmarkID != "bm-1" {
		t.Fatal("bookmark id must be attached")
	}
	if n.Metadata.Source == "" || n.Metadata.Timestamp.IsZero() {
		t.Fatalf("metadata: %+v", n.Metadata)
	}
}

func TestMaybeNotify_MasterOffSuppressesAllTypes(t *testing.T) {
	store := &fakeGateStore{settings: &domain.NotificationSettings{NotificationsEnabled: b(false)}}
	g := notify.NewGate(store, nil, nil)

	for _, typ := range []string{
		domain.NotificationBookmarkAdded,
		domain.NotificationBookmarkUpdated,
		domain.NotificationBookmarkDeleted,
		domain.NotificationSystem,
	} {
		id, err := g.MaybeNotify(context.Background(), "u1", typ, "t", "m", "")
		if err != nil || id != "" {
			t.Fatalf("type=%s id=%q err=%v", typ, id, err)
		}
	}
	if len(store.inserted) != 0 {
		t.Fatal("master off must perform no write")
	}
}

func TestMaybeNotify_BookmarkFlagSuppressesBookmarkTypesOnly(t *testing.T) {
	store := &fakeGateStore{settings: &domain.NotificationSettings{
		NotificationsEnabled:         b(true),
		BookmarkNotificationsEnabled: b(false),
	}}
	g := notify.NewGate(store, nil, nil)

	id, err := g.MaybeNotify(context.Background(), "u1", domain.NotificationBookmarkAdded, "t", "m", "")
	if err != nil || id != "" {
		t.Fatalf("bookmark type must be suppressed: id=%q err=%v", id, err)
	}
	id, err = g.MaybeNotify(context.Background(), "u1", domain.NotificationSystem, "t", "m", "")
	if err != nil || id == "" {
		t.Fatalf("system type must pass: id=%q err=%v", id, err)
	}
}

func TestMaybeNotify_SettingsReadFailureFailsOpen(t *testing.T) {
	store := &fakeGateStore{settingsErr: errors.New("store outage")}
	g := notify.NewGate(store, nil, nil)

	id, err := g.MaybeNotify(context.Background(), "u1", domain.NotificationBookmarkAdded, "t", "m", "")
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if id == "" || len(store.inserted) != 1 {
		t.Fatal("read failure must fail open and still write")
	}
}

func TestMaybeNotify_WriteFailurePropagates(t *testing.T) {
	store := &fakeGateStore{insertErr: errors.New("write refused")}
	g := notify.NewGate(store, nil, nil)

	if _, err := g.MaybeNotify(context.Background(), "u1", domain.NotificationBookmarkAdded, "t", "m", ""); err == nil {
		t.Fatal("final write failure must propagate to the gate caller")
	}
}
