package domain_test

import (
	"testing"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
)

func b(v bool) *bool { return &v }

func TestResolveNotificationSettings(t *testing.T) {
	cases := []struct {
		name string
		in   *domain.NotificationSettings
		want domain.ResolvedNotificationSettings
	}{
		{
			name: "nil document defaults all enabled",
			in:   nil,
			want: domain.ResolvedNotificationSettings{NotificationsEnabled: true, SystemNotificationsEnabled: true, BookmarkNotificationsEnabled: true},
		},
		{
			name: "empty document defaults all enabled",
			in:   &domain.NotificationSettings{},
			want: domain.ResolvedNotificationSettings{NotificationsEnabled: true, SystemNotificationsEnabled: true, BookmarkNotificationsEnabled: true},
		},
		{
			name: "master off cascades to unset categories",
			in:   &domain.NotificationSettings{NotificationsEnabled: b(false)},
			want: domain.ResolvedNotificationSettings{NotificationsEnabled: false, SystemNotificationsEnabled: false, BookmarkNotificationsEnabled: false},
		},
		{
			name: "unset bookmark flag falls back to master",
			in:   &domain.NotificationSettings{NotificationsEnabled: b(true)},
			want: domain.ResolvedNotificationSettings{NotificationsEnabled: true, SystemNotificationsEnabled: true, BookmarkNotificationsEnabled: true},
		},
		{
			name: "explicit bookmark flag overrides master",
			in: &domain.NotificationSettings{
				NotificationsEnabled:         b(true),
				BookmarkNotificationsEnabled: b(false),
			},
			want: domain.ResolvedNotificationSettings{NotificationsEnabled: true, SystemNotificationsEnabled: true, BookmarkNotificationsEnabled: false},
		},
		{
			name: "explicit category true survives master false resolution",
			in: &domain.NotificationSettings{
				NotificationsEnabled:       b(false),
				SystemNotificationsEnabled: b(true),
			},
			want: domain.ResolvedNotificationSettings{NotificationsEnabled: false, SystemNotificationsEnabled: true, BookmarkNotificationsEnabled: false},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ResolveNotificationSettings(tc.in)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestIsBookmarkNotification(t *testing.T) {
	for _, typ := range []string{
		domain.NotificationBookmarkAdded,
		domain.NotificationBookmarkUpdated,
		domain.NotificationBookmarkDeleted,
	} {
		if !domain.IsBookmarkNotification(typ) {
			t.Fatalf("%s must count as bookmark notification", typ)
		}
	}
	if domain.IsBookmarkNotification(domain.NotificationSystem) {
		t.Fatal("system is not a bookmark notification")
	}
}
