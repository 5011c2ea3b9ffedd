package services

import (
	"testing"

	"github.com/pkg/errors"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

func TestNotificationLifecycle(t *testing.T) {
	e := newEnv(t)
	s := e.notifications
	uid := e.f.Mieter.ID

	var ids []uint
	for _, title := range []string{"eins", "zwei", "drei"} {
		n, err := s.Notify(uid, models.NotificationMeldungStatus, title, "text", nil)
		if err != nil {
			t.Fatalf("Notify: %v", err)
		}
		ids = append(ids, n.ID)
	}
	if e.publisher.count(uid, EventNotification) != 3 {
		t.Fatal("notifications were not pushed")
	}

	list, total, err := s.List(uid, false, models.PaginationQuery{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(list) != 2 || list[0].Title != "drei" {
		t.Fatalf("total %d list %+v", total, list)
	}

	n, err := s.MarkRead(uid, ids[0])
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !n.Read || n.ReadAt == nil {
		t.Fatalf("notification = %+v", n)
	}
	if got := e.unreadNotifications(t, uid); got != 2 {
		t.Fatalf("unread = %d", got)
	}
	if _, total, _ := s.List(uid, true, models.PaginationQuery{}); total != 2 {
		t.Fatalf("unread list total = %d", total)
	}

	// other users cannot touch the notification
	if _, err := s.MarkRead(e.f.Vermieter.ID, ids[1]); !errors.Is(err, errs.ErrNotificationNotFound) {
		t.Fatalf("foreign MarkRead: err = %v", err)
	}
	if err := s.Delete(e.f.Vermieter.ID, ids[1]); !errors.Is(err, errs.ErrNotificationNotFound) {
		t.Fatalf("foreign Delete: err = %v", err)
	}

	updated, err := s.MarkAllRead(uid)
	if err != nil || updated != 2 {
		t.Fatalf("MarkAllRead = %d, %v", updated, err)
	}
	if err := s.Delete(uid, ids[2]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, total, _ := s.List(uid, false, models.PaginationQuery{}); total != 2 {
		t.Fatalf("total after delete = %d", total)
	}
}

func TestNotifyAllSkipsDuplicatesAndZero(t *testing.T) {
	e := newEnv(t)
	uid := e.f.Vermieter.ID
	notifyAll(e.notifications, []uint{uid, 0, uid}, models.NotificationMeldungCreated, "t", "m", nil)
	if got := e.unreadNotifications(t, uid); got != 1 {
		t.Fatalf("unread = %d", got)
	}
}
