package services

import (
	"sync"
	"testing"

	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/test/testdb"
)

type publishedEvent struct {
	UserID  uint
	Type    string
	Payload interface{}
}

// recordingPublisher remembers every pushed event
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishToUser(userID uint, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType, Payload: payload})
}

func (p *recordingPublisher) count(userID uint, eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.UserID == userID && e.Type == eventType {
			n++
		}
	}
	return n
}

type env struct {
	db            *gorm.DB
	f             *testdb.Fixture
	store         *MemoryStore
	publisher     *recordingPublisher
	notifications *NotificationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testdb.New(t)
	e := &env{
		db:        db,
		f:         testdb.NewFixture(t, db),
		store:     NewMemoryStore(),
		publisher: &recordingPublisher{},
	}
	e.notifications = NewNotificationService(db, e.store, e.publisher)
	return e
}

func (e *env) meldungen() *MeldungService {
	return NewMeldungService(e.db, e.store, e.notifications)
}

func (e *env) unreadNotifications(t *testing.T, userID uint) int64 {
	t.Helper()
	n, err := e.notifications.UnreadCount(userID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	return n
}

func (e *env) vermieter() Actor  { return Actor{ID: e.f.Vermieter.ID, Role: models.RoleVermieter} }
func (e *env) mieter() Actor     { return Actor{ID: e.f.Mieter.ID, Role: models.RoleMieter} }
func (e *env) handwerker() Actor { return Actor{ID: e.f.Handwerker.ID, Role: models.RoleHandwerker} }
