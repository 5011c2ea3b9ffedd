package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

func (e *env) messages() *MessageService {
	return NewMessageService(e.db, e.store, e.notifications, e.publisher)
}

func TestPartnersFollowTheMeldungen(t *testing.T) {
	e := newEnv(t)
	s := e.messages()

	ok, err := s.IsPartner(e.mieter(), e.f.Vermieter.ID)
	if err != nil || !ok {
		t.Fatalf("Mieter -> own Vermieter: %v %v", ok, err)
	}
	if ok, _ := s.IsPartner(e.mieter(), e.f.Handwerker.ID); ok {
		t.Fatal("Handwerker without a job must not be a partner")
	}
	if ok, _ := s.IsPartner(e.handwerker(), e.f.Vermieter.ID); ok {
		t.Fatal("Vermieter without a job must not be a partner")
	}

	v := createMeldung(t, e)
	if _, err := e.meldungen().AssignHandwerker(e.vermieter(), v.ID, e.f.Handwerker.ID, ""); err != nil {
		t.Fatalf("AssignHandwerker: %v", err)
	}

	for _, pair := range []struct {
		actor   Actor
		partner uint
	}{
		{e.mieter(), e.f.Handwerker.ID},
		{e.handwerker(), e.f.Mieter.ID},
		{e.handwerker(), e.f.Vermieter.ID},
		{e.vermieter(), e.f.Handwerker.ID},
		{e.vermieter(), e.f.Mieter.ID},
	} {
		if ok, err := s.IsPartner(pair.actor, pair.partner); err != nil || !ok {
			t.Errorf("%s %d -> %d: %v %v", pair.actor.Role, pair.actor.ID, pair.partner, ok, err)
		}
	}

	// a closed job ends the Mieter/Handwerker chat, the Vermieter keeps it
	if _, err := e.meldungen().ChangeStatus(e.handwerker(), v.ID, models.StatusHandwerkerErledigt, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.meldungen().ChangeStatus(e.vermieter(), v.ID, models.StatusAbgeschlossen, ""); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsPartner(e.mieter(), e.f.Handwerker.ID); ok {
		t.Fatal("Mieter still partner of Handwerker after ABGESCHLOSSEN")
	}
	if ok, _ := s.IsPartner(e.handwerker(), e.f.Vermieter.ID); !ok {
		t.Fatal("Handwerker lost the Vermieter")
	}

	contacts, err := s.Contacts(e.vermieter(), models.RoleHandwerker)
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].User.ID != e.f.Handwerker.ID {
		t.Fatalf("Contacts = %+v", contacts)
	}
}

func TestSendValidation(t *testing.T) {
	e := newEnv(t)
	s := e.messages()

	cases := []struct {
		name string
		in   SendMessageInput
		want error
	}{
		{"empty", SendMessageInput{ReceiverID: e.f.Vermieter.ID, Content: "   "}, errs.ErrMessageInvalid},
		{"too long", SendMessageInput{ReceiverID: e.f.Vermieter.ID, Content: strings.Repeat("ä", MaxMessageLength+1)}, errs.ErrMessageInvalid},
		{"self", SendMessageInput{ReceiverID: e.f.Mieter.ID, Content: "Hallo"}, errs.ErrChatPartnerNotAllowed},
		{"no partner", SendMessageInput{ReceiverID: e.f.Handwerker.ID, Content: "Hallo"}, errs.ErrChatPartnerNotAllowed},
		{"unknown", SendMessageInput{ReceiverID: 9999, Content: "Hallo"}, errs.ErrChatPartnerNotAllowed},
	}
	for _, tc := range cases {
		if _, err := s.Send(e.mieter(), tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}

	if _, err := s.Send(e.mieter(), SendMessageInput{ReceiverID: e.f.Vermieter.ID, Content: strings.Repeat("ä", MaxMessageLength)}); err != nil {
		t.Fatalf("message of maximum length: %v", err)
	}
}

func TestSendAndReadConversation(t *testing.T) {
	e := newEnv(t)
	s := e.messages()

	msg, err := s.Send(e.mieter(), SendMessageInput{ReceiverID: e.f.Vermieter.ID, Content: "  Wann kommt der Handwerker?  "})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Content != "Wann kommt der Handwerker?" {
		t.Fatalf("Content = %q", msg.Content)
	}
	if msg.SenderRole != models.RoleMieter || msg.ReceiverRole != models.RoleVermieter {
		t.Fatalf("roles = %s -> %s", msg.SenderRole, msg.ReceiverRole)
	}
	if e.publisher.count(e.f.Vermieter.ID, EventMessage) != 1 || e.publisher.count(e.f.Mieter.ID, EventMessage) != 1 {
		t.Fatal("message was not pushed to both parties")
	}
	if got := e.unreadNotifications(t, e.f.Vermieter.ID); got != 1 {
		t.Fatalf("Vermieter notifications = %d", got)
	}

	if n, _ := s.UnreadCount(e.f.Vermieter.ID); n != 1 {
		t.Fatalf("UnreadCount = %d", n)
	}
	contacts, err := s.Contacts(e.vermieter(), "")
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].UnreadCount != 1 || contacts[0].LastMessage == nil {
		t.Fatalf("Contacts = %+v", contacts)
	}

	list, err := s.Conversation(e.vermieter(), e.f.Mieter.ID, nil, 0)
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if len(list) != 1 || !list[0].Read || list[0].ReadAt == nil {
		t.Fatalf("Conversation = %+v", list)
	}
	if n, _ := s.UnreadCount(e.f.Vermieter.ID); n != 0 {
		t.Fatalf("UnreadCount after reading = %d", n)
	}

	if _, err := s.Send(e.vermieter(), SendMessageInput{ReceiverID: e.f.Mieter.ID, Content: "Morgen um 9."}); err != nil {
		t.Fatalf("reply: %v", err)
	}
	since := list[0].CreatedAt
	newer, err := s.Conversation(e.mieter(), e.f.Vermieter.ID, &since, 0)
	if err != nil {
		t.Fatalf("Conversation since: %v", err)
	}
	if len(newer) != 1 || newer[0].Content != "Morgen um 9." {
		t.Fatalf("since = %+v", newer)
	}

	byRole, err := s.ByPartnerRole(e.mieter(), models.RoleVermieter, nil, 0)
	if err != nil {
		t.Fatalf("ByPartnerRole: %v", err)
	}
	if len(byRole) != 2 || byRole[0].ID > byRole[1].ID {
		t.Fatalf("ByPartnerRole = %+v", byRole)
	}
	if _, err := s.ByPartnerRole(e.mieter(), "ADMIN", nil, 0); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("unknown role: %v", err)
	}
}

func TestConversationNeedsPartnerOrHistory(t *testing.T) {
	e := newEnv(t)
	s := e.messages()

	if _, err := s.Conversation(e.handwerker(), e.f.Mieter.ID, nil, 0); !errors.Is(err, errs.ErrChatPartnerNotAllowed) {
		t.Fatalf("stranger: %v", err)
	}

	v := createMeldung(t, e)
	if _, err := e.meldungen().AssignHandwerker(e.vermieter(), v.ID, e.f.Handwerker.ID, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Send(e.handwerker(), SendMessageInput{ReceiverID: e.f.Mieter.ID, Content: "Ich komme morgen.", MeldungID: &v.ID}); err != nil {
		t.Fatalf("Send with Meldung: %v", err)
	}
	if _, err := e.meldungen().ChangeStatus(e.vermieter(), v.ID, models.StatusStorniert, ""); err != nil {
		t.Fatal(err)
	}

	// no longer partners, but the history stays readable
	list, err := s.Conversation(e.mieter(), e.f.Handwerker.ID, nil, 0)
	if err != nil {
		t.Fatalf("Conversation with history: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d", len(list))
	}
}

func TestSendChecksMeldungReference(t *testing.T) {
	e := newEnv(t)
	s := e.messages()
	v := createMeldung(t, e)

	missing := uint(4711)
	if _, err := s.Send(e.mieter(), SendMessageInput{ReceiverID: e.f.Vermieter.ID, Content: "x", MeldungID: &missing}); !errors.Is(err, errs.ErrMeldungNotFound) {
		t.Fatalf("missing Meldung: %v", err)
	}
	if _, err := s.Send(e.mieter(), SendMessageInput{ReceiverID: e.f.Vermieter.ID, Content: "Zur Heizung", MeldungID: &v.ID}); err != nil {
		t.Fatalf("Meldung of both parties: %v", err)
	}
}

func TestConversationPollingPagesForward(t *testing.T) {
	e := newEnv(t)
	s := e.messages()

	base := time.Now().Add(-time.Hour)
	backlog := make([]models.Message, 150)
	for i := range backlog {
		backlog[i] = models.Message{
			SenderID:     e.f.Vermieter.ID,
			ReceiverID:   e.f.Mieter.ID,
			SenderRole:   models.RoleVermieter,
			ReceiverRole: models.RoleMieter,
			Content:      fmt.Sprintf("Nachricht %d", i+1),
			CreatedAt:    base.Add(time.Duration(i+1) * time.Second),
		}
	}
	if err := e.db.Create(&backlog).Error; err != nil {
		t.Fatal(err)
	}

	first, err := s.Conversation(e.mieter(), e.f.Vermieter.ID, &base, 0)
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if len(first) != defaultMessageLimit || first[0].ID != backlog[0].ID || first[len(first)-1].ID != backlog[99].ID {
		t.Fatalf("first poll: %d messages, %d..%d", len(first), first[0].ID, first[len(first)-1].ID)
	}
	// messages not yet delivered stay unread
	if n, _ := s.UnreadCount(e.f.Mieter.ID); n != 50 {
		t.Fatalf("unread after first poll = %d", n)
	}

	since := first[len(first)-1].CreatedAt
	second, err := s.Conversation(e.mieter(), e.f.Vermieter.ID, &since, 0)
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if len(second) != 50 || second[0].ID != backlog[100].ID || second[49].ID != backlog[149].ID {
		t.Fatalf("second poll: %d messages", len(second))
	}
	if n, _ := s.UnreadCount(e.f.Mieter.ID); n != 0 {
		t.Fatalf("unread after second poll = %d", n)
	}

	since = second[len(second)-1].CreatedAt
	if rest, err := s.Conversation(e.mieter(), e.f.Vermieter.ID, &since, 0); err != nil || len(rest) != 0 {
		t.Fatalf("third poll: %d %v", len(rest), err)
	}

	// without since the newest messages are returned
	latest, err := s.Conversation(e.mieter(), e.f.Vermieter.ID, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != 10 || latest[9].ID != backlog[149].ID || latest[0].ID != backlog[140].ID {
		t.Fatalf("latest: %d messages", len(latest))
	}
}

func TestByPartnerRoleSeparatesPartners(t *testing.T) {
	e := newEnv(t)
	s := e.messages()

	v := createMeldung(t, e)
	if _, err := e.meldungen().AssignHandwerker(e.vermieter(), v.ID, e.f.Handwerker.ID, ""); err != nil {
		t.Fatal(err)
	}
	send := func(from Actor, to uint, content string) {
		t.Helper()
		if _, err := s.Send(from, SendMessageInput{ReceiverID: to, Content: content}); err != nil {
			t.Fatalf("Send %q: %v", content, err)
		}
	}
	send(e.mieter(), e.f.Vermieter.ID, "an Vermieter")
	send(e.vermieter(), e.f.Mieter.ID, "von Vermieter")
	send(e.mieter(), e.f.Handwerker.ID, "an Handwerker")
	send(e.handwerker(), e.f.Mieter.ID, "von Handwerker")
	send(e.handwerker(), e.f.Vermieter.ID, "Handwerker an Vermieter")

	cases := []struct {
		role models.Role
		want []string
	}{
		{models.RoleVermieter, []string{"an Vermieter", "von Vermieter"}},
		{models.RoleHandwerker, []string{"an Handwerker", "von Handwerker"}},
		{models.RoleMieter, nil},
	}
	for _, tc := range cases {
		list, err := s.ByPartnerRole(e.mieter(), tc.role, nil, 0)
		if err != nil {
			t.Fatalf("ByPartnerRole(%s): %v", tc.role, err)
		}
		if len(list) != len(tc.want) {
			t.Fatalf("ByPartnerRole(%s) = %d messages, want %d", tc.role, len(list), len(tc.want))
		}
		for i, m := range list {
			if m.Content != tc.want[i] {
				t.Errorf("ByPartnerRole(%s)[%d] = %q, want %q", tc.role, i, m.Content, tc.want[i])
			}
			if other, role := m.PartnerOf(e.f.Mieter.ID); role != tc.role || other == e.f.Mieter.ID {
				t.Errorf("ByPartnerRole(%s) returned message with partner %d (%s)", tc.role, other, role)
			}
		}
	}
}
