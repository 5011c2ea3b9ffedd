package services

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

const (
	MaxMessageLength    = 2000
	defaultMessageLimit = 100
	maxMessageLimit     = 500
	previewLength       = 80
)

var terminalStatuses = []models.MeldungStatus{models.StatusAbgeschlossen, models.StatusStorniert}

// InterfaceMessageService is the role-partitioned chat
type InterfaceMessageService interface {
	Contacts(actor Actor, partnerRole models.Role) ([]models.Contact, error)
	Send(sender Actor, in SendMessageInput) (*models.Message, error)
	Conversation(actor Actor, partnerID uint, since *time.Time, limit int) ([]models.Message, error)
	ByPartnerRole(actor Actor, partnerRole models.Role, since *time.Time, limit int) ([]models.Message, error)
	UnreadCount(userID uint) (int64, error)
	IsPartner(actor Actor, partnerID uint) (bool, error)
}

// SendMessageInput is one outgoing chat message
type SendMessageInput struct {
	ReceiverID uint
	Content    string
	MeldungID  *uint
}

// MessageService implements InterfaceMessageService
type MessageService struct {
	DB            *gorm.DB
	Store         InterfaceRedisService
	Notifications InterfaceNotificationService
	Publisher     InterfacePublisher
	now           func() time.Time
}

// NewMessageService creates the chat service
func NewMessageService(db *gorm.DB, store InterfaceRedisService, notifications InterfaceNotificationService, publisher InterfacePublisher) *MessageService {
	return &MessageService{DB: db, Store: store, Notifications: notifications, Publisher: publisher, now: time.Now}
}

// 1 Contacts lists the allowed chat partners, optionally of one role, with
// unread count and last message. Partners with recent messages come first.
func (s *MessageService) Contacts(actor Actor, partnerRole models.Role) ([]models.Contact, error) {
	partners, err := s.partners(actor)
	if err != nil {
		return nil, err
	}

	var unread []struct {
		SenderID uint
		Count    int64
	}
	err = s.DB.Model(&models.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", actor.ID, false).
		Group("sender_id").
		Scan(&unread).Error
	if err != nil {
		return nil, errors.Wrap(err, "count unread by sender")
	}
	unreadBy := make(map[uint]int64, len(unread))
	for _, u := range unread {
		unreadBy[u.SenderID] = u.Count
	}

	contacts := make([]models.Contact, 0, len(partners))
	for i := range partners {
		p := &partners[i]
		if partnerRole != "" && p.Role != partnerRole {
			continue
		}
		c := models.Contact{User: p.Summary(), UnreadCount: unreadBy[p.ID]}
		var last models.Message
		err := s.conversationQuery(actor.ID, p.ID).Order("created_at DESC, id DESC").Limit(1).Find(&last).Error
		if err != nil {
			return nil, errors.Wrap(err, "last message")
		}
		if last.ID != 0 {
			c.LastMessage = &last
		}
		contacts = append(contacts, c)
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		li, lj := contacts[i].LastMessage, contacts[j].LastMessage
		switch {
		case li != nil && lj != nil:
			return li.CreatedAt.After(lj.CreatedAt)
		case li != nil || lj != nil:
			return li != nil
		}
		return contacts[i].User.Name < contacts[j].User.Name
	})
	return contacts, nil
}

// 2 Send stores a message to an allowed partner and pushes it to the receiver
func (s *MessageService) Send(sender Actor, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, errs.ErrMessageInvalid
	}
	if in.ReceiverID == sender.ID {
		return nil, errs.ErrChatPartnerNotAllowed
	}

	var receiver models.User
	if err := s.DB.Where("id = ? AND active = ?", in.ReceiverID, true).First(&receiver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrChatPartnerNotAllowed
		}
		return nil, errors.Wrap(err, "get receiver")
	}
	ok, err := s.IsPartner(sender, receiver.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrChatPartnerNotAllowed
	}
	if in.MeldungID != nil {
		if err := s.checkMeldungReference(*in.MeldungID, sender.ID, receiver.ID); err != nil {
			return nil, err
		}
	}

	msg := &models.Message{
		SenderID:     sender.ID,
		ReceiverID:   receiver.ID,
		SenderRole:   sender.Role,
		ReceiverRole: receiver.Role,
		Content:      content,
		MeldungID:    in.MeldungID,
	}
	if err := s.DB.Create(msg).Error; err != nil {
		return nil, errors.Wrap(err, "create message")
	}

	var from models.User
	name := "einem Kontakt"
	if err := s.DB.Select("id", "first_name", "last_name").First(&from, sender.ID).Error; err == nil {
		name = from.FullName()
	}
	notifyAll(s.Notifications, []uint{receiver.ID}, models.NotificationNewMessage,
		"Neue Nachricht von "+name, preview(content), &sender.ID)
	if s.Publisher != nil {
		s.Publisher.PublishToUser(receiver.ID, EventMessage, msg)
		s.Publisher.PublishToUser(sender.ID, EventMessage, msg)
	}
	return msg, nil
}

// 3 Conversation returns the messages between actor and partner in ascending
// order. With since the next page of newer messages is returned. Incoming
// messages in the result are marked read.
func (s *MessageService) Conversation(actor Actor, partnerID uint, since *time.Time, limit int) ([]models.Message, error) {
	ok, err := s.IsPartner(actor, partnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		var history int64
		if err := s.conversationQuery(actor.ID, partnerID).Count(&history).Error; err != nil {
			return nil, errors.Wrap(err, "count conversation")
		}
		if history == 0 {
			return nil, errs.ErrChatPartnerNotAllowed
		}
	}

	list, err := s.latest(s.conversationQuery(actor.ID, partnerID), since, limit)
	if err != nil {
		return nil, err
	}

	var unread []uint
	for i := range list {
		if list[i].ReceiverID == actor.ID && !list[i].Read {
			unread = append(unread, list[i].ID)
		}
	}
	if len(unread) == 0 {
		return list, nil
	}

	// only what was delivered counts as read
	now := s.now()
	err = s.DB.Model(&models.Message{}).
		Where("id IN ? AND receiver_id = ?", unread, actor.ID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return nil, errors.Wrap(err, "mark conversation read")
	}
	invalidateDashboards(s.Store, actor.ID)
	for i := range list {
		if list[i].ReceiverID == actor.ID && !list[i].Read {
			list[i].Read = true
			list[i].ReadAt = &now
		}
	}
	return list, nil
}

// 4 ByPartnerRole returns all messages of actor whose other party has the given role
func (s *MessageService) ByPartnerRole(actor Actor, partnerRole models.Role, since *time.Time, limit int) ([]models.Message, error) {
	if _, ok := models.ParseRole(string(partnerRole)); !ok {
		return nil, errs.ErrValidation
	}
	query := s.DB.Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_role = ?) OR (receiver_id = ? AND sender_role = ?)",
			actor.ID, partnerRole, actor.ID, partnerRole)
	return s.latest(query, since, limit)
}

// 5 UnreadCount is polled by the chat widget
func (s *MessageService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, errors.Wrap(err, "count unread messages")
}

// 6 IsPartner reports whether actor may start a chat with partnerID
func (s *MessageService) IsPartner(actor Actor, partnerID uint) (bool, error) {
	ids, err := s.partnerIDs(actor)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == partnerID {
			return true, nil
		}
	}
	return false, nil
}

// partnerIDs collects the allowed partners:
// Mieter: own Vermieter and the Handwerker of own open Meldungen;
// Vermieter: own Mieter and the Handwerker of Meldungen in own properties;
// Handwerker: Vermieter of assigned Meldungen and the reporters of assigned open Meldungen.
func (s *MessageService) partnerIDs(actor Actor) ([]uint, error) {
	var ids []uint
	collect := func(q *gorm.DB, column, what string) error {
		var found []uint
		if err := q.Distinct().Pluck(column, &found).Error; err != nil {
			return errors.Wrap(err, what)
		}
		ids = append(ids, found...)
		return nil
	}
	meldungen := func() *gorm.DB { return s.DB.Model(&models.Meldung{}) }
	withProperty := func(q *gorm.DB) *gorm.DB {
		return q.Joins("JOIN units ON units.id = meldungen.unit_id").
			Joins("JOIN properties ON properties.id = units.property_id")
	}

	switch actor.Role {
	case models.RoleMieter:
		if err := collect(s.DB.Model(&models.User{}).Where("id = ? AND landlord_id IS NOT NULL", actor.ID),
			"landlord_id", "own landlord"); err != nil {
			return nil, err
		}
		if err := collect(meldungen().Where("reporter_id = ? AND handwerker_id IS NOT NULL AND status NOT IN ?", actor.ID, terminalStatuses),
			"handwerker_id", "handwerker of own meldungen"); err != nil {
			return nil, err
		}
	case models.RoleVermieter:
		if err := collect(s.DB.Model(&models.User{}).Where("landlord_id = ? AND role = ?", actor.ID, models.RoleMieter),
			"id", "own tenants"); err != nil {
			return nil, err
		}
		if err := collect(withProperty(meldungen()).Where("properties.vermieter_id = ? AND meldungen.handwerker_id IS NOT NULL", actor.ID),
			"meldungen.handwerker_id", "handwerker of own properties"); err != nil {
			return nil, err
		}
	case models.RoleHandwerker:
		if err := collect(withProperty(meldungen()).Where("meldungen.handwerker_id = ?", actor.ID),
			"properties.vermieter_id", "vermieter of jobs"); err != nil {
			return nil, err
		}
		if err := collect(meldungen().Where("handwerker_id = ? AND status NOT IN ?", actor.ID, terminalStatuses),
			"reporter_id", "reporters of open jobs"); err != nil {
			return nil, err
		}
	default:
		return nil, errs.ErrForbidden
	}
	return ids, nil
}

// partners loads the active users behind partnerIDs
func (s *MessageService) partners(actor Actor) ([]models.User, error) {
	ids, err := s.partnerIDs(actor)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := s.DB.Where("id IN ? AND active = ?", ids, true).Order("last_name, first_name").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "load partners")
	}
	return users, nil
}

func (s *MessageService) conversationQuery(userID, partnerID uint) *gorm.DB {
	return s.DB.Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID)
}

// latest returns messages of query in ascending order. Without since these are
// the newest limit messages; with since the oldest limit messages after it, so
// that polling clients page forward without gaps.
func (s *MessageService) latest(query *gorm.DB, since *time.Time, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	var list []models.Message
	if since != nil {
		err := query.Where("created_at > ?", since.Local()).
			Order("created_at ASC, id ASC").Limit(limit).Find(&list).Error
		return list, errors.Wrap(err, "list messages")
	}

	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

// checkMeldungReference requires both chat parties to be involved in the Meldung
func (s *MessageService) checkMeldungReference(meldungID, senderID, receiverID uint) error {
	var m models.Meldung
	if err := s.DB.Preload("Unit.Property").First(&m, meldungID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrMeldungNotFound
		}
		return errors.Wrap(err, "get meldung")
	}
	involved := map[uint]bool{}
	for _, id := range meldungParties(&m) {
		involved[id] = true
	}
	if !involved[senderID] || !involved[receiverID] {
		return errors.Wrapf(errs.ErrValidation, "meldung %d does not involve both parties", meldungID)
	}
	return nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength]) + "…"
}
