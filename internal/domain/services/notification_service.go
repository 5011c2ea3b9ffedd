package services

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
	Logger "immofox-http-service/pkg/logger"
)

// InterfaceNotificationService manages the notification list of a user
type InterfaceNotificationService interface {
	Notify(userID uint, typ models.NotificationType, title, message string, referenceID *uint) (*models.Notification, error)
	List(userID uint, unreadOnly bool, q models.PaginationQuery) ([]models.Notification, int64, error)
	UnreadCount(userID uint) (int64, error)
	MarkRead(userID, id uint) (*models.Notification, error)
	MarkAllRead(userID uint) (int64, error)
	Delete(userID, id uint) error
}

// NotificationService stores notifications and pushes them to online clients
type NotificationService struct {
	DB        *gorm.DB
	Store     InterfaceRedisService
	Publisher InterfacePublisher
	now       func() time.Time
}

// NewNotificationService creates the notification service
func NewNotificationService(db *gorm.DB, store InterfaceRedisService, publisher InterfacePublisher) *NotificationService {
	return &NotificationService{DB: db, Store: store, Publisher: publisher, now: time.Now}
}

// 1 Notify creates a notification and publishes it to the user
func (s *NotificationService) Notify(userID uint, typ models.NotificationType, title, message string, referenceID *uint) (*models.Notification, error) {
	n := &models.Notification{
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Message:     message,
		ReferenceID: referenceID,
	}
	if err := s.DB.Create(n).Error; err != nil {
		return nil, errors.Wrap(err, "create notification")
	}

	invalidateDashboards(s.Store, userID)
	if s.Publisher != nil {
		s.Publisher.PublishToUser(userID, EventNotification, n)
	}
	return n, nil
}

// notifyAll sends the same notification to several users. Failures are logged;
// the triggering operation has already been committed.
func notifyAll(n InterfaceNotificationService, userIDs []uint, typ models.NotificationType, title, message string, referenceID *uint) {
	if n == nil {
		return
	}
	seen := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := n.Notify(id, typ, title, message, referenceID); err != nil {
			Logger.Error("notify user %d: %v", id, err)
		}
	}
}

// 2 List returns the newest notifications first
func (s *NotificationService) List(userID uint, unreadOnly bool, q models.PaginationQuery) ([]models.Notification, int64, error) {
	q.Normalize()
	query := s.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count notifications")
	}
	var list []models.Notification
	if err := query.Order("created_at DESC, id DESC").Offset(q.Offset()).Limit(q.PageSize).Find(&list).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list notifications")
	}
	return list, total, nil
}

// 3 UnreadCount is polled by the clients
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, errors.Wrap(err, "count unread notifications")
}

// 4 MarkRead marks one own notification as read
func (s *NotificationService) MarkRead(userID, id uint) (*models.Notification, error) {
	n, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	now := s.now()
	if err := s.DB.Model(n).Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, errors.Wrap(err, "mark read")
	}
	n.Read = true
	n.ReadAt = &now
	invalidateDashboards(s.Store, userID)
	return n, nil
}

// 5 MarkAllRead marks all own notifications read and returns how many changed
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": s.now()})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "mark all read")
	}
	invalidateDashboards(s.Store, userID)
	return res.RowsAffected, nil
}

// 6 Delete removes one own notification
func (s *NotificationService) Delete(userID, id uint) error {
	n, err := s.get(userID, id)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(n).Error; err != nil {
		return errors.Wrap(err, "delete notification")
	}
	invalidateDashboards(s.Store, userID)
	return nil
}

func (s *NotificationService) get(userID, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.DB.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotificationNotFound
		}
		return nil, errors.Wrap(err, "get notification")
	}
	return &n, nil
}
