package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
)

const (
	premiumPrice    = 9.99
	premiumCurrency = "EUR"
)

// InterfaceSubscriptionService manages the plan of a Vermieter
type InterfaceSubscriptionService interface {
	GetSubscription(vermieterID uint) (*SubscriptionView, error)
	Plans() []models.PlanInfo
	CheckUnitLimit(tx *gorm.DB, vermieterID uint) error
	Checkout(ctx context.Context, vermieterID uint, plan models.SubscriptionPlan) (*PaymentOrder, error)
	Cancel(vermieterID uint) (*SubscriptionView, error)
}

// SubscriptionView is the subscription with its current limits
type SubscriptionView struct {
	Subscription  *models.Subscription    `json:"subscription"`
	EffectivePlan models.SubscriptionPlan `json:"effective_plan"`
	UnitLimit     int                     `json:"unit_limit"` // 0 means unlimited
	UnitsUsed     int64                   `json:"units_used"`
}

// SubscriptionService implements InterfaceSubscriptionService
type SubscriptionService struct {
	DB            *gorm.DB
	Gateway       InterfacePaymentGateway
	FreeUnitLimit int
	now           func() time.Time
}

// NewSubscriptionService creates the subscription service
func NewSubscriptionService(db *gorm.DB, gateway InterfacePaymentGateway, freeUnitLimit int) *SubscriptionService {
	return &SubscriptionService{DB: db, Gateway: gateway, FreeUnitLimit: freeUnitLimit, now: time.Now}
}

// 1 Plans returns the plan catalogue
func (s *SubscriptionService) Plans() []models.PlanInfo {
	return []models.PlanInfo{
		{Plan: models.PlanFree, Name: "Free", PriceMonthly: 0, Currency: premiumCurrency, UnitLimit: s.FreeUnitLimit},
		{Plan: models.PlanPremium, Name: "Premium", PriceMonthly: premiumPrice, Currency: premiumCurrency, UnitLimit: 0},
	}
}

// 2 GetSubscription returns the subscription, creating a FREE one on first access
func (s *SubscriptionService) GetSubscription(vermieterID uint) (*SubscriptionView, error) {
	sub, err := s.load(s.DB, vermieterID)
	if err != nil {
		return nil, err
	}
	return s.view(s.DB, sub)
}

// 3 CheckUnitLimit fails with ErrUnitLimitReached when no further unit may be
// created. tx should be the transaction that creates the unit: the
// subscription row stays locked until it ends.
func (s *SubscriptionService) CheckUnitLimit(tx *gorm.DB, vermieterID uint) error {
	sub, err := s.load(tx.Clauses(clause.Locking{Strength: "UPDATE"}), vermieterID)
	if err != nil {
		return err
	}
	v, err := s.view(tx, sub)
	if err != nil {
		return err
	}
	if v.UnitLimit > 0 && v.UnitsUsed >= int64(v.UnitLimit) {
		return errs.ErrUnitLimitReached
	}
	return nil
}

// 4 Checkout asks the payment gateway for an order. The subscription is only
// marked PENDING once the gateway accepted the order.
func (s *SubscriptionService) Checkout(ctx context.Context, vermieterID uint, plan models.SubscriptionPlan) (*PaymentOrder, error) {
	if plan != models.PlanPremium {
		return nil, errs.ErrValidation
	}
	sub, err := s.load(s.DB, vermieterID)
	if err != nil {
		return nil, err
	}
	if sub.EffectivePlan(s.now()) == models.PlanPremium {
		return nil, errs.ErrSubscriptionState
	}

	order, err := s.Gateway.CreateOrder(ctx, OrderRequest{
		Reference:   uuid.NewString(),
		Description: "Immofox Premium",
		Amount:      premiumPrice,
		Currency:    premiumCurrency,
	})
	if err != nil {
		return nil, err
	}

	err = s.DB.Model(sub).Updates(map[string]interface{}{
		"plan":              models.PlanPremium,
		"status":            models.SubscriptionPending,
		"external_order_id": order.ID,
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "mark subscription pending")
	}
	return order, nil
}

// 5 Cancel ends an active or pending PREMIUM plan; FREE limits apply again
func (s *SubscriptionService) Cancel(vermieterID uint) (*SubscriptionView, error) {
	sub, err := s.load(s.DB, vermieterID)
	if err != nil {
		return nil, err
	}
	if sub.Plan != models.PlanPremium || sub.Status == models.SubscriptionCancelled {
		return nil, errs.ErrSubscriptionState
	}
	if err := s.DB.Model(sub).Update("status", models.SubscriptionCancelled).Error; err != nil {
		return nil, errors.Wrap(err, "cancel subscription")
	}
	sub.Status = models.SubscriptionCancelled
	return s.view(s.DB, sub)
}

func (s *SubscriptionService) load(db *gorm.DB, vermieterID uint) (*models.Subscription, error) {
	sub := models.Subscription{VermieterID: vermieterID}
	err := db.Where(models.Subscription{VermieterID: vermieterID}).
		Attrs(models.Subscription{Plan: models.PlanFree, Status: models.SubscriptionActive}).
		FirstOrCreate(&sub).Error
	if err != nil {
		return nil, errors.Wrap(err, "load subscription")
	}
	return &sub, nil
}

func (s *SubscriptionService) view(db *gorm.DB, sub *models.Subscription) (*SubscriptionView, error) {
	var used int64
	err := db.Model(&models.Unit{}).
		Joins("JOIN properties ON properties.id = units.property_id").
		Where("properties.vermieter_id = ?", sub.VermieterID).
		Count(&used).Error
	if err != nil {
		return nil, errors.Wrap(err, "count units")
	}

	plan := sub.EffectivePlan(s.now())
	limit := 0
	if plan == models.PlanFree {
		limit = s.FreeUnitLimit
	}
	return &SubscriptionView{Subscription: sub, EffectivePlan: plan, UnitLimit: limit, UnitsUsed: used}, nil
}
