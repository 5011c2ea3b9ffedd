package models

import "time"

type SubscriptionPlan string

const (
	PlanFree    SubscriptionPlan = "FREE"
	PlanPremium SubscriptionPlan = "PREMIUM"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionPending   SubscriptionStatus = "PENDING"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription is the plan of a Vermieter; one row per Vermieter
type Subscription struct {
	BaseModel
	VermieterID     uint               `gorm:"uniqueIndex;not null" json:"vermieter_id"`
	Plan            SubscriptionPlan   `gorm:"type:varchar(20);not null;default:'FREE'" json:"plan"`
	Status          SubscriptionStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	ValidUntil      *time.Time         `json:"valid_until,omitempty"`
	ExternalOrderID string             `gorm:"type:varchar(64)" json:"external_order_id,omitempty"`
}

// PlanInfo describes a plan of the catalogue
type PlanInfo struct {
	Plan         SubscriptionPlan `json:"plan"`
	Name         string           `json:"name"`
	PriceMonthly float64          `json:"price_monthly"`
	Currency     string           `json:"currency"`
	UnitLimit    int              `json:"unit_limit"` // 0 means unlimited
}

// EffectivePlan is the plan whose limits currently apply
func (s *Subscription) EffectivePlan(now time.Time) SubscriptionPlan {
	if s.Plan != PlanPremium || s.Status != SubscriptionActive {
		return PlanFree
	}
	if s.ValidUntil != nil && now.After(*s.ValidUntil) {
		return PlanFree
	}
	return PlanPremium
}
