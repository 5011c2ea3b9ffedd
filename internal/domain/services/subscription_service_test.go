package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"immofox-http-service/internal/domain/models"
	"immofox-http-service/internal/error/errs"
	"immofox-http-service/internal/infrastructure/config"
)

// fakeGateway accepts every order unless err is set
type fakeGateway struct {
	err    error
	orders []OrderRequest
}

func (g *fakeGateway) CreateOrder(_ context.Context, req OrderRequest) (*PaymentOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.orders = append(g.orders, req)
	return &PaymentOrder{ID: "ORDER-1", Status: "CREATED", ApprovalURL: "https://example.test/approve"}, nil
}

func (g *fakeGateway) CaptureOrder(_ context.Context, orderID string) (*PaymentOrder, error) {
	return &PaymentOrder{ID: orderID, Status: "COMPLETED"}, nil
}

func TestSubscriptionDefaultsToFree(t *testing.T) {
	e := newEnv(t)
	s := NewSubscriptionService(e.db, &fakeGateway{}, 5)

	// a Vermieter without a subscription row gets a FREE one
	if err := e.db.Where("vermieter_id = ?", e.f.Vermieter.ID).Delete(&models.Subscription{}).Error; err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSubscription(e.f.Vermieter.ID)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if v.EffectivePlan != models.PlanFree || v.UnitLimit != 5 || v.UnitsUsed != 2 {
		t.Fatalf("view = %+v", v)
	}
	if len(s.Plans()) != 2 {
		t.Fatalf("Plans = %v", s.Plans())
	}
}

func TestCheckoutAndCancel(t *testing.T) {
	e := newEnv(t)
	gw := &fakeGateway{}
	s := NewSubscriptionService(e.db, gw, 2)
	vid := e.f.Vermieter.ID
	ctx := context.Background()

	if err := s.CheckUnitLimit(e.db, vid); !errors.Is(err, errs.ErrUnitLimitReached) {
		t.Fatalf("limit: err = %v", err)
	}
	if _, err := s.Checkout(ctx, vid, models.PlanFree); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("checkout FREE: err = %v", err)
	}

	order, err := s.Checkout(ctx, vid, models.PlanPremium)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if order.ID != "ORDER-1" || len(gw.orders) != 1 || gw.orders[0].Amount != premiumPrice {
		t.Fatalf("order %+v, requests %+v", order, gw.orders)
	}

	v, err := s.GetSubscription(vid)
	if err != nil {
		t.Fatal(err)
	}
	// pending payments do not lift the limit
	if v.Subscription.Status != models.SubscriptionPending || v.EffectivePlan != models.PlanFree {
		t.Fatalf("after checkout: %+v", v.Subscription)
	}

	v, err = s.Cancel(vid)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if v.Subscription.Status != models.SubscriptionCancelled {
		t.Fatalf("Status = %s", v.Subscription.Status)
	}
	if _, err := s.Cancel(vid); !errors.Is(err, errs.ErrSubscriptionState) {
		t.Fatalf("cancel twice: err = %v", err)
	}
}

func TestActivePremiumHasNoLimit(t *testing.T) {
	e := newEnv(t)
	s := NewSubscriptionService(e.db, &fakeGateway{}, 1)
	vid := e.f.Vermieter.ID
	e.db.Model(&models.Subscription{}).Where("vermieter_id = ?", vid).
		Updates(map[string]interface{}{"plan": models.PlanPremium, "status": models.SubscriptionActive})

	if err := s.CheckUnitLimit(e.db, vid); err != nil {
		t.Fatalf("CheckUnitLimit: %v", err)
	}
	if _, err := s.Checkout(context.Background(), vid, models.PlanPremium); !errors.Is(err, errs.ErrSubscriptionState) {
		t.Fatalf("checkout while premium: err = %v", err)
	}
}

func TestPayPalGatewayIsNotImplemented(t *testing.T) {
	gw := NewPayPalGateway(&config.Config{PayPalMode: "live"})
	if gw.Mode != "live" {
		t.Fatalf("Mode = %q", gw.Mode)
	}
	e := newEnv(t)
	s := NewSubscriptionService(e.db, gw, 5)
	if _, err := s.Checkout(context.Background(), e.f.Vermieter.ID, models.PlanPremium); !errors.Is(err, errs.ErrPaymentNotImplemented) {
		t.Fatalf("err = %v", err)
	}
	v, _ := s.GetSubscription(e.f.Vermieter.ID)
	if v.Subscription.Status != models.SubscriptionActive || v.Subscription.Plan != models.PlanFree {
		t.Fatalf("subscription changed on failed payment: %+v", v.Subscription)
	}
}
