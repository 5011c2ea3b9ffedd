package services

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"immofox-http-service/internal/error/errs"
	"immofox-http-service/internal/infrastructure/config"
)

const (
	payPalSandboxURL = "https://api-m.sandbox.paypal.com"
	payPalLiveURL    = "https://api-m.paypal.com"
)

// InterfacePaymentGateway creates and captures checkout orders
type InterfacePaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*PaymentOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*PaymentOrder, error)
}

// OrderRequest describes one subscription payment
type OrderRequest struct {
	Reference   string
	Description string
	Amount      float64
	Currency    string
}

// PaymentOrder is the gateway's view of an order
type PaymentOrder struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ApprovalURL string `json:"approval_url,omitempty"`
}

// PayPalGateway is prepared for the PayPal Orders API. Payment execution is
// not implemented; every call fails with ErrPaymentNotImplemented.
type PayPalGateway struct {
	Client *resty.Client
	Mode   string
}

// NewPayPalGateway configures the HTTP client for the sandbox or live API
func NewPayPalGateway(cfg *config.Config) *PayPalGateway {
	mode := cfg.PayPalMode
	baseURL := payPalSandboxURL
	if mode == "live" {
		baseURL = payPalLiveURL
	} else {
		mode = "sandbox"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetBasicAuth(cfg.PayPalClientID, cfg.PayPalSecret).
		SetHeader("Content-Type", "application/json")

	return &PayPalGateway{Client: client, Mode: mode}
}

func (g *PayPalGateway) CreateOrder(ctx context.Context, req OrderRequest) (*PaymentOrder, error) {
	return nil, errors.Wrapf(errs.ErrPaymentNotImplemented, "paypal %s: create order %s", g.Mode, req.Reference)
}

func (g *PayPalGateway) CaptureOrder(ctx context.Context, orderID string) (*PaymentOrder, error) {
	return nil, errors.Wrapf(errs.ErrPaymentNotImplemented, "paypal %s: capture order %s", g.Mode, orderID)
}
