// Package stripe adapts Stripe Checkout and webhook verification.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/fanoo2/backend/internal/domain/integrations"
)

type Options struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	ProductName   string
	// BaseURL overrides the Stripe API endpoint (tests, stripe-mock).
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	sessions      *session.Client
	webhookSecret string
	successURL    string
	cancelURL     string
	productName   string
}

func NewClient(opt Options) *Client {
	c := &Client{
		webhookSecret: opt.WebhookSecret,
		successURL:    opt.SuccessURL,
		cancelURL:     opt.CancelURL,
		productName:   opt.ProductName,
	}
	if c.productName == "" {
		c.productName = "Fanno payment"
	}
	if opt.SecretKey == "" {
		return c
	}

	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(1),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if opt.BaseURL != "" {
		cfg.URL = stripe.String(opt.BaseURL)
	}
	c.sessions = &session.Client{
		B:   stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Key: opt.SecretKey,
	}
	return c
}

// CreateCheckoutSession opens a one-item payment session for amount (minor units).
func (c *Client) CreateCheckoutSession(ctx context.Context, req integrations.CheckoutRequest) (integrations.CheckoutSession, error) {
	if c.sessions == nil {
		return integrations.CheckoutSession{}, integrations.ErrDisabled
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(req.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(c.productName),
				},
				UnitAmount: stripe.Int64(req.Amount),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
	}
	params.Context = ctx

	s, err := c.sessions.New(params)
	if err != nil {
		return integrations.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return integrations.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// VerifyWebhook checks the Stripe-Signature header and extracts the event object.
func (c *Client) VerifyWebhook(payload []byte, signature string) (integrations.WebhookEvent, error) {
	if c.webhookSecret == "" {
		return integrations.WebhookEvent{}, integrations.ErrDisabled
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return integrations.WebhookEvent{}, fmt.Errorf("%w: %v", integrations.ErrInvalidSignature, err)
	}

	out := integrations.WebhookEvent{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil && len(ev.Data.Raw) > 0 {
		var obj struct {
			ID          string `json:"id"`
			Amount      int64  `json:"amount"`
			AmountTotal int64  `json:"amount_total"`
			Currency    string `json:"currency"`
		}
		if err := json.Unmarshal(ev.Data.Raw, &obj); err != nil {
			return out, fmt.Errorf("decode event object: %w", err)
		}
		out.ObjectID = obj.ID
		out.Amount = obj.AmountTotal
		if out.Amount == 0 {
			out.Amount = obj.Amount
		}
		out.Currency = obj.Currency
	}
	return out, nil
}
