// Package integrations holds the ports for the third-party services the
// backend passes through to: payments, real-time tokens and CI.
package integrations

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDisabled means the integration has no credentials configured.
	ErrDisabled = errors.New("integration not configured")
	// ErrInvalidSignature is returned for webhook payloads that fail verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

type CheckoutRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3,alpha"`
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// WebhookEvent is the verified subset of a payment provider event.
type WebhookEvent struct {
	ID       string
	Type     string
	ObjectID string
	Amount   int64
	Currency string
}

type Payments interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (WebhookEvent, error)
}

type RoomTokenRequest struct {
	Room     string `json:"room" validate:"required,max=128"`
	Identity string `json:"identity" validate:"required,max=128"`
}

type RoomToken struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RoomTokens interface {
	IssueToken(req RoomTokenRequest) (RoomToken, error)
}

// WorkflowDispatcher triggers a CI workflow run.
type WorkflowDispatcher interface {
	Dispatch(ctx context.Context, inputs map[string]string) error
}
