package payments

import (
	"context"
	"fmt"

	domain "github.com/fanoo2/backend/internal/domain/dashboard"
	"github.com/fanoo2/backend/internal/domain/integrations"
	"github.com/fanoo2/backend/internal/logger"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

type ActivityRecorder interface {
	CreateActivity(ctx context.Context, title, kind string) (*domain.Activity, error)
}

type Service struct {
	Payments   integrations.Payments
	Activities ActivityRecorder
	Log        *logger.Logger
}

func (s *Service) CreateCheckoutSession(ctx context.Context, req integrations.CheckoutRequest) (integrations.CheckoutSession, error) {
	return s.Payments.CreateCheckoutSession(ctx, req)
}

// HandleWebhook verifies the payload and records the events the dashboard
// cares about. Unknown event types are accepted and only logged.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (integrations.WebhookEvent, error) {
	ev, err := s.Payments.VerifyWebhook(payload, signature)
	if err != nil {
		return ev, err
	}
	log := logger.From(ctx, s.logger()).With().Str("event_id", ev.ID).Str("event_type", ev.Type).Logger()

	var title, kind string
	switch ev.Type {
	case EventCheckoutCompleted:
		log.Info().Str("session_id", ev.ObjectID).Int64("amount", ev.Amount).Msg("payment completed")
		title, kind = fmt.Sprintf("Payment completed: %s", ev.ObjectID), domain.ActivitySuccess
	case EventPaymentFailed:
		log.Warn().Str("payment_intent", ev.ObjectID).Msg("payment failed")
		title, kind = fmt.Sprintf("Payment failed: %s", ev.ObjectID), domain.ActivityError
	default:
		log.Info().Msg("unhandled payment event")
		return ev, nil
	}

	if s.Activities != nil {
		if _, err := s.Activities.CreateActivity(ctx, title, kind); err != nil {
			log.Error().Err(err).Msg("failed to record payment activity")
		}
	}
	return ev, nil
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Named("payments")
	}
	return s.Log
}
