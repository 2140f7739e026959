package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/fanoo2/backend/internal/domain/dashboard"
	"github.com/fanoo2/backend/internal/domain/integrations"
	"github.com/fanoo2/backend/internal/logger"
)

const (
	StatusCompleted = "completed"
	// PaymentSpecialist completions kick off the frontend agent workflow.
	PaymentSpecialist = "payment-specialist"
)

// Event is posted by the orchestrator when an agent changes state.
type Event struct {
	Agent   string `json:"agent" validate:"required,max=120"`
	Status  string `json:"status" validate:"required,max=40"`
	Version string `json:"version" validate:"omitempty,max=64"`
}

// ActivityRecorder is the part of the dashboard store this service writes to.
type ActivityRecorder interface {
	CreateActivity(ctx context.Context, title, kind string) (*domain.Activity, error)
}

type Service struct {
	Activities ActivityRecorder
	// CI may be nil when no workflow is configured.
	CI              integrations.WorkflowDispatcher
	Log             *logger.Logger
	DispatchTimeout time.Duration
}

// Handle processes one event and reports whether it was acted on.
// Only "completed" events are; the rest are acknowledged and dropped.
func (s *Service) Handle(ctx context.Context, ev Event) (bool, error) {
	if ev.Status != StatusCompleted {
		return false, nil
	}
	log := logger.From(ctx, s.logger())
	log.Info().Str("agent", ev.Agent).Str("version", ev.Version).Msg("agent completed")

	if _, err := s.Activities.CreateActivity(ctx, fmt.Sprintf("%s completed", ev.Agent), domain.ActivitySuccess); err != nil {
		return true, fmt.Errorf("record activity: %w", err)
	}

	if ev.Agent == PaymentSpecialist {
		s.dispatchFrontend(ctx, ev.Version)
	}
	return true, nil
}

// dispatchFrontend never fails the event; CI trouble is only logged.
func (s *Service) dispatchFrontend(ctx context.Context, version string) {
	log := logger.From(ctx, s.logger())
	if s.CI == nil {
		log.Warn().Msg("no CI dispatcher configured, skipping workflow dispatch")
		return
	}
	if version == "" {
		version = "latest"
	}

	timeout := s.DispatchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	err := s.CI.Dispatch(dctx, map[string]string{"sdk_version": version})
	switch {
	case errors.Is(err, integrations.ErrDisabled):
		log.Warn().Msg("GH_ACTIONS_TOKEN not set, skipping workflow dispatch")
	case err != nil:
		log.Error().Err(err).Msg("failed to dispatch workflow")
	default:
		log.Info().Str("sdk_version", version).Msg("workflow dispatched for payment-specialist completion")
	}
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Named("agents")
	}
	return s.Log
}
