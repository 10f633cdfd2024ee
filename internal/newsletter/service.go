package newsletter

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/internal/email"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
)

// Service handles popup subscriptions and unsubscribes
type Service struct {
	repo     contracts.SubscriberRepository
	mailer   email.Mailer
	renderer *email.Renderer
	metrics  *metrics.Recorder
	logger   *logger.Logger
}

// NewService creates a new newsletter service
func NewService(
	repo contracts.SubscriberRepository,
	mailer email.Mailer,
	renderer *email.Renderer,
	rec *metrics.Recorder,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		mailer:   mailer,
		renderer: renderer,
		metrics:  rec,
		logger:   log.WithComponent("newsletter"),
	}
}

// Subscribe stores the address and welcomes new (or returning) subscribers.
// A failed welcome email is logged and never fails the subscription.
func (s *Service) Subscribe(ctx context.Context, address, source string) (*contracts.SubscribeResult, error) {
	address = contracts.NormalizeEmail(address)

	result, err := s.repo.Upsert(ctx, address, source)
	if err != nil {
		s.metrics.Subscription(source, "error")
		return nil, fmt.Errorf("subscribe %s: %w", source, err)
	}

	switch {
	case result.Created:
		s.metrics.Subscription(source, "created")
	case result.Reactivated:
		s.metrics.Subscription(source, "reactivated")
	default:
		s.metrics.Subscription(source, "existing")
		return result, nil
	}

	s.sendWelcome(ctx, address)
	return result, nil
}

// Unsubscribe deactivates an address; unknown addresses are not an error
func (s *Service) Unsubscribe(ctx context.Context, address string) (bool, error) {
	changed, err := s.repo.Unsubscribe(ctx, contracts.NormalizeEmail(address))
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (s *Service) sendWelcome(ctx context.Context, address string) {
	msg, err := s.renderer.Welcome(address)
	if err != nil {
		s.logger.WithError(err).Error("Failed to render welcome email")
		return
	}

	err = s.mailer.Send(ctx, msg)
	if errors.Is(err, email.ErrDisabled) {
		s.logger.Debug("Email disabled, welcome not sent")
		return
	}
	s.metrics.EmailSent("welcome", err)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to send welcome email")
	}
}
