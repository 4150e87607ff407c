package services

import (
	"context"
	"time"

	"digitwin/internal/amqp"
	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/storage"
)

// ProfileService stores onboarding preferences. Saving a profile seeds
// the current month's budget aggregate and announces the change so the
// worker can regenerate financial tasks.
type ProfileService struct {
	repo       *storage.Repository
	amqpClient *amqp.Client
	logger     *log.Logger
}

func NewProfileService(repo *storage.Repository, amqpClient *amqp.Client, logger *log.Logger) *ProfileService {
	return &ProfileService{
		repo:       repo,
		amqpClient: amqpClient,
		logger:     logger.WithComponent(log.ComponentProfile),
	}
}

func (s *ProfileService) Save(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return err
	}

	// Seed this month's aggregate so the dashboard has a budget to show
	// right after onboarding. An existing aggregate is left untouched.
	now := time.Now()
	month, year := int(now.Month()), now.Year()
	seed := core.BudgetAggregate{
		DocKey:    core.BudgetDocKey(p.UserID, month, year),
		UserID:    p.UserID,
		Month:     month,
		Year:      year,
		Budget:    p.MonthlyBudget,
		Remaining: p.MonthlyBudget,
	}
	if err := s.repo.CreateBudget(ctx, seed); err != nil {
		return err
	}

	s.publishProfileUpdated(ctx, p.UserID)

	s.logger.InfoContext(ctx, "saved profile",
		log.FieldUserID, p.UserID,
		log.FieldAmount, p.MonthlyBudget.Cents)

	return nil
}

// publishProfileUpdated is best-effort: the profile write already
// succeeded, so a broker outage only delays task regeneration.
func (s *ProfileService) publishProfileUpdated(ctx context.Context, userID string) {
	if s.amqpClient == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping profile updated message",
			log.FieldUserID, userID)
		return
	}
	if err := s.amqpClient.PublishProfileUpdated(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish profile updated message",
			log.FieldUserID, userID,
			log.FieldError, err)
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (core.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}
