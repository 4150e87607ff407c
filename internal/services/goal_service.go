package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/storage"
)

// GoalService manages savings goals. Progress percent is stored
// unclamped so over-saving shows as more than 100; the celebrated flag
// latches the first time the goal completes and never clears.
type GoalService struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewGoalService(repo *storage.Repository, logger *log.Logger) *GoalService {
	return &GoalService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentGoal),
	}
}

func (s *GoalService) Create(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	g.ID = uuid.NewString()
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	g.PercentComplete = core.Percent(g.Saved.Cents, g.Target.Cents)
	g.Celebrated = g.PercentComplete >= 100

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return core.SavingsGoal{}, err
	}

	s.logger.InfoContext(ctx, "created savings goal",
		log.FieldUserID, g.UserID,
		log.FieldGoalID, g.ID)

	return g, nil
}

// Update rewrites name, saved and target. Celebrated stays set even if
// the new numbers drop the goal back under 100 percent.
func (s *GoalService) Update(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	existing, err := s.repo.GetGoal(ctx, g.UserID, g.ID)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	g.PercentComplete = core.Percent(g.Saved.Cents, g.Target.Cents)
	g.Celebrated = existing.Celebrated || g.PercentComplete >= 100

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return core.SavingsGoal{}, err
	}

	s.logger.InfoContext(ctx, "updated savings goal",
		log.FieldUserID, g.UserID,
		log.FieldGoalID, g.ID)

	return g, nil
}

// Delete removes a goal and records why. The reason is mandatory and
// lands in an audit table alongside the goal's final progress.
func (s *GoalService) Delete(ctx context.Context, userID, id, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return &core.ValidationError{Field: "reason", Reason: "deletion reason is required"}
	}

	g, err := s.repo.GetGoal(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteGoalWithReason(ctx, g, strings.TrimSpace(reason)); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "deleted savings goal",
		log.FieldUserID, userID,
		log.FieldGoalID, id)

	return nil
}

func (s *GoalService) Get(ctx context.Context, userID, id string) (core.SavingsGoal, error) {
	return s.repo.GetGoal(ctx, userID, id)
}

func (s *GoalService) List(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	return s.repo.ListGoals(ctx, userID)
}
