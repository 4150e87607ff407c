package services

import (
	"context"

	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/storage"
)

// SummaryService builds read-time projections over the expense store.
// Nothing here is persisted; callers cache results if they need to.
type SummaryService struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewSummaryService(repo *storage.Repository, logger *log.Logger) *SummaryService {
	return &SummaryService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentSummary),
	}
}

// ByCategory groups one partition's expenses into per-category totals.
func (s *SummaryService) ByCategory(ctx context.Context, userID string, month, year int) ([]core.CategoryTotal, error) {
	expenses, err := s.repo.ListExpenses(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	return core.SummarizeByCategory(expenses), nil
}

// MonthSpend is one month's spending total for the comparison view.
type MonthSpend struct {
	Month int
	Year  int
	Total core.Money
}

// Compare returns spending totals for the given month and the months
// before it, oldest first.
func (s *SummaryService) Compare(ctx context.Context, userID string, month, year, months int) ([]MonthSpend, error) {
	if months < 1 {
		return nil, &core.ValidationError{Field: "months", Reason: "must be at least 1"}
	}

	spends := make([]MonthSpend, 0, months)
	m, y := month, year
	for i := 0; i < months; i++ {
		total, err := s.repo.SumExpenses(ctx, userID, m, y)
		if err != nil {
			return nil, err
		}
		spends = append(spends, MonthSpend{Month: m, Year: y, Total: total})
		m--
		if m == 0 {
			m = 12
			y--
		}
	}

	// Reverse into chronological order.
	for i, j := 0, len(spends)-1; i < j; i, j = i+1, j-1 {
		spends[i], spends[j] = spends[j], spends[i]
	}
	return spends, nil
}
