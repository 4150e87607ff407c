package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/storage"
)

// Due days for generated tasks, fixed per bill kind.
const (
	rentDueDay    = 1
	loanDueDay    = 5
	creditDueDay  = 15
	savingsDueDay = 25
)

var utilityDueDays = struct {
	electricity, internet, water, gas int
}{20, 22, 25, 28}

// TaskService maintains each user's monthly financial to-dos. Generated
// tasks are derived from profile preferences and rebuilt wholesale on
// every regeneration; hand-entered custom tasks survive rebuilds.
type TaskService struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewTaskService(repo *storage.Repository, logger *log.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentTask),
	}
}

// Regenerate replaces the month's generated tasks with a fresh set
// derived from the user's current profile. Users without a profile get
// their generated tasks cleared.
func (s *TaskService) Regenerate(ctx context.Context, userID string, month, year int) error {
	var tasks []core.FinancialTask

	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil && !core.IsNotFound(err) {
		return err
	}
	if err == nil {
		tasks = generateTasks(p, month, year)
	}

	if err := s.repo.ReplaceGeneratedTasks(ctx, userID, month, year, tasks); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "regenerated financial tasks",
		log.FieldUserID, userID,
		log.FieldMonth, month,
		log.FieldYear, year,
		log.FieldCount, len(tasks))

	return nil
}

func generateTasks(p core.Profile, month, year int) []core.FinancialTask {
	var tasks []core.FinancialTask

	add := func(task string, day int, category core.TaskCategory) {
		tasks = append(tasks, core.FinancialTask{
			ID:       uuid.NewString(),
			UserID:   p.UserID,
			Task:     task,
			Month:    month,
			Year:     year,
			DueDate:  core.NewDate(year, month, day),
			Category: category,
		})
	}

	if p.PaysRent {
		add("Pay rent", rentDueDay, core.TaskHousing)
	}
	if p.HasHomeLoan {
		add("Pay home loan EMI", loanDueDay, core.TaskLoan)
	}
	for _, card := range p.CreditCards {
		add(fmt.Sprintf("Pay %s credit card bill", card), creditDueDay, core.TaskCredit)
	}
	if p.UtilityBills.Electricity {
		add("Pay electricity bill", utilityDueDays.electricity, core.TaskUtilities)
	}
	if p.UtilityBills.Internet {
		add("Pay internet bill", utilityDueDays.internet, core.TaskUtilities)
	}
	if p.UtilityBills.Water {
		add("Pay water bill", utilityDueDays.water, core.TaskUtilities)
	}
	if p.UtilityBills.Gas {
		add("Pay gas bill", utilityDueDays.gas, core.TaskUtilities)
	}
	if p.SavingsReminder {
		add("Transfer to savings", savingsDueDay, core.TaskSavings)
	}

	return tasks
}

// CreateCustom adds a hand-entered task. Custom tasks always carry the
// custom category so regeneration leaves them alone.
func (s *TaskService) CreateCustom(ctx context.Context, t core.FinancialTask) (core.FinancialTask, error) {
	t.ID = uuid.NewString()
	t.Category = core.TaskCustom
	if !t.DueDate.IsZero() {
		t.Month, t.Year = t.DueDate.Partition()
	}
	if err := t.Validate(); err != nil {
		return core.FinancialTask{}, err
	}
	if t.Month < 1 || t.Month > 12 || t.Year == 0 {
		return core.FinancialTask{}, &core.ValidationError{Field: "month", Reason: "a due date or month/year is required"}
	}

	if err := s.repo.InsertTask(ctx, t); err != nil {
		return core.FinancialTask{}, err
	}

	s.logger.InfoContext(ctx, "created custom task",
		log.FieldUserID, t.UserID,
		log.FieldTaskID, t.ID)

	return t, nil
}

func (s *TaskService) SetCompleted(ctx context.Context, userID, id string, completed bool) error {
	return s.repo.SetTaskCompleted(ctx, userID, id, completed)
}

func (s *TaskService) List(ctx context.Context, userID string, month, year int) ([]core.FinancialTask, error) {
	return s.repo.ListTasks(ctx, userID, month, year)
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteTask(ctx, userID, id)
}
