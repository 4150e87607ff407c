package core

import (
	"strconv"
	"strings"
	"time"
)

// TaskCategory tags a financial task with the preference that produced it.
type TaskCategory string

const (
	TaskLoan      TaskCategory = "loan"
	TaskCredit    TaskCategory = "credit"
	TaskHousing   TaskCategory = "housing"
	TaskUtilities TaskCategory = "utilities"
	TaskSavings   TaskCategory = "savings"
	TaskCustom    TaskCategory = "custom"
)

// TransactionSource records how a transaction entered the ledger.
type TransactionSource string

const (
	SourceManual   TransactionSource = "manual"
	SourceProvider TransactionSource = "plaid"
)

// DefaultCategory is used when an expense or transaction carries no category.
const DefaultCategory = "Other"

type (
	Date struct {
		time.Time
	}

	// Expense is a single spending record owned by one user. Month and
	// Year are derived from Date at write time and act as the budget
	// partition key.
	Expense struct {
		ID       string
		UserID   string
		Name     string
		Amount   Money
		Category string
		Date     Date
		Note     string
		Month    int // 1-12, derived from Date
		Year     int // derived from Date
	}

	// BudgetAggregate is the single summary record for one
	// (user, month, year) partition. Spent must equal the sum of the
	// partition's expense amounts; Remaining is always Budget - Spent.
	BudgetAggregate struct {
		DocKey    string // {userID}_{month}-{year}
		UserID    string
		Month     int
		Year      int
		Budget    Money
		Spent     Money
		Remaining Money
	}

	// SavingsGoal tracks progress toward a target amount. Celebrated is
	// a one-shot latch: once set it is never cleared, so a goal can only
	// celebrate completion once.
	SavingsGoal struct {
		ID              string
		UserID          string
		Name            string
		Saved           Money
		Target          Money
		PercentComplete int // round(saved/target*100), not clamped
		Celebrated      bool
	}

	// FinancialTask is a monthly to-do derived from profile preferences
	// or entered by hand (category "custom").
	FinancialTask struct {
		ID        string
		UserID    string
		Task      string
		Completed bool
		Month     int
		Year      int
		DueDate   Date
		Category  TaskCategory
	}

	// Transaction is a signed ledger entry. Expenses are negative cents
	// and income positive, for both manual entries and provider imports.
	Transaction struct {
		ID        string // provider transaction id for imports, uuid for manual
		UserID    string
		Name      string
		Amount    Money // signed
		Date      Date
		Category  string
		Source    TransactionSource
		Pending   bool
		Recurring bool
		Frequency string
	}

	// UtilityBills flags which utility payment reminders a user wants.
	UtilityBills struct {
		Electricity bool `json:"electricity"`
		Internet    bool `json:"internet"`
		Water       bool `json:"water"`
		Gas         bool `json:"gas"`
	}

	// Profile holds a user's onboarding answers. It seeds new budget
	// aggregates and drives financial task generation.
	Profile struct {
		UserID            string
		MonthlyIncome     Money
		MonthlyBudget     Money
		HasHomeLoan       bool
		HomeLoanAmount    Money
		PaysRent          bool
		CreditCards       []string
		UtilityBills      UtilityBills
		ExpenseCategories []string
		SavingsReminder   bool
		SavingsGoal       Money
	}
)

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Partition returns the (month, year) budget partition the date falls in.
func (d Date) Partition() (month, year int) {
	return int(d.Time.Month()), d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return &ValidationError{Field: "date", Reason: "date is required"}
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return &ValidationError{Field: "userId", Reason: "owner is required"}
	}
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if len(e.Name) > 200 {
		return &ValidationError{Field: "name", Reason: "name too long (max 200 characters)"}
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount.Cents <= 0 {
		return &ValidationError{Field: "amount", Reason: "amount must be positive"}
	}
	month, year := e.Date.Partition()
	if e.Month != month || e.Year != year {
		return &ValidationError{Field: "date", Reason: "month/year do not match date"}
	}
	return nil
}

// PercentSpent derives the share of the budget consumed, rounded to the
// nearest integer. A zero budget yields 0 rather than dividing by zero.
func (b BudgetAggregate) PercentSpent() int {
	return Percent(b.Spent.Cents, b.Budget.Cents)
}

// BudgetDocKey builds the deterministic aggregate key used by the store,
// mirroring the {userID}_{month}-{year} document ids of the original data.
func BudgetDocKey(userID string, month, year int) string {
	return userID + "_" + strconv.Itoa(month) + "-" + strconv.Itoa(year)
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return &ValidationError{Field: "userId", Reason: "owner is required"}
	}
	if strings.TrimSpace(g.Name) == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if g.Target.Cents <= 0 {
		return &ValidationError{Field: "target", Reason: "target must be positive"}
	}
	if g.Saved.Cents < 0 {
		return &ValidationError{Field: "saved", Reason: "saved cannot be negative"}
	}
	return nil
}

func (t FinancialTask) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return &ValidationError{Field: "userId", Reason: "owner is required"}
	}
	if strings.TrimSpace(t.Task) == "" {
		return &ValidationError{Field: "task", Reason: "task description is required"}
	}
	return nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return &ValidationError{Field: "userId", Reason: "owner is required"}
	}
	if p.MonthlyIncome.Cents < 0 {
		return &ValidationError{Field: "monthlyIncome", Reason: "income cannot be negative"}
	}
	if p.MonthlyBudget.Cents < 0 {
		return &ValidationError{Field: "monthlyBudget", Reason: "budget cannot be negative"}
	}
	if p.HasHomeLoan && p.HomeLoanAmount.Cents <= 0 {
		return &ValidationError{Field: "homeLoanAmount", Reason: "loan amount must be positive"}
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return &ValidationError{Field: "userId", Reason: "owner is required"}
	}
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if t.Amount.Cents == 0 {
		return &ValidationError{Field: "amount", Reason: "amount cannot be zero"}
	}
	return t.Date.Validate()
}
