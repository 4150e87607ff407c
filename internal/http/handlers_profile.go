package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"digitwin/internal/core"
)

type profileRequest struct {
	MonthlyIncome     decimal.Decimal   `json:"monthlyIncome"`
	MonthlyBudget     decimal.Decimal   `json:"monthlyBudget"`
	HasHomeLoan       bool              `json:"hasHomeLoan"`
	HomeLoanAmount    decimal.Decimal   `json:"homeLoanAmount"`
	PaysRent          bool              `json:"paysRent"`
	CreditCards       []string          `json:"creditCards"`
	UtilityBills      core.UtilityBills `json:"utilityBills"`
	ExpenseCategories []string          `json:"expenseCategories"`
	SavingsReminder   bool              `json:"savingsReminder"`
	SavingsGoal       decimal.Decimal   `json:"savingsGoal"`
}

func profileJSON(p core.Profile) gin.H {
	return gin.H{
		"monthlyIncome":     p.MonthlyIncome.String(),
		"monthlyBudget":     p.MonthlyBudget.String(),
		"hasHomeLoan":       p.HasHomeLoan,
		"homeLoanAmount":    p.HomeLoanAmount.String(),
		"paysRent":          p.PaysRent,
		"creditCards":       p.CreditCards,
		"utilityBills":      p.UtilityBills,
		"expenseCategories": p.ExpenseCategories,
		"savingsReminder":   p.SavingsReminder,
		"savingsGoal":       p.SavingsGoal.String(),
	}
}

func (s *Server) handleGetProfile(c *gin.Context) {
	p, err := s.svc.Profiles.Get(c.Request.Context(), s.userID(c))
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileJSON(p))
}

func (s *Server) handleSaveProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	p := core.Profile{
		UserID:            s.userID(c),
		MonthlyIncome:     core.MoneyFromDecimal(req.MonthlyIncome),
		MonthlyBudget:     core.MoneyFromDecimal(req.MonthlyBudget),
		HasHomeLoan:       req.HasHomeLoan,
		HomeLoanAmount:    core.MoneyFromDecimal(req.HomeLoanAmount),
		PaysRent:          req.PaysRent,
		CreditCards:       req.CreditCards,
		UtilityBills:      req.UtilityBills,
		ExpenseCategories: req.ExpenseCategories,
		SavingsReminder:   req.SavingsReminder,
		SavingsGoal:       core.MoneyFromDecimal(req.SavingsGoal),
	}

	if err := s.svc.Profiles.Save(c.Request.Context(), p); err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileJSON(p))
}

type transactionRequest struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"` // "expense" or "income"
	Date      string          `json:"date"`
	Category  string          `json:"category"`
	Recurring bool            `json:"recurring"`
	Frequency string          `json:"frequency"`
}

func (s *Server) handleCreateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		s.abortError(c, &core.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"})
		return
	}

	// The type decides the sign: spending is stored negative, income
	// positive, regardless of how the client signed the amount.
	amount := core.MoneyFromDecimal(req.Amount.Abs())
	switch req.Type {
	case "expense":
		amount = amount.Neg()
	case "income":
	default:
		s.abortError(c, &core.ValidationError{Field: "type", Reason: "must be expense or income"})
		return
	}

	txn := core.Transaction{
		UserID:    s.userID(c),
		Name:      req.Name,
		Amount:    amount,
		Date:      core.Date{Time: date},
		Category:  req.Category,
		Recurring: req.Recurring,
		Frequency: req.Frequency,
	}

	created, err := s.svc.Imports.RecordManual(c.Request.Context(), txn)
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionJSON(created))
}

func (s *Server) handleListTransactions(c *gin.Context) {
	txns, err := s.svc.Imports.ListTransactions(c.Request.Context(), s.userID(c))
	if err != nil {
		s.abortError(c, err)
		return
	}

	out := make([]gin.H, 0, len(txns))
	for _, t := range txns {
		out = append(out, transactionJSON(t))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

func (s *Server) handleCreateLinkToken(c *gin.Context) {
	token, err := s.svc.Imports.CreateLinkToken(c.Request.Context(), s.userID(c))
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"linkToken": token})
}

func (s *Server) handleExchangeToken(c *gin.Context) {
	var req struct {
		PublicToken string `json:"publicToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PublicToken == "" {
		s.abortError(c, &core.ValidationError{Field: "publicToken", Reason: "public token is required"})
		return
	}

	itemID, err := s.svc.Imports.ExchangePublicToken(c.Request.Context(), s.userID(c), req.PublicToken)
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itemId": itemID})
}

func (s *Server) handleSyncTransactions(c *gin.Context) {
	count, err := s.svc.Imports.Sync(c.Request.Context(), s.userID(c))
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}
