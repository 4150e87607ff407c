package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"digitwin/internal/core"
)

type expenseRequest struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Note     string          `json:"note"`
}

func (r expenseRequest) toExpense(userID string) (core.Expense, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	return core.Expense{
		UserID:   userID,
		Name:     r.Name,
		Amount:   core.MoneyFromDecimal(r.Amount),
		Category: r.Category,
		Date:     core.Date{Time: date},
		Note:     r.Note,
	}, nil
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	e, err := req.toExpense(s.userID(c))
	if err != nil {
		s.abortError(c, err)
		return
	}

	recorded, err := s.svc.Expenses.Record(c.Request.Context(), e)
	if err != nil {
		s.abortError(c, err)
		return
	}

	s.invalidateSummary(recorded.UserID, recorded.Month, recorded.Year)
	c.JSON(http.StatusCreated, expenseJSON(recorded))
}

func (s *Server) handleListExpenses(c *gin.Context) {
	month, year, err := partitionQuery(c)
	if err != nil {
		s.abortError(c, err)
		return
	}

	expenses, err := s.svc.Expenses.List(c.Request.Context(), s.userID(c), month, year)
	if err != nil {
		s.abortError(c, err)
		return
	}

	out := make([]gin.H, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseJSON(e))
	}
	c.JSON(http.StatusOK, gin.H{"expenses": out})
}

func (s *Server) handleUpdateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	e, err := req.toExpense(s.userID(c))
	if err != nil {
		s.abortError(c, err)
		return
	}
	e.ID = c.Param("id")

	old, err := s.svc.Expenses.Get(c.Request.Context(), e.UserID, e.ID)
	if err != nil {
		s.abortError(c, err)
		return
	}

	updated, err := s.svc.Expenses.Update(c.Request.Context(), e)
	if err != nil {
		s.abortError(c, err)
		return
	}

	s.invalidateSummary(updated.UserID, updated.Month, updated.Year)
	s.invalidateSummary(old.UserID, old.Month, old.Year)
	c.JSON(http.StatusOK, expenseJSON(updated))
}

func (s *Server) handleDeleteExpense(c *gin.Context) {
	userID := s.userID(c)
	id := c.Param("id")

	old, err := s.svc.Expenses.Get(c.Request.Context(), userID, id)
	if err != nil {
		s.abortError(c, err)
		return
	}

	if err := s.svc.Expenses.Delete(c.Request.Context(), userID, id); err != nil {
		s.abortError(c, err)
		return
	}

	s.invalidateSummary(userID, old.Month, old.Year)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetBudget(c *gin.Context) {
	month, year, err := partitionParams(c)
	if err != nil {
		s.abortError(c, err)
		return
	}

	b, err := s.svc.Budgets.GetOrCreate(c.Request.Context(), s.userID(c), month, year)
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgetJSON(b))
}

func (s *Server) handleRecomputeBudget(c *gin.Context) {
	month, year, err := partitionParams(c)
	if err != nil {
		s.abortError(c, err)
		return
	}

	b, err := s.svc.Budgets.Recompute(c.Request.Context(), s.userID(c), month, year)
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgetJSON(b))
}

func summaryCacheKey(userID string, month, year int) string {
	return userID + ":" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (s *Server) invalidateSummary(userID string, month, year int) {
	s.summaryCache.Delete(summaryCacheKey(userID, month, year))
}

func (s *Server) handleGetSummary(c *gin.Context) {
	month, year, err := partitionParams(c)
	if err != nil {
		s.abortError(c, err)
		return
	}
	userID := s.userID(c)

	key := summaryCacheKey(userID, month, year)
	totals, ok := s.summaryCache.Get(key)
	if !ok {
		totals, err = s.svc.Summaries.ByCategory(c.Request.Context(), userID, month, year)
		if err != nil {
			s.abortError(c, err)
			return
		}
		s.summaryCache.Set(key, totals)
	}

	c.JSON(http.StatusOK, gin.H{
		"month":      month,
		"year":       year,
		"categories": categoryTotalsJSON(totals),
	})
}

func (s *Server) handleCompareSummary(c *gin.Context) {
	months := 3
	if v := c.Query("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 24 {
			s.abortError(c, &core.ValidationError{Field: "months", Reason: "must be between 1 and 24"})
			return
		}
		months = parsed
	}

	now := time.Now()
	spends, err := s.svc.Summaries.Compare(c.Request.Context(), s.userID(c), int(now.Month()), now.Year(), months)
	if err != nil {
		s.abortError(c, err)
		return
	}

	out := make([]gin.H, 0, len(spends))
	for _, sp := range spends {
		out = append(out, gin.H{
			"month": sp.Month,
			"year":  sp.Year,
			"total": sp.Total.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"months": out})
}
