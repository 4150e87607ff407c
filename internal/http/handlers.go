package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"digitwin/internal/core"
	"digitwin/internal/log"
)

const dateLayout = "2006-01-02"

// abortError maps domain errors onto status codes: validation 400,
// missing auth 401, not found 404, provider failures 502.
func (s *Server) abortError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var (
		validation *core.ValidationError
		notFound   *core.NotFoundError
		provider   *core.ProviderError
	)
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrAuthRequired):
		status = http.StatusUnauthorized
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &provider):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			log.FieldPath, c.Request.URL.Path,
			log.FieldError, err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// partitionParams reads :year/:month path segments.
func partitionParams(c *gin.Context) (month, year int, err error) {
	year, err = strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, &core.ValidationError{Field: "year", Reason: "invalid year"}
	}
	month, err = strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, &core.ValidationError{Field: "month", Reason: "invalid month"}
	}
	return month, year, nil
}

// partitionQuery reads month/year query params, defaulting to now.
func partitionQuery(c *gin.Context) (month, year int, err error) {
	now := time.Now()
	month, year = int(now.Month()), now.Year()

	if v := c.Query("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, &core.ValidationError{Field: "month", Reason: "invalid month"}
		}
	}
	if v := c.Query("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 1970 || year > 9999 {
			return 0, 0, &core.ValidationError{Field: "year", Reason: "invalid year"}
		}
	}
	return month, year, nil
}

func expenseJSON(e core.Expense) gin.H {
	return gin.H{
		"id":       e.ID,
		"name":     e.Name,
		"amount":   e.Amount.String(),
		"category": e.Category,
		"date":     e.Date.Format(dateLayout),
		"note":     e.Note,
		"month":    e.Month,
		"year":     e.Year,
	}
}

func budgetJSON(b core.BudgetAggregate) gin.H {
	return gin.H{
		"month":        b.Month,
		"year":         b.Year,
		"budget":       b.Budget.String(),
		"spent":        b.Spent.String(),
		"remaining":    b.Remaining.String(),
		"percentSpent": b.PercentSpent(),
	}
}

func goalJSON(g core.SavingsGoal) gin.H {
	return gin.H{
		"id":              g.ID,
		"name":            g.Name,
		"saved":           g.Saved.String(),
		"target":          g.Target.String(),
		"percentComplete": g.PercentComplete,
		"celebrated":      g.Celebrated,
	}
}

func taskJSON(t core.FinancialTask) gin.H {
	due := ""
	if !t.DueDate.IsZero() {
		due = t.DueDate.Format(dateLayout)
	}
	return gin.H{
		"id":        t.ID,
		"task":      t.Task,
		"completed": t.Completed,
		"month":     t.Month,
		"year":      t.Year,
		"dueDate":   due,
		"category":  string(t.Category),
	}
}

func transactionJSON(t core.Transaction) gin.H {
	return gin.H{
		"id":        t.ID,
		"name":      t.Name,
		"amount":    t.Amount.String(),
		"date":      t.Date.Format(dateLayout),
		"category":  t.Category,
		"source":    string(t.Source),
		"pending":   t.Pending,
		"recurring": t.Recurring,
		"frequency": t.Frequency,
	}
}

func categoryTotalsJSON(totals []core.CategoryTotal) []gin.H {
	out := make([]gin.H, 0, len(totals))
	for _, ct := range totals {
		out = append(out, gin.H{
			"category": ct.Category,
			"total":    ct.Total.String(),
			"color":    ct.Color,
		})
	}
	return out
}
