package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"digitwin/internal/core"
)

type goalRequest struct {
	Name   string          `json:"name"`
	Saved  decimal.Decimal `json:"saved"`
	Target decimal.Decimal `json:"target"`
}

func (r goalRequest) toGoal(userID string) core.SavingsGoal {
	return core.SavingsGoal{
		UserID: userID,
		Name:   r.Name,
		Saved:  core.MoneyFromDecimal(r.Saved),
		Target: core.MoneyFromDecimal(r.Target),
	}
}

func (s *Server) handleCreateGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	g, err := s.svc.Goals.Create(c.Request.Context(), req.toGoal(s.userID(c)))
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goalJSON(g))
}

func (s *Server) handleListGoals(c *gin.Context) {
	goals, err := s.svc.Goals.List(c.Request.Context(), s.userID(c))
	if err != nil {
		s.abortError(c, err)
		return
	}

	out := make([]gin.H, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalJSON(g))
	}
	c.JSON(http.StatusOK, gin.H{"goals": out})
}

// goalUpdateRequest uses pointers so clients can send only the fields
// they are changing; absent fields keep their stored values.
type goalUpdateRequest struct {
	Name   *string          `json:"name"`
	Saved  *decimal.Decimal `json:"saved"`
	Target *decimal.Decimal `json:"target"`
}

func (s *Server) handleUpdateGoal(c *gin.Context) {
	var req goalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	g, err := s.svc.Goals.Get(c.Request.Context(), s.userID(c), c.Param("id"))
	if err != nil {
		s.abortError(c, err)
		return
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Saved != nil {
		g.Saved = core.MoneyFromDecimal(*req.Saved)
	}
	if req.Target != nil {
		g.Target = core.MoneyFromDecimal(*req.Target)
	}

	updated, err := s.svc.Goals.Update(c.Request.Context(), g)
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, goalJSON(updated))
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	if err := s.svc.Goals.Delete(c.Request.Context(), s.userID(c), c.Param("id"), req.Reason); err != nil {
		s.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type taskRequest struct {
	Task    string `json:"task"`
	DueDate string `json:"dueDate"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	task := core.FinancialTask{
		UserID: s.userID(c),
		Task:   req.Task,
	}
	if req.DueDate != "" {
		date, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			s.abortError(c, &core.ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"})
			return
		}
		task.DueDate = core.Date{Time: date}
	}

	created, err := s.svc.Tasks.CreateCustom(c.Request.Context(), task)
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskJSON(created))
}

func (s *Server) handleListTasks(c *gin.Context) {
	month, year, err := partitionQuery(c)
	if err != nil {
		s.abortError(c, err)
		return
	}

	tasks, err := s.svc.Tasks.List(c.Request.Context(), s.userID(c), month, year)
	if err != nil {
		s.abortError(c, err)
		return
	}

	out := make([]gin.H, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskJSON(t))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	var req struct {
		Completed *bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	if err := s.svc.Tasks.SetCompleted(c.Request.Context(), s.userID(c), c.Param("id"), completed); err != nil {
		s.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.svc.Tasks.Delete(c.Request.Context(), s.userID(c), c.Param("id")); err != nil {
		s.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRegenerateTasks(c *gin.Context) {
	month, year, err := partitionQuery(c)
	if err != nil {
		s.abortError(c, err)
		return
	}

	if err := s.svc.Tasks.Regenerate(c.Request.Context(), s.userID(c), month, year); err != nil {
		s.abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
