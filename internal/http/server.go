// Package http exposes the JSON API. Every /api route requires a bearer
// token; the handlers only ever see the authenticated user's data.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"digitwin/internal/cache"
	"digitwin/internal/config"
	"digitwin/internal/core"
	"digitwin/internal/log"
	"digitwin/internal/middleware/ratelimit"
	"digitwin/internal/services"
)

const (
	summaryCacheSize = 512
	summaryCacheTTL  = 5 * time.Minute
)

// Services bundles everything the handlers call into.
type Services struct {
	Expenses  *services.ExpenseService
	Budgets   *services.BudgetService
	Summaries *services.SummaryService
	Goals     *services.GoalService
	Tasks     *services.TaskService
	Profiles  *services.ProfileService
	Imports   *services.ImportService
}

type Server struct {
	engine       *gin.Engine
	httpServer   *http.Server
	cfg          *config.Config
	logger       *log.Logger
	svc          Services
	summaryCache *cache.LRUCache[[]core.CategoryTotal]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
}

func NewServer(cfg *config.Config, svc Services, logger *log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:       engine,
		cfg:          cfg,
		logger:       logger.WithComponent(log.ComponentHTTP),
		svc:          svc,
		summaryCache: cache.NewLRUCache[[]core.CategoryTotal](summaryCacheSize, summaryCacheTTL),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(summaryCacheTTL)

	engine.Use(s.requestTrace())
	engine.Use(s.securityHeaders())
	engine.Use(s.rateLimit())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealthz)

	api := s.engine.Group("/api")
	api.Use(s.requireAuth())

	api.POST("/expenses", s.handleCreateExpense)
	api.GET("/expenses", s.handleListExpenses)
	api.PUT("/expenses/:id", s.handleUpdateExpense)
	api.DELETE("/expenses/:id", s.handleDeleteExpense)

	api.GET("/budgets/:year/:month", s.handleGetBudget)
	api.POST("/budgets/:year/:month/recompute", s.handleRecomputeBudget)

	api.GET("/summary/compare", s.handleCompareSummary)
	api.GET("/summary/:year/:month", s.handleGetSummary)

	api.POST("/goals", s.handleCreateGoal)
	api.GET("/goals", s.handleListGoals)
	api.PUT("/goals/:id", s.handleUpdateGoal)
	api.DELETE("/goals/:id", s.handleDeleteGoal)

	api.GET("/tasks", s.handleListTasks)
	api.POST("/tasks", s.handleCreateTask)
	api.PATCH("/tasks/:id/complete", s.handleCompleteTask)
	api.DELETE("/tasks/:id", s.handleDeleteTask)
	api.POST("/tasks/regenerate", s.handleRegenerateTasks)

	api.GET("/profile", s.handleGetProfile)
	api.PUT("/profile", s.handleSaveProfile)

	api.GET("/transactions", s.handleListTransactions)
	api.POST("/transactions", s.handleCreateTransaction)

	api.POST("/plaid/create-link-token", s.handleCreateLinkToken)
	api.POST("/plaid/exchange-token", s.handleExchangeToken)
	api.POST("/plaid/sync-transactions", s.handleSyncTransactions)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.cacheManager.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
