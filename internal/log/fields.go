package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldMonth      = "month"
	FieldYear       = "year"
	FieldExpenseID  = "expense_id"
	FieldGoalID     = "goal_id"
	FieldTaskID     = "task_id"
	FieldItemID     = "item_id"
	FieldCategory   = "category"
	FieldAmount     = "amount_cents"
	FieldCount      = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentExpense = "expense"
	ComponentBudget  = "budget"
	ComponentSummary = "summary"
	ComponentGoal    = "goal"
	ComponentTask    = "task"
	ComponentProfile = "profile"
	ComponentImport  = "import"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentPlaid   = "plaid"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpRecompute = "recompute"
	OpImport    = "import"
	OpRebuild   = "rebuild"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
