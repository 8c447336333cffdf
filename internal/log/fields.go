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

	FieldYear        = "year"
	FieldMonth       = "month"
	FieldMemberID    = "member_id"
	FieldExpenseID   = "expense_id"
	FieldGoalID      = "goal_id"
	FieldAmountCents = "amount_cents"
	FieldSplitType   = "split_type"
	FieldCategory    = "category"
	FieldSettlement  = "settlement"
	FieldCacheKey    = "cache_key"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentSavings   = "savings"
	ComponentStatus    = "status"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpDelete     = "delete"
	OpList       = "list"
	OpContribute = "contribute"
	OpRecompute  = "recompute"
	OpSeed       = "seed"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)
