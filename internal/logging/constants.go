package logging

// Standardized field names for structured logging.
const (
	FieldFile        = "file_path"
	FieldCategory    = "category"
	FieldSource      = "source"
	FieldReason      = "reason"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldDelimiter   = "delimiter"
	FieldRow         = "row"
	FieldProvider    = "provider"
	FieldModel       = "model"
	FieldStrategy    = "strategy"
	FieldGoalID      = "goal_id"
	FieldDescription = "description"
	FieldQuery       = "query"
	FieldMethod      = "method"
	FieldPath        = "path"
)
