// Package log defines standard attribute keys for inference operations.
//
// Using these keys keeps the registry, the case evaluator, and the CLI
// consistent, so log output can be filtered by model, operation, or case.
//
// The keys follow a hierarchical naming convention (e.g., "model.name",
// "case.line").

package log

// Model and Operation Context
const (
	// ModelNameKey is the human-readable model type name.
	// Examples: "Linear Regression", "Multi-Class Classifier (3 classes)"
	ModelNameKey = "model.name"

	// TypeIDKey is the registry identifier the model was created from.
	// Examples: "linear", "logistic", "multiclass", "mlp"
	TypeIDKey = "model.type_id"

	// ModelIDKey is the id of a model hosted by the server.
	ModelIDKey = "model.id"

	// ShapeKey is the construction-time shape passed to the registry.
	ShapeKey = "model.shape"

	// ParamCountKey is the shape-derived expected parameter count.
	ParamCountKey = "model.param_count"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	// Examples: "registry", "casefile", "cli"
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// InputSizeKey is the length of the input vector.
	InputSizeKey = "data.input_size"

	// OutputSizeKey is the length of the output vector.
	OutputSizeKey = "data.output_size"

	// CasesKey is the number of test cases processed.
	CasesKey = "data.cases"

	// SourceKey names the file or stream the data came from.
	SourceKey = "data.source"
)

// Case Evaluation
const (
	// CaseLineKey is the source line of a test case.
	CaseLineKey = "case.line"

	// PassedKey and FailedKey count evaluated cases.
	PassedKey = "case.passed"
	FailedKey = "case.failed"

	// SkippedKey counts malformed lines skipped while loading.
	SkippedKey = "case.skipped"

	// MaxAbsErrorKey is the largest absolute deviation from the expected output.
	MaxAbsErrorKey = "metrics.max_abs_error"

	// ToleranceKey is the accepted absolute deviation.
	ToleranceKey = "metrics.tolerance"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the problem.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationCreate        = "create"
	OperationSetParameters = "set_parameters"
	OperationForward       = "forward"
	OperationLoad          = "load"
	OperationEvaluate      = "evaluate"
	OperationDelete        = "delete"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorUnknownModelType  = "UNKNOWN_MODEL_TYPE"
	ErrorMalformedLine     = "MALFORMED_LINE"
	ErrorNumerical         = "NUMERICAL_INSTABILITY"
)
