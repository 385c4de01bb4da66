// Standard attribute keys for estimator logging. Keys follow a dotted
// "category.name" convention so records can be filtered by prefix.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "DecisionTreeClassifier".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed ("fit", "predict", ...).
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record, e.g. "tree".
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase ("training", "inference").
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	// SamplesKey is the number of rows processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of attributes per row.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct class labels.
	ClassesKey = "data.classes"
)

// Model structure and results.
const (
	// TreeDepthKey is the depth of a fitted decision tree.
	TreeDepthKey = "tree.depth"

	// TreeLeavesKey is the number of leaves of a fitted decision tree.
	TreeLeavesKey = "tree.leaves"

	// SelectedFeatureKey is the attribute chosen by a single-rule learner.
	SelectedFeatureKey = "rule.feature"

	// DefaultClassKey is the global majority label used as fallback.
	DefaultClassKey = "model.default_class"

	// NeighborsKey is the effective number of neighbors used by kNN.
	NeighborsKey = "neighbors.k"

	// AccuracyKey records accuracy in [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"

	// FallbacksKey counts predictions resolved by the default class.
	FallbacksKey = "preds.fallbacks"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrorCodeKey provides a structured error code, e.g. "NOT_FITTED".
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the problem.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
)
