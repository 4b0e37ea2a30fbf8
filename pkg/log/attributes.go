package log

// Standard attribute keys for churn-risk logging. Using these keys keeps
// log output filterable across the loader, trainer, and explanation paths.
const (
	// ComponentKey identifies the package or subsystem emitting the record.
	// Examples: "churn.predictor", "frame.loader"
	ComponentKey = "ml.component"

	// OperationKey names the operation in flight.
	// Standard values: "load", "fit", "predict", "explain"
	OperationKey = "ml.operation"

	// ModelNameKey identifies the model behind the facade.
	ModelNameKey = "model.name"

	// DatasetKey is the path of the dataset being processed.
	DatasetKey = "data.path"

	// RowsKey is the number of rows in the frame being processed.
	RowsKey = "data.rows"

	// ColumnsKey is the number of columns in the frame being processed.
	ColumnsKey = "data.columns"

	// FeaturesKey is the number of feature columns used for training.
	FeaturesKey = "data.features"

	// TargetKey is the target column name.
	TargetKey = "data.target"

	// AccuracyKey is the held-out validation accuracy after training.
	AccuracyKey = "metric.accuracy"

	// DurationMsKey is the elapsed wall time of an operation in milliseconds.
	DurationMsKey = "duration_ms"
)
