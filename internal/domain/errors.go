package domain

import "fmt"

// InsufficientHistoryError is returned when a customer has no recorded
// events before the requested cutoff. Callers must apply their own
// cold-start handling instead of scoring.
type InsufficientHistoryError struct {
	CustomerID string
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history for customer %s", e.CustomerID)
}

// SchemaMismatchError is returned when a feature vector's schema version
// does not match the schema a model artifact was trained on. It indicates
// a deployment skew and is never coerced.
type SchemaMismatchError struct {
	Expected string
	Got      string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature schema mismatch: model trained on %s, vector is %s", e.Expected, e.Got)
}

// EmptyPathError is returned when a conversion has no touchpoints inside
// its attribution window.
type EmptyPathError struct {
	ConversionID string
}

func (e *EmptyPathError) Error() string {
	return fmt.Sprintf("no touchpoints in attribution window for conversion %s", e.ConversionID)
}

// RetrainInProgressError is returned when a retrain is requested while the
// model type is already training.
type RetrainInProgressError struct {
	ModelType ModelType
}

func (e *RetrainInProgressError) Error() string {
	return fmt.Sprintf("retrain already in progress for %s", e.ModelType)
}

// ConversionNotFoundError is returned when an attribution request names a
// conversion id that was never ingested.
type ConversionNotFoundError struct {
	ConversionID string
}

func (e *ConversionNotFoundError) Error() string {
	return fmt.Sprintf("conversion %s not found", e.ConversionID)
}

// ValidationThresholdNotMetError is returned when a freshly trained model
// fails its promotion gate. The previously active model stays in place.
type ValidationThresholdNotMetError struct {
	ModelType ModelType
	Metric    string
	Value     float64
	Threshold float64
}

func (e *ValidationThresholdNotMetError) Error() string {
	return fmt.Sprintf("%s validation %s=%.4f below threshold %.4f", e.ModelType, e.Metric, e.Value, e.Threshold)
}

// NoActiveModelError is returned when scoring is requested before any
// artifact has been promoted for the model type.
type NoActiveModelError struct {
	ModelType ModelType
}

func (e *NoActiveModelError) Error() string {
	return fmt.Sprintf("no active model for type %s", e.ModelType)
}

// UnknownModelError is returned for an unrecognized model or attribution
// model name.
type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model: %s", e.Name)
}
