package domain

import "time"

// ModelType identifies one of the three predictive scorers
type ModelType string

const (
	ModelCLV   ModelType = "clv"
	ModelChurn ModelType = "churn"
	ModelLead  ModelType = "lead"
)

// ValidModelType reports whether s names a known model type
func ValidModelType(s string) bool {
	switch ModelType(s) {
	case ModelCLV, ModelChurn, ModelLead:
		return true
	}
	return false
}

// Prediction is one scoring result for one customer, appended for audit
type Prediction struct {
	PredictionID string    `ch:"prediction_id"`
	CustomerID   string    `ch:"customer_id"`
	ModelType    string    `ch:"model_type"`
	ModelVersion string    `ch:"model_version"`
	Value        float64   `ch:"value"`
	ProducedAt   time.Time `ch:"produced_at"`
}

// AttributionResult is the credit allocated to one touchpoint under one
// attribution model. Credits for a (conversion, model) pair sum to the
// conversion's revenue amount.
type AttributionResult struct {
	ConversionID    string    `ch:"conversion_id"`
	TouchpointID    string    `ch:"touchpoint_id"`
	ModelName       string    `ch:"model_name"`
	CreditedRevenue float64   `ch:"credited_revenue"`
	Fallback        bool      `ch:"fallback"`
	ComputedAt      time.Time `ch:"computed_at"`
}
