package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"insufficient_history"`
	Message string `json:"message,omitempty" example:"insufficient history for customer cust_123"`
}

// PublishRecordResponse represents a successful ingestion response
type PublishRecordResponse struct {
	RecordID string `json:"record_id" example:"evt_1a2b3c4d5e6f"`
	Status   string `json:"status" example:"accepted"`
}

// PublishBulkEventsResponse represents a successful bulk ingestion response
type PublishBulkEventsResponse struct {
	Accepted int      `json:"accepted" example:"5"`
	Rejected int      `json:"rejected" example:"0"`
	EventIDs []string `json:"event_ids,omitempty" example:"evt_1,evt_2,evt_3"`
	Errors   []string `json:"errors,omitempty" example:"validation error on event 3"`
}

// ScoreResponse represents one scoring result
type ScoreResponse struct {
	CustomerID   string  `json:"customer_id" example:"cust_123"`
	Model        string  `json:"model" example:"churn"`
	Value        float64 `json:"value" example:"0.42"`
	ModelVersion string  `json:"model_version" example:"churn-20250810-a1b2c3"`
	ProducedAt   int64   `json:"produced_at" example:"1723475612"`
}

// AttributionCredit represents one touchpoint's credit under one model
type AttributionCredit struct {
	TouchpointID    string  `json:"touchpoint_id" example:"tp_1"`
	ModelName       string  `json:"model_name" example:"position_based"`
	CreditedRevenue float64 `json:"credited_revenue" example:"120"`
	Fallback        bool    `json:"fallback,omitempty" example:"false"`
}

// AttributionResponse represents the attribution of one conversion under
// all supported models
type AttributionResponse struct {
	ConversionID  string              `json:"conversion_id" example:"conv_42"`
	RevenueAmount float64             `json:"revenue_amount" example:"300"`
	Credits       []AttributionCredit `json:"credits"`
}

// AnomalyPoint represents one checked point of a metric series
type AnomalyPoint struct {
	Timestamp   int64   `json:"timestamp" example:"1723475612"`
	Value       float64 `json:"value" example:"57"`
	ZScore      float64 `json:"z_score" example:"3.8"`
	IsAnomalous bool    `json:"is_anomalous" example:"true"`
}

// GetAnomaliesResponse represents the anomaly query response
type GetAnomaliesResponse struct {
	MetricName string         `json:"metric_name" example:"daily_conversions"`
	Window     int            `json:"window" example:"30"`
	Flags      []AnomalyPoint `json:"flags"`
}

// RetrainResponse represents the outcome of a retrain request
type RetrainResponse struct {
	Status            string             `json:"status" example:"promoted"`
	NewVersion        string             `json:"new_version,omitempty" example:"churn-20250810-a1b2c3"`
	ValidationMetrics map[string]float64 `json:"validation_metrics,omitempty"`
}
