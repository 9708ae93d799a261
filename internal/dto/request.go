package dto

// PublishEventRequest represents a publish event request
type PublishEventRequest struct {
	CustomerID string                 `json:"customer_id" binding:"required" example:"cust_123"`
	EventType  string                 `json:"event_type" binding:"required" example:"purchase"`
	Channel    string                 `json:"channel" binding:"required" example:"web"`
	CampaignID string                 `json:"campaign_id" example:"cmp_987"`
	Timestamp  int64                  `json:"timestamp" binding:"required" example:"1723475612"`
	Value      *float64               `json:"value" example:"129.99"`
	Metadata   map[string]interface{} `json:"metadata" swaggertype:"object,string" example:"product_id:prod-789"`
}

// PublishEventsBulkRequest represents a publish bulk event request
type PublishEventsBulkRequest struct {
	Events []PublishEventRequest `json:"events" binding:"required,min=1,max=1000,dive"`
}

// PublishTouchpointRequest represents a publish touchpoint request
type PublishTouchpointRequest struct {
	CustomerID string `json:"customer_id" binding:"required" example:"cust_123"`
	Channel    string `json:"channel" binding:"required" example:"email"`
	CampaignID string `json:"campaign_id" example:"cmp_987"`
	OccurredAt int64  `json:"occurred_at" binding:"required" example:"1723475612"`
}

// PublishConversionRequest represents a publish conversion request
type PublishConversionRequest struct {
	CustomerID    string  `json:"customer_id" binding:"required" example:"cust_123"`
	RevenueAmount float64 `json:"revenue_amount" binding:"required,gt=0" example:"300"`
	OccurredAt    int64   `json:"occurred_at" binding:"required" example:"1723475612"`
	WindowStart   int64   `json:"window_start" example:"1720883612"`
}

// GetScoreRequest represents a score query request
type GetScoreRequest struct {
	Model   string `form:"model" binding:"required" example:"churn"`
	Version string `form:"version" example:"churn-20250810-a1b2c3"`
}

// GetAnomaliesRequest represents an anomaly query request
type GetAnomaliesRequest struct {
	Window int `form:"window" example:"30"`
}
