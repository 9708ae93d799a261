package domain

import "time"

// RecordType discriminates ingestion records on the queue
type RecordType string

const (
	RecordEvent      RecordType = "event"
	RecordTouchpoint RecordType = "touchpoint"
	RecordConversion RecordType = "conversion"
)

// Event represents one customer interaction stored in ClickHouse
type Event struct {
	EventID     string    `ch:"event_id"`
	CustomerID  string    `ch:"customer_id"`
	EventType   string    `ch:"event_type"`
	Channel     string    `ch:"channel"`
	CampaignID  string    `ch:"campaign_id"`
	Timestamp   int64     `ch:"timestamp"`
	Value       *float64  `ch:"value"`
	Metadata    string    `ch:"metadata"`
	ProcessedAt time.Time `ch:"processed_at"`
	Version     uint64    `ch:"version"`
}

// Touchpoint represents one marketing-channel exposure on the path to a conversion
type Touchpoint struct {
	TouchpointID string    `ch:"touchpoint_id"`
	CustomerID   string    `ch:"customer_id"`
	Channel      string    `ch:"channel"`
	CampaignID   string    `ch:"campaign_id"`
	OccurredAt   int64     `ch:"occurred_at"`
	ProcessedAt  time.Time `ch:"processed_at"`
	Version      uint64    `ch:"version"`
}

// ConversionEvent represents a monetized outcome attributable to a touchpoint sequence
type ConversionEvent struct {
	ConversionID  string    `ch:"conversion_id"`
	CustomerID    string    `ch:"customer_id"`
	RevenueAmount float64   `ch:"revenue_amount"`
	OccurredAt    int64     `ch:"occurred_at"`
	WindowStart   int64     `ch:"window_start"`
	ProcessedAt   time.Time `ch:"processed_at"`
	Version       uint64    `ch:"version"`
}

// Record is a single ingestion record of any kind. Exactly one of the
// payload pointers is set, matching Type.
type Record struct {
	Type       RecordType
	Event      *Event
	Touchpoint *Touchpoint
	Conversion *ConversionEvent
}
