package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// JSONRecordParser implements MessageParser for the JSON record envelope
// published by the API. It dispatches on the record_type field.
type JSONRecordParser struct{}

// NewJSONRecordParser creates a new JSON record parser
func NewJSONRecordParser() *JSONRecordParser {
	return &JSONRecordParser{}
}

// Parse parses a JSON message body into an ingestion record
func (p *JSONRecordParser) Parse(body []byte) (*domain.Record, error) {
	var msgBody map[string]interface{}
	if err := json.Unmarshal(body, &msgBody); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	now := time.Now()
	version := uint64(now.UnixNano())

	switch domain.RecordType(getStringField(msgBody, "record_type")) {
	case domain.RecordEvent:
		return &domain.Record{
			Type: domain.RecordEvent,
			Event: &domain.Event{
				EventID:     getStringField(msgBody, "event_id"),
				CustomerID:  getStringField(msgBody, "customer_id"),
				EventType:   getStringField(msgBody, "event_type"),
				Channel:     getStringField(msgBody, "channel"),
				CampaignID:  getStringField(msgBody, "campaign_id"),
				Timestamp:   getInt64Field(msgBody, "timestamp"),
				Value:       getFloatField(msgBody, "value"),
				Metadata:    getMetadataField(msgBody),
				ProcessedAt: now,
				Version:     version,
			},
		}, nil
	case domain.RecordTouchpoint:
		return &domain.Record{
			Type: domain.RecordTouchpoint,
			Touchpoint: &domain.Touchpoint{
				TouchpointID: getStringField(msgBody, "touchpoint_id"),
				CustomerID:   getStringField(msgBody, "customer_id"),
				Channel:      getStringField(msgBody, "channel"),
				CampaignID:   getStringField(msgBody, "campaign_id"),
				OccurredAt:   getInt64Field(msgBody, "occurred_at"),
				ProcessedAt:  now,
				Version:      version,
			},
		}, nil
	case domain.RecordConversion:
		return &domain.Record{
			Type: domain.RecordConversion,
			Conversion: &domain.ConversionEvent{
				ConversionID:  getStringField(msgBody, "conversion_id"),
				CustomerID:    getStringField(msgBody, "customer_id"),
				RevenueAmount: getFloat64Field(msgBody, "revenue_amount"),
				OccurredAt:    getInt64Field(msgBody, "occurred_at"),
				WindowStart:   getInt64Field(msgBody, "window_start"),
				ProcessedAt:   now,
				Version:       version,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown record_type: %q", getStringField(msgBody, "record_type"))
	}
}

// Helper functions for extracting fields from parsed JSON
func getStringField(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Field(m map[string]interface{}, key string) int64 {
	if val, ok := m[key].(float64); ok {
		return int64(val)
	}
	return 0
}

func getFloat64Field(m map[string]interface{}, key string) float64 {
	if val, ok := m[key].(float64); ok {
		return val
	}
	return 0
}

func getFloatField(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key].(float64); ok {
		return &val
	}
	return nil
}

func getMetadataField(m map[string]interface{}) string {
	metadata, ok := m["metadata"]
	if !ok || metadata == nil {
		return "{}"
	}
	if s, ok := metadata.(string); ok {
		if s == "" {
			return "{}"
		}
		return s
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
