package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/dto"
	"github.com/BarkinBalci/customer-scoring-engine/internal/queue"
)

// IngestService validates ingestion requests and publishes them to the queue
type IngestService struct {
	publisher queue.QueuePublisher
	log       *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(publisher queue.QueuePublisher, log *zap.Logger) *IngestService {
	return &IngestService{
		publisher: publisher,
		log:       log,
	}
}

// computeRecordID generates a deterministic record ID from identifying
// fields, so queue redeliveries collapse to the same row
func computeRecordID(prefix string, parts ...string) string {
	data := ""
	for i, p := range parts {
		if i > 0 {
			data += "|"
		}
		data += p
	}

	hash := sha256.Sum256([]byte(data))
	return prefix + "_" + hex.EncodeToString(hash[:])[:24]
}

// ProcessEvent validates and publishes a single behavioral event
func (s *IngestService) ProcessEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error) {
	currentTime := time.Now().Unix()
	if event.Timestamp > currentTime+1 {
		s.log.Warn("Timestamp validation failed: future timestamp",
			zap.Int64("event_timestamp", event.Timestamp),
			zap.Int64("current_time", currentTime),
			zap.String("customer_id", event.CustomerID))
		return "", fmt.Errorf("timestamp cannot be in the future: %d > %d", event.Timestamp, currentTime)
	}

	valueStr := ""
	if event.Value != nil {
		valueStr = fmt.Sprintf("%.4f", *event.Value)
	}
	eventID := computeRecordID("evt",
		event.CustomerID, event.EventType, fmt.Sprintf("%d", event.Timestamp),
		event.CampaignID, event.Channel, valueStr)

	metadataJSON := "{}"
	if len(event.Metadata) > 0 {
		encoded, err := json.Marshal(event.Metadata)
		if err != nil {
			return "", fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = string(encoded)
	}

	record := &domain.Record{
		Type: domain.RecordEvent,
		Event: &domain.Event{
			EventID:    eventID,
			CustomerID: event.CustomerID,
			EventType:  event.EventType,
			Channel:    event.Channel,
			CampaignID: event.CampaignID,
			Timestamp:  event.Timestamp,
			Value:      event.Value,
			Metadata:   metadataJSON,
		},
	}

	if err := s.publisher.PublishRecord(ctx, record); err != nil {
		return "", fmt.Errorf("failed to publish event to queue: %w", err)
	}

	return eventID, nil
}

// ProcessBulkEvents validates and processes multiple events
func (s *IngestService) ProcessBulkEvents(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error) {
	var eventIDs []string
	var errors []string

	for i, event := range events {
		eventID, err := s.ProcessEvent(ctx, &event)
		if err != nil {
			errors = append(errors, err.Error())
			s.log.Warn("Failed to process event in bulk",
				zap.Int("index", i),
				zap.Error(err),
				zap.String("customer_id", event.CustomerID))
			continue
		}
		eventIDs = append(eventIDs, eventID)
	}

	return eventIDs, errors, nil
}

// ProcessTouchpoint validates and publishes a touchpoint exposure
func (s *IngestService) ProcessTouchpoint(ctx context.Context, touchpoint *dto.PublishTouchpointRequest) (string, error) {
	currentTime := time.Now().Unix()
	if touchpoint.OccurredAt > currentTime+1 {
		return "", fmt.Errorf("occurred_at cannot be in the future: %d > %d", touchpoint.OccurredAt, currentTime)
	}

	touchpointID := computeRecordID("tp",
		touchpoint.CustomerID, touchpoint.Channel, touchpoint.CampaignID,
		fmt.Sprintf("%d", touchpoint.OccurredAt))

	record := &domain.Record{
		Type: domain.RecordTouchpoint,
		Touchpoint: &domain.Touchpoint{
			TouchpointID: touchpointID,
			CustomerID:   touchpoint.CustomerID,
			Channel:      touchpoint.Channel,
			CampaignID:   touchpoint.CampaignID,
			OccurredAt:   touchpoint.OccurredAt,
		},
	}

	if err := s.publisher.PublishRecord(ctx, record); err != nil {
		return "", fmt.Errorf("failed to publish touchpoint to queue: %w", err)
	}

	return touchpointID, nil
}

// ProcessConversion validates and publishes a conversion event. The
// attribution window start defaults to 30 days before the conversion.
func (s *IngestService) ProcessConversion(ctx context.Context, conversion *dto.PublishConversionRequest) (string, error) {
	currentTime := time.Now().Unix()
	if conversion.OccurredAt > currentTime+1 {
		return "", fmt.Errorf("occurred_at cannot be in the future: %d > %d", conversion.OccurredAt, currentTime)
	}

	windowStart := conversion.WindowStart
	if windowStart == 0 {
		windowStart = conversion.OccurredAt - 30*86400
	}
	if windowStart >= conversion.OccurredAt {
		return "", fmt.Errorf("window_start must precede occurred_at")
	}

	conversionID := computeRecordID("conv",
		conversion.CustomerID, fmt.Sprintf("%.4f", conversion.RevenueAmount),
		fmt.Sprintf("%d", conversion.OccurredAt))

	record := &domain.Record{
		Type: domain.RecordConversion,
		Conversion: &domain.ConversionEvent{
			ConversionID:  conversionID,
			CustomerID:    conversion.CustomerID,
			RevenueAmount: conversion.RevenueAmount,
			OccurredAt:    conversion.OccurredAt,
			WindowStart:   windowStart,
		},
	}

	if err := s.publisher.PublishRecord(ctx, record); err != nil {
		return "", fmt.Errorf("failed to publish conversion to queue: %w", err)
	}

	return conversionID, nil
}
