package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/dto"
)

const (
	testCurrentTime int64 = 1766702551
	testFutureTime  int64 = 2556144000
)

// MockQueuePublisher is a mock implementation of queue.QueuePublisher
type MockQueuePublisher struct {
	mock.Mock
}

func (m *MockQueuePublisher) PublishRecord(ctx context.Context, record *domain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func TestIngestService_ProcessEvent_Success(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	log := zap.NewNop()

	service := NewIngestService(mockPublisher, log)

	v := 129.99
	req := &dto.PublishEventRequest{
		CustomerID: "cust_123",
		EventType:  "purchase",
		Channel:    "web",
		CampaignID: "cmp_987",
		Timestamp:  testCurrentTime,
		Value:      &v,
		Metadata:   map[string]interface{}{"product_id": "prod-789"},
	}

	mockPublisher.On("PublishRecord", mock.Anything, mock.AnythingOfType("*domain.Record")).Return(nil)

	eventID, err := service.ProcessEvent(context.Background(), req)

	assert.NoError(t, err)
	assert.NotEmpty(t, eventID)
	assert.Contains(t, eventID, "evt_")
	mockPublisher.AssertExpectations(t)
}

func TestIngestService_ProcessEvent_DeterministicID(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	service := NewIngestService(mockPublisher, zap.NewNop())

	req := &dto.PublishEventRequest{
		CustomerID: "cust_123",
		EventType:  "purchase",
		Channel:    "web",
		Timestamp:  testCurrentTime,
	}

	mockPublisher.On("PublishRecord", mock.Anything, mock.Anything).Return(nil)

	first, err := service.ProcessEvent(context.Background(), req)
	assert.NoError(t, err)
	second, err := service.ProcessEvent(context.Background(), req)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIngestService_ProcessEvent_FutureTimestamp(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	service := NewIngestService(mockPublisher, zap.NewNop())

	req := &dto.PublishEventRequest{
		CustomerID: "cust_123",
		EventType:  "purchase",
		Channel:    "web",
		Timestamp:  testFutureTime,
	}

	eventID, err := service.ProcessEvent(context.Background(), req)

	assert.Error(t, err)
	assert.Empty(t, eventID)
	assert.Contains(t, err.Error(), "timestamp cannot be in the future")
	mockPublisher.AssertNotCalled(t, "PublishRecord")
}

func TestIngestService_ProcessEvent_PublishError(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	service := NewIngestService(mockPublisher, zap.NewNop())

	req := &dto.PublishEventRequest{
		CustomerID: "cust_123",
		EventType:  "purchase",
		Channel:    "web",
		Timestamp:  testCurrentTime,
	}

	mockPublisher.On("PublishRecord", mock.Anything, mock.Anything).
		Return(errors.New("queue unavailable"))

	eventID, err := service.ProcessEvent(context.Background(), req)

	assert.Error(t, err)
	assert.Empty(t, eventID)
}

func TestIngestService_ProcessBulkEvents_PartialFailure(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	service := NewIngestService(mockPublisher, zap.NewNop())

	events := []dto.PublishEventRequest{
		{CustomerID: "cust_1", EventType: "purchase", Channel: "web", Timestamp: testCurrentTime},
		{CustomerID: "cust_2", EventType: "purchase", Channel: "web", Timestamp: testFutureTime},
		{CustomerID: "cust_3", EventType: "purchase", Channel: "web", Timestamp: testCurrentTime},
	}

	mockPublisher.On("PublishRecord", mock.Anything, mock.Anything).Return(nil)

	eventIDs, rejections, err := service.ProcessBulkEvents(context.Background(), events)

	assert.NoError(t, err)
	assert.Len(t, eventIDs, 2)
	assert.Len(t, rejections, 1)
	mockPublisher.AssertNumberOfCalls(t, "PublishRecord", 2)
}

func TestIngestService_ProcessTouchpoint_Success(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	service := NewIngestService(mockPublisher, zap.NewNop())

	req := &dto.PublishTouchpointRequest{
		CustomerID: "cust_123",
		Channel:    "email",
		CampaignID: "cmp_987",
		OccurredAt: testCurrentTime,
	}

	mockPublisher.On("PublishRecord", mock.Anything, mock.MatchedBy(func(r *domain.Record) bool {
		return r.Type == domain.RecordTouchpoint && r.Touchpoint != nil
	})).Return(nil)

	touchpointID, err := service.ProcessTouchpoint(context.Background(), req)

	assert.NoError(t, err)
	assert.Contains(t, touchpointID, "tp_")
	mockPublisher.AssertExpectations(t)
}

func TestIngestService_ProcessConversion_DefaultWindow(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	service := NewIngestService(mockPublisher, zap.NewNop())

	req := &dto.PublishConversionRequest{
		CustomerID:    "cust_123",
		RevenueAmount: 300,
		OccurredAt:    testCurrentTime,
	}

	var published *domain.Record
	mockPublisher.On("PublishRecord", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*domain.Record)
		}).
		Return(nil)

	conversionID, err := service.ProcessConversion(context.Background(), req)

	assert.NoError(t, err)
	assert.Contains(t, conversionID, "conv_")
	assert.Equal(t, testCurrentTime-30*86400, published.Conversion.WindowStart)
}

func TestIngestService_ProcessConversion_InvalidWindow(t *testing.T) {
	mockPublisher := new(MockQueuePublisher)
	service := NewIngestService(mockPublisher, zap.NewNop())

	req := &dto.PublishConversionRequest{
		CustomerID:    "cust_123",
		RevenueAmount: 300,
		OccurredAt:    testCurrentTime,
		WindowStart:   testCurrentTime + 100,
	}

	conversionID, err := service.ProcessConversion(context.Background(), req)

	assert.Error(t, err)
	assert.Empty(t, conversionID)
	assert.Contains(t, err.Error(), "window_start must precede occurred_at")
	mockPublisher.AssertNotCalled(t, "PublishRecord")
}
