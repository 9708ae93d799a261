package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/anomaly"
	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/dto"
	"github.com/BarkinBalci/customer-scoring-engine/internal/registry"
)

const (
	testTimestamp int64 = 1766702551
	testAdminKey        = "test-admin-key"
)

// MockIngestService is a mock implementation of service.IngestServicer
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) ProcessEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}

func (m *MockIngestService) ProcessBulkEvents(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error) {
	args := m.Called(ctx, events)
	return args.Get(0).([]string), args.Get(1).([]string), args.Error(2)
}

func (m *MockIngestService) ProcessTouchpoint(ctx context.Context, touchpoint *dto.PublishTouchpointRequest) (string, error) {
	args := m.Called(ctx, touchpoint)
	return args.String(0), args.Error(1)
}

func (m *MockIngestService) ProcessConversion(ctx context.Context, conversion *dto.PublishConversionRequest) (string, error) {
	args := m.Called(ctx, conversion)
	return args.String(0), args.Error(1)
}

// MockEngineService is a mock implementation of service.EngineServicer
type MockEngineService struct {
	mock.Mock
}

func (m *MockEngineService) Score(ctx context.Context, customerID, model, version string) (*domain.Prediction, error) {
	args := m.Called(ctx, customerID, model, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prediction), args.Error(1)
}

func (m *MockEngineService) Attribute(ctx context.Context, conversionID string) (*domain.ConversionEvent, []*domain.AttributionResult, error) {
	args := m.Called(ctx, conversionID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ConversionEvent), args.Get(1).([]*domain.AttributionResult), args.Error(2)
}

func (m *MockEngineService) Anomalies(ctx context.Context, metricName string, window int) ([]anomaly.Flag, error) {
	args := m.Called(ctx, metricName, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]anomaly.Flag), args.Error(1)
}

func (m *MockEngineService) Retrain(ctx context.Context, modelType string) (*registry.ModelArtifact, error) {
	args := m.Called(ctx, modelType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.ModelArtifact), args.Error(1)
}

func newTestHandler(ingest *MockIngestService, engine *MockEngineService) *Handler {
	return NewHandler(ingest, engine, testAdminKey, zap.NewNop())
}

func TestHandler_HealthCheck(t *testing.T) {
	handler := newTestHandler(new(MockIngestService), new(MockEngineService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}

func TestHandler_PublishEvent_Success(t *testing.T) {
	mockIngest := new(MockIngestService)
	handler := newTestHandler(mockIngest, new(MockEngineService))

	eventReq := dto.PublishEventRequest{
		CustomerID: "cust_123",
		EventType:  "purchase",
		Channel:    "web",
		Timestamp:  testTimestamp,
	}

	mockIngest.On("ProcessEvent", mock.Anything, &eventReq).Return("evt_abc123", nil)

	body, _ := json.Marshal(eventReq)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var response dto.PublishRecordResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "evt_abc123", response.RecordID)
	assert.Equal(t, "accepted", response.Status)
	mockIngest.AssertExpectations(t)
}

func TestHandler_PublishEvent_MissingRequiredFields(t *testing.T) {
	mockIngest := new(MockIngestService)
	handler := newTestHandler(mockIngest, new(MockEngineService))

	body, _ := json.Marshal(dto.PublishEventRequest{EventType: "purchase"})
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "validation_error", response.Error)
	mockIngest.AssertNotCalled(t, "ProcessEvent")
}

func TestHandler_PublishConversion_Success(t *testing.T) {
	mockIngest := new(MockIngestService)
	handler := newTestHandler(mockIngest, new(MockEngineService))

	convReq := dto.PublishConversionRequest{
		CustomerID:    "cust_123",
		RevenueAmount: 300,
		OccurredAt:    testTimestamp,
	}

	mockIngest.On("ProcessConversion", mock.Anything, &convReq).Return("conv_42", nil)

	body, _ := json.Marshal(convReq)
	req := httptest.NewRequest(http.MethodPost, "/conversions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	mockIngest.AssertExpectations(t)
}

func TestHandler_GetScore_Success(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	prediction := &domain.Prediction{
		PredictionID: "pred_1",
		CustomerID:   "cust_123",
		ModelType:    "churn",
		ModelVersion: "churn-20250810120000-a1b2c3d4",
		Value:        0.42,
		ProducedAt:   time.Unix(testTimestamp, 0),
	}

	mockEngine.On("Score", mock.Anything, "cust_123", "churn", "").Return(prediction, nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/cust_123?model=churn", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.ScoreResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "cust_123", response.CustomerID)
	assert.Equal(t, 0.42, response.Value)
	assert.Equal(t, prediction.ModelVersion, response.ModelVersion)
	mockEngine.AssertExpectations(t)
}

func TestHandler_GetScore_MissingModelParam(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	req := httptest.NewRequest(http.MethodGet, "/scores/cust_123", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockEngine.AssertNotCalled(t, "Score")
}

func TestHandler_GetScore_UnknownModel(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	mockEngine.On("Score", mock.Anything, "cust_123", "propensity", "").
		Return(nil, &domain.UnknownModelError{Name: "propensity"})

	req := httptest.NewRequest(http.MethodGet, "/scores/cust_123?model=propensity", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "unknown_model", response.Error)
}

func TestHandler_GetScore_NoActiveModel(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	mockEngine.On("Score", mock.Anything, "cust_123", "clv", "").
		Return(nil, &domain.NoActiveModelError{ModelType: domain.ModelCLV})

	req := httptest.NewRequest(http.MethodGet, "/scores/cust_123?model=clv", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_GetScore_InsufficientHistory(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	mockEngine.On("Score", mock.Anything, "cust_new", "churn", "").
		Return(nil, &domain.InsufficientHistoryError{CustomerID: "cust_new"})

	req := httptest.NewRequest(http.MethodGet, "/scores/cust_new?model=churn", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "insufficient_history", response.Error)
}

func TestHandler_RunAttribution_Success(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	conv := &domain.ConversionEvent{
		ConversionID:  "conv_42",
		CustomerID:    "cust_123",
		RevenueAmount: 300,
		OccurredAt:    testTimestamp,
	}
	results := []*domain.AttributionResult{
		{ConversionID: "conv_42", TouchpointID: "tp_1", ModelName: "linear", CreditedRevenue: 150},
		{ConversionID: "conv_42", TouchpointID: "tp_2", ModelName: "linear", CreditedRevenue: 150},
	}

	mockEngine.On("Attribute", mock.Anything, "conv_42").Return(conv, results, nil)

	req := httptest.NewRequest(http.MethodPost, "/attribution/conv_42", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.AttributionResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "conv_42", response.ConversionID)
	assert.Equal(t, 300.0, response.RevenueAmount)
	assert.Len(t, response.Credits, 2)
}

func TestHandler_RunAttribution_NotFound(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	mockEngine.On("Attribute", mock.Anything, "conv_missing").
		Return(nil, nil, &domain.ConversionNotFoundError{ConversionID: "conv_missing"})

	req := httptest.NewRequest(http.MethodPost, "/attribution/conv_missing", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_RunAttribution_EmptyPath(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	mockEngine.On("Attribute", mock.Anything, "conv_42").
		Return(nil, nil, &domain.EmptyPathError{ConversionID: "conv_42"})

	req := httptest.NewRequest(http.MethodPost, "/attribution/conv_42", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "empty_path", response.Error)
}

func TestHandler_GetAnomalies_Success(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	flags := []anomaly.Flag{
		{MetricName: "daily_conversions", Timestamp: testTimestamp, Value: 57, ZScore: 3.8, IsAnomalous: true},
	}

	mockEngine.On("Anomalies", mock.Anything, "daily_conversions", 14).Return(flags, nil)

	req := httptest.NewRequest(http.MethodGet, "/anomalies/daily_conversions?window=14", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.GetAnomaliesResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "daily_conversions", response.MetricName)
	assert.Len(t, response.Flags, 1)
	assert.True(t, response.Flags[0].IsAnomalous)
}

func TestHandler_Retrain_MissingAdminKey(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	req := httptest.NewRequest(http.MethodPost, "/models/churn/retrain", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockEngine.AssertNotCalled(t, "Retrain")
}

func TestHandler_Retrain_Success(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	artifact := &registry.ModelArtifact{
		ModelType: domain.ModelChurn,
		Version:   "churn-20250810120000-a1b2c3d4",
		Metrics:   map[string]float64{"auc": 0.81, "accuracy": 0.77},
	}

	mockEngine.On("Retrain", mock.Anything, "churn").Return(artifact, nil)

	req := httptest.NewRequest(http.MethodPost, "/models/churn/retrain", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.RetrainResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "promoted", response.Status)
	assert.Equal(t, artifact.Version, response.NewVersion)
	assert.Equal(t, 0.81, response.ValidationMetrics["auc"])
	mockEngine.AssertExpectations(t)
}

func TestHandler_Retrain_ValidationThresholdNotMet(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	mockEngine.On("Retrain", mock.Anything, "clv").
		Return(nil, &domain.ValidationThresholdNotMetError{
			ModelType: domain.ModelCLV,
			Metric:    "r2",
			Value:     0.31,
			Threshold: 0.5,
		})

	req := httptest.NewRequest(http.MethodPost, "/models/clv/retrain", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "validation_threshold_not_met", response.Error)
}

func TestHandler_Retrain_InternalError(t *testing.T) {
	mockEngine := new(MockEngineService)
	handler := newTestHandler(new(MockIngestService), mockEngine)

	mockEngine.On("Retrain", mock.Anything, "lead").
		Return(nil, errors.New("storage unavailable"))

	req := httptest.NewRequest(http.MethodPost, "/models/lead/retrain", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
